package realtime

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
)

const outboundBuffer = 32

// Subscription receives the change events of one collection that pass its match func.
type Subscription struct {
	ID         uuid.UUID
	Collection string
	Outbound   chan ChangeEvent

	match func(ChangeEvent) bool
	once  sync.Once
}

// Hub fans change events out to in-process subscribers.
type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[string]map[*Subscription]bool
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		log:           log.With("component", "ChangeHub"),
		subscriptions: make(map[string]map[*Subscription]bool),
	}
}

// Subscribe registers interest in collection. A nil match accepts every event.
func (hub *Hub) Subscribe(collection string, match func(ChangeEvent) bool) *Subscription {
	sub := &Subscription{
		ID:         uuid.New(),
		Collection: strings.TrimSpace(collection),
		Outbound:   make(chan ChangeEvent, outboundBuffer),
		match:      match,
	}

	hub.mu.Lock()
	defer hub.mu.Unlock()
	subs, ok := hub.subscriptions[sub.Collection]
	if !ok {
		subs = make(map[*Subscription]bool)
		hub.subscriptions[sub.Collection] = subs
	}
	subs[sub] = true
	hub.log.Debug("Change subscriber added", "subscriptionID", sub.ID, "collection", sub.Collection)
	return sub
}

// Unsubscribe removes sub and closes its Outbound channel. Safe to call more than once.
func (hub *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	sub.once.Do(func() {
		hub.mu.Lock()
		if subs, ok := hub.subscriptions[sub.Collection]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(hub.subscriptions, sub.Collection)
			}
		}
		close(sub.Outbound)
		hub.mu.Unlock()
		hub.log.Debug("Change subscriber removed", "subscriptionID", sub.ID)
	})
}

// Broadcast never blocks; a subscriber with a full buffer misses the event.
func (hub *Hub) Broadcast(ev ChangeEvent) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	subs, ok := hub.subscriptions[ev.Collection]
	if !ok {
		return
	}
	for sub := range subs {
		if sub.match != nil && !sub.match(ev) {
			continue
		}
		select {
		case sub.Outbound <- ev:
		default:
			hub.log.Warn("Dropping change event; outbound buffer full",
				"subscriptionID", sub.ID, "collection", ev.Collection, "docId", ev.DocID)
		}
	}
}

// Count reports the live subscriptions for collection.
func (hub *Hub) Count(collection string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.subscriptions[collection])
}
