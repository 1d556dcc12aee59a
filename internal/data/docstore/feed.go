package docstore

import (
	"context"

	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
	"github.com/yungbote/learnhub-backend/internal/realtime"
	"github.com/yungbote/learnhub-backend/internal/realtime/bus"
)

// Feed publishes committed writes on a bus and fans the bus traffic out to local subscribers.
// With a redis bus every instance sees every other instance's writes.
type Feed struct {
	log *logger.Logger
	bus bus.Bus
	hub *realtime.Hub
}

func NewFeed(log *logger.Logger, b bus.Bus) *Feed {
	if log == nil {
		log = logger.Nop()
	}
	if b == nil {
		b = bus.NewLocalBus()
	}
	return &Feed{
		log: log.With("component", "DocumentFeed"),
		bus: b,
		hub: realtime.NewHub(log),
	}
}

// Start connects the bus to local subscribers. It must be called once before events flow.
func (f *Feed) Start(ctx context.Context) error {
	return f.bus.StartForwarder(ctx, f.hub.Broadcast)
}

func (f *Feed) Publish(ctx context.Context, ev realtime.ChangeEvent) error {
	return f.bus.Publish(ctx, ev)
}

func (f *Feed) subscribe(collection string, filters []Filter) *realtime.Subscription {
	return f.hub.Subscribe(collection, func(ev realtime.ChangeEvent) bool {
		return matches(ev.Data, filters)
	})
}

func (f *Feed) unsubscribe(sub *realtime.Subscription) { f.hub.Unsubscribe(sub) }

func (f *Feed) Close() error { return f.bus.Close() }
