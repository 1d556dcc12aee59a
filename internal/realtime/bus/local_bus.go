package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/learnhub-backend/internal/realtime"
)

type localBus struct {
	mu      sync.RWMutex
	onEvent []func(ev realtime.ChangeEvent)
}

// NewLocalBus is a single-process Bus; Publish calls the forwarders inline.
func NewLocalBus() Bus {
	return &localBus{}
}

func (b *localBus) Publish(ctx context.Context, ev realtime.ChangeEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, fn := range b.onEvent {
		fn(ev)
	}
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onEvent func(ev realtime.ChangeEvent)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	b.mu.Lock()
	b.onEvent = append(b.onEvent, onEvent)
	idx := len(b.onEvent) - 1
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		b.onEvent[idx] = func(realtime.ChangeEvent) {}
		b.mu.Unlock()
	}()
	return nil
}

func (b *localBus) Close() error { return nil }
