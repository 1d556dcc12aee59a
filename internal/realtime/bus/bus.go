package bus

import (
	"context"

	"github.com/yungbote/learnhub-backend/internal/realtime"
)

// Bus carries change events between processes. Every published event, including the
// publisher's own, reaches the forwarder callback.
type Bus interface {
	Publish(ctx context.Context, ev realtime.ChangeEvent) error
	StartForwarder(ctx context.Context, onEvent func(ev realtime.ChangeEvent)) error
	Close() error
}
