package patterns

import (
	"context"
	"time"
)

// WithTimeout derives a context that fails fast after duration
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

// DefaultUpstreamTimeout bounds every call to the upstream store API
const DefaultUpstreamTimeout = 20 * time.Second

// DefaultDialTimeout bounds websocket dials to the upstream order stream
const DefaultDialTimeout = 10 * time.Second

// DefaultFanOutLimit caps simultaneous per-store fetches during aggregation
const DefaultFanOutLimit = 10
