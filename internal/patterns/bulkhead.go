package patterns

import (
	"context"
	"fmt"
	"time"

	"github.com/ashendes/store-dashboard/internal/metrics"
)

// Bulkhead implements the bulkhead pattern for resource isolation. It doubles
// as the admission gate for fan-out: at most Capacity callers run at once and
// the rest wait for a free slot.
type Bulkhead struct {
	semaphore chan struct{}
	name      string
	service   string
	maxWait   time.Duration
}

// BulkheadOption configures a Bulkhead
type BulkheadOption func(*Bulkhead)

// WithMaxWait rejects callers that cannot acquire a slot within d.
// Zero waits until the caller's context is done.
func WithMaxWait(d time.Duration) BulkheadOption {
	return func(b *Bulkhead) {
		b.maxWait = d
	}
}

// NewBulkhead creates a new bulkhead with specified capacity
func NewBulkhead(size int, name, service string, opts ...BulkheadOption) *Bulkhead {
	if size < 1 {
		size = 1
	}
	b := &Bulkhead{
		semaphore: make(chan struct{}, size),
		name:      name,
		service:   service,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Execute runs a function within the bulkhead's resource limits
func (b *Bulkhead) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	var timeout <-chan time.Time
	if b.maxWait > 0 {
		timer := time.NewTimer(b.maxWait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case b.semaphore <- struct{}{}:
		metrics.BulkheadActiveRequests.WithLabelValues(b.service, b.name).Inc()

		defer func() {
			<-b.semaphore
			metrics.BulkheadActiveRequests.WithLabelValues(b.service, b.name).Dec()
		}()

		return fn(ctx)

	case <-timeout:
		metrics.BulkheadRejectedRequests.WithLabelValues(b.service, b.name).Inc()
		return fmt.Errorf("bulkhead %s: timeout acquiring resource", b.name)

	case <-ctx.Done():
		metrics.BulkheadRejectedRequests.WithLabelValues(b.service, b.name).Inc()
		return fmt.Errorf("bulkhead %s: %w", b.name, ctx.Err())
	}
}

// Capacity returns the number of concurrent slots
func (b *Bulkhead) Capacity() int {
	return cap(b.semaphore)
}

// InFlight returns the number of currently occupied slots
func (b *Bulkhead) InFlight() int {
	return len(b.semaphore)
}

// GetName returns the bulkhead name
func (b *Bulkhead) GetName() string {
	return b.name
}
