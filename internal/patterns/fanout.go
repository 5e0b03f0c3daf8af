package patterns

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FailurePolicy decides what a failed fan-out item does to the whole run
type FailurePolicy int

const (
	// SkipFailures records the error on the item and keeps going
	SkipFailures FailurePolicy = iota
	// PropagateFailures cancels the remaining items and returns the first error
	PropagateFailures
)

// String returns a readable policy name
func (p FailurePolicy) String() string {
	switch p {
	case SkipFailures:
		return "skip"
	case PropagateFailures:
		return "propagate"
	default:
		return "unknown"
	}
}

// Result carries the outcome of one fan-out item. Err is only ever set under
// SkipFailures.
type Result[T any] struct {
	Value T
	Err   error
}

// FanOut applies fn to every item concurrently, admitting at most
// gate.Capacity() calls at a time. Results keep the order of items.
//
// Under SkipFailures the returned error is always nil and per-item failures
// are reported in Result.Err. Under PropagateFailures the first failure
// cancels the context passed to the other calls and is returned.
func FanOut[In, Out any](
	ctx context.Context,
	gate *Bulkhead,
	items []In,
	policy FailurePolicy,
	fn func(ctx context.Context, item In) (Out, error),
) ([]Result[Out], error) {
	results := make([]Result[Out], len(items))
	g, gctx := errgroup.WithContext(ctx)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			err := gate.Execute(gctx, func(ctx context.Context) error {
				value, err := fn(ctx, item)
				if err != nil {
					return err
				}
				results[i].Value = value
				return nil
			})
			if err == nil {
				return nil
			}
			if policy == PropagateFailures {
				return err
			}
			results[i].Err = err
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
