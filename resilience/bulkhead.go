package resilience

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// ErrBulkheadFull is returned by TryExecute when no slot is free.
var ErrBulkheadFull = errors.New("bulkhead is full")

// Bulkhead limits the number of concurrent calls.
type Bulkhead struct {
	name string
	sem  chan struct{}
}

// NewBulkhead creates a bulkhead admitting at most maxConcurrent calls. Values
// below one are treated as one.
func NewBulkhead(name string, maxConcurrent int) *Bulkhead {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Bulkhead{name: name, sem: make(chan struct{}, maxConcurrent)}
}

// Name returns the bulkhead name.
func (b *Bulkhead) Name() string { return b.name }

// Execute waits for a free slot, or for ctx to be done, and then runs fn.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	select {
	case b.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-b.sem }()
	return fn()
}

// TryExecute runs fn only if a slot is free right now.
func (b *Bulkhead) TryExecute(fn func() error) error {
	select {
	case b.sem <- struct{}{}:
	default:
		return ErrBulkheadFull
	}
	defer func() { <-b.sem }()
	return fn()
}

// InUse returns the number of occupied slots.
func (b *Bulkhead) InUse() int { return len(b.sem) }

// MaxConcurrent returns the slot count.
func (b *Bulkhead) MaxConcurrent() int { return cap(b.sem) }

// FanOut calls fn for every item through b and returns the results in input
// order. At most b.MaxConcurrent goroutines run at once. The first error
// cancels the context passed to the remaining calls and is returned once all
// started calls have finished.
func FanOut[T, R any](ctx context.Context, b *Bulkhead, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.MaxConcurrent())
	for i, item := range items {
		g.Go(func() error {
			return b.Execute(ctx, func() error {
				r, err := fn(ctx, item)
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
