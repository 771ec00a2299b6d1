package provider

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/speakerkit/errors"
	"github.com/kbukum/speakerkit/resilience"
)

// WithResilience guards p with the configured circuit breaker and
// concurrency cap. Execution order is Bulkhead, then CircuitBreaker, then
// Execute. An empty config returns p unchanged. Calls are never retried.
func WithResilience[I, O any](p RequestResponse[I, O], cfg ResilienceConfig) RequestResponse[I, O] {
	if cfg.IsEmpty() {
		return p
	}
	return &resilientRR[I, O]{inner: p, state: BuildResilience(p.Name(), cfg)}
}

type resilientRR[I, O any] struct {
	inner RequestResponse[I, O]
	state *ResilienceState
}

func (r *resilientRR[I, O]) Name() string { return r.inner.Name() }

// IsAvailable is false while the breaker is open.
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool {
	if r.state.cb != nil && r.state.cb.State() == resilience.StateOpen {
		return false
	}
	return r.inner.IsAvailable(ctx)
}

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return ExecuteWithResilience(ctx, r.inner.Name(), r.state, func() (O, error) {
		return r.inner.Execute(ctx, input)
	})
}

// ExecuteWithResilience runs fn through the guards in s. Guard rejections
// are returned as UPSTREAM_UNAVAILABLE errors naming service.
func ExecuteWithResilience[T any](ctx context.Context, service string, s *ResilienceState, fn func() (T, error)) (T, error) {
	if s == nil {
		return fn()
	}

	call := fn
	if s.cb != nil {
		inner := call
		call = func() (T, error) {
			var result T
			var resultErr error
			cbErr := s.cb.Execute(func() error {
				result, resultErr = inner()
				return resultErr
			})
			if cbErr != nil && resultErr == nil {
				return result, wrapResilienceError(service, cbErr)
			}
			return result, resultErr
		}
	}

	if s.bh == nil {
		return call()
	}

	var result T
	err := s.bh.Execute(ctx, func() error {
		var callErr error
		result, callErr = call()
		return callErr
	})
	if err != nil {
		return result, wrapResilienceError(service, err)
	}
	return result, nil
}

func wrapResilienceError(service string, err error) error {
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	switch {
	case stderrors.Is(err, resilience.ErrCircuitOpen):
		return errors.UpstreamUnavailable(service, err).WithDetail("reason", "circuit open")
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.UpstreamTimeout(service, err)
	default:
		return err
	}
}
