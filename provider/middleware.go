package provider

import "context"

// Middleware wraps a RequestResponse provider with cross-cutting behavior.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain composes middlewares. The first one is outermost:
// Chain(a, b, c)(p) is a(b(c(p))). Nil middlewares are skipped.
func Chain[I, O any](middlewares ...Middleware[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			if middlewares[i] != nil {
				inner = middlewares[i](inner)
			}
		}
		return inner
	}
}

// Next calls the wrapped provider.
type Next[I, O any] func(ctx context.Context, input I) (O, error)

// Around builds a middleware from fn, which runs in place of Execute and
// reaches the wrapped provider through next. Name and IsAvailable pass
// through unchanged.
func Around[I, O any](fn func(ctx context.Context, name string, input I, next Next[I, O]) (O, error)) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &aroundRR[I, O]{inner: inner, fn: fn}
	}
}

type aroundRR[I, O any] struct {
	inner RequestResponse[I, O]
	fn    func(ctx context.Context, name string, input I, next Next[I, O]) (O, error)
}

func (a *aroundRR[I, O]) Name() string                         { return a.inner.Name() }
func (a *aroundRR[I, O]) IsAvailable(ctx context.Context) bool { return a.inner.IsAvailable(ctx) }

func (a *aroundRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return a.fn(ctx, a.inner.Name(), input, a.inner.Execute)
}
