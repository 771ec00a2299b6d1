package provider

import "context"

// Provider is the base interface of every producer and backend.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable reports whether the provider can take requests.
	IsAvailable(ctx context.Context) bool
}

// Factory builds a provider. Factories close over their typed configuration.
type Factory[T Provider] func(ctx context.Context) (T, error)
