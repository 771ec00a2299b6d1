package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry maps backend names to factories. speakerd uses one registry per
// pluggable concern (speaker store, transcription cache) and picks the
// backend named in config.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// NewRegistry creates an empty Registry.
func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{factories: make(map[string]Factory[T])}
}

// Register adds or replaces the factory for name.
func (r *Registry[T]) Register(name string, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create builds the provider registered under name. When the provider
// implements Initializable, Init is called before it is returned.
func (r *Registry[T]) Create(ctx context.Context, name string) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	var zero T
	if !ok {
		return zero, fmt.Errorf("provider %q not registered (available: %v)", name, r.Names())
	}
	p, err := factory(ctx)
	if err != nil {
		return zero, fmt.Errorf("create provider %q: %w", name, err)
	}
	if init, ok := any(p).(Initializable); ok {
		if err := init.Init(ctx); err != nil {
			return zero, fmt.Errorf("init provider %q: %w", name, err)
		}
	}
	return p, nil
}

// Names returns the sorted names of all registered factories.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
