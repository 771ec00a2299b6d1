package component

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/kbukum/speakerkit/logger"
)

// DefaultStopTimeout bounds each component's Stop call.
const DefaultStopTimeout = 10 * time.Second

// Registry starts components in registration order and stops them in
// reverse. Because StartAll halts at the first failure, the started
// components are always a prefix of the registered ones.
type Registry struct {
	mu          sync.RWMutex
	components  []Component
	started     int
	stopTimeout time.Duration
	log         *logger.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithStopTimeout changes the per-component stop deadline.
func WithStopTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.stopTimeout = d
		}
	}
}

// NewRegistry creates an empty registry. log may be nil.
func NewRegistry(log *logger.Logger, opts ...RegistryOption) *Registry {
	if log == nil {
		log = logger.NewNop()
	}
	r := &Registry{stopTimeout: DefaultStopTimeout, log: log.WithComponent("components")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) index(name string) int {
	return slices.IndexFunc(r.components, func(c Component) bool { return c.Name() == name })
}

// Register adds c. Register dependencies first: the store before the
// server that serves it.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index(c.Name()) >= 0 {
		return fmt.Errorf("component %s already registered", c.Name())
	}
	r.components = append(r.components, c)
	r.log.Debug("Component registered", map[string]interface{}{"component": c.Name()})
	return nil
}

// StartAll starts every component not yet started and halts at the first
// failure. Components started before it stay started until StopAll.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ; r.started < len(r.components); r.started++ {
		c := r.components[r.started]
		begin := time.Now()
		if err := c.Start(ctx); err != nil {
			r.log.Error("Component start failed", map[string]interface{}{"component": c.Name(), logger.FieldError: err.Error()})
			return fmt.Errorf("failed to start %s: %w", c.Name(), err)
		}
		r.log.Debug("Component started", map[string]interface{}{"component": c.Name(), logger.FieldDuration: time.Since(begin).Milliseconds()})
	}
	r.log.Info("All components started", map[string]interface{}{"count": r.started})
	return nil
}

// StopAll stops the started components, newest first. Each gets its own
// deadline and every failure is returned.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for ; r.started > 0; r.started-- {
		c := r.components[r.started-1]
		stopCtx, cancel := context.WithTimeout(ctx, r.stopTimeout)
		err := c.Stop(stopCtx)
		cancel()
		if err != nil {
			r.log.Error("Component stop failed", map[string]interface{}{"component": c.Name(), logger.FieldError: err.Error()})
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", c.Name(), err))
			continue
		}
		r.log.Debug("Component stopped", map[string]interface{}{"component": c.Name()})
	}
	return errors.Join(errs...)
}

// HealthAll returns every component's health in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reports := make([]Health, len(r.components))
	for i, c := range r.components {
		reports[i] = c.Health(ctx)
	}
	return reports
}

// Get returns the component registered as name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.index(name); i >= 0 {
		return r.components[i]
	}
	return nil
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.components)
}
