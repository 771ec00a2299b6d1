package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/speakerkit/logger"
)

// Factory creates an archive backend.
type Factory func(cfg ArchiveConfig, log *logger.Logger) (Storage, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory registers a backend under name. Backend packages call it
// from init.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// New creates the archive backend named by cfg.Provider.
func New(cfg ArchiveConfig, log *logger.Logger) (Storage, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	factoriesMu.RUnlock()

	if !ok {
		sort.Strings(names)
		return nil, fmt.Errorf("storage: provider %q not registered (available: %v)", cfg.Provider, names)
	}

	l := log.WithComponent("storage")
	l.Info("initializing archive storage", map[string]interface{}{"provider": cfg.Provider})
	return f(cfg, l)
}
