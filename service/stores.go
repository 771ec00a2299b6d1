package service

import (
	"context"
	"fmt"

	"github.com/kbukum/speakerkit/database"
	"github.com/kbukum/speakerkit/logger"
	"github.com/kbukum/speakerkit/provider"
	"github.com/kbukum/speakerkit/speakerdb"
	"github.com/kbukum/speakerkit/speakerdb/memory"
	"github.com/kbukum/speakerkit/speakerdb/qdrant"
	"github.com/kbukum/speakerkit/speakerdb/sqlstore"
)

// StoreConfig selects and configures the speaker store backend.
type StoreConfig struct {
	// Backend is one of "qdrant", "sql" or "memory".
	Backend  string          `yaml:"backend" mapstructure:"backend"`
	Qdrant   qdrant.Config   `yaml:"qdrant" mapstructure:"qdrant"`
	Database database.Config `yaml:"database" mapstructure:"database"`
}

// ApplyDefaults fills in zero-value fields.
func (c *StoreConfig) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = qdrant.BackendName
	}
	c.Qdrant.ApplyDefaults()
	c.Database.ApplyDefaults()
}

// Validate checks the selected backend's settings only.
func (c *StoreConfig) Validate() error {
	switch c.Backend {
	case qdrant.BackendName:
		return c.Qdrant.Validate()
	case sqlstore.BackendName:
		return c.Database.Validate()
	case memory.BackendName:
		return nil
	default:
		return fmt.Errorf("speakers.backend must be one of [%s, %s, %s] (got: %s)",
			qdrant.BackendName, sqlstore.BackendName, memory.BackendName, c.Backend)
	}
}

// sqlBackend owns the database handle behind a sqlstore.Store.
type sqlBackend struct {
	*sqlstore.Store
	db *database.DB
}

func (b *sqlBackend) Close(_ context.Context) error { return b.db.Close() }

// NewStoreRegistry registers every speaker store backend bound to cfg.
func NewStoreRegistry(cfg StoreConfig, log *logger.Logger) *provider.Registry[speakerdb.Store] {
	r := provider.NewRegistry[speakerdb.Store]()
	r.Register(memory.BackendName, func(context.Context) (speakerdb.Store, error) {
		return memory.New(), nil
	})
	r.Register(qdrant.BackendName, func(context.Context) (speakerdb.Store, error) {
		store, err := qdrant.New(cfg.Qdrant, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	})
	r.Register(sqlstore.BackendName, func(ctx context.Context) (speakerdb.Store, error) {
		db, err := database.Open(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		return &sqlBackend{Store: sqlstore.New(db), db: db}, nil
	})
	return r
}

// OpenStore creates and initializes the configured speaker store.
func OpenStore(ctx context.Context, cfg StoreConfig, log *logger.Logger) (speakerdb.Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewStoreRegistry(cfg, log).Create(ctx, cfg.Backend)
}
