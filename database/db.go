package database

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/speakerkit/logger"
)

// DB is a sqlite-backed gorm handle with speakerkit logging.
type DB struct {
	orm *gorm.DB
	cfg Config
	log *logger.Logger

	mu     sync.Mutex
	closed bool
}

// Open connects, applies the sqlite pragmas and sizes the pool. Failed
// attempts are retried with a linear backoff until ConnectAttempts runs
// out or ctx is done.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("database")

	var lastErr error
	for attempt := 1; attempt <= cfg.ConnectAttempts; attempt++ {
		orm, err := connect(ctx, cfg, log)
		if err == nil {
			log.Info("database ready", map[string]interface{}{
				"driver":       cfg.Driver,
				"journal_mode": cfg.JournalMode,
				"attempt":      attempt,
			})
			return &DB{orm: orm, cfg: cfg, log: log}, nil
		}
		lastErr = err
		if attempt == cfg.ConnectAttempts {
			break
		}

		wait := time.Duration(attempt) * time.Second
		log.Warn("database connect failed, retrying", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
			"backoff": wait.String(),
		})
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database: connect canceled: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("database: connect failed after %d attempts: %w", cfg.ConnectAttempts, lastErr)
}

func connect(ctx context.Context, cfg Config, log *logger.Logger) (*gorm.DB, error) {
	orm, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		Logger: newQueryLogger(log, cfg.SlowQuery, cfg.LogLevel),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := orm.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()),
		"PRAGMA journal_mode = " + strings.ToUpper(cfg.JournalMode),
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if err := orm.WithContext(ctx).Exec(p).Error; err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return orm, nil
}

// Config returns the configuration after defaults.
func (d *DB) Config() Config { return d.cfg }

// Close releases the pool. Later calls are no-ops.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	sqlDB, err := d.orm.DB()
	if err != nil {
		return err
	}
	d.closed = true
	d.log.Info("closing database")
	return sqlDB.Close()
}

// PingContext checks the connection. A closed DB always fails.
func (d *DB) PingContext(ctx context.Context) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return errClosed
	}
	sqlDB, err := d.orm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WithContext returns a session bound to ctx.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.orm.WithContext(ctx)
}

// AutoMigrate creates or updates the tables for models.
func (d *DB) AutoMigrate(models ...interface{}) error {
	for _, m := range models {
		if err := d.orm.AutoMigrate(m); err != nil {
			return fmt.Errorf("database: migrate %T: %w", m, err)
		}
	}
	return nil
}

// WithTransaction runs fn in a transaction. An error or panic from fn
// rolls it back.
func (d *DB) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.orm.WithContext(ctx).Transaction(fn)
}
