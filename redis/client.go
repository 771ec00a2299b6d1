package redis

import (
	"context"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/speakerkit/logger"
	"github.com/kbukum/speakerkit/provider"
)

// Client is a pooled connection to one Redis server.
type Client struct {
	rdb *goredis.Client
	cfg Config
	log *logger.Logger

	mu     sync.Mutex
	closed bool
}

var _ provider.Provider = (*Client)(nil)

// New builds the pool. It does not dial; use Ping to check reachability.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tlsCfg, err := cfg.TLS.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("redis")

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		TLSConfig:    tlsCfg,
	})
	log.Info("redis client created", map[string]interface{}{
		"addr": cfg.Addr,
		"db":   cfg.DB,
		"tls":  tlsCfg != nil,
	})
	return &Client{rdb: rdb, cfg: cfg, log: log}, nil
}

// Name returns "redis".
func (c *Client) Name() string { return "redis" }

// Ping checks the server answers.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", c.cfg.Addr, err)
	}
	return nil
}

// IsAvailable reports whether the client is open and the server answers.
func (c *Client) IsAvailable(ctx context.Context) bool {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	return !closed && c.Ping(ctx) == nil
}

// Close releases the pool. Later calls are no-ops, as is closing a nil
// client.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.rdb.Close()
}
