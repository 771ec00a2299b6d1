package cache

import (
	"fmt"
	"time"

	"github.com/kbukum/speakerkit/redis"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and tunes the transcription cache.
type Config struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Backend string `yaml:"backend" mapstructure:"backend"`
	// TTL bounds how long a result is reused. Zero keeps results forever.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
	// MaxEntries caps the memory backend.
	MaxEntries int    `yaml:"max_entries" mapstructure:"max_entries"`
	KeyPrefix  string `yaml:"key_prefix" mapstructure:"key_prefix"`

	Redis redis.Config `yaml:"redis" mapstructure:"redis"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.TTL == 0 {
		c.TTL = 24 * time.Hour
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = 256
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "speakerkit:transcription"
	}
	if c.Backend == BackendRedis {
		c.Redis.ApplyDefaults()
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Backend {
	case BackendMemory:
	case BackendRedis:
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	default:
		return fmt.Errorf("cache: unknown backend %q (want %s or %s)", c.Backend, BackendMemory, BackendRedis)
	}
	if c.TTL < 0 {
		return fmt.Errorf("cache: ttl must not be negative")
	}
	return nil
}
