package qdrant

import (
	"fmt"
	"time"

	"github.com/kbukum/speakerkit/security"
	"github.com/kbukum/speakerkit/validation"
)

// Config holds the Qdrant connection settings.
type Config struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	// URL overrides Host and Port, e.g. "https://xyz.cloud.qdrant.io:6333".
	URL        string        `yaml:"url" mapstructure:"url" validate:"omitempty,url"`
	APIKey     string        `yaml:"api_key" mapstructure:"api_key"`
	Collection string        `yaml:"collection" mapstructure:"collection" validate:"required"`
	Dimension  int           `yaml:"dimension" mapstructure:"dimension" validate:"gt=0"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// ScrollPage is the page size used when listing speakers.
	ScrollPage int `yaml:"scroll_page" mapstructure:"scroll_page"`
	// CircuitBreaker enables fail-fast after repeated transport failures.
	CircuitBreaker bool `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	// TLS configures HTTPS for self-hosted clusters behind a private CA.
	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "qdrant"
	}
	if c.Port == 0 {
		c.Port = 6333
	}
	if c.Collection == "" {
		c.Collection = "speaker_embeddings"
	}
	if c.Dimension <= 0 {
		c.Dimension = 256
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.ScrollPage <= 0 {
		c.ScrollPage = 100
	}
}

// Validate checks the field tags and the TLS files.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("qdrant: %w", err)
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("qdrant: %w", err)
	}
	return nil
}

// BaseURL returns URL, or Host:Port over https when TLS is enabled and
// http otherwise.
func (c *Config) BaseURL() string {
	if c.URL != "" {
		return c.URL
	}
	scheme := "http"
	if c.TLS.Enabled {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}
