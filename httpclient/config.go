package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/speakerkit/resilience"
	"github.com/kbukum/speakerkit/security"
)

const defaultTimeout = 30 * time.Second

// Config configures an Adapter.
type Config struct {
	// Name identifies the remote service in errors, logs and metrics.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is prepended to every request path.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds a whole request including reading the body. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Auth is applied to every request unless the request overrides it.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`

	// TLS configures HTTPS towards the remote service. Nil or disabled uses
	// the system defaults.
	TLS *security.TLSConfig `yaml:"-" mapstructure:"-"`

	// CircuitBreaker guards the remote service. Nil disables it.
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Name == "" {
		c.Name = "http"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("httpclient: %w", err)
	}
	return nil
}

// DefaultCircuitBreakerConfig returns a breaker config that only counts
// transport failures and 5xx responses, so caller mistakes never open it.
func DefaultCircuitBreakerConfig(name string) *resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig(name)
	cfg.ShouldTrip = IsRetryable
	return &cfg
}
