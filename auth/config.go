package auth

import (
	"fmt"

	"github.com/kbukum/speakerkit/auth/jwt"
)

// Config enables bearer-token authentication on the API.
type Config struct {
	Enabled bool       `yaml:"enabled" mapstructure:"enabled"`
	JWT     jwt.Config `yaml:"jwt" mapstructure:"jwt"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	c.JWT.ApplyDefaults()
}

// Validate checks the JWT settings when auth is enabled.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("auth.jwt: %w", err)
	}
	return nil
}

// Describe returns a one-liner for the startup summary, e.g. "JWT(HS256) TTL=15m0s".
func (c *Config) Describe() string {
	if !c.Enabled {
		return "disabled"
	}
	return fmt.Sprintf("JWT(%s) TTL=%s", c.JWT.Method, c.JWT.AccessTokenTTL)
}
