package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod is an HMAC JWT signing algorithm.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
)

var hmacMethods = map[SigningMethod]*gojwt.SigningMethodHMAC{
	HS256: gojwt.SigningMethodHS256,
	HS384: gojwt.SigningMethodHS384,
	HS512: gojwt.SigningMethodHS512,
}

// minSecretLen is the shortest accepted HMAC secret, in bytes.
const minSecretLen = 32

// Config configures the token service.
type Config struct {
	// Secret is the shared HMAC key.
	Secret string `yaml:"secret" mapstructure:"secret"`

	// Method is the signing algorithm (default: HS256).
	Method SigningMethod `yaml:"method" mapstructure:"method"`

	// Issuer is the "iss" claim. When set, tokens from other issuers are rejected.
	Issuer string `yaml:"issuer" mapstructure:"issuer"`

	// Audience is the "aud" claim. When set, the first entry must be present.
	Audience []string `yaml:"audience" mapstructure:"audience"`

	// AccessTokenTTL is the lifetime of issued tokens (default: 15m).
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" mapstructure:"access_token_ttl"`

	// Leeway tolerates clock skew when checking exp and nbf.
	Leeway time.Duration `yaml:"leeway" mapstructure:"leeway"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 15 * time.Minute
	}
}

// Validate checks the signing settings.
func (c *Config) Validate() error {
	if _, ok := hmacMethods[c.Method]; !ok {
		return fmt.Errorf("jwt: unsupported signing method %q", c.Method)
	}
	if len(c.Secret) < minSecretLen {
		return fmt.Errorf("jwt: secret must be at least %d bytes", minSecretLen)
	}
	if c.AccessTokenTTL < 0 || c.Leeway < 0 {
		return errors.New("jwt: access_token_ttl and leeway must not be negative")
	}
	return nil
}
