// Package jwt issues and verifies HMAC-signed JWTs for a claims type T.
//
//	svc, err := jwt.NewService(&cfg, func() *jwt.Claims { return &jwt.Claims{} })
//	token, err := svc.GenerateAccess(&jwt.Claims{
//	    RegisteredClaims: gojwt.RegisteredClaims{Subject: "ingest-worker"},
//	    Scopes:           []string{jwt.ScopeRead},
//	})
//	claims, err := svc.Parse(token)
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Stamper is implemented by claims that accept the standard time, issuer
// and audience claims before signing. *Claims implements it.
type Stamper interface {
	SetDefaults(now time.Time, ttl time.Duration, issuer string, audience []string)
}

// Service issues and parses tokens carrying claims of type T.
type Service[T gojwt.Claims] struct {
	cfg      Config
	method   *gojwt.SigningMethodHMAC
	parser   *gojwt.Parser
	newEmpty func() T
	now      func() time.Time
}

// NewService creates a service. newEmpty returns a zero T for parsing.
func NewService[T gojwt.Claims](cfg *Config, newEmpty func() T) (*Service[T], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service[T]{cfg: *cfg, method: hmacMethods[cfg.Method], newEmpty: newEmpty, now: time.Now}

	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.method.Alg()}),
		gojwt.WithTimeFunc(func() time.Time { return s.now() }),
		gojwt.WithExpirationRequired(),
		gojwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(cfg.Issuer))
	}
	if len(cfg.Audience) > 0 {
		opts = append(opts, gojwt.WithAudience(cfg.Audience[0]))
	}
	s.parser = gojwt.NewParser(opts...)
	return s, nil
}

// Generate signs claims as-is.
func (s *Service[T]) Generate(claims T) (string, error) {
	signed, err := gojwt.NewWithClaims(s.method, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// GenerateAccess stamps claims that implement Stamper, then signs them.
// ttl overrides AccessTokenTTL when positive.
func (s *Service[T]) GenerateAccess(claims T, ttl ...time.Duration) (string, error) {
	lifetime := s.cfg.AccessTokenTTL
	if len(ttl) > 0 && ttl[0] > 0 {
		lifetime = ttl[0]
	}
	if st, ok := any(claims).(Stamper); ok {
		st.SetDefaults(s.now(), lifetime, s.cfg.Issuer, s.cfg.Audience)
	}
	return s.Generate(claims)
}

// Parse verifies the signature, expiry and, when configured, issuer and
// audience, and returns the claims.
func (s *Service[T]) Parse(token string) (T, error) {
	var zero T
	parsed, err := s.parser.ParseWithClaims(token, s.newEmpty(), func(*gojwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return zero, fmt.Errorf("jwt: parse token: %w", err)
	}
	claims, ok := parsed.Claims.(T)
	if !ok || !parsed.Valid {
		return zero, errors.New("jwt: invalid token")
	}
	return claims, nil
}

// ValidatorFunc adapts Parse to auth.ValidatorFunc.
func (s *Service[T]) ValidatorFunc() func(string) (any, error) {
	return func(token string) (any, error) { return s.Parse(token) }
}
