package jwt

import (
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Scopes granted to API tokens.
const (
	ScopeRead  = "speakers:read"
	ScopeWrite = "speakers:write"
)

// Claims is the token body issued to API clients.
type Claims struct {
	gojwt.RegisteredClaims
	Scopes []string `json:"scopes,omitempty"`
}

// SetDefaults fills iat, exp, iss and aud when they are unset.
func (c *Claims) SetDefaults(now time.Time, ttl time.Duration, issuer string, audience []string) {
	if c.IssuedAt == nil {
		c.IssuedAt = gojwt.NewNumericDate(now)
	}
	if c.ExpiresAt == nil && ttl > 0 {
		c.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	}
	if c.Issuer == "" {
		c.Issuer = issuer
	}
	if len(c.Audience) == 0 && len(audience) > 0 {
		c.Audience = audience
	}
}

// HasScope reports whether a granted scope covers scope. A granted "*"
// covers everything; "speakers:*" covers every action on speakers and
// "*:read" every read.
func (c *Claims) HasScope(scope string) bool {
	for _, g := range c.Scopes {
		if scopeCovers(g, scope) {
			return true
		}
	}
	return false
}

func scopeCovers(granted, want string) bool {
	if granted == want || granted == "*" || granted == "*:*" {
		return true
	}
	gRes, gAct, gOK := strings.Cut(granted, ":")
	wRes, wAct, wOK := strings.Cut(want, ":")
	if !gOK || !wOK {
		return false
	}
	return (gRes == "*" || gRes == wRes) && (gAct == "*" || gAct == wAct)
}
