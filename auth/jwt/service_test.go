package jwt

import (
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T, cfg Config) *Service[*Claims] {
	t.Helper()
	if cfg.Secret == "" {
		cfg.Secret = testSecret
	}
	svc, err := NewService(&cfg, func() *Claims { return &Claims{} })
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestGenerateAccess_RoundTrip(t *testing.T) {
	svc := newTestService(t, Config{Issuer: "speakerkit", Audience: []string{"api"}})
	now := time.Unix(1_700_000_000, 0)
	svc.now = func() time.Time { return now }

	token, err := svc.GenerateAccess(&Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "ingest"},
		Scopes:           []string{ScopeRead},
	})
	if err != nil {
		t.Fatalf("GenerateAccess: %v", err)
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "ingest" || claims.Issuer != "speakerkit" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if !claims.ExpiresAt.Time.Equal(now.Add(15 * time.Minute)) {
		t.Errorf("exp = %v", claims.ExpiresAt.Time)
	}
	if !claims.HasScope(ScopeRead) || claims.HasScope(ScopeWrite) {
		t.Errorf("unexpected scopes %v", claims.Scopes)
	}
}

func TestParse_Rejects(t *testing.T) {
	svc := newTestService(t, Config{Issuer: "speakerkit"})
	now := time.Unix(1_700_000_000, 0)
	svc.now = func() time.Time { return now }

	other := newTestService(t, Config{Secret: strings.Repeat("x", 32), Issuer: "speakerkit"})
	other.now = svc.now
	forged, _ := other.GenerateAccess(&Claims{})

	foreign := newTestService(t, Config{Issuer: "someone-else"})
	foreign.now = svc.now
	wrongIssuer, _ := foreign.GenerateAccess(&Claims{})

	expired, _ := svc.GenerateAccess(&Claims{}, time.Second)

	noExp, _ := svc.Generate(&Claims{RegisteredClaims: gojwt.RegisteredClaims{Issuer: "speakerkit"}})

	hs512 := newTestService(t, Config{Method: HS512, Issuer: "speakerkit"})
	hs512.now = svc.now
	wrongAlg, _ := hs512.GenerateAccess(&Claims{})

	unsigned, _ := gojwt.NewWithClaims(gojwt.SigningMethodNone, &Claims{}).SignedString(gojwt.UnsafeAllowNoneSignatureType)

	now = now.Add(time.Minute)

	tests := map[string]string{
		"wrong secret": forged,
		"wrong issuer": wrongIssuer,
		"expired":      expired,
		"no expiry":    noExp,
		"wrong method": wrongAlg,
		"alg none":     unsigned,
		"garbage":      "not.a.token",
		"empty":        "",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Parse(token); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestParse_Leeway(t *testing.T) {
	svc := newTestService(t, Config{Leeway: time.Minute})
	now := time.Unix(1_700_000_000, 0)
	svc.now = func() time.Time { return now }

	token, _ := svc.GenerateAccess(&Claims{}, time.Second)
	now = now.Add(30 * time.Second)
	if _, err := svc.Parse(token); err != nil {
		t.Errorf("expected token within leeway to pass: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"short secret", Config{Secret: "short"}},
		{"rsa method", Config{Secret: testSecret, Method: "RS256"}},
		{"negative ttl", Config{Secret: testSecret, AccessTokenTTL: -time.Second}},
		{"negative leeway", Config{Secret: testSecret, Leeway: -time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if _, err := NewService(&cfg, func() *Claims { return &Claims{} }); err == nil {
				t.Error("expected config error")
			}
		})
	}
}

func TestClaims_HasScope(t *testing.T) {
	tests := []struct {
		granted []string
		want    string
		ok      bool
	}{
		{[]string{ScopeRead}, ScopeRead, true},
		{[]string{ScopeRead}, ScopeWrite, false},
		{[]string{"speakers:*"}, ScopeWrite, true},
		{[]string{"*:read"}, ScopeRead, true},
		{[]string{"*:read"}, ScopeWrite, false},
		{[]string{"*"}, ScopeWrite, true},
		{[]string{"speakers"}, ScopeRead, false},
		{[]string{"stats:*", ScopeRead}, ScopeRead, true},
		{nil, ScopeRead, false},
	}
	for _, tt := range tests {
		c := &Claims{Scopes: tt.granted}
		if got := c.HasScope(tt.want); got != tt.ok {
			t.Errorf("%v.HasScope(%q) = %v, want %v", tt.granted, tt.want, got, tt.ok)
		}
	}
}
