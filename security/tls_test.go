package security

import (
	"crypto/tls"
	"strings"
	"testing"

	"github.com/kbukum/speakerkit/security/tlstest"
)

func TestTLSConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TLSConfig
		wantErr string
	}{
		{"nil", nil, ""},
		{"disabled ignores bad fields", &TLSConfig{CertFile: "c.pem", MinVersion: "1.0"}, ""},
		{"enabled defaults", &TLSConfig{Enabled: true}, ""},
		{"tls 1.3", &TLSConfig{Enabled: true, MinVersion: TLS13}, ""},
		{"cert without key", &TLSConfig{Enabled: true, CertFile: "c.pem"}, "set together"},
		{"key without cert", &TLSConfig{Enabled: true, KeyFile: "k.pem"}, "set together"},
		{"bad version", &TLSConfig{Enabled: true, MinVersion: "1.1"}, "min_version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestTLSConfig_ClientConfig_Disabled(t *testing.T) {
	for _, cfg := range []*TLSConfig{nil, {}, {CAFile: "/missing.pem"}} {
		got, err := cfg.ClientConfig()
		if err != nil || got != nil {
			t.Errorf("ClientConfig(%+v) = %v, %v; want nil, nil", cfg, got, err)
		}
	}
}

func TestTLSConfig_ClientConfig(t *testing.T) {
	certs := tlstest.Generate(t)

	cfg := &TLSConfig{
		Enabled:    true,
		CAFile:     certs.CAFile,
		CertFile:   certs.CertFile,
		KeyFile:    certs.KeyFile,
		ServerName: "qdrant.internal",
		MinVersion: TLS13,
	}
	got, err := cfg.ClientConfig()
	if err != nil {
		t.Fatalf("ClientConfig: %v", err)
	}
	if got.MinVersion != tls.VersionTLS13 {
		t.Errorf("MinVersion = %x", got.MinVersion)
	}
	if got.ServerName != "qdrant.internal" {
		t.Errorf("ServerName = %q", got.ServerName)
	}
	if got.RootCAs == nil {
		t.Error("RootCAs not set")
	}
	if len(got.Certificates) != 1 {
		t.Errorf("Certificates = %d, want 1", len(got.Certificates))
	}
	if got.InsecureSkipVerify {
		t.Error("InsecureSkipVerify should be off")
	}
}

func TestTLSConfig_ClientConfig_Errors(t *testing.T) {
	certs := tlstest.Generate(t)
	tests := []struct {
		name    string
		cfg     TLSConfig
		wantErr string
	}{
		{"missing CA", TLSConfig{Enabled: true, CAFile: "/nonexistent/ca.pem"}, "read ca_file"},
		{"unparsable CA", TLSConfig{Enabled: true, CAFile: tlstest.InvalidPEM(t)}, "no certificates"},
		{"missing key", TLSConfig{Enabled: true, CertFile: certs.CertFile, KeyFile: "/nonexistent/key.pem"}, "client certificate"},
		{"mismatched pair", TLSConfig{Enabled: true, CertFile: certs.CertFile}, "set together"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.ClientConfig()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
