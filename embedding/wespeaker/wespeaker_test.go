package wespeaker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/speakerkit/embedding"
	"github.com/kbukum/speakerkit/errors"
	"github.com/kbukum/speakerkit/transcript"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("RIFF....WAVE"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClient_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.FormValue("start"); got != "1.5" {
			t.Errorf("start = %q", got)
		}
		if got := r.FormValue("end"); got != "3" {
			t.Errorf("end = %q", got)
		}
		if _, hdr, err := r.FormFile("audio"); err != nil || hdr.Filename != "clip.wav" {
			t.Errorf("audio part missing: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, Dimension: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := c.Embed(context.Background(), embedding.EmbedRequest{
		AudioPath: writeAudio(t),
		Span:      &transcript.Span{Start: 1.5, End: 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v) != 3 || v[2] != 0.3 {
		t.Errorf("unexpected vector %v", v)
	}
}

func TestClient_EmbedErrors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		timeout  time.Duration
		wantCode errors.ErrorCode
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantCode: errors.ErrCodeUpstreamUnavailable,
		},
		{
			name: "wrong dimension",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"embedding":[1,2]}`))
			},
			wantCode: errors.ErrCodeValidation,
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
			wantCode: errors.ErrCodeValidation,
		},
		{
			name: "producer reported error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
			},
			wantCode: errors.ErrCodeUpstreamUnavailable,
		},
		{
			name: "slow producer",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
			timeout:  20 * time.Millisecond,
			wantCode: errors.ErrCodeUpstreamTimeout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c, err := New(Config{BaseURL: srv.URL, Dimension: 3, Timeout: tt.timeout})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			_, err = c.Embed(context.Background(), embedding.EmbedRequest{AudioPath: writeAudio(t)})
			if !errors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestClient_InvalidSpanIsRejectedLocally(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	_, err := c.Embed(context.Background(), embedding.EmbedRequest{
		AudioPath: "unused.wav",
		Span:      &transcript.Span{Start: 2, End: 1},
	})
	if !errors.HasCode(err, errors.ErrCodeValidation) {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
	if called {
		t.Error("producer should not be called")
	}
}

func TestClient_IsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	c, _ := New(Config{BaseURL: srv.URL})
	if !c.IsAvailable(context.Background()) {
		t.Error("expected available")
	}
	srv.Close()
	if c.IsAvailable(context.Background()) {
		t.Error("expected unavailable after shutdown")
	}
}
