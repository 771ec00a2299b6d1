package pyannote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/speakerkit/diarization"
	"github.com/kbukum/speakerkit/errors"
)

func audioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meeting.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/diarize" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.FormValue("min_speakers"); got != "1" {
			t.Errorf("min_speakers = %q", got)
		}
		if got := r.FormValue("max_speakers"); got != "3" {
			t.Errorf("max_speakers = %q", got)
		}
		if got := r.FormValue("num_speakers"); got != "" {
			t.Errorf("num_speakers should be omitted, got %q", got)
		}
		if got := r.FormValue("exclusive"); got != "true" {
			t.Errorf("exclusive = %q", got)
		}
		_, _ = w.Write([]byte(`{
			"segments": [
				{"speaker_id": "SPEAKER_00", "start_time": 0.0, "end_time": 3.2},
				{"speaker_id": "SPEAKER_01", "start_time": 3.2, "end_time": 7.5}
			],
			"audio_duration": 8.0,
			"exclusive": true
		}`))
	}))
	defer srv.Close()

	p, err := NewProvider(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Diarize(context.Background(), diarization.Request{
		AudioPath: audioFile(t),
		Hints:     diarization.Hints{MinSpeakers: 1, MaxSpeakers: 3},
		Exclusive: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Segments) != 2 || res.Segments[1].Speaker != "SPEAKER_01" || res.Segments[1].End != 7.5 {
		t.Errorf("unexpected segments %+v", res.Segments)
	}
	if res.NumSpeakers != 2 {
		t.Errorf("NumSpeakers = %d, want 2 (counted from labels)", res.NumSpeakers)
	}
	if !res.Exclusive || res.AudioDuration != 8.0 {
		t.Errorf("unexpected metadata %+v", res)
	}
}

func TestDiarize_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode errors.ErrorCode
	}{
		{"sidecar down", http.StatusServiceUnavailable, `{"detail":"loading"}`, errors.ErrCodeUpstreamUnavailable},
		{"error field", http.StatusOK, `{"error":"CUDA out of memory"}`, errors.ErrCodeUpstreamUnavailable},
		{"inverted segment", http.StatusOK, `{"segments":[{"speaker_id":"A","start_time":2,"end_time":1}]}`, errors.ErrCodeValidation},
		{"negative start", http.StatusOK, `{"segments":[{"speaker_id":"A","start_time":-1,"end_time":1}]}`, errors.ErrCodeValidation},
		{"not json", http.StatusOK, `<html>`, errors.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, _ := NewProvider(Config{BaseURL: srv.URL})
			_, err := p.Diarize(context.Background(), diarization.Request{AudioPath: audioFile(t)})
			if !errors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestDiarize_InvalidHintsNeverReachSidecar(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	p, _ := NewProvider(Config{BaseURL: srv.URL})
	_, err := p.Diarize(context.Background(), diarization.Request{
		AudioPath: "x.wav",
		Hints:     diarization.Hints{MinSpeakers: 4, MaxSpeakers: 2},
	})
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
	if called {
		t.Error("sidecar should not be called")
	}
}
