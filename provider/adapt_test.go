package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type wireRequest struct{ Path string }

type wireResponse struct{ Body string }

type stubBackend struct {
	available bool
	calls     int
	fn        func(in wireRequest) (wireResponse, error)
}

func (s *stubBackend) Name() string                       { return "http" }
func (s *stubBackend) IsAvailable(_ context.Context) bool { return s.available }
func (s *stubBackend) Execute(_ context.Context, in wireRequest) (wireResponse, error) {
	s.calls++
	return s.fn(in)
}

func upperCodec() Codec[string, string, wireRequest, wireResponse] {
	return Codec[string, string, wireRequest, wireResponse]{
		Encode: func(_ context.Context, in string) (wireRequest, error) {
			if in == "" {
				return wireRequest{}, errors.New("empty input")
			}
			return wireRequest{Path: "/" + in}, nil
		},
		Decode: func(out wireResponse) (string, error) {
			if out.Body == "" {
				return "", errors.New("empty body")
			}
			return strings.ToUpper(out.Body), nil
		},
	}
}

func TestAdapt(t *testing.T) {
	errDown := errors.New("connection refused")
	errMapped := errors.New("upstream unavailable")

	tests := []struct {
		name      string
		input     string
		backend   func(wireRequest) (wireResponse, error)
		failure   func(error) error
		want      string
		wantErr   error
		wantCalls int
	}{
		{
			name:      "round trip",
			input:     "diarize",
			backend:   func(in wireRequest) (wireResponse, error) { return wireResponse{Body: "ok" + in.Path}, nil },
			want:      "OK/DIARIZE",
			wantCalls: 1,
		},
		{
			name:      "encode error skips backend",
			input:     "",
			backend:   func(wireRequest) (wireResponse, error) { return wireResponse{}, nil },
			wantCalls: 0,
		},
		{
			name:      "decode error",
			input:     "x",
			backend:   func(wireRequest) (wireResponse, error) { return wireResponse{}, nil },
			wantCalls: 1,
		},
		{
			name:      "backend error passes through",
			input:     "x",
			backend:   func(wireRequest) (wireResponse, error) { return wireResponse{}, errDown },
			wantErr:   errDown,
			wantCalls: 1,
		},
		{
			name:      "failure rewrites backend error",
			input:     "x",
			backend:   func(wireRequest) (wireResponse, error) { return wireResponse{}, errDown },
			failure:   func(err error) error { return errors.Join(errMapped, err) },
			wantErr:   errMapped,
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &stubBackend{available: true, fn: tt.backend}
			codec := upperCodec()
			codec.Failure = tt.failure
			adapted := Adapt[string, string, wireRequest, wireResponse]("pyannote", backend, codec)

			got, err := adapted.Execute(context.Background(), tt.input)
			if backend.calls != tt.wantCalls {
				t.Errorf("backend calls = %d, want %d", backend.calls, tt.wantCalls)
			}
			if tt.want != "" {
				if err != nil || got != tt.want {
					t.Fatalf("got (%q, %v), want %q", got, err, tt.want)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAdapt_NameAndAvailability(t *testing.T) {
	backend := &stubBackend{}
	adapted := Adapt[string, string, wireRequest, wireResponse]("wespeaker", backend, upperCodec())
	if adapted.Name() != "wespeaker" {
		t.Errorf("Name() = %q", adapted.Name())
	}
	if adapted.IsAvailable(context.Background()) {
		t.Error("availability should follow the backend")
	}
	backend.available = true
	if !adapted.IsAvailable(context.Background()) {
		t.Error("expected available")
	}
}
