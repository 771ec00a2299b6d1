package provider_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/kbukum/speakerkit/logger"
	"github.com/kbukum/speakerkit/observability"
	"github.com/kbukum/speakerkit/provider"
	"go.opentelemetry.io/otel/metric/noop"
)

type echoProvider struct{ name string }

func (p *echoProvider) Name() string                       { return p.name }
func (p *echoProvider) IsAvailable(_ context.Context) bool { return true }
func (p *echoProvider) Execute(_ context.Context, in string) (string, error) {
	return "echo:" + in, nil
}

type failingProvider struct{ err error }

func (p *failingProvider) Name() string                       { return "fail" }
func (p *failingProvider) IsAvailable(_ context.Context) bool { return true }
func (p *failingProvider) Execute(_ context.Context, _ string) (string, error) {
	return "", p.err
}

func TestChain_Empty(t *testing.T) {
	wrapped := provider.Chain[string, string]()(&echoProvider{name: "pyannote"})
	if wrapped.Name() != "pyannote" {
		t.Fatalf("expected 'pyannote', got %q", wrapped.Name())
	}
	result, err := wrapped.Execute(context.Background(), "hello")
	if err != nil || result != "echo:hello" {
		t.Fatalf("expected echo:hello, got %q, err %v", result, err)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(tag string) provider.Middleware[string, string] {
		return func(inner provider.RequestResponse[string, string]) provider.RequestResponse[string, string] {
			return provider.Func(inner.Name(), func(ctx context.Context, in string) (string, error) {
				order = append(order, tag+":before")
				out, err := inner.Execute(ctx, in)
				order = append(order, tag+":after")
				return out, err
			})
		}
	}

	wrapped := provider.Chain(mw("A"), mw("B"), mw("C"))(&echoProvider{name: "x"})
	if _, err := wrapped.Execute(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}

	want := "A:before B:before C:before C:after B:after A:after"
	if got := strings.Join(order, " "); got != want {
		t.Errorf("order = %q, want %q", got, want)
	}
}

func TestChain_SkipsNilMiddleware(t *testing.T) {
	wrapped := provider.Chain(
		provider.WithMetrics[string, string](nil),
	)(&echoProvider{name: "x"})
	if out, err := wrapped.Execute(context.Background(), "a"); err != nil || out != "echo:a" {
		t.Errorf("got %q, %v", out, err)
	}
}

func newBufferLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.NewWithWriter(&logger.Config{Level: "debug", Format: logger.FormatJSON}, "test", buf)
}

func TestWithLogging(t *testing.T) {
	tests := []struct {
		name      string
		p         provider.RequestResponse[string, string]
		wantLevel string
		wantError bool
	}{
		{"success logs at debug", &echoProvider{name: "whisper"}, "debug", false},
		{"failure logs at error", &failingProvider{err: errors.New("boom")}, "error", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			wrapped := provider.WithLogging[string, string](newBufferLogger(&buf))(tt.p)

			ctx := logger.ContextWithRequestID(context.Background(), "req-7")
			_, err := wrapped.Execute(ctx, "hello")
			if (err != nil) != tt.wantError {
				t.Fatalf("err = %v", err)
			}

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("decode log line %q: %v", buf.String(), err)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry[logger.FieldProvider] != tt.p.Name() {
				t.Errorf("provider field = %v", entry[logger.FieldProvider])
			}
			if entry[logger.FieldRequestID] != "req-7" {
				t.Errorf("request_id = %v", entry[logger.FieldRequestID])
			}
			if _, ok := entry[logger.FieldDuration]; !ok {
				t.Error("missing duration field")
			}
		})
	}
}

func TestWithMetricsAndTracing(t *testing.T) {
	metrics, err := observability.NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	for _, p := range []provider.RequestResponse[string, string]{
		&echoProvider{name: "wespeaker"},
		&failingProvider{err: errors.New("boom")},
	} {
		wrapped := provider.Chain(
			provider.WithLogging[string, string](logger.NewNop()),
			provider.WithMetrics[string, string](metrics),
			provider.WithTracing[string, string]("speakerd"),
		)(p)

		if wrapped.Name() != p.Name() {
			t.Errorf("Name() = %q, want %q", wrapped.Name(), p.Name())
		}
		if !wrapped.IsAvailable(context.Background()) {
			t.Error("IsAvailable should delegate")
		}
		out, err := wrapped.Execute(context.Background(), "hi")
		want, wantErr := p.Execute(context.Background(), "hi")
		if out != want || (err == nil) != (wantErr == nil) {
			t.Errorf("%s: got (%q, %v), want (%q, %v)", p.Name(), out, err, want, wantErr)
		}
	}
}
