package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v", cfg.SampleRate)
	}
	if cfg.MetricInterval != 15*time.Second {
		t.Errorf("MetricInterval = %v", cfg.MetricInterval)
	}
}

func TestConfig_Validate(t *testing.T) {
	for _, rate := range []float64{-0.1, 1.5} {
		cfg := Config{SampleRate: rate}
		if err := cfg.Validate(); err == nil {
			t.Errorf("sample rate %v should be rejected", rate)
		}
	}
}

func TestSetup_DisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), "speakerd", "dev", Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestSetup_Enabled(t *testing.T) {
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	}()

	shutdown, err := Setup(context.Background(), "speakerd", "dev", Config{
		Enabled:  true,
		Endpoint: "localhost:4318",
		Insecure: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}

func TestNewResource(t *testing.T) {
	res, err := newResource(context.Background(), "speakerd", "1.2.3", "test")
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	want := map[string]string{
		"service.name":           "speakerd",
		"service.version":        "1.2.3",
		"environment":            "test",
		"telemetry.sdk.language": "go",
	}
	got := make(map[string]string)
	for _, kv := range res.Attributes() {
		got[string(kv.Key)] = kv.Value.Emit()
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestNewMetrics(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordRequestStart(ctx)
	metrics.RecordRequestEnd(ctx, "POST /identify", 200, 120*time.Millisecond)
	metrics.RecordProducerCall(ctx, "pyannote", "ok", time.Second)
	metrics.RecordIdentification(ctx, true, 0.83)
	metrics.RecordIdentification(ctx, false, 0)
	metrics.RecordError(ctx, "UPSTREAM_TIMEOUT", "whisper")
}

func TestStartSpan_NoProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), SpanProducerCall)
	defer span.End()

	SetSpanAttribute(ctx, AttrProducer, "whisper")
	SetSpanError(ctx, errors.New("ignored"))
}

func TestSpanHelpers_Recording(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), SpanProducerCall)
	SetSpanAttribute(ctx, AttrProducer, "pyannote")
	SetSpanAttribute(ctx, "segments.count", 12)
	SetSpanAttribute(ctx, "score", 0.9)
	SetSpanAttribute(ctx, "exclusive", true)
	SetSpanAttribute(ctx, "dropped", struct{}{})
	SetSpanError(ctx, errors.New("upstream timeout"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	got := spans[0]
	if got.Name != SpanProducerCall {
		t.Errorf("span name = %q", got.Name)
	}
	if len(got.Attributes) != 4 {
		t.Errorf("expected 4 attributes, got %v", got.Attributes)
	}
	if got.Status.Code != codes.Error {
		t.Errorf("status = %v, want error", got.Status.Code)
	}
	if len(got.Events) != 1 {
		t.Errorf("expected recorded error event, got %d events", len(got.Events))
	}
}
