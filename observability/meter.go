package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the speakerd instruments.
type Metrics struct {
	requestTotal     metric.Int64Counter
	requestDuration  metric.Float64Histogram
	requestActive    metric.Int64UpDownCounter
	producerTotal    metric.Int64Counter
	producerDuration metric.Float64Histogram
	identifyTotal    metric.Int64Counter
	identifyScore    metric.Float64Histogram
	errorTotal       metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.requestTotal, err = meter.Int64Counter("speakerd.request.total",
		metric.WithDescription("HTTP requests served")); err != nil {
		return nil, fmt.Errorf("creating speakerd.request.total counter: %w", err)
	}
	if m.requestDuration, err = meter.Float64Histogram("speakerd.request.duration",
		metric.WithDescription("HTTP request duration"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating speakerd.request.duration histogram: %w", err)
	}
	if m.requestActive, err = meter.Int64UpDownCounter("speakerd.request.active",
		metric.WithDescription("HTTP requests in flight")); err != nil {
		return nil, fmt.Errorf("creating speakerd.request.active counter: %w", err)
	}
	if m.producerTotal, err = meter.Int64Counter("speakerd.producer.calls",
		metric.WithDescription("Calls to diarization, transcription and embedding producers")); err != nil {
		return nil, fmt.Errorf("creating speakerd.producer.calls counter: %w", err)
	}
	if m.producerDuration, err = meter.Float64Histogram("speakerd.producer.duration",
		metric.WithDescription("Producer call duration"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating speakerd.producer.duration histogram: %w", err)
	}
	if m.identifyTotal, err = meter.Int64Counter("speakerd.identify.total",
		metric.WithDescription("Identification votes by outcome")); err != nil {
		return nil, fmt.Errorf("creating speakerd.identify.total counter: %w", err)
	}
	if m.identifyScore, err = meter.Float64Histogram("speakerd.identify.score",
		metric.WithDescription("Mean similarity of winning identities")); err != nil {
		return nil, fmt.Errorf("creating speakerd.identify.score histogram: %w", err)
	}
	if m.errorTotal, err = meter.Int64Counter("speakerd.error.total",
		metric.WithDescription("Errors by code and component")); err != nil {
		return nil, fmt.Errorf("creating speakerd.error.total counter: %w", err)
	}
	return &m, nil
}

// RecordRequestStart increments the in-flight request count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd records a completed HTTP request.
func (m *Metrics) RecordRequestEnd(ctx context.Context, route string, status int, duration time.Duration) {
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.Int("status", status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("route", route),
	))
}

// RecordProducerCall records one call to an external producer.
func (m *Metrics) RecordProducerCall(ctx context.Context, producer, status string, duration time.Duration) {
	m.producerTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("producer", producer),
		attribute.String("status", status),
	))
	m.producerDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("producer", producer),
	))
}

// RecordIdentification records a vote outcome. score is ignored when no
// identity matched.
func (m *Metrics) RecordIdentification(ctx context.Context, matched bool, score float64) {
	outcome := "no_match"
	if matched {
		outcome = "match"
		m.identifyScore.Record(ctx, score)
	}
	m.identifyTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordError records an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}
