// Package observability wires OpenTelemetry tracing and metrics for
// speakerd.
//
// Setup installs OTLP/HTTP trace and metric exporters when enabled and
// returns a shutdown function. When disabled the global no-op providers stay
// in place, so StartSpan and the Metrics instruments are always safe to call.
//
//	shutdown, err := observability.Setup(ctx, "speakerd", version, cfg)
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "producer.pyannote")
//	defer span.End()
//
// NewMetrics builds the request, producer and identification instruments
// recorded by the server middleware and the provider chain.
package observability
