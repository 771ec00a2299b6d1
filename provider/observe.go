package provider

import (
	"context"
	"time"

	"github.com/kbukum/speakerkit/errors"
	"github.com/kbukum/speakerkit/logger"
	"github.com/kbukum/speakerkit/observability"
)

// WithLogging logs every call with its duration: failures at error level,
// successes at debug. The request id travels in ctx.
func WithLogging[I, O any](log *logger.Logger) Middleware[I, O] {
	return Around(func(ctx context.Context, name string, input I, next Next[I, O]) (O, error) {
		start := time.Now()
		out, err := next(ctx, input)

		fields := map[string]interface{}{
			logger.FieldProvider: name,
			logger.FieldDuration: time.Since(start).Milliseconds(),
		}
		l := log.WithContext(ctx)
		if err != nil {
			fields[logger.FieldError] = err.Error()
			l.Error("producer call failed", fields)
		} else {
			l.Debug("producer call ok", fields)
		}
		return out, err
	})
}

// WithTracing runs every call in a producer.call span tagged with the
// service and producer names.
func WithTracing[I, O any](serviceName string) Middleware[I, O] {
	return Around(func(ctx context.Context, name string, input I, next Next[I, O]) (O, error) {
		ctx, span := observability.StartSpan(ctx, observability.SpanProducerCall)
		defer span.End()
		observability.SetSpanAttribute(ctx, observability.AttrServiceName, serviceName)
		observability.SetSpanAttribute(ctx, observability.AttrProducer, name)

		out, err := next(ctx, input)
		observability.SetSpanError(ctx, err)
		return out, err
	})
}

// WithMetrics counts calls, durations and error codes per producer. A nil
// metrics yields a nil middleware, which Chain skips.
func WithMetrics[I, O any](metrics *observability.Metrics) Middleware[I, O] {
	if metrics == nil {
		return nil
	}
	return Around(func(ctx context.Context, name string, input I, next Next[I, O]) (O, error) {
		start := time.Now()
		out, err := next(ctx, input)

		status := "ok"
		if err != nil {
			status = "error"
			code := errors.ErrCodeInternal
			if appErr, ok := errors.AsAppError(err); ok {
				code = appErr.Code
			}
			metrics.RecordError(ctx, string(code), name)
		}
		metrics.RecordProducerCall(ctx, name, status, time.Since(start))
		return out, err
	})
}
