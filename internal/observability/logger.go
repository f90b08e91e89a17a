package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TraceFields returns trace_id and span_id for the span in ctx, or nil when
// ctx carries no valid span.
func TraceFields(ctx context.Context) []zap.Field {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.IsValid() {
		return nil
	}

	return []zap.Field{
		zap.Stringer("trace_id", spanContext.TraceID()),
		zap.Stringer("span_id", spanContext.SpanID()),
	}
}

// WithContext tags logger with the trace of ctx. Without a valid span the
// logger is returned unchanged.
func WithContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	fields := TraceFields(ctx)
	if fields == nil {
		return logger
	}
	return logger.With(fields...)
}
