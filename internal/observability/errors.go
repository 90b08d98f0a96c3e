package observability

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"educalc/internal/handlers"
)

// RecordError centralises error handling across all domains: records the error
// on the span, increments the provided error counter, logs with trace context,
// and writes a JSON error HTTP response. expression may be empty for errors
// that are not tied to a user expression.
func RecordError(ctx context.Context, span trace.Span, logger *zap.Logger, counter metric.Int64Counter, mode, label string, err error, status int, expression string, w http.ResponseWriter) {
	span.RecordError(err)
	span.SetStatus(codes.Error, label)

	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))

	logger.Error(label,
		zap.String("mode", mode),
		zap.String("expression", expression),
		zap.Error(err),
		zap.String("request_id", RequestIDFromContext(ctx)),
	)

	handlers.WriteError(w, status, label, err.Error(), expression)
}
