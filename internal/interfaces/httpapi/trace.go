package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const handlerSpanPrefix = "httpapi.Handler."

var apiTracer = otel.Tracer("nba-props/internal/interfaces/httpapi")

// startSpan opens a span for handler entry points only. Envelope helpers and
// requests the tracing middleware skipped (health checks) get a no-op span.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !strings.HasPrefix(name, handlerSpanPrefix) || !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return apiTracer.Start(ctx, name)
}
