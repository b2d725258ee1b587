package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("nba-props/internal/usecase")

const (
	attrPlayerID = attribute.Key("nba_props.player_id")
	attrUserID   = attribute.Key("nba_props.user_id")
)

// startUsecaseSpan opens a child span only when ctx already carries one, so
// background work such as the startup sync does not emit orphan roots.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if name == "" || !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
