// Package tracing starts spans for service operations. With no SDK installed
// the global otel provider is a no-op, so callers never need to check.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentation = "rentaldesk"

func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentation).Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records *errp on the span, if any, and ends it. Use as
// defer tracing.End(span, &err).
func End(span trace.Span, errp *error) {
	if errp != nil && *errp != nil {
		span.RecordError(*errp)
		span.SetStatus(codes.Error, (*errp).Error())
	}
	span.End()
}

func Property(id int64) attribute.KeyValue {
	return attribute.Int64("rentaldesk.property_id", id)
}

func Booking(id int64) attribute.KeyValue {
	return attribute.Int64("rentaldesk.booking_id", id)
}

func Movement(id int64) attribute.KeyValue {
	return attribute.Int64("rentaldesk.movement_id", id)
}
