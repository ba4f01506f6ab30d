// Package tracing wires OpenTelemetry spans around the Search Orchestrator
// and Ingest Pipeline's named steps, the one place request-scoped tracing
// earns its keep (SPEC_FULL's DOMAIN STACK note on the teacher's otel/
// otel-sdk/otlptrace/otlptracegrpc/stdouttrace stack, otherwise unused by
// the retrieved teacher slice).
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/driftmind/driftmind"

// Tracer returns the package-wide tracer, resolved lazily from the global
// TracerProvider so Init can be called after packages that hold a reference
// to this tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a span named "<component>.<step>" and returns the
// derived context plus a function that ends the span, recording err (if
// non-nil) as the span's status.
func StartSpan(ctx context.Context, component, step string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	ctx, span := Tracer().Start(ctx, component+"."+step, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
