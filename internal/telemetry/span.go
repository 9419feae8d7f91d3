package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span is a wrapper around an OpenTelemetry span.
type Span struct {
	span trace.Span
}

// StartSpan starts a new span named "<subsystem>.<name>".
func (r *Recorder) StartSpan(
	ctx context.Context,
	name string,
	attrs ...attribute.KeyValue,
) (context.Context, *Span) {
	ctx, span := r.tracer.Start(
		ctx,
		r.prefix+"."+name,
		trace.WithAttributes(attrs...),
	)

	return ctx, &Span{span}
}

// SetAttributes sets attributes on the span.
func (s *Span) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

// End ends the span, marking it as an error if err is non-nil.
func (s *Span) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}

	s.span.End()
}
