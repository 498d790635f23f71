package telemetry

import (
	"context"

	otrace "go.opentelemetry.io/otel/trace"
)

// OtelTracer adapts an OpenTelemetry tracer to the Tracer interface.
type OtelTracer struct {
	tracer otrace.Tracer
}

// NewOtelTracer wraps an OpenTelemetry tracer obtained from the caller's
// TracerProvider (typically configured via otel/sdk at bootstrap).
func NewOtelTracer(t otrace.Tracer) *OtelTracer {
	return &OtelTracer{tracer: t}
}

func (o *OtelTracer) Start(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := o.tracer.Start(ctx, name)
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span otrace.Span
}

func (s *otelSpan) End() { s.span.End() }

func (s *otelSpan) AddEvent(name string, kv ...any) {
	attrs := make([]otrace.EventOption, 0)
	_ = kv // kv is discarded; only the event name reaches the span. kv kept for Logger-parity callers
	s.span.AddEvent(name, attrs...)
}

func (s *otelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
}
