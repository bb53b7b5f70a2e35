package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps OpenTelemetry tracing with route-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span for one routed request.
	StartSpan(ctx context.Context, meta RouteMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a span with routing metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta RouteMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("route.target", meta.Target),
	}
	if meta.RequestID != "" {
		attrs = append(attrs, attribute.String("route.request_id", meta.RequestID))
	}
	if meta.Provider != "" {
		attrs = append(attrs, attribute.String("route.provider", meta.Provider))
	}
	if meta.Fallback {
		attrs = append(attrs, attribute.Bool("route.fallback", true))
	}

	return t.tracer.Start(ctx, meta.SpanName(), trace.WithAttributes(attrs...))
}

// EndSpan ends the span, marking its status from err.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// nopTracer starts no spans.
type nopTracer struct{}

// NopTracer returns a Tracer that records nothing.
func NopTracer() Tracer {
	return nopTracer{}
}

func (nopTracer) StartSpan(ctx context.Context, _ RouteMeta) (context.Context, trace.Span) {
	// SpanFromContext yields a no-op span when ctx carries none.
	return ctx, trace.SpanFromContext(ctx)
}

func (nopTracer) EndSpan(trace.Span, error) {}

// Ensure implementations satisfy Tracer
var (
	_ Tracer = (*tracerImpl)(nil)
	_ Tracer = nopTracer{}
)
