package tracer

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "creditboard/pkg/domain-errors"
)

// InstrumentationName names the tracer taken from the provider.
const InstrumentationName = "creditboard/dashboard"

// AttrErrorCode carries the domain error code of a failed span.
const AttrErrorCode = "error.code"

// OTelTracer forwards dashboard spans to OpenTelemetry.
type OTelTracer struct {
	tracer trace.Tracer
}

type OTelOption func(*OTelTracer)

// WithProvider takes the tracer from p instead of the global provider.
func WithProvider(p trace.TracerProvider) OTelOption {
	return func(o *OTelTracer) {
		o.tracer = p.Tracer(InstrumentationName)
	}
}

func NewOTel(opts ...OTelOption) *OTelTracer {
	t := &OTelTracer{}
	for _, opt := range opts {
		opt(t)
	}
	if t.tracer == nil {
		t.tracer = otel.Tracer(InstrumentationName)
	}
	return t
}

func (t *OTelTracer) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(spanKind(name)),
		trace.WithAttributes(convert(attrs)...),
	)
	return ctx, &otelSpan{span: span}
}

// Backend calls are client spans; everything else runs inside the process.
func spanKind(name string) trace.SpanKind {
	switch name {
	case SpanBackendCustomers, SpanBackendDashboard:
		return trace.SpanKindClient
	default:
		return trace.SpanKindInternal
	}
}

type otelSpan struct {
	span trace.Span
}

// End marks the span failed for real errors only. A load abandoned because
// the operator moved on is recorded as an event and keeps an unset status.
func (s *otelSpan) End(err error) {
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		s.span.AddEvent("canceled")
	default:
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		var de *dErrors.Error
		if errors.As(err, &de) {
			s.span.SetAttributes(attribute.String(AttrErrorCode, string(de.Code)))
		}
	}
	s.span.End()
}

func (s *otelSpan) SetAttributes(attrs ...Attribute) {
	s.span.SetAttributes(convert(attrs)...)
}

func (s *otelSpan) AddEvent(name string, attrs ...Attribute) {
	s.span.AddEvent(name, trace.WithAttributes(convert(attrs)...))
}

func convert(attrs []Attribute) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		switch v := a.Value.(type) {
		case string:
			out = append(out, attribute.String(a.Key, v))
		case bool:
			out = append(out, attribute.Bool(a.Key, v))
		case int64:
			out = append(out, attribute.Int64(a.Key, v))
		case float64:
			out = append(out, attribute.Float64(a.Key, v))
		case fmt.Stringer:
			out = append(out, attribute.Stringer(a.Key, v))
		}
	}
	return out
}

var (
	_ Tracer = (*OTelTracer)(nil)
	_ Span   = (*otelSpan)(nil)
)
