// Package tracer provides a small tracing abstraction for dashboard calls.
//
// Callers depend on Tracer and Span only; NoopTracer serves tests and
// OTelTracer forwards to OpenTelemetry.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks it failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a span; the returned context carries it.
	//
	//   ctx, span := t.Start(ctx, tracer.SpanBackendDashboard,
	//       tracer.String(tracer.AttrCustomerID, id.String()),
	//   )
	//   defer span.End(err)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanBackendCustomers = "backend.customers"
	SpanBackendDashboard = "backend.dashboard"
	SpanDashboardLoad    = "dashboard.load"
	SpanCustomersRefresh = "dashboard.customers_refresh"
)

// Attribute keys.
const (
	AttrCustomerID    = "customer_id"
	AttrViewerType    = "viewer_type"
	AttrRequestSeq    = "request_seq"
	AttrHTTPStatus    = "http.status_code"
	AttrCustomerCount = "customer_count"
	AttrShared        = "singleflight.shared"
	AttrStale         = "stale"
)

// Event names.
const (
	EventStaleDiscarded = "response.discarded"
	EventBreakerOpen    = "breaker.open"
)
