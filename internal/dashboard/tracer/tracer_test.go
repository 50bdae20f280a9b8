package tracer_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"creditboard/internal/dashboard/models"
	"creditboard/internal/dashboard/tracer"
	dErrors "creditboard/pkg/domain-errors"
)

func recorded(t *testing.T) (*tracer.OTelTracer, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tracer.NewOTel(tracer.WithProvider(tp)), rec
}

func attr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()

	newCtx, span := tracer.NewNoop().Start(ctx, tracer.SpanBackendDashboard,
		tracer.String(tracer.AttrCustomerID, "7"),
	)

	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)
	span.SetAttributes(tracer.Bool(tracer.AttrStale, true))
	span.AddEvent(tracer.EventStaleDiscarded)
	span.End(errors.New("boom"))
}

func TestOTelTracer(t *testing.T) {
	t.Run("backend calls are client spans with attributes", func(t *testing.T) {
		tr, rec := recorded(t)

		ctx, span := tr.Start(context.Background(), tracer.SpanBackendDashboard,
			tracer.String(tracer.AttrCustomerID, "7"),
			tracer.Attribute{Key: tracer.AttrViewerType, Value: models.ViewerMerchant},
			tracer.Duration("latency", 150*time.Millisecond),
		)
		span.SetAttributes(tracer.Int64(tracer.AttrHTTPStatus, 200))
		span.End(nil)

		assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
		ended := rec.Ended()
		require.Len(t, ended, 1)
		assert.Equal(t, trace.SpanKindClient, ended[0].SpanKind())
		assert.Equal(t, codes.Unset, ended[0].Status().Code)
		v, ok := attr(ended[0], tracer.AttrViewerType)
		require.True(t, ok, "stringers are recorded")
		assert.Equal(t, "merchant", v.AsString())
		v, ok = attr(ended[0], "latency")
		require.True(t, ok)
		assert.Equal(t, int64(150), v.AsInt64())
	})

	t.Run("failures carry the domain code", func(t *testing.T) {
		tr, rec := recorded(t)

		_, span := tr.Start(context.Background(), tracer.SpanDashboardLoad)
		span.End(dErrors.New(dErrors.CodeDashboardLoadFailed, "backend down"))

		ended := rec.Ended()
		require.Len(t, ended, 1)
		assert.Equal(t, trace.SpanKindInternal, ended[0].SpanKind())
		assert.Equal(t, codes.Error, ended[0].Status().Code)
		v, ok := attr(ended[0], tracer.AttrErrorCode)
		require.True(t, ok)
		assert.Equal(t, string(dErrors.CodeDashboardLoadFailed), v.AsString())
	})

	t.Run("canceled loads are not errors", func(t *testing.T) {
		tr, rec := recorded(t)

		_, span := tr.Start(context.Background(), tracer.SpanDashboardLoad)
		span.End(fmt.Errorf("fetch: %w", context.Canceled))

		ended := rec.Ended()
		require.Len(t, ended, 1)
		assert.Equal(t, codes.Unset, ended[0].Status().Code)
		require.Len(t, ended[0].Events(), 1)
		assert.Equal(t, "canceled", ended[0].Events()[0].Name)
	})
}

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := tracer.Setup(context.Background(), tracer.ExportConfig{ServiceName: "creditboard"})

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestAttributeConstructors(t *testing.T) {
	assert.Equal(t, tracer.Attribute{Key: "k", Value: "v"}, tracer.String("k", "v"))
	assert.Equal(t, true, tracer.Bool("b", true).Value)
	assert.Equal(t, int64(42), tracer.Int64("n", 42).Value)
	assert.Equal(t, int64(150), tracer.Duration("d", 150*time.Millisecond).Value)
}
