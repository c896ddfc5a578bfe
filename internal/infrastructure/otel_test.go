package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"surveybench/pkg/contracts/domain"
)

func testOTelConfig() *OTelConfig {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	return cfg
}

func TestOTelInitialization(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	providers, err := InitializeOTel(testOTelConfig(), logger)
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelTracingDisabledByDefault(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	providers, err := InitializeOTel(nil, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.MeterProvider)
}

func TestTraceCorrelation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	providers, err := InitializeOTel(testOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx := context.Background()

	tracer := otel.Tracer("test")
	ctx, span := tracer.Start(ctx, "test-operation")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	ctx = WithTraceID(ctx, traceID)
	assert.Equal(t, traceID, GetTraceID(ctx))
}

func TestBusinessMetrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	providers, err := InitializeOTel(testOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	assert.NotNil(t, metrics.HTTPRequestsTotal)
	assert.NotNil(t, metrics.HTTPRequestDuration)
	assert.NotNil(t, metrics.HTTPActiveRequests)
	assert.NotNil(t, metrics.CacheHits)
	assert.NotNil(t, metrics.CacheMisses)
	assert.NotNil(t, metrics.DatasetLoads)
	assert.NotNil(t, metrics.MatchAttempts)
	assert.NotNil(t, metrics.PercentileLookups)

	ctx := context.Background()
	// Recording must not panic, nil receiver included.
	metrics.RecordCacheHit(ctx)
	metrics.RecordCacheMiss(ctx)
	metrics.RecordDatasetLoad(ctx, 1200, 80*time.Millisecond)
	metrics.RecordMatch(ctx, domain.MatchFuzzy, true)
	metrics.RecordMatch(ctx, "", false)
	metrics.RecordPercentileLookup(ctx, domain.MetricTCC, true)

	var nilMetrics *BusinessMetrics
	nilMetrics.RecordCacheHit(ctx)
	nilMetrics.RecordMatch(ctx, domain.MatchExact, true)
}

func TestSpanHelpers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	providers, err := InitializeOTel(testOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx := context.Background()
	tracer := otel.Tracer("test")
	ctx, span := tracer.Start(ctx, "test-span")
	defer span.End()

	SetSpanAttributes(ctx, map[string]interface{}{
		"string_attr": "value",
		"int_attr":    42,
		"float_attr":  1.5,
		"bool_attr":   true,
	})
	AddSpanEvent(ctx, "test-event", map[string]interface{}{"detail": "x"})
	RecordError(ctx, assert.AnError)

	// Helpers are no-ops outside a recording span.
	SetSpanAttributes(context.Background(), map[string]interface{}{"k": "v"})
	AddSpanEvent(context.Background(), "e", nil)
	RecordError(context.Background(), assert.AnError)
}
