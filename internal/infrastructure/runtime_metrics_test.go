package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestRuntimeCollectorSample(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	rc, err := NewRuntimeCollector(meter, time.Minute)
	require.NoError(t, err)

	stats := rc.Sample(context.Background())
	assert.Greater(t, stats.Goroutines, 0)
	assert.Greater(t, stats.HeapBytes, uint64(0))
	assert.Greater(t, stats.SysBytes, stats.HeapBytes)
	assert.GreaterOrEqual(t, stats.Uptime, time.Duration(0))
	assert.False(t, stats.SampledAt.IsZero())
}

func TestRuntimeCollectorStartStop(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	rc, err := NewRuntimeCollector(meter, time.Millisecond)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		rc.Start(context.Background())
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	rc.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestRuntimeCollectorStopsOnContextCancel(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	rc, err := NewRuntimeCollector(meter, time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rc.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop on cancellation")
	}
}
