package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is one sample of process health, taken alongside the OTel
// instrument recording so handlers can expose the same numbers.
type RuntimeStats struct {
	Goroutines  int
	HeapBytes   uint64
	SysBytes    uint64
	GCCount     uint32
	LastGCPause time.Duration
	Uptime      time.Duration
	SampledAt   time.Time
}

// RuntimeCollector samples Go runtime health on a ticker and records it next
// to the benchmark business metrics. One collector runs per process, started
// and stopped by the application lifecycle.
type RuntimeCollector struct {
	goroutines metric.Int64Gauge
	heapBytes  metric.Int64Gauge
	sysBytes   metric.Int64Gauge
	gcPause    metric.Float64Histogram
	uptime     metric.Float64Gauge

	startTime time.Time
	interval  time.Duration
	stopCh    chan struct{}
}

// NewRuntimeCollector registers the runtime instruments on the meter.
func NewRuntimeCollector(meter metric.Meter, interval time.Duration) (*RuntimeCollector, error) {
	goroutines, err := meter.Int64Gauge(
		"runtime_goroutines",
		metric.WithDescription("Number of live goroutines"),
	)
	if err != nil {
		return nil, fmt.Errorf("register runtime instruments: %w", err)
	}

	heapBytes, err := meter.Int64Gauge(
		"runtime_heap_alloc_bytes",
		metric.WithDescription("Heap bytes allocated and still in use"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("register runtime instruments: %w", err)
	}

	sysBytes, err := meter.Int64Gauge(
		"runtime_sys_bytes",
		metric.WithDescription("Total bytes obtained from the OS"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("register runtime instruments: %w", err)
	}

	gcPause, err := meter.Float64Histogram(
		"runtime_gc_pause_seconds",
		metric.WithDescription("Most recent garbage collection pause"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("register runtime instruments: %w", err)
	}

	uptime, err := meter.Float64Gauge(
		"process_uptime_seconds",
		metric.WithDescription("Seconds since the server started"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("register runtime instruments: %w", err)
	}

	return &RuntimeCollector{
		goroutines: goroutines,
		heapBytes:  heapBytes,
		sysBytes:   sysBytes,
		gcPause:    gcPause,
		uptime:     uptime,
		startTime:  time.Now(),
		interval:   interval,
		stopCh:     make(chan struct{}),
	}, nil
}

// Sample reads the runtime, records every instrument, and returns the stats.
func (rc *RuntimeCollector) Sample(ctx context.Context) RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := RuntimeStats{
		Goroutines: runtime.NumGoroutine(),
		HeapBytes:  mem.HeapAlloc,
		SysBytes:   mem.Sys,
		GCCount:    mem.NumGC,
		Uptime:     time.Since(rc.startTime),
		SampledAt:  time.Now(),
	}
	if mem.NumGC > 0 {
		stats.LastGCPause = time.Duration(mem.PauseNs[(mem.NumGC+255)%256])
	}

	rc.goroutines.Record(ctx, int64(stats.Goroutines))
	rc.heapBytes.Record(ctx, int64(stats.HeapBytes))
	rc.sysBytes.Record(ctx, int64(stats.SysBytes))
	rc.uptime.Record(ctx, stats.Uptime.Seconds())
	if stats.LastGCPause > 0 {
		rc.gcPause.Record(ctx, stats.LastGCPause.Seconds())
	}
	return stats
}

// Start samples immediately and then on every tick until Stop or context
// cancellation. Blocking; run it on its own goroutine.
func (rc *RuntimeCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(rc.interval)
	defer ticker.Stop()

	rc.Sample(ctx)
	for {
		select {
		case <-ticker.C:
			rc.Sample(ctx)
		case <-rc.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the sampling loop.
func (rc *RuntimeCollector) Stop() {
	close(rc.stopCh)
}
