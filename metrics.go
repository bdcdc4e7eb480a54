package pakgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    pakCounter     prometheus.Counter
//	    queryHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordPak(duration time.Duration, err error) {
//	    p.pakCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordPak is called after each pack operation.
	// duration is the total time taken, err is nil if successful.
	RecordPak(duration time.Duration, err error)

	// RecordFinalize is called after each finalize operation.
	// size is the artifact size in bytes (0 on failure).
	RecordFinalize(duration time.Duration, size int64, err error)

	// RecordQuery is called after each query evaluation.
	// results is the number of pointers returned.
	RecordQuery(duration time.Duration, results int, err error)

	// RecordGet is called after each record retrieval.
	RecordGet(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPak(time.Duration, error)             {}
func (NoopMetricsCollector) RecordFinalize(time.Duration, int64, error) {}
func (NoopMetricsCollector) RecordQuery(time.Duration, int, error)      {}
func (NoopMetricsCollector) RecordGet(time.Duration, error)             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PakCount        atomic.Int64
	PakErrors       atomic.Int64
	PakTotalNanos   atomic.Int64
	FinalizeCount   atomic.Int64
	FinalizeErrors  atomic.Int64
	FinalizeBytes   atomic.Int64
	QueryCount      atomic.Int64
	QueryErrors     atomic.Int64
	QueryTotalNanos atomic.Int64
	QueryResults    atomic.Int64
	GetCount        atomic.Int64
	GetErrors       atomic.Int64
	GetTotalNanos   atomic.Int64
}

// RecordPak implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPak(duration time.Duration, err error) {
	b.PakCount.Add(1)
	b.PakTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PakErrors.Add(1)
	}
}

// RecordFinalize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFinalize(duration time.Duration, size int64, err error) {
	b.FinalizeCount.Add(1)
	b.FinalizeBytes.Add(size)
	if err != nil {
		b.FinalizeErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(duration time.Duration, results int, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	b.QueryResults.Add(int64(results))
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(duration time.Duration, err error) {
	b.GetCount.Add(1)
	b.GetTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GetErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PakCount:       b.PakCount.Load(),
		PakErrors:      b.PakErrors.Load(),
		PakAvgNanos:    b.getAvgPakNanos(),
		FinalizeCount:  b.FinalizeCount.Load(),
		FinalizeErrors: b.FinalizeErrors.Load(),
		FinalizeBytes:  b.FinalizeBytes.Load(),
		QueryCount:     b.QueryCount.Load(),
		QueryErrors:    b.QueryErrors.Load(),
		QueryAvgNanos:  b.getAvgQueryNanos(),
		QueryResults:   b.QueryResults.Load(),
		GetCount:       b.GetCount.Load(),
		GetErrors:      b.GetErrors.Load(),
		GetAvgNanos:    b.getAvgGetNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgPakNanos() int64 {
	count := b.PakCount.Load()
	if count == 0 {
		return 0
	}
	return b.PakTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgQueryNanos() int64 {
	count := b.QueryCount.Load()
	if count == 0 {
		return 0
	}
	return b.QueryTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgGetNanos() int64 {
	count := b.GetCount.Load()
	if count == 0 {
		return 0
	}
	return b.GetTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PakCount       int64
	PakErrors      int64
	PakAvgNanos    int64
	FinalizeCount  int64
	FinalizeErrors int64
	FinalizeBytes  int64
	QueryCount     int64
	QueryErrors    int64
	QueryAvgNanos  int64
	QueryResults   int64
	GetCount       int64
	GetErrors      int64
	GetAvgNanos    int64
}
