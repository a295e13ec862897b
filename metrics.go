package trajan

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
//	    queryCounter     prometheus.Counter
//	    computeHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordQuery(mode string, queries int, duration time.Duration, err error) {
//	    p.queryCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordQuery is called after each neighbor query operation.
	// mode names the query kind, queries is the number of query points,
	// duration is the total time taken, err is nil if successful.
	RecordQuery(mode string, queries int, duration time.Duration, err error)

	// RecordCompute is called after each analysis pass.
	// analysis names the computation, particles is the number of particles
	// analyzed, duration is the total time taken.
	RecordCompute(analysis string, particles int, duration time.Duration, err error)

	// RecordSnapshot is called after each snapshot encode or decode.
	RecordSnapshot(op string, duration time.Duration, err error)

	// RecordArchive is called after each archive transfer.
	// bytes is the transferred object size.
	RecordArchive(op string, bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordQuery(string, int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordCompute(string, int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordSnapshot(string, time.Duration, error)       {}
func (NoopMetricsCollector) RecordArchive(string, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	QueryCount        atomic.Int64
	QueryErrors       atomic.Int64
	QueryPoints       atomic.Int64
	QueryTotalNanos   atomic.Int64
	ComputeCount      atomic.Int64
	ComputeErrors     atomic.Int64
	ComputeTotalNanos atomic.Int64
	SnapshotCount     atomic.Int64
	SnapshotErrors    atomic.Int64
	ArchiveCount      atomic.Int64
	ArchiveErrors     atomic.Int64
	ArchiveBytes      atomic.Int64
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(mode string, queries int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryPoints.Add(int64(queries))
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordCompute implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompute(analysis string, particles int, duration time.Duration, err error) {
	b.ComputeCount.Add(1)
	b.ComputeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ComputeErrors.Add(1)
	}
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(op string, duration time.Duration, err error) {
	b.SnapshotCount.Add(1)
	if err != nil {
		b.SnapshotErrors.Add(1)
	}
}

// RecordArchive implements MetricsCollector.
func (b *BasicMetricsCollector) RecordArchive(op string, bytes int64, duration time.Duration, err error) {
	b.ArchiveCount.Add(1)
	b.ArchiveBytes.Add(bytes)
	if err != nil {
		b.ArchiveErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		QueryCount:      b.QueryCount.Load(),
		QueryErrors:     b.QueryErrors.Load(),
		QueryPoints:     b.QueryPoints.Load(),
		QueryAvgNanos:   b.getAvgQueryNanos(),
		ComputeCount:    b.ComputeCount.Load(),
		ComputeErrors:   b.ComputeErrors.Load(),
		ComputeAvgNanos: b.getAvgComputeNanos(),
		SnapshotCount:   b.SnapshotCount.Load(),
		SnapshotErrors:  b.SnapshotErrors.Load(),
		ArchiveCount:    b.ArchiveCount.Load(),
		ArchiveErrors:   b.ArchiveErrors.Load(),
		ArchiveBytes:    b.ArchiveBytes.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgQueryNanos() int64 {
	count := b.QueryCount.Load()
	if count == 0 {
		return 0
	}
	return b.QueryTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgComputeNanos() int64 {
	count := b.ComputeCount.Load()
	if count == 0 {
		return 0
	}
	return b.ComputeTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	QueryCount      int64
	QueryErrors     int64
	QueryPoints     int64
	QueryAvgNanos   int64
	ComputeCount    int64
	ComputeErrors   int64
	ComputeAvgNanos int64
	SnapshotCount   int64
	SnapshotErrors  int64
	ArchiveCount    int64
	ArchiveErrors   int64
	ArchiveBytes    int64
}
