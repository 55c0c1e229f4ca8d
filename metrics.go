package regindex

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/regindex/index"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics package provides a Prometheus implementation.
//
// The per-index methods of index.MetricsCollector are forwarded to every
// index a Cache builds.
type MetricsCollector interface {
	index.MetricsCollector

	// RecordQuery is called after each routed GetAllServiceReferences.
	// index is the serving index name, hits the number of references
	// returned, err is nil if successful.
	RecordQuery(index string, hits int, duration time.Duration, err error)

	// RecordFallback is called when no index is applicable to a query or
	// listener filter.
	RecordFallback()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIndexed(string, int)                     {}
func (NoopMetricsCollector) RecordDispatch(string, int)                    {}
func (NoopMetricsCollector) RecordQuery(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordFallback()                               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	IndexedCount    atomic.Int64
	IndexedKeys     atomic.Int64
	DispatchCount   atomic.Int64
	NotifiedCount   atomic.Int64
	QueryCount      atomic.Int64
	QueryErrors     atomic.Int64
	QueryHits       atomic.Int64
	QueryTotalNanos atomic.Int64
	FallbackCount   atomic.Int64
}

// RecordIndexed implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIndexed(_ string, keys int) {
	b.IndexedCount.Add(1)
	b.IndexedKeys.Add(int64(keys))
}

// RecordDispatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDispatch(_ string, listeners int) {
	b.DispatchCount.Add(1)
	b.NotifiedCount.Add(int64(listeners))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_ string, hits int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryHits.Add(int64(hits))
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordFallback implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFallback() {
	b.FallbackCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		IndexedCount:  b.IndexedCount.Load(),
		IndexedKeys:   b.IndexedKeys.Load(),
		DispatchCount: b.DispatchCount.Load(),
		NotifiedCount: b.NotifiedCount.Load(),
		QueryCount:    b.QueryCount.Load(),
		QueryErrors:   b.QueryErrors.Load(),
		QueryHits:     b.QueryHits.Load(),
		QueryAvgNanos: b.getAvgQueryNanos(),
		FallbackCount: b.FallbackCount.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgQueryNanos() int64 {
	count := b.QueryCount.Load()
	if count == 0 {
		return 0
	}
	return b.QueryTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	IndexedCount  int64
	IndexedKeys   int64
	DispatchCount int64
	NotifiedCount int64
	QueryCount    int64
	QueryErrors   int64
	QueryHits     int64
	QueryAvgNanos int64
	FallbackCount int64
}
