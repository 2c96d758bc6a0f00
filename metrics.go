package tilematch

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see package
// promcollector for a Prometheus implementation.
type MetricsCollector interface {
	// RecordBatch is called after each batch call.
	// images and tiles are the input sizes, duration is the total time taken,
	// err is nil if successful.
	RecordBatch(r Representation, images, tiles int, duration time.Duration, err error)

	// RecordComparisons is called once per successful batch with the number of
	// distance evaluations performed.
	RecordComparisons(r Representation, n int64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBatch(Representation, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordComparisons(Representation, int64)                    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BatchCount      atomic.Int64
	BatchErrors     atomic.Int64
	BatchTotalNanos atomic.Int64
	ImagesMatched   atomic.Int64
	Comparisons     atomic.Int64
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(_ Representation, images, _ int, duration time.Duration, err error) {
	b.BatchCount.Add(1)
	b.BatchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BatchErrors.Add(1)
		return
	}
	b.ImagesMatched.Add(int64(images))
}

// RecordComparisons implements MetricsCollector.
func (b *BasicMetricsCollector) RecordComparisons(_ Representation, n int64) {
	b.Comparisons.Add(n)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	count := b.BatchCount.Load()
	var avg int64
	if count > 0 {
		avg = b.BatchTotalNanos.Load() / count
	}
	return BasicMetricsStats{
		BatchCount:    count,
		BatchErrors:   b.BatchErrors.Load(),
		BatchAvgNanos: avg,
		ImagesMatched: b.ImagesMatched.Load(),
		Comparisons:   b.Comparisons.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BatchCount    int64
	BatchErrors   int64
	BatchAvgNanos int64
	ImagesMatched int64
	Comparisons   int64
}
