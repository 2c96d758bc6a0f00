// Package promcollector exports tilematch batch metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc := promcollector.New(reg)
//	idx, err := tilematch.MatchAllFloating(ctx, blocks, tiles, tilematch.WithMetricsCollector(mc))
package promcollector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/tilematch"
)

const namespace = "tilematch"

var _ tilematch.MetricsCollector = (*Collector)(nil)

// Collector implements tilematch.MetricsCollector with Prometheus metrics.
type Collector struct {
	batches     *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	images      *prometheus.CounterVec
	tiles       *prometheus.HistogramVec
	comparisons *prometheus.CounterVec
}

// New registers the collector's metrics with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		// batches counts batch calls by representation and outcome
		batches: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batches_total",
				Help:      "Total number of match batches",
			},
			[]string{"representation", "status"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_duration_seconds",
				Help:      "Duration of match batches",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
			},
			[]string{"representation"},
		),
		images: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "images_matched_total",
				Help:      "Total number of images matched successfully",
			},
			[]string{"representation"},
		),
		tiles: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "library_tiles",
				Help:      "Tile library size per batch",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"representation"},
		),
		comparisons: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comparisons_total",
				Help:      "Total number of distance evaluations",
			},
			[]string{"representation"},
		),
	}
}

// RecordBatch implements tilematch.MetricsCollector.
func (c *Collector) RecordBatch(r tilematch.Representation, images, tiles int, d time.Duration, err error) {
	rep := r.String()
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.batches.WithLabelValues(rep, status).Inc()
	c.duration.WithLabelValues(rep).Observe(d.Seconds())
	c.tiles.WithLabelValues(rep).Observe(float64(tiles))
	if err == nil {
		c.images.WithLabelValues(rep).Add(float64(images))
	}
}

// RecordComparisons implements tilematch.MetricsCollector.
func (c *Collector) RecordComparisons(r tilematch.Representation, n int64) {
	c.comparisons.WithLabelValues(r.String()).Add(float64(n))
}
