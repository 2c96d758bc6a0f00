package promcollector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tilematch"
)

func TestCollector_RecordBatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.RecordBatch(tilematch.RepresentationFloating, 10, 4, 3*time.Millisecond, nil)
	c.RecordBatch(tilematch.RepresentationFloating, 5, 4, time.Millisecond, errors.New("boom"))
	c.RecordComparisons(tilematch.RepresentationFloating, 40)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.batches.WithLabelValues("floating", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.batches.WithLabelValues("floating", "error")))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.images.WithLabelValues("floating")))
	assert.Equal(t, 40.0, testutil.ToFloat64(c.comparisons.WithLabelValues("floating")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.duration))
}

func TestCollector_WithMatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	images := [][]int32{{0, 0}, {9, 9}, {4, 4}}
	tiles := [][]int32{{0, 0}, {10, 10}}
	got, err := tilematch.MatchAllIntegral(context.Background(), images, tiles, tilematch.WithMetricsCollector(c))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0}, got)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.batches.WithLabelValues("integral", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.images.WithLabelValues("integral")))
	assert.Equal(t, 6.0, testutil.ToFloat64(c.comparisons.WithLabelValues("integral")))

	n, err := testutil.GatherAndCount(reg, "tilematch_batches_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
