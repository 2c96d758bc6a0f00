package mosaic

import (
	"context"
	"fmt"

	"github.com/hupe1980/tilematch"
	"github.com/hupe1980/tilematch/distance"
	"github.com/hupe1980/tilematch/library"
)

// Matcher returns, for every block, the index of the closest tile.
type Matcher func(ctx context.Context, blocks, tiles [][]int32) ([]int, error)

// IntegralMatcher matches with the integer squared-difference pipeline.
func IntegralMatcher(optFns ...tilematch.Option) Matcher {
	return func(ctx context.Context, blocks, tiles [][]int32) ([]int, error) {
		return tilematch.MatchAllIntegral(ctx, blocks, tiles, optFns...)
	}
}

// FloatingMatcher converts samples to float64 and matches with the parallel
// floating-point pipeline.
func FloatingMatcher(optFns ...tilematch.Option) Matcher {
	return func(ctx context.Context, blocks, tiles [][]int32) ([]int, error) {
		return tilematch.MatchAllFloating(ctx, library.ToFloating(blocks), library.ToFloating(tiles), optFns...)
	}
}

// MetricMatcher matches integer samples under metric.
func MetricMatcher(metric distance.Metric[int32], optFns ...tilematch.Option) Matcher {
	return func(ctx context.Context, blocks, tiles [][]int32) ([]int, error) {
		return tilematch.Match(ctx, blocks, tiles, metric, optFns...)
	}
}

// FloatingMetricMatcher converts samples to float64 and matches under metric.
func FloatingMetricMatcher(metric distance.Metric[float64], optFns ...tilematch.Option) Matcher {
	return func(ctx context.Context, blocks, tiles [][]int32) ([]int, error) {
		return tilematch.Match(ctx, library.ToFloating(blocks), library.ToFloating(tiles), metric, optFns...)
	}
}

func checkLibrary(g Grid, lib *library.Library) error {
	if lib.TileSize != g.TileSize || lib.Channels != g.Channels {
		return fmt.Errorf("%w: library %dpx/%dch, mosaic %dpx/%dch",
			ErrLibraryMismatch, lib.TileSize, lib.Channels, g.TileSize, g.Channels)
	}
	return nil
}
