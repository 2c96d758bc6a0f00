package benchmark_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/tilematch"
	"github.com/hupe1980/tilematch/resource"
	"github.com/hupe1980/tilematch/testutil"
)

// Run with: go test -bench=. -run=^$ ./benchmark_test/...

type workload struct {
	name   string
	images int
	tiles  int
	dim    int
}

// Tile sides 8 and 16 in gray, 8 in RGB; libraries from glyph-sized to photo sets.
var workloads = []workload{
	{"ascii_8px", 1200, 95, 64},
	{"photos_8px", 1200, 1000, 64},
	{"photos_16px", 300, 1000, 256},
	{"photos_8px_rgb", 1200, 1000, 192},
}

func BenchmarkMatchAllIntegral(b *testing.B) {
	ctx := context.Background()
	for _, w := range workloads {
		rng := testutil.NewRNG(1)
		images := rng.PixelVectors(w.images, w.dim)
		tiles := rng.PixelVectors(w.tiles, w.dim)

		b.Run(w.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := tilematch.MatchAllIntegral(ctx, images, tiles); err != nil {
					b.Fatal(err)
				}
			}
			reportComparisons(b, w)
		})
	}
}

func BenchmarkMatchAllFloating(b *testing.B) {
	ctx := context.Background()
	strategies := []tilematch.Parallelism{
		tilematch.ParallelNone,
		tilematch.ParallelImages,
		tilematch.ParallelTiles,
		tilematch.ParallelNested,
	}

	for _, w := range workloads {
		rng := testutil.NewRNG(1)
		images := rng.FloatVectors(w.images, w.dim)
		tiles := rng.FloatVectors(w.tiles, w.dim)
		ctrl := resource.NewController(resource.Config{})

		for _, p := range strategies {
			b.Run(fmt.Sprintf("%s/%s", w.name, p), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					_, err := tilematch.MatchAllFloating(ctx, images, tiles,
						tilematch.WithParallelism(p),
						tilematch.WithController(ctrl),
					)
					if err != nil {
						b.Fatal(err)
					}
				}
				reportComparisons(b, w)
			})
		}
	}
}

func reportComparisons(b *testing.B, w workload) {
	b.StopTimer()
	n := float64(b.N) * float64(w.images) * float64(w.tiles)
	b.ReportMetric(n/b.Elapsed().Seconds(), "cmp/s")
}
