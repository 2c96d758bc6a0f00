// Package testutil provides testing utilities for tilematch.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	blocks := rng.PixelVectors(100, 64)   // [][]int32 in [0, 256)
//	tiles := rng.FloatVectors(50, 64)     // [][]float64 in [0, 256)
//
// # Ground Truth
//
//	want := testutil.ExactBest(images, tiles)
package testutil
