// Package tilematch picks, for every block of an image, the closest tile of a
// fixed tile library under a sum-of-squared-differences distance.
//
// It is the matching core of a photomosaic pipeline: the caller supplies image
// blocks and tiles as flattened numeric vectors and receives one tile index per
// block, in input order.
//
// # Entry Points
//
//	idx, err := tilematch.MatchAllIntegral(ctx, images, tiles)   // [][]int32, sequential
//	idx, err := tilematch.MatchAllFloating(ctx, images, tiles)   // [][]float64, parallel
//	idx, err := tilematch.Match(ctx, images, tiles, metric, ...) // any distance.Metric
//
// MatchAllIntegral is strictly sequential and deterministic. MatchAllFloating
// parallelizes according to WithParallelism:
//
//   - ParallelImages (default): one task per image, sequential tile scan
//   - ParallelTiles: images in order, tile library scanned in parallel chunks
//   - ParallelNested: both levels at once
//   - ParallelNone: no goroutines
//
// All levels share one bounded worker pool (see resource.Controller). When the pool
// is saturated, work runs inline on the submitting goroutine, so nesting never
// oversubscribes or deadlocks.
//
// # Determinism
//
// Candidates are ordered by (distance, index) with NaN distances ranked last, and
// parallel partial results are combined in index order. Every strategy therefore
// returns the same indices, including the lowest-index-wins tie-break.
//
// # Errors
//
// A vector length mismatch is returned as an *ImageError wrapping a
// *match.TileError wrapping a *distance.LengthMismatchError; test it with
// errors.Is(err, ErrLengthMismatch). Any error aborts the whole batch and no
// partial result is returned.
//
// An empty tile library yields index 0 for every image unless
// WithEmptyLibraryPolicy(match.Fail) is set.
package tilematch
