// Package distance provides the dissimilarity metrics used to match image blocks
// against a tile library.
//
// Every metric is a pure function of two equal-length vectors. A length mismatch
// is reported as a *LengthMismatchError rather than a panic, so callers decide
// whether to skip, log or abort.
//
// # Supported Metrics
//
//   - IntegerSquaredDifference: sum of squared differences in the native integer type
//   - CheckedSquaredDifference: same, but reports ErrOverflow instead of wrapping
//   - FloatSquaredDifference: sum of squared differences in floating point
//   - AbsoluteDifference: sum of absolute differences
//   - WeightedSquaredDifference: per-sample weighted squared differences
//
// # Numeric Semantics
//
// Integer metrics compute in the vector's own fixed-width type. Overflow wraps
// according to Go's two's-complement rules; the result is then meaningless but
// deterministic. Use CheckedSquaredDifference when inputs may be large.
//
// Float metrics sum sequentially in index order without compensation, and do not
// guard against NaN or Inf: a NaN sample yields a NaN distance.
//
// # Usage
//
//	d, err := distance.FloatSquaredDifference[float64]{}.Distance(a, b)
//	m, err := distance.IntegralMetric(distance.KindSquaredDifference)
package distance
