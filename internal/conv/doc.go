// Package conv provides checked integer conversions.
//
// Use them where a value crosses into a fixed-width field: library file
// headers and roaring bitmap tile indices. Loop indices and other values that
// are bounded by construction use plain casts.
package conv
