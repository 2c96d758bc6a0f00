// Package match finds the best tile for a single image block by exhaustive scan.
//
// Two scans are provided. Nearest walks the library in index order. NearestChunked
// splits the library into contiguous chunks, reduces each chunk independently
// (optionally in parallel through a Runner) and combines the partial minima in
// ascending chunk order. Both scans order candidates by (distance, index), with a
// NaN distance ranked after every number, so they always agree: on ties the lowest
// index wins regardless of how the chunks were scheduled.
//
// An empty library (or a mask that excludes every tile) is resolved by an explicit
// EmptyLibraryPolicy. ReturnZero reports index 0, which is indistinguishable from
// a genuine match at index 0 and must not be used to dereference the library.
package match
