package match

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/tilematch/distance"
)

// ErrEmptyTileLibrary is returned under the Fail policy when no tile is eligible.
var ErrEmptyTileLibrary = errors.New("empty tile library")

// TileError reports a failed comparison against one tile.
type TileError struct {
	Tile int
	Err  error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("tile %d: %v", e.Tile, e.Err)
}

func (e *TileError) Unwrap() error { return e.Err }

// EmptyLibraryPolicy decides what a scan returns when no tile is eligible.
type EmptyLibraryPolicy int

const (
	// ReturnZero reports index 0 without error.
	ReturnZero EmptyLibraryPolicy = iota
	// Fail reports ErrEmptyTileLibrary.
	Fail
)

func (p EmptyLibraryPolicy) String() string {
	switch p {
	case ReturnZero:
		return "zero"
	case Fail:
		return "fail"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// ParseEmptyLibraryPolicy parses "zero" or "fail".
func ParseEmptyLibraryPolicy(s string) (EmptyLibraryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero", "return-zero":
		return ReturnZero, nil
	case "fail", "error":
		return Fail, nil
	default:
		return 0, fmt.Errorf("unknown empty library policy %q", s)
	}
}

// Options contains configuration options for a scan.
type Options struct {
	// OnEmpty resolves scans with no eligible tile.
	OnEmpty EmptyLibraryPolicy

	// Eligible restricts the scan to the tile indexes in the bitmap.
	// Nil means every tile is eligible. Must not be mutated during a scan.
	Eligible *roaring.Bitmap

	// ChunkSize is the number of tiles per chunk in NearestChunked.
	ChunkSize int
}

// DefaultChunkSize is used when Options.ChunkSize is not positive.
const DefaultChunkSize = 256

// DefaultOptions contains the default scan options.
var DefaultOptions = Options{
	OnEmpty:   ReturnZero,
	ChunkSize: DefaultChunkSize,
}

// Candidate is the best tile found by a scan.
type Candidate[T distance.Number] struct {
	Index    int
	Distance T
	// Found is false when no tile was eligible and OnEmpty returned zero.
	Found bool
}

// Runner executes fn for every i in [0, n) and returns the first error.
// Implementations may run calls concurrently; each call owns slot i only.
type Runner func(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error

// Sequential is a Runner that calls fn in index order on the caller goroutine.
func Sequential(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	for i := range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// BestTile returns the index of the tile closest to image, scanning sequentially.
func BestTile[T distance.Number](image []T, tiles [][]T, metric distance.Metric[T], opts Options) (int, error) {
	c, err := Nearest(image, tiles, metric, opts)
	if err != nil {
		return 0, err
	}
	return c.Index, nil
}

// Nearest scans every eligible tile in index order and returns the first minimum.
func Nearest[T distance.Number](image []T, tiles [][]T, metric distance.Metric[T], opts Options) (Candidate[T], error) {
	c, err := scan(image, tiles, metric, opts.Eligible, 0, len(tiles))
	if err != nil {
		return Candidate[T]{}, err
	}
	return resolve(c, opts.OnEmpty)
}

// NearestChunked splits tiles into chunks, reduces each chunk through run and
// combines the partial minima in chunk order.
func NearestChunked[T distance.Number](ctx context.Context, image []T, tiles [][]T, metric distance.Metric[T], opts Options, run Runner) (Candidate[T], error) {
	if run == nil {
		run = Sequential
	}
	size := opts.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}

	n := (len(tiles) + size - 1) / size
	partials := make([]Candidate[T], n)

	err := run(ctx, n, func(_ context.Context, i int) error {
		lo := i * size
		hi := min(lo+size, len(tiles))
		c, err := scan(image, tiles, metric, opts.Eligible, lo, hi)
		if err != nil {
			return err
		}
		partials[i] = c
		return nil
	})
	if err != nil {
		return Candidate[T]{}, err
	}

	var best Candidate[T]
	for _, p := range partials {
		if p.Found && (!best.Found || less(p.Distance, best.Distance)) {
			best = p
		}
	}
	return resolve(best, opts.OnEmpty)
}

func scan[T distance.Number](image []T, tiles [][]T, metric distance.Metric[T], eligible *roaring.Bitmap, lo, hi int) (Candidate[T], error) {
	var best Candidate[T]
	for i := lo; i < hi; i++ {
		if eligible != nil && !eligible.Contains(uint32(i)) {
			continue
		}
		d, err := metric.Distance(image, tiles[i])
		if err != nil {
			return Candidate[T]{}, &TileError{Tile: i, Err: err}
		}
		if !best.Found || less(d, best.Distance) {
			best = Candidate[T]{Index: i, Distance: d, Found: true}
		}
	}
	return best, nil
}

func resolve[T distance.Number](c Candidate[T], policy EmptyLibraryPolicy) (Candidate[T], error) {
	if c.Found {
		return c, nil
	}
	if policy == Fail {
		return Candidate[T]{}, ErrEmptyTileLibrary
	}
	return Candidate[T]{}, nil
}

// less orders distances with NaN after every number.
func less[T distance.Number](a, b T) bool {
	if a != a {
		return false
	}
	if b != b {
		return true
	}
	return a < b
}
