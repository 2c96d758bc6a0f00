package tilematch

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/tilematch/match"
	"github.com/hupe1980/tilematch/resource"
)

// Parallelism selects which loops of a batch run concurrently.
type Parallelism int

const (
	// ParallelNone runs the whole batch on the calling goroutine.
	ParallelNone Parallelism = iota
	// ParallelImages runs one task per image; each tile scan is sequential.
	ParallelImages
	// ParallelTiles processes images in order and scans tile chunks in parallel.
	ParallelTiles
	// ParallelNested parallelizes both images and tile chunks.
	ParallelNested
)

func (p Parallelism) String() string {
	switch p {
	case ParallelNone:
		return "none"
	case ParallelImages:
		return "images"
	case ParallelTiles:
		return "tiles"
	case ParallelNested:
		return "nested"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// ParseParallelism parses the String form of a Parallelism.
func ParseParallelism(s string) (Parallelism, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "sequential":
		return ParallelNone, nil
	case "", "images":
		return ParallelImages, nil
	case "tiles":
		return ParallelTiles, nil
	case "nested", "both":
		return ParallelNested, nil
	default:
		return 0, fmt.Errorf("%w: unknown parallelism %q", ErrInvalidOption, s)
	}
}

type options struct {
	parallelism      Parallelism
	maxWorkers       int
	chunkSize        int
	onEmpty          match.EmptyLibraryPolicy
	eligible         *roaring.Bitmap
	controller       *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a batch match.
type Option func(*options)

// WithParallelism selects the parallel strategy. Ignored by MatchAllIntegral,
// which is always sequential.
func WithParallelism(p Parallelism) Option {
	return func(o *options) {
		o.parallelism = p
	}
}

// WithMaxWorkers caps the number of pooled worker goroutines used by one call.
// Zero means runtime.GOMAXPROCS(0). Ignored when WithController is set.
//
// When every slot is taken the submitting goroutine runs the task itself, so
// up to n+1 goroutines compute distances at once: n workers plus the caller.
func WithMaxWorkers(n int) Option {
	return func(o *options) {
		o.maxWorkers = n
	}
}

// WithChunkSize sets the number of tiles per parallel scan chunk
// (ParallelTiles and ParallelNested). Zero means match.DefaultChunkSize.
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

// WithEmptyLibraryPolicy decides what happens when no tile is eligible.
//
// The default, match.ReturnZero, reports index 0 for every image; that value is
// indistinguishable from a real match and must not be used to index an empty library.
func WithEmptyLibraryPolicy(p match.EmptyLibraryPolicy) Option {
	return func(o *options) {
		o.onEmpty = p
	}
}

// WithEligibleTiles restricts matching to the tile indexes in mask.
// Returned indexes still refer to the full library. The bitmap must not be
// modified while a match is running.
func WithEligibleTiles(mask *roaring.Bitmap) Option {
	return func(o *options) {
		o.eligible = mask
	}
}

// WithController shares a worker pool across calls.
//
// Example:
//
//	pool := resource.NewController(resource.Config{MaxWorkers: 8})
//	a, _ := tilematch.MatchAllFloating(ctx, imgsA, tiles, tilematch.WithController(pool))
//	b, _ := tilematch.MatchAllFloating(ctx, imgsB, tiles, tilematch.WithController(pool))
func WithController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithMetricsCollector configures a metrics collector for batch calls.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for batch calls.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := tilematch.NewJSONLogger(slog.LevelInfo)
//	idx, _ := tilematch.MatchAllFloating(ctx, images, tiles, tilematch.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		parallelism:      ParallelImages,
		onEmpty:          match.ReturnZero,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

func (o *options) validate() error {
	if o.parallelism < ParallelNone || o.parallelism > ParallelNested {
		return fmt.Errorf("%w: parallelism %v", ErrInvalidOption, o.parallelism)
	}
	if o.maxWorkers < 0 {
		return fmt.Errorf("%w: max workers %d", ErrInvalidOption, o.maxWorkers)
	}
	if o.chunkSize < 0 {
		return fmt.Errorf("%w: chunk size %d", ErrInvalidOption, o.chunkSize)
	}
	if o.onEmpty != match.ReturnZero && o.onEmpty != match.Fail {
		return fmt.Errorf("%w: empty library policy %v", ErrInvalidOption, o.onEmpty)
	}
	return nil
}
