package tilematch

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/tilematch/distance"
	"github.com/hupe1980/tilematch/internal/conv"
	"github.com/hupe1980/tilematch/match"
	"github.com/hupe1980/tilematch/resource"
)

// Representation names the numeric pipeline of a batch.
type Representation int

const (
	RepresentationCustom Representation = iota
	RepresentationIntegral
	RepresentationFloating
)

func (r Representation) String() string {
	switch r {
	case RepresentationIntegral:
		return "integral"
	case RepresentationFloating:
		return "floating"
	case RepresentationCustom:
		return "custom"
	default:
		return fmt.Sprintf("Unknown(%d)", r)
	}
}

// MatchAllIntegral returns, for every image, the index of the closest tile under
// the integer sum of squared differences. It runs sequentially on the calling
// goroutine; WithParallelism is ignored.
//
// Sums are computed in int32 and wrap on overflow (see distance.IntegerSquaredDifference).
func MatchAllIntegral(ctx context.Context, images, tiles [][]int32, optFns ...Option) ([]int, error) {
	o := applyOptions(optFns)
	o.parallelism = ParallelNone
	return run(ctx, RepresentationIntegral, images, tiles, distance.IntegerSquaredDifference[int32]{}, o)
}

// MatchAllFloating returns, for every image, the index of the closest tile under
// the floating-point sum of squared differences. Work is spread over a bounded
// worker pool according to WithParallelism (default ParallelImages).
func MatchAllFloating(ctx context.Context, images, tiles [][]float64, optFns ...Option) ([]int, error) {
	return run(ctx, RepresentationFloating, images, tiles, distance.FloatSquaredDifference[float64]{}, applyOptions(optFns))
}

// Match is the generic form of MatchAllIntegral and MatchAllFloating for any metric.
func Match[T distance.Number](ctx context.Context, images, tiles [][]T, metric distance.Metric[T], optFns ...Option) ([]int, error) {
	return run(ctx, RepresentationCustom, images, tiles, metric, applyOptions(optFns))
}

func run[T distance.Number](ctx context.Context, r Representation, images, tiles [][]T, metric distance.Metric[T], o options) ([]int, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	if metric == nil {
		return nil, fmt.Errorf("%w: nil metric", ErrInvalidOption)
	}
	if o.eligible != nil {
		if _, err := conv.IntToUint32(len(tiles)); err != nil {
			return nil, fmt.Errorf("%w: eligibility mask: %w", ErrInvalidOption, err)
		}
	}

	ctrl := o.controller
	if ctrl == nil && o.parallelism != ParallelNone {
		ctrl = resource.NewController(resource.Config{MaxWorkers: int64(o.maxWorkers)})
	}

	b := &batch[T]{
		images: images,
		tiles:  tiles,
		metric: metric,
		scan: match.Options{
			OnEmpty:   o.onEmpty,
			Eligible:  o.eligible,
			ChunkSize: o.chunkSize,
		},
		pool: &pool{ctrl: ctrl},
	}

	logger := o.logger.WithBatch(uuid.NewString()).WithRepresentation(r)
	logger.LogBatchStart(ctx, len(images), len(tiles), o.parallelism, ctrl.MaxWorkers())
	if b.eligibleCount() == 0 && o.onEmpty == match.ReturnZero && len(images) > 0 {
		logger.LogEmptyLibrary(ctx, len(images))
	}

	start := time.Now()
	out, err := b.matchAll(ctx, o.parallelism)
	elapsed := time.Since(start)

	logger.LogBatch(ctx, len(images), len(tiles), elapsed, err)
	o.metricsCollector.RecordBatch(r, len(images), len(tiles), elapsed, err)
	if err != nil {
		return nil, err
	}
	o.metricsCollector.RecordComparisons(r, b.comparisons.Load())
	return out, nil
}

// batch holds the read-only inputs of one call. Tasks write only their own
// slot of the result slice.
type batch[T distance.Number] struct {
	images      [][]T
	tiles       [][]T
	metric      distance.Metric[T]
	scan        match.Options
	pool        *pool
	comparisons atomic.Int64
}

func (b *batch[T]) matchAll(ctx context.Context, p Parallelism) ([]int, error) {
	out := make([]int, len(b.images))

	var (
		outer match.Runner = match.Sequential
		inner match.Runner
	)
	switch p {
	case ParallelImages:
		outer = b.pool.run
	case ParallelTiles:
		inner = b.pool.run
	case ParallelNested:
		outer, inner = b.pool.run, b.pool.run
	}

	err := outer(ctx, len(b.images), func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx, err := b.matchOne(ctx, b.images[i], inner)
		if err != nil {
			return &ImageError{Image: i, Err: err}
		}
		out[i] = idx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *batch[T]) matchOne(ctx context.Context, image []T, inner match.Runner) (int, error) {
	var (
		c   match.Candidate[T]
		err error
	)
	if inner == nil {
		c, err = match.Nearest(image, b.tiles, b.metric, b.scan)
	} else {
		c, err = match.NearestChunked(ctx, image, b.tiles, b.metric, b.scan, inner)
	}
	if err != nil {
		return 0, err
	}
	b.comparisons.Add(int64(b.eligibleCount()))
	return c.Index, nil
}

func (b *batch[T]) eligibleCount() int {
	if b.scan.Eligible == nil || len(b.tiles) == 0 {
		return len(b.tiles)
	}
	return int(b.scan.Eligible.Rank(uint32(len(b.tiles)) - 1))
}

// pool runs tasks on controller worker slots, falling back to the submitting
// goroutine when every slot is taken. Peak concurrency is therefore one more
// than the controller's worker count.
type pool struct {
	ctrl *resource.Controller
}

func (p *pool) run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	var inlineErr error
	for i := range n {
		if gctx.Err() != nil {
			break
		}
		if p.ctrl.TryAcquireWorker() {
			g.Go(func() error {
				defer p.ctrl.ReleaseWorker()
				return fn(gctx, i)
			})
			continue
		}
		if err := fn(gctx, i); err != nil {
			inlineErr = err
			cancel()
			break
		}
	}

	err := g.Wait()
	if inlineErr != nil {
		return inlineErr
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}
