package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/tilematch"
	"github.com/hupe1980/tilematch/distance"
	"github.com/hupe1980/tilematch/library"
	"github.com/hupe1980/tilematch/match"
	"github.com/hupe1980/tilematch/mosaic"
	"github.com/hupe1980/tilematch/promcollector"
)

// ErrOutfileRequired is returned when an image mosaic has nowhere to go.
var ErrOutfileRequired = errors.New("image mosaics need --outfile; use --text to print to stdout")

type renderOptions struct {
	tileSize        int
	scale           float64
	text            bool
	invert          bool
	outfile         string
	tilesDir        string
	libraryName     string
	mode            string
	floating        bool
	metric          string
	parallelism     string
	chunkSize       int
	metricsTextfile string
}

func newRenderCmd(a *app) *cobra.Command {
	o := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render INFILE",
		Short: "Render an image or animated GIF as a mosaic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(cmd.Context(), cmd.OutOrStdout(), args[0], o, cmd.Flags().Changed("tile-size"))
		},
	}

	f := cmd.Flags()
	f.IntVar(&o.tileSize, "tile-size", 8, "block and tile side in pixels")
	f.Float64Var(&o.scale, "scale", 1, "resize the input by this factor before splitting")
	f.BoolVar(&o.text, "text", false, "render text, one character per block")
	f.BoolVar(&o.invert, "invert", false, "invert the input colours")
	f.StringVarP(&o.outfile, "outfile", "o", "", "output file (.png, .jpg, .gif or text)")
	f.StringVar(&o.tilesDir, "tiles", "", "build the tile library from this image directory")
	f.StringVar(&o.libraryName, "library", "", "load this library from the configured store")
	f.StringVar(&o.mode, "mode", "gray", "colour mode for --tiles: gray or rgb")
	f.BoolVar(&o.floating, "floating", false, "match with the parallel floating-point pipeline")
	f.StringVar(&o.metric, "metric", "squared", "distance: squared, absolute or checked (integral only)")
	f.StringVar(&o.parallelism, "parallelism", "images", "floating strategy: none, images, tiles or nested")
	f.IntVar(&o.chunkSize, "chunk-size", 0, "tiles per task for tiles/nested parallelism (0 = default)")
	f.StringVar(&o.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file when done")
	cmd.MarkFlagsMutuallyExclusive("tiles", "library")
	return cmd
}

func (a *app) render(ctx context.Context, stdout io.Writer, infile string, o *renderOptions, tileSizeSet bool) error {
	lib, err := a.resolveLibrary(ctx, o, tileSizeSet)
	if err != nil {
		return err
	}

	matcher, reg, err := a.matcher(o)
	if err != nil {
		return err
	}

	cfg := mosaic.Config{
		TileSize: lib.TileSize,
		Mode:     lib.Mode(),
		Scale:    o.scale,
		Invert:   o.invert,
	}

	in, err := os.Open(infile)
	if err != nil {
		return err
	}
	defer in.Close()

	isGIF := strings.EqualFold(filepath.Ext(infile), ".gif")
	if !o.text && o.outfile == "" {
		return ErrOutfileRequired
	}

	switch {
	case o.text && isGIF:
		g, err := mosaic.DecodeGIF(in, cfg)
		if err != nil {
			return err
		}
		out, err := mosaic.NewTextGIFMosaic(g, textMapFor(lib)).Replace(ctx, lib, matcher)
		if err != nil {
			return err
		}
		if err := writeText(stdout, o.outfile, out.String()); err != nil {
			return err
		}

	case o.text:
		m, err := mosaic.Decode(in, cfg)
		if err != nil {
			return err
		}
		out, err := mosaic.NewTextMosaic(m, textMapFor(lib)).Replace(ctx, lib, matcher)
		if err != nil {
			return err
		}
		if err := writeText(stdout, o.outfile, out.String()); err != nil {
			return err
		}

	case isGIF:
		g, err := mosaic.DecodeGIF(in, cfg)
		if err != nil {
			return err
		}
		out, err := g.Replace(ctx, lib, matcher)
		if err != nil {
			return err
		}
		if err := writeFile(o.outfile, out.Encode); err != nil {
			return err
		}

	default:
		format, err := mosaic.FormatFromPath(o.outfile)
		if err != nil {
			return err
		}
		m, err := mosaic.Decode(in, cfg)
		if err != nil {
			return err
		}
		out, err := m.Replace(ctx, lib, matcher)
		if err != nil {
			return err
		}
		if err := writeFile(o.outfile, func(w io.Writer) error { return out.Encode(w, format) }); err != nil {
			return err
		}
	}

	if o.metricsTextfile != "" {
		if err := prometheus.WriteToTextfile(o.metricsTextfile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

// resolveLibrary picks the tile library: a directory, a stored library, or
// the built-in ASCII glyphs.
func (a *app) resolveLibrary(ctx context.Context, o *renderOptions, tileSizeSet bool) (*library.Library, error) {
	libOpts := []library.Option{
		library.WithController(a.ctrl),
		library.WithLogger(a.logger.Logger),
	}

	switch {
	case o.tilesDir != "":
		mode, err := library.ParseMode(o.mode)
		if err != nil {
			return nil, err
		}
		return library.FromDir(ctx, os.DirFS(o.tilesDir), ".", o.tileSize, mode, libOpts...)

	case o.libraryName != "":
		store, err := openStore(ctx, a.cfg.Store)
		if err != nil {
			return nil, err
		}
		lib, _, err := library.Load(ctx, store, o.libraryName, libOpts...)
		if err != nil {
			return nil, err
		}
		if tileSizeSet && lib.TileSize != o.tileSize {
			return nil, fmt.Errorf("%w: library %s has %dpx tiles, --tile-size is %d",
				mosaic.ErrLibraryMismatch, o.libraryName, lib.TileSize, o.tileSize)
		}
		return lib, nil

	default:
		return library.ASCII(o.tileSize)
	}
}

// matcher builds the matching function and the registry its metrics go to.
func (a *app) matcher(o *renderOptions) (mosaic.Matcher, *prometheus.Registry, error) {
	p, err := tilematch.ParseParallelism(o.parallelism)
	if err != nil {
		return nil, nil, err
	}
	reg := prometheus.NewRegistry()
	opts := []tilematch.Option{
		tilematch.WithController(a.ctrl),
		tilematch.WithLogger(a.logger),
		tilematch.WithParallelism(p),
		tilematch.WithChunkSize(o.chunkSize),
		// a mosaic cannot be painted from an empty library
		tilematch.WithEmptyLibraryPolicy(match.Fail),
		tilematch.WithMetricsCollector(promcollector.New(reg)),
	}
	kind, err := distance.ParseKind(o.metric)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case kind == distance.KindSquaredDifference && o.floating:
		return mosaic.FloatingMatcher(opts...), reg, nil
	case kind == distance.KindSquaredDifference:
		return mosaic.IntegralMatcher(opts...), reg, nil
	case o.floating:
		m, err := distance.FloatingMetric(kind)
		if err != nil {
			return nil, nil, err
		}
		return mosaic.FloatingMetricMatcher(m, opts...), reg, nil
	default:
		m, err := distance.IntegralMetric(kind)
		if err != nil {
			return nil, nil, err
		}
		// the integral pipeline stays on the calling goroutine
		opts = append(opts, tilematch.WithParallelism(tilematch.ParallelNone))
		return mosaic.MetricMatcher(m, opts...), reg, nil
	}
}

// textMapFor uses the tile names as the text map when every name is a single
// rune, as in libraries built from library.ASCII.
func textMapFor(lib *library.Library) string {
	if len(lib.Names) == 0 || len(lib.Names) != lib.Len() {
		return library.ASCIITextMap
	}
	var sb strings.Builder
	for _, n := range lib.Names {
		if utf8.RuneCountInString(n) != 1 {
			return library.ASCIITextMap
		}
		sb.WriteString(n)
	}
	return sb.String()
}

func writeText(stdout io.Writer, outfile, text string) error {
	if outfile == "" {
		_, err := fmt.Fprintln(stdout, text)
		return err
	}
	return os.WriteFile(outfile, []byte(text+"\n"), 0o644)
}

func writeFile(path string, encode func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return encode(f)
}
