package library

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/tilematch/internal/imageutil"
	"github.com/hupe1980/tilematch/resource"
)

// Prepare turns one image into one tile: the largest centred square is
// resampled to tileSize and flattened in the given mode.
func Prepare(img image.Image, tileSize int, mode Mode) []int32 {
	sq := imageutil.CropSquare(img)
	sq = imageutil.Resize(sq, tileSize, tileSize)
	return imageutil.Samples(sq, sq.Bounds(), mode.Channels())
}

// FromImages builds a library from decoded images, in order.
func FromImages(ctx context.Context, images []image.Image, tileSize int, mode Mode) (*Library, error) {
	if tileSize < 1 {
		return nil, ErrInvalidTileSize
	}
	lib := &Library{
		TileSize: tileSize,
		Channels: mode.Channels(),
		Tiles:    make([][]int32, len(images)),
	}
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lib.Tiles[i] = Prepare(img, tileSize, mode)
	}
	return lib, nil
}

// FromDir builds a library from every image file directly under dir in fsys.
// Files are taken in name order and decoded concurrently; hidden files and
// subdirectories are skipped.
func FromDir(ctx context.Context, fsys fs.FS, dir string, tileSize int, mode Mode, optFns ...Option) (*Library, error) {
	if tileSize < 1 {
		return nil, ErrInvalidTileSize
	}
	o := applyOptions(optFns)

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read tile directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	ctrl := o.controller
	if ctrl == nil {
		ctrl = resource.NewController(resource.Config{})
	}

	lib := &Library{
		TileSize: tileSize,
		Channels: mode.Channels(),
		Names:    names,
		Tiles:    make([][]int32, len(names)),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		if err := ctrl.AcquireWorker(gctx); err != nil {
			break
		}
		g.Go(func() error {
			defer ctrl.ReleaseWorker()
			tile, err := loadTile(fsys, path.Join(dir, name), tileSize, mode)
			if err != nil {
				return err
			}
			lib.Tiles[i] = tile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.logger.LogAttrs(ctx, slog.LevelDebug, "built tile library",
		slog.String("dir", dir),
		slog.Int("tiles", lib.Len()),
		slog.Int("tile_size", tileSize),
		slog.String("mode", mode.String()),
	)
	return lib, nil
}

func loadTile(fsys fs.FS, name string, tileSize int, mode Mode) ([]int32, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode tile %s: %w", name, err)
	}
	return Prepare(img, tileSize, mode), nil
}
