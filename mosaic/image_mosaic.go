package mosaic

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"

	"github.com/hupe1980/tilematch"
	"github.com/hupe1980/tilematch/internal/imageutil"
	"github.com/hupe1980/tilematch/library"
)

// ImageMosaic is an image split into blocks.
type ImageMosaic struct {
	Grid   Grid
	Blocks [][]int32
}

// New converts, inverts, scales and splits img according to cfg.
func New(img image.Image, cfg Config) (*ImageMosaic, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	img = imageutil.Convert(img, cfg.Mode.Channels())
	if cfg.Invert {
		img = Invert(img, cfg.Mode)
	}
	img, err := Scale(img, cfg.Scale)
	if err != nil {
		return nil, err
	}
	g, blocks, err := ToBlocks(img, cfg.TileSize, cfg.Mode)
	if err != nil {
		return nil, err
	}
	return &ImageMosaic{Grid: g, Blocks: blocks}, nil
}

// Decode reads a PNG, JPEG or GIF (first frame) image and splits it.
func Decode(r io.Reader, cfg Config) (*ImageMosaic, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return New(img, cfg)
}

// Replace returns a new mosaic whose blocks are the closest tiles of lib.
func (m *ImageMosaic) Replace(ctx context.Context, lib *library.Library, match Matcher) (*ImageMosaic, error) {
	best, err := bestTiles(ctx, m.Grid, m.Blocks, lib, match)
	if err != nil {
		return nil, err
	}
	blocks := make([][]int32, len(best))
	for i, idx := range best {
		blocks[i] = lib.Tiles[idx]
	}
	return &ImageMosaic{Grid: m.Grid, Blocks: blocks}, nil
}

// Image renders the mosaic.
func (m *ImageMosaic) Image() (image.Image, error) {
	return Compose(m.Grid, m.Blocks)
}

// Encode renders the mosaic and writes it in format f.
func (m *ImageMosaic) Encode(w io.Writer, f Format) error {
	img, err := m.Image()
	if err != nil {
		return err
	}
	return Encode(w, img, f)
}

// bestTiles matches blocks against lib and checks every returned index.
func bestTiles(ctx context.Context, g Grid, blocks [][]int32, lib *library.Library, match Matcher) ([]int, error) {
	if err := checkLibrary(g, lib); err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, nil
	}
	if lib.Len() == 0 {
		return nil, tilematch.ErrEmptyTileLibrary
	}
	best, err := match(ctx, blocks, lib.Tiles)
	if err != nil {
		return nil, err
	}
	if len(best) != len(blocks) {
		return nil, fmt.Errorf("%w: matcher returned %d indices for %d blocks", ErrBlockCount, len(best), len(blocks))
	}
	for i, idx := range best {
		if idx < 0 || idx >= lib.Len() {
			return nil, fmt.Errorf("%w: block %d matched tile %d of %d", ErrLibraryMismatch, i, idx, lib.Len())
		}
	}
	return best, nil
}
