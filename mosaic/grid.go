package mosaic

import (
	"errors"
	"fmt"
	"image"

	"github.com/hupe1980/tilematch/internal/imageutil"
	"github.com/hupe1980/tilematch/library"
)

var (
	// ErrInvalidScale is returned for scale factors that are not positive.
	ErrInvalidScale = errors.New("mosaic: scale factor must be positive")

	// ErrInvalidTileSize is returned for tile sizes below 1.
	ErrInvalidTileSize = errors.New("mosaic: tile size must be positive")

	// ErrBlockCount is returned when blocks do not fill a grid.
	ErrBlockCount = errors.New("mosaic: block count does not match grid")

	// ErrLibraryMismatch is returned when a library's tile shape differs
	// from the mosaic's blocks.
	ErrLibraryMismatch = errors.New("mosaic: library does not match mosaic")

	// ErrTextMapTooSmall is returned when a library has more tiles than the
	// text map has runes.
	ErrTextMapTooSmall = errors.New("mosaic: text map has fewer runes than the library has tiles")
)

// Grid is the block layout of a mosaic.
type Grid struct {
	TileSize int
	Rows     int
	Cols     int
	Channels int
}

// Len returns the number of blocks.
func (g Grid) Len() int {
	return g.Rows * g.Cols
}

// Dimension returns the number of samples per block.
func (g Grid) Dimension() int {
	return g.TileSize * g.TileSize * g.Channels
}

// Bounds returns the pixel rectangle covered by the grid.
func (g Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Cols*g.TileSize, g.Rows*g.TileSize)
}

// block returns the pixel rectangle of block i (row-major).
func (g Grid) block(i int) image.Rectangle {
	r, c := i/g.Cols, i%g.Cols
	return image.Rect(c*g.TileSize, r*g.TileSize, (c+1)*g.TileSize, (r+1)*g.TileSize)
}

// ToBlocks crops img to a multiple of tileSize around its centre and splits
// it into blocks in row-major order.
func ToBlocks(img image.Image, tileSize int, mode library.Mode) (Grid, [][]int32, error) {
	if tileSize < 1 {
		return Grid{}, nil, ErrInvalidTileSize
	}
	img = imageutil.CropMultiple(imageutil.Convert(img, mode.Channels()), tileSize)
	b := img.Bounds()

	g := Grid{
		TileSize: tileSize,
		Rows:     b.Dy() / tileSize,
		Cols:     b.Dx() / tileSize,
		Channels: mode.Channels(),
	}
	blocks := make([][]int32, g.Len())
	for i := range blocks {
		blocks[i] = imageutil.Samples(img, g.block(i).Add(b.Min), g.Channels)
	}
	return g, blocks, nil
}

// Compose rebuilds the image described by g from its blocks.
func Compose(g Grid, blocks [][]int32) (image.Image, error) {
	if len(blocks) != g.Len() {
		return nil, fmt.Errorf("%w: %d blocks for %dx%d grid", ErrBlockCount, len(blocks), g.Rows, g.Cols)
	}
	dim := g.Dimension()
	dst := imageutil.New(g.Bounds().Dx(), g.Bounds().Dy(), g.Channels)
	for i, blk := range blocks {
		if len(blk) != dim {
			return nil, fmt.Errorf("%w: block %d has %d samples, want %d", ErrBlockCount, i, len(blk), dim)
		}
		imageutil.Paint(dst, g.block(i), blk, g.Channels)
	}
	return dst, nil
}

// Scale resizes img by factor. A factor of 1 returns img unchanged.
func Scale(img image.Image, factor float64) (image.Image, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScale, factor)
	}
	b := img.Bounds()
	w, h := int(float64(b.Dx())*factor), int(float64(b.Dy())*factor)
	return imageutil.Resize(img, w, h), nil
}

// Invert negates the colours of img in the given mode.
func Invert(img image.Image, mode library.Mode) image.Image {
	return imageutil.Invert(img, mode.Channels())
}
