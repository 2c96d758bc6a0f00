package mosaic

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"io"
	"strings"

	"golang.org/x/image/draw"

	"github.com/hupe1980/tilematch/internal/imageutil"
	"github.com/hupe1980/tilematch/library"
)

// GIFMosaic is an animated mosaic: one ImageMosaic per composited frame.
type GIFMosaic struct {
	Frames []*ImageMosaic
	// Delay is the per-frame delay in 100ths of a second.
	Delay     []int
	LoopCount int
}

// DecodeGIF reads every frame of an animated GIF, composites it onto the
// logical screen honouring the frame disposal, and splits each result.
func DecodeGIF(r io.Reader, cfg Config) (*GIFMosaic, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	src, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode gif: %w", err)
	}

	screen := image.Rect(0, 0, src.Config.Width, src.Config.Height)
	if screen.Empty() {
		for _, f := range src.Image {
			screen = screen.Union(f.Bounds())
		}
	}
	canvas := image.NewRGBA(screen)

	out := &GIFMosaic{
		Frames:    make([]*ImageMosaic, 0, len(src.Image)),
		Delay:     make([]int, len(src.Image)),
		LoopCount: src.LoopCount,
	}
	copy(out.Delay, src.Delay)

	for i, frame := range src.Image {
		var disposal byte
		if i < len(src.Disposal) {
			disposal = src.Disposal[i]
		}

		var prev *image.RGBA
		if disposal == gif.DisposalPrevious {
			prev = image.NewRGBA(canvas.Rect)
			copy(prev.Pix, canvas.Pix)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

		m, err := New(canvas, cfg)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		out.Frames = append(out.Frames, m)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = prev
		}
	}
	return out, nil
}

// Replace matches the blocks of all frames in one batch and returns the
// replaced animation.
func (g *GIFMosaic) Replace(ctx context.Context, lib *library.Library, match Matcher) (*GIFMosaic, error) {
	best, err := g.bestTiles(ctx, lib, match)
	if err != nil {
		return nil, err
	}

	out := &GIFMosaic{
		Frames:    make([]*ImageMosaic, len(g.Frames)),
		Delay:     g.Delay,
		LoopCount: g.LoopCount,
	}
	for i, f := range g.Frames {
		blocks := make([][]int32, len(f.Blocks))
		for j, idx := range best[i] {
			blocks[j] = lib.Tiles[idx]
		}
		out.Frames[i] = &ImageMosaic{Grid: f.Grid, Blocks: blocks}
	}
	return out, nil
}

// bestTiles returns the matched tile indices per frame.
func (g *GIFMosaic) bestTiles(ctx context.Context, lib *library.Library, match Matcher) ([][]int, error) {
	if len(g.Frames) == 0 {
		return nil, nil
	}
	grid := g.Frames[0].Grid

	var all [][]int32
	for i, f := range g.Frames {
		if f.Grid != grid {
			return nil, fmt.Errorf("%w: frame %d grid differs", ErrBlockCount, i)
		}
		all = append(all, f.Blocks...)
	}

	flat, err := bestTiles(ctx, grid, all, lib, match)
	if err != nil {
		return nil, err
	}

	out := make([][]int, len(g.Frames))
	off := 0
	for i, f := range g.Frames {
		out[i] = flat[off : off+len(f.Blocks)]
		off += len(f.Blocks)
	}
	return out, nil
}

// Encode writes the animation as a GIF, shrinking frames to MaxSize.
func (g *GIFMosaic) Encode(w io.Writer) error {
	anim := &gif.GIF{
		Image:     make([]*image.Paletted, len(g.Frames)),
		Delay:     make([]int, len(g.Frames)),
		LoopCount: g.LoopCount,
	}
	copy(anim.Delay, g.Delay)

	for i, f := range g.Frames {
		img, err := f.Image()
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		anim.Image[i] = toPaletted(imageutil.Thumbnail(img, MaxSize), f.Grid.Channels)
	}
	return gif.EncodeAll(w, anim)
}

func toPaletted(img image.Image, channels int) *image.Paletted {
	b := img.Bounds()
	if channels == imageutil.Gray {
		dst := image.NewPaletted(b, grayPalette)
		draw.Draw(dst, b, img, b.Min, draw.Src)
		return dst
	}
	dst := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(dst, b, img, b.Min)
	return dst
}

var grayPalette = func() color.Palette {
	p := make(color.Palette, 256)
	for i := range p {
		p[i] = color.Gray{Y: uint8(i)}
	}
	return p
}()

// TextGIFMosaic is an animated text mosaic: one TextMosaic per frame.
type TextGIFMosaic struct {
	Frames []*TextMosaic
	Delay  []int
}

// NewTextGIFMosaic pairs every frame of g with textMap.
func NewTextGIFMosaic(g *GIFMosaic, textMap string) *TextGIFMosaic {
	out := &TextGIFMosaic{
		Frames: make([]*TextMosaic, len(g.Frames)),
		Delay:  g.Delay,
	}
	for i, f := range g.Frames {
		out.Frames[i] = NewTextMosaic(f, textMap)
	}
	return out
}

// Replace matches all frames in one batch.
func (t *TextGIFMosaic) Replace(ctx context.Context, lib *library.Library, match Matcher) (*TextGIFMosaic, error) {
	if len(t.Frames) == 0 {
		return &TextGIFMosaic{Delay: t.Delay}, nil
	}
	if err := t.Frames[0].checkTextMap(lib); err != nil {
		return nil, err
	}

	src := &GIFMosaic{Frames: make([]*ImageMosaic, len(t.Frames))}
	for i, f := range t.Frames {
		src.Frames[i] = f.Source
	}
	best, err := src.bestTiles(ctx, lib, match)
	if err != nil {
		return nil, err
	}

	out := &TextGIFMosaic{Frames: make([]*TextMosaic, len(t.Frames)), Delay: t.Delay}
	for i, f := range t.Frames {
		out.Frames[i] = f.withIndices(best[i])
	}
	return out, nil
}

// String returns the frames separated by a blank line.
func (t *TextGIFMosaic) String() string {
	frames := make([]string, len(t.Frames))
	for i, f := range t.Frames {
		frames[i] = f.String()
	}
	return strings.Join(frames, "\n\n")
}
