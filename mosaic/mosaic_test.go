package mosaic

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tilematch"
	"github.com/hupe1980/tilematch/distance"
	"github.com/hupe1980/tilematch/library"
)

// shades is a 2px gray library: black, mid and white tiles.
func shades() *library.Library {
	return &library.Library{
		TileSize: 2,
		Channels: 1,
		Tiles: [][]int32{
			{0, 0, 0, 0},
			{128, 128, 128, 128},
			{255, 255, 255, 255},
		},
	}
}

func cfg2() Config {
	c := DefaultConfig()
	c.TileSize = 2
	return c
}

func TestImageMosaic_Replace(t *testing.T) {
	ctx := context.Background()
	m, err := New(quadrants(), cfg2())
	require.NoError(t, err)

	for name, match := range map[string]Matcher{
		"integral": IntegralMatcher(),
		"floating": FloatingMatcher(tilematch.WithParallelism(tilematch.ParallelNested)),
		"checked":  MetricMatcher(distance.CheckedSquaredDifference[int32]{}),
		"absolute": FloatingMetricMatcher(distance.AbsoluteDifference[float64]{}),
	} {
		t.Run(name, func(t *testing.T) {
			out, err := m.Replace(ctx, shades(), match)
			require.NoError(t, err)

			// 10 -> black, 60 -> black, 110 -> mid, 160 -> mid
			assert.Equal(t, []int32{0, 0, 0, 0}, out.Blocks[0])
			assert.Equal(t, []int32{0, 0, 0, 0}, out.Blocks[1])
			assert.Equal(t, []int32{128, 128, 128, 128}, out.Blocks[2])
			assert.Equal(t, []int32{128, 128, 128, 128}, out.Blocks[3])

			// The source is left untouched.
			assert.Equal(t, []int32{10, 10, 10, 10}, m.Blocks[0])
		})
	}
}

func TestImageMosaic_Invert(t *testing.T) {
	c := cfg2()
	c.Invert = true
	m, err := New(quadrants(), c)
	require.NoError(t, err)

	out, err := m.Replace(context.Background(), shades(), IntegralMatcher())
	require.NoError(t, err)
	// 245 and 195 are closest to white.
	assert.Equal(t, []int32{255, 255, 255, 255}, out.Blocks[0])
	assert.Equal(t, []int32{255, 255, 255, 255}, out.Blocks[1])
}

func TestImageMosaic_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := New(quadrants(), Config{TileSize: 2, Scale: 0})
	assert.ErrorIs(t, err, ErrInvalidScale)

	_, err = New(quadrants(), Config{TileSize: 0, Scale: 1})
	assert.ErrorIs(t, err, ErrInvalidTileSize)

	m, err := New(quadrants(), cfg2())
	require.NoError(t, err)

	wrong := shades()
	wrong.TileSize = 4
	_, err = m.Replace(ctx, wrong, IntegralMatcher())
	assert.ErrorIs(t, err, ErrLibraryMismatch)

	_, err = m.Replace(ctx, &library.Library{TileSize: 2, Channels: 1}, IntegralMatcher())
	assert.ErrorIs(t, err, tilematch.ErrEmptyTileLibrary)

	boom := errors.New("boom")
	_, err = m.Replace(ctx, shades(), func(context.Context, [][]int32, [][]int32) ([]int, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = m.Replace(ctx, shades(), func(_ context.Context, blocks, _ [][]int32) ([]int, error) {
		return make([]int, len(blocks)-1), nil
	})
	assert.ErrorIs(t, err, ErrBlockCount)

	_, err = m.Replace(ctx, shades(), func(_ context.Context, blocks, _ [][]int32) ([]int, error) {
		out := make([]int, len(blocks))
		out[0] = 7
		return out, nil
	})
	assert.ErrorIs(t, err, ErrLibraryMismatch)
}

func TestImageMosaic_Encode(t *testing.T) {
	m, err := New(quadrants(), cfg2())
	require.NoError(t, err)

	for _, f := range []Format{FormatPNG, FormatJPEG, FormatGIF} {
		t.Run(f.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, m.Encode(&buf, f))

			img, _, err := image.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
		})
	}
}

func TestEncode_MaxSize(t *testing.T) {
	big := image.NewGray(image.Rect(0, 0, MaxSize+400, 10))
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, big, FormatPNG))

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, MaxSize, cfg.Width)
	assert.LessOrEqual(t, cfg.Height, 10)
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"out.png":  FormatPNG,
		"OUT.JPG":  FormatJPEG,
		"a.jpeg":   FormatJPEG,
		"anim.gif": FormatGIF,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("out.bmp")
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, quadrants()))

	m, err := Decode(&buf, cfg2())
	require.NoError(t, err)
	assert.Equal(t, 4, m.Grid.Len())

	_, err = Decode(bytes.NewReader([]byte("nope")), cfg2())
	assert.Error(t, err)
}

func TestTextMosaic(t *testing.T) {
	ctx := context.Background()
	m, err := New(quadrants(), cfg2())
	require.NoError(t, err)

	tm := NewTextMosaic(m, "#+.")
	assert.Equal(t, "  \n  ", tm.String())

	out, err := tm.Replace(ctx, shades(), IntegralMatcher())
	require.NoError(t, err)
	assert.Equal(t, "##\n++", out.String())

	var buf bytes.Buffer
	n, err := out.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "##\n++", buf.String())

	_, err = NewTextMosaic(m, "#+").Replace(ctx, shades(), IntegralMatcher())
	assert.ErrorIs(t, err, ErrTextMapTooSmall)
}

func TestTextMosaic_ASCII(t *testing.T) {
	// 13px tiles keep the glyphs at their native size.
	lib, err := library.ASCII(13)
	require.NoError(t, err)

	white := image.NewGray(image.Rect(0, 0, 26, 13))
	for i := range white.Pix {
		white.Pix[i] = 255
	}
	c := DefaultConfig()
	c.TileSize = 13
	m, err := New(white, c)
	require.NoError(t, err)

	out, err := NewTextMosaic(m, library.ASCIITextMap).Replace(context.Background(), lib, IntegralMatcher())
	require.NoError(t, err)
	assert.Equal(t, "  ", out.String())
}

// animation builds a two-frame 4x4 GIF: a dark frame, then a light 2x2 patch
// over the top-left corner.
func animation(t *testing.T) []byte {
	t.Helper()
	pal := color.Palette{color.Gray{Y: 10}, color.Gray{Y: 250}}

	f0 := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
	f1 := image.NewPaletted(image.Rect(0, 0, 2, 2), pal)
	for i := range f1.Pix {
		f1.Pix[i] = 1
	}

	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, &gif.GIF{
		Image:    []*image.Paletted{f0, f1},
		Delay:    []int{5, 7},
		Disposal: []byte{gif.DisposalNone, gif.DisposalNone},
		Config:   image.Config{ColorModel: pal, Width: 4, Height: 4},
	}))
	return buf.Bytes()
}

func TestGIFMosaic(t *testing.T) {
	ctx := context.Background()
	g, err := DecodeGIF(bytes.NewReader(animation(t)), cfg2())
	require.NoError(t, err)
	require.Len(t, g.Frames, 2)
	assert.Equal(t, []int{5, 7}, g.Delay)

	calls := 0
	counting := func(ctx context.Context, blocks, tiles [][]int32) ([]int, error) {
		calls++
		return tilematch.MatchAllIntegral(ctx, blocks, tiles)
	}

	out, err := g.Replace(ctx, shades(), counting)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "all frames match in one batch")

	// Frame 0 is dark everywhere; frame 1 lightens the top-left block only.
	assert.Equal(t, []int32{0, 0, 0, 0}, out.Frames[0].Blocks[0])
	assert.Equal(t, []int32{255, 255, 255, 255}, out.Frames[1].Blocks[0])
	assert.Equal(t, []int32{0, 0, 0, 0}, out.Frames[1].Blocks[3])

	var buf bytes.Buffer
	require.NoError(t, out.Encode(&buf))
	decoded, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	assert.Len(t, decoded.Image, 2)
	assert.Equal(t, []int{5, 7}, decoded.Delay)
}

func TestTextGIFMosaic(t *testing.T) {
	g, err := DecodeGIF(bytes.NewReader(animation(t)), cfg2())
	require.NoError(t, err)

	tg := NewTextGIFMosaic(g, "#+.")
	out, err := tg.Replace(context.Background(), shades(), IntegralMatcher())
	require.NoError(t, err)
	assert.Equal(t, "##\n##\n\n.#\n##", out.String())

	_, err = NewTextGIFMosaic(g, "#").Replace(context.Background(), shades(), IntegralMatcher())
	assert.ErrorIs(t, err, ErrTextMapTooSmall)
}

func TestDecodeGIF_Errors(t *testing.T) {
	_, err := DecodeGIF(bytes.NewReader([]byte("GIF89a")), cfg2())
	assert.Error(t, err)

	_, err = DecodeGIF(bytes.NewReader(animation(t)), Config{TileSize: 2})
	assert.ErrorIs(t, err, ErrInvalidScale)
}
