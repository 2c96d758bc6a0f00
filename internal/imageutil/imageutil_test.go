package imageutil

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayRamp(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(y*w + x)})
		}
	}
	return img
}

func TestCropSquare(t *testing.T) {
	img := grayRamp(6, 4)
	sq := CropSquare(img)
	require.Equal(t, image.Rect(0, 0, 4, 4), sq.Bounds())
	// Centred: one column trimmed on each side.
	assert.Equal(t, color.Gray{Y: 1}, color.GrayModel.Convert(sq.At(0, 0)))
}

func TestCropMultiple(t *testing.T) {
	img := grayRamp(10, 7)

	out := CropMultiple(img, 3)
	require.Equal(t, image.Rect(0, 0, 9, 6), out.Bounds())
	assert.Equal(t, color.Gray{Y: 0}, color.GrayModel.Convert(out.At(0, 0)))

	same := CropMultiple(grayRamp(6, 6), 3)
	assert.Equal(t, image.Rect(0, 0, 6, 6), same.Bounds())
}

func TestResize(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	out := Resize(img, 4, 4)
	require.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())
	for _, s := range Samples(out, out.Bounds(), Gray) {
		assert.InDelta(t, 200, s, 1)
	}
	assert.Same(t, img, Resize(img, 16, 16))
}

func TestThumbnail(t *testing.T) {
	out := Thumbnail(image.NewGray(image.Rect(0, 0, 100, 50)), 40)
	assert.Equal(t, image.Rect(0, 0, 40, 20), out.Bounds())

	out = Thumbnail(image.NewGray(image.Rect(0, 0, 50, 100)), 40)
	assert.Equal(t, image.Rect(0, 0, 20, 40), out.Bounds())

	small := image.NewGray(image.Rect(0, 0, 10, 10))
	assert.Same(t, small, Thumbnail(small, 40))
}

func TestSamplesPaintRoundTrip(t *testing.T) {
	t.Run("Gray", func(t *testing.T) {
		img := grayRamp(4, 4)
		s := Samples(img, img.Bounds(), Gray)
		require.Len(t, s, 16)
		assert.Equal(t, int32(5), s[5])

		dst := New(4, 4, Gray)
		Paint(dst, dst.Bounds(), s, Gray)
		assert.Equal(t, img.Pix, dst.(*image.Gray).Pix)
	})

	t.Run("RGB", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 2, 1))
		img.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		img.SetRGBA(1, 0, color.RGBA{R: 40, G: 50, B: 60, A: 255})

		s := Samples(img, img.Bounds(), RGB)
		assert.Equal(t, []int32{10, 20, 30, 40, 50, 60}, s)

		dst := New(2, 1, RGB)
		Paint(dst, dst.Bounds(), s, RGB)
		assert.Equal(t, img.Pix, dst.(*image.RGBA).Pix)
	})

	t.Run("Clamp", func(t *testing.T) {
		dst := New(2, 1, Gray)
		Paint(dst, dst.Bounds(), []int32{-5, 300}, Gray)
		assert.Equal(t, []uint8{0, 255}, dst.(*image.Gray).Pix)
	})
}

func TestInvert(t *testing.T) {
	img := grayRamp(2, 2)
	inv := Invert(img, Gray).(*image.Gray)
	assert.Equal(t, []uint8{255, 254, 253, 252}, inv.Pix)

	rgba := image.NewRGBA(image.Rect(0, 0, 1, 1))
	rgba.SetRGBA(0, 0, color.RGBA{R: 0, G: 100, B: 255, A: 255})
	out := Invert(rgba, RGB).(*image.RGBA)
	assert.Equal(t, []uint8{255, 155, 0, 255}, out.Pix)
}

func TestConvert(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(2, 2, 4, 4))
	for i := range rgba.Pix {
		rgba.Pix[i] = 255
	}
	g := Convert(rgba, Gray)
	require.IsType(t, &image.Gray{}, g)
	assert.Equal(t, image.Rect(0, 0, 2, 2), g.Bounds())
	assert.Equal(t, []uint8{255, 255, 255, 255}, g.(*image.Gray).Pix)
}
