// Package imageutil holds the pixel plumbing shared by tile libraries and
// mosaics: cropping, resampling and conversion between images and flat
// sample vectors.
package imageutil

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Channels returned by Samples.
const (
	Gray = 1
	RGB  = 3
)

// CropSquare returns the largest centred square of img.
func CropSquare(img image.Image) image.Image {
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	return crop(img, side, side)
}

// CropMultiple crops img to the largest centred region whose sides are
// multiples of n. The image is returned as is when nothing needs trimming.
func CropMultiple(img image.Image, n int) image.Image {
	b := img.Bounds()
	w, h := b.Dx()-b.Dx()%n, b.Dy()-b.Dy()%n
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return crop(img, w, h)
}

func crop(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	origin := image.Pt(b.Min.X+(b.Dx()-w)/2, b.Min.Y+(b.Dy()-h)/2)
	dst := newLike(img, image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, origin, draw.Src)
	return dst
}

// Resize resamples img to w x h with Catmull-Rom.
func Resize(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := newLike(img, image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Thumbnail shrinks img so neither side exceeds limit, keeping the aspect ratio.
func Thumbnail(img image.Image, limit int) image.Image {
	b := img.Bounds()
	if b.Dx() <= limit && b.Dy() <= limit {
		return img
	}
	w, h := b.Dx(), b.Dy()
	if w >= h {
		h = max(1, h*limit/w)
		w = limit
	} else {
		w = max(1, w*limit/h)
		h = limit
	}
	return Resize(img, w, h)
}

// Convert returns img as *image.Gray (channels == Gray) or *image.RGBA.
func Convert(img image.Image, channels int) image.Image {
	b := img.Bounds()
	switch channels {
	case Gray:
		if g, ok := img.(*image.Gray); ok {
			return g
		}
		dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	default:
		if rgba, ok := img.(*image.RGBA); ok {
			return rgba
		}
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
}

// Invert negates every colour channel of img; alpha is kept.
func Invert(img image.Image, channels int) image.Image {
	src := Convert(img, channels)
	switch s := src.(type) {
	case *image.Gray:
		dst := image.NewGray(s.Rect)
		for i, v := range s.Pix {
			dst.Pix[i] = 255 - v
		}
		return dst
	case *image.RGBA:
		dst := image.NewRGBA(s.Rect)
		for i := 0; i < len(s.Pix); i += 4 {
			dst.Pix[i] = 255 - s.Pix[i]
			dst.Pix[i+1] = 255 - s.Pix[i+1]
			dst.Pix[i+2] = 255 - s.Pix[i+2]
			dst.Pix[i+3] = s.Pix[i+3]
		}
		return dst
	}
	return src
}

// Samples flattens the r region of img row-major, channels interleaved.
func Samples(img image.Image, r image.Rectangle, channels int) []int32 {
	out := make([]int32, 0, r.Dx()*r.Dy()*channels)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			switch channels {
			case Gray:
				g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
				out = append(out, int32(g.Y))
			default:
				c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
				out = append(out, int32(c.R), int32(c.G), int32(c.B))
			}
		}
	}
	return out
}

// Paint writes samples produced by Samples into the r region of dst.
// Values are clamped to 0..255.
func Paint(dst draw.Image, r image.Rectangle, samples []int32, channels int) {
	i := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			switch channels {
			case Gray:
				dst.Set(x, y, color.Gray{Y: clamp(samples[i])})
			default:
				dst.Set(x, y, color.RGBA{
					R: clamp(samples[i]),
					G: clamp(samples[i+1]),
					B: clamp(samples[i+2]),
					A: 0xff,
				})
			}
			i += channels
		}
	}
}

// New returns a blank canvas of the given size for the channel count.
func New(w, h, channels int) draw.Image {
	r := image.Rect(0, 0, w, h)
	if channels == Gray {
		return image.NewGray(r)
	}
	return image.NewRGBA(r)
}

func newLike(img image.Image, r image.Rectangle) draw.Image {
	switch img.(type) {
	case *image.Gray:
		return image.NewGray(r)
	default:
		return image.NewRGBA(r)
	}
}

func clamp(v int32) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
