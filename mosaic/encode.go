package mosaic

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/hupe1980/tilematch/internal/imageutil"
)

// MaxSize is the longest side of an encoded mosaic. Larger mosaics are
// shrunk before encoding.
const MaxSize = 4000

// Format is an output image format.
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
	FormatGIF
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatGIF:
		return "gif"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".gif":
		return FormatGIF, nil
	default:
		return 0, fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
}

// Encode writes img in format f, shrinking it to MaxSize first.
func Encode(w io.Writer, img image.Image, f Format) error {
	img = imageutil.Thumbnail(img, MaxSize)
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	case FormatGIF:
		return gif.Encode(w, img, nil)
	default:
		return fmt.Errorf("unsupported output format %v", f)
	}
}
