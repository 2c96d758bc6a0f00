package library

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ASCIITextMap pairs each tile of the ASCII library with its character:
// tile i renders rune i of this string.
const ASCIITextMap = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-+[]{}\\|/,.:;'\"!@#$%^&*?><~` "

// ASCII renders the built-in glyph library: one dark glyph on a white square
// per rune of ASCIITextMap, resampled to tileSize in gray mode.
func ASCII(tileSize int) (*Library, error) {
	if tileSize < 1 {
		return nil, ErrInvalidTileSize
	}
	face := basicfont.Face7x13
	side := face.Height

	runes := []rune(ASCIITextMap)
	lib := &Library{
		TileSize: tileSize,
		Channels: ModeGray.Channels(),
		Names:    make([]string, len(runes)),
		Tiles:    make([][]int32, len(runes)),
	}
	for i, r := range runes {
		canvas := image.NewGray(image.Rect(0, 0, side, side))
		draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

		d := font.Drawer{
			Dst:  canvas,
			Src:  image.Black,
			Face: face,
			Dot:  fixed.P((side-face.Advance)/2, face.Ascent),
		}
		d.DrawString(string(r))

		lib.Names[i] = string(r)
		lib.Tiles[i] = Prepare(canvas, tileSize, ModeGray)
	}
	return lib, nil
}
