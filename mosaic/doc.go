// Package mosaic turns images into tile mosaics.
//
// An input image is converted to the library's colour mode, optionally
// inverted and scaled, cropped to a multiple of the tile size and split into
// blocks. A Matcher picks the closest library tile for every block; the
// result is rendered either as an image (ImageMosaic, GIFMosaic) or as text,
// one rune per tile (TextMosaic, TextGIFMosaic).
//
//	lib, _ := library.ASCII(8)
//	m, _ := mosaic.Decode(f, mosaic.DefaultConfig())
//	text, _ := mosaic.NewTextMosaic(m, library.ASCIITextMap).Replace(ctx, lib, mosaic.IntegralMatcher())
//	fmt.Println(text)
package mosaic
