package mosaic

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/tilematch/library"
)

// TextMosaic renders a mosaic as text, one rune per block.
type TextMosaic struct {
	Source  *ImageMosaic
	TextMap []rune
	// Runes holds one rune per block in row-major order.
	Runes []rune
}

// NewTextMosaic pairs src with textMap: tile i of a library is written as
// rune i of textMap. Until Replace is called every block is a space.
func NewTextMosaic(src *ImageMosaic, textMap string) *TextMosaic {
	runes := make([]rune, len(src.Blocks))
	for i := range runes {
		runes[i] = ' '
	}
	return &TextMosaic{
		Source:  src,
		TextMap: []rune(textMap),
		Runes:   runes,
	}
}

// Replace returns a new text mosaic with every block replaced by the rune of
// its closest tile.
func (t *TextMosaic) Replace(ctx context.Context, lib *library.Library, match Matcher) (*TextMosaic, error) {
	if err := t.checkTextMap(lib); err != nil {
		return nil, err
	}
	best, err := bestTiles(ctx, t.Source.Grid, t.Source.Blocks, lib, match)
	if err != nil {
		return nil, err
	}
	return t.withIndices(best), nil
}

func (t *TextMosaic) checkTextMap(lib *library.Library) error {
	if lib.Len() > len(t.TextMap) {
		return fmt.Errorf("%w: %d tiles, %d runes", ErrTextMapTooSmall, lib.Len(), len(t.TextMap))
	}
	return nil
}

func (t *TextMosaic) withIndices(best []int) *TextMosaic {
	runes := make([]rune, len(best))
	for i, idx := range best {
		runes[i] = t.TextMap[idx]
	}
	return &TextMosaic{Source: t.Source, TextMap: t.TextMap, Runes: runes}
}

// String returns the rows of the mosaic separated by newlines.
func (t *TextMosaic) String() string {
	cols := t.Source.Grid.Cols
	if cols == 0 {
		return ""
	}
	var sb strings.Builder
	for i := 0; i < len(t.Runes); i += cols {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(t.Runes[i:min(i+cols, len(t.Runes))]))
	}
	return sb.String()
}

// WriteTo writes String to w.
func (t *TextMosaic) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, t.String())
	return int64(n), err
}
