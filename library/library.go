package library

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/tilematch/internal/imageutil"
)

var (
	// ErrInvalidTileSize is returned for tile sizes below 1.
	ErrInvalidTileSize = errors.New("library: tile size must be positive")

	// ErrInvalidLibrary is returned when a library's tiles disagree with its shape.
	ErrInvalidLibrary = errors.New("library: invalid library")
)

// Mode is the colour mode of a library's tiles.
type Mode int

const (
	ModeGray Mode = iota
	ModeRGB
)

func (m Mode) String() string {
	switch m {
	case ModeGray:
		return "gray"
	case ModeRGB:
		return "rgb"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Channels returns the number of samples per pixel.
func (m Mode) Channels() int {
	if m == ModeRGB {
		return imageutil.RGB
	}
	return imageutil.Gray
}

// ParseMode parses the String form of a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gray", "grey", "l", "":
		return ModeGray, nil
	case "rgb":
		return ModeRGB, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

// ModeOf returns the Mode with the given channel count.
func ModeOf(channels int) (Mode, error) {
	switch channels {
	case imageutil.Gray:
		return ModeGray, nil
	case imageutil.RGB:
		return ModeRGB, nil
	default:
		return 0, fmt.Errorf("%w: %d channels", ErrInvalidLibrary, channels)
	}
}

// Library is an ordered set of tiles. Tile i is the i-th entry of Tiles and
// holds TileSize*TileSize*Channels samples in 0..255, row-major with channels
// interleaved.
type Library struct {
	TileSize int       `json:"tile_size"`
	Channels int       `json:"channels"`
	Names    []string  `json:"names,omitempty"`
	Tiles    [][]int32 `json:"tiles"`
}

// Len returns the number of tiles.
func (l *Library) Len() int {
	return len(l.Tiles)
}

// Dimension returns the number of samples per tile.
func (l *Library) Dimension() int {
	return l.TileSize * l.TileSize * l.Channels
}

// Mode returns the colour mode implied by Channels.
func (l *Library) Mode() Mode {
	m, _ := ModeOf(l.Channels)
	return m
}

// Validate checks that every tile matches the library's shape.
func (l *Library) Validate() error {
	if l.TileSize < 1 {
		return ErrInvalidTileSize
	}
	if _, err := ModeOf(l.Channels); err != nil {
		return err
	}
	if len(l.Names) != 0 && len(l.Names) != len(l.Tiles) {
		return fmt.Errorf("%w: %d names for %d tiles", ErrInvalidLibrary, len(l.Names), len(l.Tiles))
	}
	dim := l.Dimension()
	for i, t := range l.Tiles {
		if len(t) != dim {
			return fmt.Errorf("%w: tile %d has %d samples, want %d", ErrInvalidLibrary, i, len(t), dim)
		}
	}
	return nil
}

// Integral returns the tiles for integer matching. The slice is shared.
func (l *Library) Integral() [][]int32 {
	return l.Tiles
}

// Floating returns a float64 copy of the tiles.
func (l *Library) Floating() [][]float64 {
	return ToFloating(l.Tiles)
}

// ToFloating converts sample vectors to float64.
func ToFloating(vs [][]int32) [][]float64 {
	out := make([][]float64, len(vs))
	for i, v := range vs {
		f := make([]float64, len(v))
		for j, s := range v {
			f[j] = float64(s)
		}
		out[i] = f
	}
	return out
}

// Name returns the name of tile i, or its index when the library is unnamed.
func (l *Library) Name(i int) string {
	if i < len(l.Names) {
		return l.Names[i]
	}
	return fmt.Sprintf("%d", i)
}
