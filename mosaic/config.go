package mosaic

import "github.com/hupe1980/tilematch/library"

// Config controls how an input image is turned into blocks.
type Config struct {
	// TileSize is the side of a block in pixels.
	TileSize int
	// Mode is the colour mode; it must match the library used for Replace.
	Mode library.Mode
	// Scale resizes the input before splitting. Must be positive.
	Scale float64
	// Invert negates the input colours before splitting.
	Invert bool
}

// DefaultConfig returns 8px gray blocks at the original size.
func DefaultConfig() Config {
	return Config{
		TileSize: 8,
		Mode:     library.ModeGray,
		Scale:    1,
	}
}

func (c Config) validate() error {
	if c.TileSize < 1 {
		return ErrInvalidTileSize
	}
	if c.Scale <= 0 {
		return ErrInvalidScale
	}
	return nil
}
