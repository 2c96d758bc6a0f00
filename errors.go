package tilematch

import (
	"errors"
	"fmt"

	"github.com/hupe1980/tilematch/distance"
	"github.com/hupe1980/tilematch/match"
)

var (
	// ErrLengthMismatch is matched by every error caused by comparing vectors of
	// different length.
	ErrLengthMismatch = distance.ErrLengthMismatch

	// ErrEmptyTileLibrary is returned under match.Fail when no tile is eligible.
	ErrEmptyTileLibrary = match.ErrEmptyTileLibrary

	// ErrInvalidOption is returned for out-of-range option values.
	ErrInvalidOption = errors.New("invalid option")
)

// ImageError reports the image whose match failed.
//
// The original underlying error can be accessed via errors.Unwrap.
type ImageError struct {
	Image int
	Err   error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image %d: %v", e.Image, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }
