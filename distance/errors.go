package distance

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch is matched by every *LengthMismatchError.
	ErrLengthMismatch = errors.New("vector length mismatch")

	// ErrOverflow is returned by checked integer metrics when the sum does not
	// fit the sample type.
	ErrOverflow = errors.New("integer overflow")

	// ErrInvalidWeights is returned by WeightedSquaredDifference when the
	// weights do not cover the compared vectors.
	ErrInvalidWeights = errors.New("invalid metric weights")
)

// LengthMismatchError reports two compared vectors of different length.
type LengthMismatchError struct {
	Left  int
	Right int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("vector length mismatch: %d != %d", e.Left, e.Right)
}

// Is reports whether target is ErrLengthMismatch.
func (e *LengthMismatchError) Is(target error) bool {
	return target == ErrLengthMismatch
}

func checkLength(a, b int) error {
	if a != b {
		return &LengthMismatchError{Left: a, Right: b}
	}
	return nil
}
