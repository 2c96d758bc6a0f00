package distance

import (
	"fmt"
	"strings"
)

// Integer is the set of sample types accepted by the integral metrics.
// Unsigned types are excluded because their differences wrap.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Float is the set of sample types accepted by the floating-point metrics.
type Float interface {
	~float32 | ~float64
}

// Number is any sample type a metric can operate on.
type Number interface {
	Integer | Float
}

// Metric computes a dissimilarity between two vectors. Smaller is closer.
// Implementations must be safe for concurrent use.
type Metric[T Number] interface {
	Distance(a, b []T) (T, error)
	Name() string
}

// Compile-time checks.
var (
	_ Metric[int32]   = IntegerSquaredDifference[int32]{}
	_ Metric[int32]   = CheckedSquaredDifference[int32]{}
	_ Metric[float64] = FloatSquaredDifference[float64]{}
	_ Metric[float64] = AbsoluteDifference[float64]{}
	_ Metric[float64] = WeightedSquaredDifference[float64]{}
)

// SquaredDifference returns sum((a[i]-b[i])^2), or a *LengthMismatchError
// when the vectors differ in length. Integer sums wrap on overflow.
func SquaredDifference[T Number](a, b []T) (T, error) {
	if err := checkLength(len(a), len(b)); err != nil {
		return 0, err
	}
	return squaredDifference(a, b), nil
}

// SquaredL2Int32 is SquaredDifference instantiated for int32 samples.
func SquaredL2Int32(a, b []int32) (int32, error) {
	return SquaredDifference(a, b)
}

// SquaredL2Float64 is SquaredDifference instantiated for float64 samples.
func SquaredL2Float64(a, b []float64) (float64, error) {
	return SquaredDifference(a, b)
}

// squaredDifference requires len(a) == len(b).
func squaredDifference[T Number](a, b []T) T {
	b = b[:len(a)]
	var sum T
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// IntegerSquaredDifference is the sum of squared differences computed in T.
// Overflow wraps silently.
type IntegerSquaredDifference[T Integer] struct{}

// Distance implements Metric.
func (IntegerSquaredDifference[T]) Distance(a, b []T) (T, error) {
	return SquaredDifference(a, b)
}

// Name implements Metric.
func (IntegerSquaredDifference[T]) Name() string { return "integer-squared-difference" }

// CheckedSquaredDifference is IntegerSquaredDifference with overflow detection
// on the subtraction, the square and the running sum.
type CheckedSquaredDifference[T Integer] struct{}

// Distance implements Metric.
func (CheckedSquaredDifference[T]) Distance(a, b []T) (T, error) {
	if err := checkLength(len(a), len(b)); err != nil {
		return 0, err
	}
	var sum T
	for i := range a {
		d := a[i] - b[i]
		// Signed subtraction overflowed if the operands differ in sign and the
		// result's sign differs from a's.
		if (a[i]^b[i])&(a[i]^d) < 0 {
			return 0, fmt.Errorf("sample %d: %w", i, ErrOverflow)
		}
		sq := d * d
		if sq < 0 || (d != 0 && sq/d != d) {
			return 0, fmt.Errorf("sample %d: %w", i, ErrOverflow)
		}
		next := sum + sq
		if next < sum {
			return 0, fmt.Errorf("sample %d: %w", i, ErrOverflow)
		}
		sum = next
	}
	return sum, nil
}

// Name implements Metric.
func (CheckedSquaredDifference[T]) Name() string { return "checked-squared-difference" }

// FloatSquaredDifference is the sum of squared differences in floating point.
type FloatSquaredDifference[T Float] struct{}

// Distance implements Metric.
func (FloatSquaredDifference[T]) Distance(a, b []T) (T, error) {
	return SquaredDifference(a, b)
}

// Name implements Metric.
func (FloatSquaredDifference[T]) Name() string { return "float-squared-difference" }

// AbsoluteDifference is the sum of absolute differences (L1).
// For integer samples it returns ErrOverflow instead of wrapping, so a
// distance is never negative.
type AbsoluteDifference[T Number] struct{}

// Distance implements Metric.
func (AbsoluteDifference[T]) Distance(a, b []T) (T, error) {
	if err := checkLength(len(a), len(b)); err != nil {
		return 0, err
	}
	var sum T
	for i := range a {
		d := a[i] - b[i]
		// Only integer subtraction can move away from a in the wrong direction.
		if (b[i] < 0 && d < a[i]) || (b[i] > 0 && d > a[i]) {
			return 0, fmt.Errorf("sample %d: %w", i, ErrOverflow)
		}
		if d < 0 {
			d = -d
			if d < 0 {
				return 0, fmt.Errorf("sample %d: %w", i, ErrOverflow)
			}
		}
		next := sum + d
		if next < sum {
			return 0, fmt.Errorf("sample %d: %w", i, ErrOverflow)
		}
		sum = next
	}
	return sum, nil
}

// Name implements Metric.
func (AbsoluteDifference[T]) Name() string { return "absolute-difference" }

// WeightedSquaredDifference is sum(w[i] * (a[i]-b[i])^2).
// Weights must have the same length as the compared vectors; otherwise
// Distance returns ErrInvalidWeights.
type WeightedSquaredDifference[T Number] struct {
	Weights []T
}

// Distance implements Metric.
func (w WeightedSquaredDifference[T]) Distance(a, b []T) (T, error) {
	if err := checkLength(len(a), len(b)); err != nil {
		return 0, err
	}
	if len(w.Weights) != len(a) {
		return 0, fmt.Errorf("%w: %d weights for %d samples", ErrInvalidWeights, len(w.Weights), len(a))
	}
	var sum T
	for i := range a {
		d := a[i] - b[i]
		sum += w.Weights[i] * d * d
	}
	return sum, nil
}

// Name implements Metric.
func (WeightedSquaredDifference[T]) Name() string { return "weighted-squared-difference" }

// Kind selects one of the built-in metrics by name.
type Kind int

const (
	KindSquaredDifference Kind = iota
	KindAbsoluteDifference
	KindCheckedSquaredDifference
)

func (k Kind) String() string {
	switch k {
	case KindSquaredDifference:
		return "squared"
	case KindAbsoluteDifference:
		return "absolute"
	case KindCheckedSquaredDifference:
		return "checked"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// ParseKind parses the String form of a Kind (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "squared", "ssd":
		return KindSquaredDifference, nil
	case "absolute", "sad":
		return KindAbsoluteDifference, nil
	case "checked":
		return KindCheckedSquaredDifference, nil
	default:
		return 0, fmt.Errorf("unknown metric %q", s)
	}
}

// IntegralMetric returns the int32 metric for k.
func IntegralMetric(k Kind) (Metric[int32], error) {
	switch k {
	case KindSquaredDifference:
		return IntegerSquaredDifference[int32]{}, nil
	case KindCheckedSquaredDifference:
		return CheckedSquaredDifference[int32]{}, nil
	case KindAbsoluteDifference:
		return AbsoluteDifference[int32]{}, nil
	default:
		return nil, fmt.Errorf("unsupported metric for int32: %v", k)
	}
}

// FloatingMetric returns the float64 metric for k.
func FloatingMetric(k Kind) (Metric[float64], error) {
	switch k {
	case KindSquaredDifference:
		return FloatSquaredDifference[float64]{}, nil
	case KindAbsoluteDifference:
		return AbsoluteDifference[float64]{}, nil
	default:
		return nil, fmt.Errorf("unsupported metric for float64: %v", k)
	}
}
