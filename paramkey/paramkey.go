// Package paramkey implements the stable, hashable key derived from a
// floating-point parameter vector.
//
// Floating-point vectors cannot be compared or hashed directly without risking
// spurious mismatches between producers that computed the "same" physical
// point with slightly different rounding. A Key projects the vector onto a
// coarse integer grid (configurable precision) and uses that projection for
// both equality and hashing, while retaining the original float values for
// distance calculations and display.
package paramkey

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

const (
	// MinPrecision is the smallest accepted hash precision.
	MinPrecision = 1
	// MaxPrecision is the largest accepted hash precision.
	MaxPrecision = 13
)

var (
	// ErrEmptyVector is returned when New is called with a zero-length vector.
	ErrEmptyVector = errors.New("paramkey: values vector must not be empty")
	// ErrInvalidPrecision is returned when precision falls outside [MinPrecision, MaxPrecision].
	ErrInvalidPrecision = errors.New("paramkey: precision must be between 1 and 13 inclusive")
	// ErrNegativeValue is returned when a vector component is negative.
	ErrNegativeValue = errors.New("paramkey: values must be non-negative")
)

// Key is an immutable, hashable projection of an N-dimensional float64
// parameter vector. It is safe for concurrent reads. Key holds slices and is
// therefore not comparable; use MapKey to key a native Go map.
type Key struct {
	values    []float64
	image     []int64
	precision int
}

// New builds a Key from values at the given decimal precision.
//
// precision must be in [MinPrecision, MaxPrecision]. Every component of
// values must be non-negative; the OPAT coordinate system (composition
// fractions and similar physical quantities) never stores negative index
// values, and negative scaled integers would break the round-to-multiple-of-10
// step below.
func New(values []float64, precision int) (Key, error) {
	if len(values) == 0 {
		return Key{}, ErrEmptyVector
	}
	if precision < MinPrecision || precision > MaxPrecision {
		return Key{}, fmt.Errorf("%w: got %d", ErrInvalidPrecision, precision)
	}

	scale := math.Pow(10, float64(precision))
	image := make([]int64, len(values))
	for i, v := range values {
		if v < 0 {
			return Key{}, fmt.Errorf("%w: component %d is %v", ErrNegativeValue, i, v)
		}
		scaled := int64(math.Trunc(v * scale))
		image[i] = roundToMultipleOf10(scaled)
	}

	stored := make([]float64, len(values))
	copy(stored, values)

	return Key{values: stored, image: image, precision: precision}, nil
}

// roundToMultipleOf10 rounds a non-negative integer to the nearest multiple
// of 10, discarding the final decimal digit of the scaled value.
func roundToMultipleOf10(v int64) int64 {
	if v == 0 {
		return 0
	}
	return (v + 5) / 10 * 10
}

// Size returns N, the dimensionality of the key.
func (k Key) Size() int {
	return len(k.values)
}

// Precision returns the configured decimal precision.
func (k Key) Precision() int {
	return k.precision
}

// Initialized reports whether k was built via New (the zero value is not
// usable as a key).
func (k Key) Initialized() bool {
	return k.values != nil
}

// Values returns a copy of the original float64 vector.
func (k Key) Values() []float64 {
	out := make([]float64, len(k.values))
	copy(out, k.values)
	return out
}

// At returns the i-th original component, bounds-checked.
func (k Key) At(i int) (float64, error) {
	if i < 0 || i >= len(k.values) {
		return 0, fmt.Errorf("paramkey: index %d out of range [0,%d)", i, len(k.values))
	}
	return k.values[i], nil
}

// Equal reports whether k and other represent the same key: both must be
// initialized, share the same dimensionality and precision, and have
// elementwise-equal integer images.
func (k Key) Equal(other Key) bool {
	if !k.Initialized() || !other.Initialized() {
		return false
	}
	if len(k.values) != len(other.values) {
		return false
	}
	if k.precision != other.precision {
		return false
	}
	for i := range k.image {
		if k.image[i] != other.image[i] {
			return false
		}
	}
	return true
}

// Hash returns a 64-bit hash of the integer image, suitable for use as the
// backing key of a hash map when Key itself cannot be used directly (e.g.
// across FFI boundaries).
func (k Key) Hash() uint64 {
	buf := make([]byte, 8*len(k.image))
	for i, v := range k.image {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	}
	return xxhash.Sum64(buf)
}

// String renders the key as its original float components.
func (k Key) String() string {
	return fmt.Sprintf("%v", k.values)
}

// comparable is a value type usable as a Go map key directly, derived from
// the integer image and precision. Two Keys that are Equal always produce
// the same comparable, and two Keys that are not Equal never do (barring an
// astronomically unlikely image collision of differing N, which Size
// mismatches already rule out structurally).
type comparable struct {
	image     string
	precision int
}

// MapKey returns a value usable as a key in a native Go map, with the same
// equality semantics as Equal. encoding/binary gives a fixed byte layout per
// element so two Keys with equal images always produce an equal MapKey.
func (k Key) MapKey() any {
	buf := make([]byte, 8*len(k.image))
	for i, v := range k.image {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	}
	return comparable{image: string(buf), precision: k.precision}
}
