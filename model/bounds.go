package model

import (
	"fmt"

	"github.com/4D-STAR/opat-core/paramkey"
)

// Bounds is the axis-aligned bounding box of a set of parameter vectors,
// one [min,max] pair per dimension. It is a coarse, fast pre-check: a point
// outside Bounds cannot be inside the convex hull, but a point inside
// Bounds is not guaranteed to be inside the hull either.
type Bounds struct {
	Min []float64
	Max []float64
}

// ComputeBounds derives Bounds from a set of keys, all of which must share
// the same dimensionality.
func ComputeBounds(keys []paramkey.Key) (Bounds, error) {
	if len(keys) == 0 {
		return Bounds{}, fmt.Errorf("model: cannot compute bounds of zero keys")
	}
	n := keys[0].Size()
	min := make([]float64, n)
	max := make([]float64, n)
	copy(min, keys[0].Values())
	copy(max, keys[0].Values())

	for _, k := range keys[1:] {
		if k.Size() != n {
			return Bounds{}, fmt.Errorf("model: key dimensionality mismatch: %d vs %d", k.Size(), n)
		}
		v := k.Values()
		for i := 0; i < n; i++ {
			if v[i] < min[i] {
				min[i] = v[i]
			}
			if v[i] > max[i] {
				max[i] = v[i]
			}
		}
	}
	return Bounds{Min: min, Max: max}, nil
}

// Dimensions returns N.
func (b Bounds) Dimensions() int { return len(b.Min) }

// Contains reports whether point falls within every axis range, inclusive.
func (b Bounds) Contains(point []float64) bool {
	if len(point) != len(b.Min) {
		return false
	}
	for i, v := range point {
		if v < b.Min[i] || v > b.Max[i] {
			return false
		}
	}
	return true
}
