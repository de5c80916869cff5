// Package linalg implements the small dense linear solves needed by the
// interpolation engine: an N-by-N LU decomposition with partial pivoting,
// used to turn a simplex's corner coordinates into barycentric weights.
// N stays small in practice (the reader rejects files with more than
// format.MaxDimensions dimensions, and the Delaunay in-sphere test works on
// (dim+2)-by-(dim+2) matrices), so no sparse path is needed.
package linalg

import (
	"errors"
	"fmt"
	"math"
)

// singularThreshold is the pivot magnitude below which a matrix is treated
// as singular rather than merely ill-conditioned.
const singularThreshold = 1e-14

// ErrSingular is returned when a matrix has no usable pivot in some column.
var ErrSingular = errors.New("linalg: matrix is singular")

// Matrix is a square, row-major dense matrix of float64 values.
type Matrix struct {
	n    int
	data []float64
}

// NewMatrix allocates an n-by-n zero matrix.
func NewMatrix(n int) *Matrix {
	return &Matrix{n: n, data: make([]float64, n*n)}
}

// Dim returns n.
func (m *Matrix) Dim() int { return m.n }

// At returns element (i, j).
func (m *Matrix) At(i, j int) float64 { return m.data[i*m.n+j] }

// Set assigns element (i, j).
func (m *Matrix) Set(i, j int, v float64) { m.data[i*m.n+j] = v }

// LU is the in-place LU decomposition of a Matrix with partial pivoting,
// ready for repeated Solve calls against different right-hand sides.
type LU struct {
	n      int
	lu     []float64 // combined L/U storage, row-major
	perm   []int     // row permutation applied during pivoting
	signum int       // +1 or -1, parity of the permutation (det sign)
}

// Decompose factors m as P*m = L*U, returning an LU usable for repeated
// solves. m is not modified.
func Decompose(m *Matrix) (*LU, error) {
	n := m.n
	lu := make([]float64, len(m.data))
	copy(lu, m.data)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	signum := 1

	at := func(i, j int) float64 { return lu[i*n+j] }
	set := func(i, j int, v float64) { lu[i*n+j] = v }

	for col := 0; col < n; col++ {
		pivotRow := col
		pivotVal := math.Abs(at(col, col))
		for row := col + 1; row < n; row++ {
			if v := math.Abs(at(row, col)); v > pivotVal {
				pivotVal = v
				pivotRow = row
			}
		}
		if pivotVal < singularThreshold {
			return nil, fmt.Errorf("%w: pivot magnitude %g in column %d", ErrSingular, pivotVal, col)
		}
		if pivotRow != col {
			for k := 0; k < n; k++ {
				lu[col*n+k], lu[pivotRow*n+k] = lu[pivotRow*n+k], lu[col*n+k]
			}
			perm[col], perm[pivotRow] = perm[pivotRow], perm[col]
			signum = -signum
		}

		pivot := at(col, col)
		for row := col + 1; row < n; row++ {
			factor := at(row, col) / pivot
			set(row, col, factor)
			for k := col + 1; k < n; k++ {
				set(row, k, at(row, k)-factor*at(col, k))
			}
		}
	}

	return &LU{n: n, lu: lu, perm: perm, signum: signum}, nil
}

// Solve returns x such that m*x = b, where m is the matrix this LU was
// decomposed from.
func (d *LU) Solve(b []float64) ([]float64, error) {
	if len(b) != d.n {
		return nil, fmt.Errorf("linalg: rhs length %d, want %d", len(b), d.n)
	}
	n := d.n
	at := func(i, j int) float64 { return d.lu[i*n+j] }

	y := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[d.perm[i]]
		for j := 0; j < i; j++ {
			sum -= at(i, j) * y[j]
		}
		y[i] = sum
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for j := i + 1; j < n; j++ {
			sum -= at(i, j) * x[j]
		}
		x[i] = sum / at(i, i)
	}
	return x, nil
}

// Determinant returns det(m) for the matrix this LU was decomposed from,
// computed as the signed product of the diagonal of U.
func (d *LU) Determinant() float64 {
	det := float64(d.signum)
	for i := 0; i < d.n; i++ {
		det *= d.lu[i*d.n+i]
	}
	return det
}

// SolveMatrix decomposes m and solves m*x = b in one call, for callers that
// do not need to reuse the factorization.
func SolveMatrix(m *Matrix, b []float64) ([]float64, error) {
	lu, err := Decompose(m)
	if err != nil {
		return nil, err
	}
	return lu.Solve(b)
}
