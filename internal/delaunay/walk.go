package delaunay

import (
	"errors"
	"fmt"

	"github.com/4D-STAR/opat-core/internal/linalg"
)

// BarycentricTolerance is how far negative a weight may be and still count
// as "inside" the simplex, absorbing floating point noise at facet
// boundaries.
const BarycentricTolerance = 1e-8

// ErrOutOfHull is returned by Locate when a walk reaches the triangulation
// boundary without finding an enclosing simplex.
var ErrOutOfHull = errors.New("delaunay: point lies outside the convex hull")

// ErrWalkStalled is returned when a walk exceeds its step budget, which
// should only happen if the triangulation itself is inconsistent.
var ErrWalkStalled = errors.New("delaunay: point location walk exceeded its step budget")

// BarycentricWeights solves for the dim+1 weights w such that
// sum(w[i]*verts[i]) == q and sum(w) == 1, by eliminating w[0] and solving
// the remaining dim-by-dim linear system for w[1:].
func BarycentricWeights(dim int, verts [][]float64, q []float64) ([]float64, error) {
	m := linalg.NewMatrix(dim)
	b := make([]float64, dim)
	for row := 0; row < dim; row++ {
		for col := 0; col < dim; col++ {
			m.Set(row, col, verts[col+1][row]-verts[0][row])
		}
		b[row] = q[row] - verts[0][row]
	}

	rest, err := linalg.SolveMatrix(m, b)
	if err != nil {
		return nil, fmt.Errorf("delaunay: %w", ErrDegenerate)
	}

	w := make([]float64, dim+1)
	sum := 0.0
	for i, v := range rest {
		w[i+1] = v
		sum += v
	}
	w[0] = 1 - sum
	return w, nil
}

// Locate walks the triangulation from the simplex at startHint until it
// finds the simplex containing q, returning its index and barycentric
// weights. startHint may be -1, in which case the walk starts from
// simplex 0.
func (t *Triangulation) Locate(startHint int, q []float64) (int, []float64, error) {
	if len(t.Simplices) == 0 {
		return -1, nil, fmt.Errorf("delaunay: empty triangulation")
	}
	current := startHint
	if current < 0 || current >= len(t.Simplices) {
		current = 0
	}

	visited := make(map[int]bool)
	maxSteps := 2*len(t.Simplices) + 10

	for step := 0; step < maxSteps; step++ {
		if visited[current] {
			return -1, nil, ErrWalkStalled
		}
		visited[current] = true

		s := t.Simplices[current]
		verts := t.vertexCoords(s.Vertices)
		w, err := BarycentricWeights(t.Dim, verts, q)
		if err != nil {
			return -1, nil, err
		}

		worst := 0
		for i := 1; i < len(w); i++ {
			if w[i] < w[worst] {
				worst = i
			}
		}
		if w[worst] >= -BarycentricTolerance {
			return current, w, nil
		}

		next := s.Neighbors[worst]
		if next < 0 {
			return -1, nil, ErrOutOfHull
		}
		current = next
	}
	return -1, nil, ErrWalkStalled
}
