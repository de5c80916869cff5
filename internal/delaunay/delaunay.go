// Package delaunay builds an N-dimensional Delaunay triangulation over a
// set of points and supports locating the simplex containing a query point
// by walking facet-to-facet from a warm-start hint.
//
// No published Go library performs N-dimensional Delaunay triangulation for
// arbitrary N (the well-known ones are fixed at two or three dimensions),
// so this is a from-scratch incremental Bowyer-Watson construction: start
// from a bounding super-simplex, insert points one at a time by removing
// every simplex whose circumsphere contains the new point and retriangulating
// the resulting cavity, then discard every simplex still touching a
// super-simplex vertex once every real point has been inserted.
package delaunay

import (
	"errors"
	"fmt"
	"sort"

	"github.com/4D-STAR/opat-core/internal/linalg"
)

// ErrDegenerate is returned when fewer than dim+1 affinely independent
// points are available to seed the triangulation.
var ErrDegenerate = errors.New("delaunay: point set is degenerate")

// ErrTooFewPoints is returned when Build is called with fewer than dim+1
// points.
var ErrTooFewPoints = errors.New("delaunay: need at least dim+1 points")

// Simplex is one dim-dimensional cell of the triangulation: dim+1 point
// indices and, for each vertex, the neighboring simplex across the facet
// opposite it (or -1 if that facet lies on the convex hull boundary).
type Simplex struct {
	Vertices  []int
	Neighbors []int
}

// Triangulation is the fully-built Delaunay triangulation of a point set.
type Triangulation struct {
	Dim       int
	Points    [][]float64
	Simplices []Simplex
}

const superScaleFactor = 1e6

// Build triangulates points, each of which must have exactly dim
// coordinates.
func Build(points [][]float64, dim int) (*Triangulation, error) {
	if len(points) < dim+1 {
		return nil, fmt.Errorf("%w: got %d points, need %d", ErrTooFewPoints, len(points), dim+1)
	}
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("delaunay: point %d has %d coordinates, want %d", i, len(p), dim)
		}
	}

	super, superIdx := boundingSuperSimplex(points, dim)
	all := make([][]float64, 0, len(points)+len(super))
	all = append(all, points...)
	all = append(all, super...)

	t := &Triangulation{Dim: dim, Points: all}
	seed := Simplex{Vertices: superIdx, Neighbors: neg1(dim + 1)}
	t.Simplices = []Simplex{seed}

	for i := 0; i < len(points); i++ {
		if err := t.insert(i); err != nil {
			return nil, fmt.Errorf("delaunay: inserting point %d: %w", i, err)
		}
	}

	t.dropSuperSimplices(superIdx)
	t.Points = points
	t.relinkNeighbors()
	return t, nil
}

// boundingSuperSimplex builds dim+1 points far enough outside the bounding
// box of points that every real point lies strictly inside their simplex.
func boundingSuperSimplex(points [][]float64, dim int) ([][]float64, []int) {
	min := make([]float64, dim)
	max := make([]float64, dim)
	copy(min, points[0])
	copy(max, points[0])
	for _, p := range points[1:] {
		for i := 0; i < dim; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}

	center := make([]float64, dim)
	span := 1.0
	for i := 0; i < dim; i++ {
		center[i] = (min[i] + max[i]) / 2
		if d := max[i] - min[i]; d > span {
			span = d
		}
	}
	radius := span * superScaleFactor

	// dim+1 points of a (non-regular) simplex around center, scaled by radius.
	// Vertex k has coordinate radius in axis k (for k < dim) and the final
	// vertex sits at a large negative offset along every axis, which is
	// sufficient (not tight) to enclose the bounding box.
	super := make([][]float64, dim+1)
	for k := 0; k < dim; k++ {
		v := make([]float64, dim)
		copy(v, center)
		v[k] += radius
		super[k] = v
	}
	last := make([]float64, dim)
	for i := range last {
		last[i] = center[i] - radius
	}
	super[dim] = last

	idx := make([]int, dim+1)
	for i := range idx {
		idx[i] = len(points) + i
	}
	return super, idx
}

func neg1(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = -1
	}
	return s
}

// insert performs one Bowyer-Watson step: find every simplex whose
// circumsphere contains points[pointIdx], remove them, and fill the
// resulting cavity with new simplices joining pointIdx to each boundary
// facet.
func (t *Triangulation) insert(pointIdx int) error {
	q := t.Points[pointIdx]

	bad := make(map[int]bool)
	for si, s := range t.Simplices {
		verts := t.vertexCoords(s.Vertices)
		inside, err := inCircumsphere(t.Dim, verts, q)
		if err != nil {
			continue // degenerate simplex, treat as not containing q
		}
		if inside {
			bad[si] = true
		}
	}
	if len(bad) == 0 {
		return fmt.Errorf("%w: point not enclosed by any circumsphere", ErrDegenerate)
	}

	facetCount := map[string]int{}
	facetVerts := map[string][]int{}
	for si := range bad {
		s := t.Simplices[si]
		for skip := range s.Vertices {
			f := facetOf(s.Vertices, skip)
			k := facetKey(f)
			facetCount[k]++
			facetVerts[k] = f
		}
	}

	var newSimplices []Simplex
	for k, count := range facetCount {
		if count != 1 {
			continue // shared between two bad simplices, interior to the cavity
		}
		verts := append(append([]int{}, facetVerts[k]...), pointIdx)
		newSimplices = append(newSimplices, Simplex{Vertices: verts, Neighbors: neg1(len(verts))})
	}

	kept := make([]Simplex, 0, len(t.Simplices)-len(bad)+len(newSimplices))
	for si, s := range t.Simplices {
		if !bad[si] {
			kept = append(kept, s)
		}
	}
	kept = append(kept, newSimplices...)
	t.Simplices = kept
	return nil
}

func (t *Triangulation) vertexCoords(ids []int) [][]float64 {
	out := make([][]float64, len(ids))
	for i, id := range ids {
		out[i] = t.Points[id]
	}
	return out
}

// facetOf returns the dim vertex ids of s excluding the one at position
// skip, in their original relative order.
func facetOf(vertices []int, skip int) []int {
	out := make([]int, 0, len(vertices)-1)
	for i, v := range vertices {
		if i != skip {
			out = append(out, v)
		}
	}
	return out
}

func facetKey(ids []int) string {
	sorted := append([]int{}, ids...)
	sort.Ints(sorted)
	key := ""
	for _, id := range sorted {
		key += fmt.Sprintf("%d,", id)
	}
	return key
}

// dropSuperSimplices removes every simplex that references one of the
// super-simplex's artificial vertices. The super vertices were appended
// after every real point, so the real point indices need no renumbering.
func (t *Triangulation) dropSuperSimplices(superIdx []int) {
	isSuper := make(map[int]bool, len(superIdx))
	for _, id := range superIdx {
		isSuper[id] = true
	}

	kept := make([]Simplex, 0, len(t.Simplices))
	for _, s := range t.Simplices {
		touches := false
		for _, v := range s.Vertices {
			if isSuper[v] {
				touches = true
				break
			}
		}
		if !touches {
			kept = append(kept, s)
		}
	}
	t.Simplices = kept
}

// relinkNeighbors recomputes Neighbors for every simplex by matching
// shared facets. A facet with no match lies on the convex hull boundary.
func (t *Triangulation) relinkNeighbors() {
	type loc struct {
		simplex int
		vertex  int
	}
	facets := map[string][]loc{}
	for si, s := range t.Simplices {
		for skip := range s.Vertices {
			k := facetKey(facetOf(s.Vertices, skip))
			facets[k] = append(facets[k], loc{simplex: si, vertex: skip})
		}
	}
	for _, locs := range facets {
		if len(locs) != 2 {
			continue
		}
		a, b := locs[0], locs[1]
		t.Simplices[a.simplex].Neighbors[a.vertex] = b.simplex
		t.Simplices[b.simplex].Neighbors[b.vertex] = a.simplex
	}
}

// inCircumsphere reports whether q lies strictly inside the circumsphere
// of the dim-simplex verts (dim+1 points), using the standard lifted
// determinant predicate. A near-zero determinant (q on or very near the
// sphere) is resolved by a tiny deterministic perturbation of the lift
// term so cospherical point sets (e.g. a rectangular parameter grid, where
// every grid cell's four corners are exactly concyclic) still produce a
// valid, if not uniquely canonical, triangulation instead of stalling.
func inCircumsphere(dim int, verts [][]float64, q []float64) (bool, error) {
	orient, err := orientationSign(dim, verts)
	if err != nil {
		return false, err
	}

	m := linalg.NewMatrix(dim + 2)
	for i := 0; i <= dim; i++ {
		setLiftedRow(m, i, verts[i], dim)
	}
	setLiftedRow(m, dim+1, q, dim)

	lu, err := linalg.Decompose(m)
	var det float64
	if err != nil {
		det = 0
	} else {
		det = lu.Determinant()
	}
	if det == 0 {
		det = tieBreak(verts, q)
	}

	return orient*det > 0, nil
}

func setLiftedRow(m *linalg.Matrix, row int, p []float64, dim int) {
	sumSq := 0.0
	for i := 0; i < dim; i++ {
		m.Set(row, i, p[i])
		sumSq += p[i] * p[i]
	}
	m.Set(row, dim, sumSq)
	m.Set(row, dim+1, 1)
}

// orientationSign returns the sign of det([v1-v0; v2-v0; ...; vdim-v0]),
// the convention the lifted in-sphere determinant must be compared against.
func orientationSign(dim int, verts [][]float64) (float64, error) {
	m := linalg.NewMatrix(dim)
	for i := 1; i <= dim; i++ {
		for j := 0; j < dim; j++ {
			m.Set(i-1, j, verts[i][j]-verts[0][j])
		}
	}
	lu, err := linalg.Decompose(m)
	if err != nil {
		return 0, fmt.Errorf("delaunay: %w", ErrDegenerate)
	}
	det := lu.Determinant()
	if det > 0 {
		return 1, nil
	}
	return -1, nil
}

// tieBreak produces a small nonzero signed value, deterministic in the
// input coordinates, used only when the true determinant underflows to
// exactly zero.
func tieBreak(verts [][]float64, q []float64) float64 {
	h := 1.0
	for _, v := range verts {
		for _, c := range v {
			h = h*1.0000001 + c*1e-9
		}
	}
	for _, c := range q {
		h = h*1.0000001 + c*1e-9
	}
	frac := h - float64(int64(h))
	if frac == 0 {
		return 1e-12
	}
	return frac * 1e-12
}
