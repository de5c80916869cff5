// Package interpolate builds an N-dimensional Delaunay triangulation over a
// model.File's parameter vectors and answers piecewise-linear interpolation
// queries against it: locate the simplex containing a point, solve for its
// barycentric weights, and blend the corresponding corner tables.
package interpolate

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/4D-STAR/opat-core/internal/delaunay"
	"github.com/4D-STAR/opat-core/internal/errs"
	"github.com/4D-STAR/opat-core/model"
	"github.com/4D-STAR/opat-core/paramkey"
)

// Engine answers interpolation queries against a fixed model.File. It is
// built once per File and is safe for concurrent use; only the warm-start
// locate cache needs a lock, since everything else it touches is read-only
// after construction.
type Engine struct {
	file   *model.File
	keys   []paramkey.Key
	tri    *delaunay.Triangulation
	bounds model.Bounds
	logger *slog.Logger

	mu          sync.Mutex
	lastSimplex int
}

// Mode selects the interpolation scheme an Engine evaluates queries with.
// Linear is the only scheme this package implements; every other Mode
// value is accepted by NewEngine only to be rejected with
// errs.ErrUnimplemented, so callers can request a future scheme without a
// signature change once one exists.
type Mode int

const (
	// Linear is piecewise-linear interpolation via barycentric weights
	// over the Delaunay triangulation of stored parameter vectors.
	Linear Mode = iota
)

// Option configures an Engine at construction time.
type Option func(*engineConfig)

type engineConfig struct {
	logger *slog.Logger
}

// WithLogger attaches a logger for triangulation and query diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *engineConfig) { c.logger = l }
}

// NewEngine builds the triangulation for file and returns an Engine ready
// to answer queries. It requires at least dim+1 cards, where dim is
// file.NumDimensions(). mode must be Linear; any other value fails with
// errs.ErrUnimplemented since no other interpolation scheme exists yet.
func NewEngine(file *model.File, mode Mode, opts ...Option) (*Engine, error) {
	if mode != Linear {
		return nil, fmt.Errorf("interpolate: mode %d: %w", mode, errs.ErrUnimplemented)
	}

	cfg := &engineConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	keys := file.Keys()
	dim := file.NumDimensions()
	if len(keys) < dim+1 {
		return nil, fmt.Errorf("interpolate: need at least %d cards for %d dimensions, got %d: %w",
			dim+1, dim, len(keys), errs.ErrDegenerateSimplex)
	}

	points := make([][]float64, len(keys))
	for i, k := range keys {
		points[i] = k.Values()
	}

	bounds, err := model.ComputeBounds(keys)
	if err != nil {
		return nil, fmt.Errorf("interpolate: %w", err)
	}

	tri, err := delaunay.Build(points, dim)
	if err != nil {
		if errors.Is(err, delaunay.ErrDegenerate) {
			return nil, fmt.Errorf("interpolate: building triangulation: %w: %w", errs.ErrDegenerateSimplex, err)
		}
		return nil, fmt.Errorf("interpolate: building triangulation: %w", err)
	}
	if len(tri.Simplices) == 0 {
		return nil, fmt.Errorf("interpolate: triangulation has no simplices: %w", errs.ErrDegenerateSimplex)
	}
	cfg.logger.Debug("built triangulation", "points", len(points), "simplices", len(tri.Simplices))

	return &Engine{
		file:        file,
		keys:        keys,
		tri:         tri,
		bounds:      bounds,
		logger:      cfg.logger,
		lastSimplex: 0,
	}, nil
}

// Dimensions returns N.
func (e *Engine) Dimensions() int { return e.file.NumDimensions() }

// Bounds returns the axis-aligned bounding box of the stored parameter
// vectors.
func (e *Engine) Bounds() model.Bounds { return e.bounds }

// NumSimplices returns the number of simplices in the built triangulation,
// for diagnostics.
func (e *Engine) NumSimplices() int { return len(e.tri.Simplices) }

// Interpolate evaluates tag at point, blending the tables at the corners
// of the simplex containing point using barycentric weights. It returns
// errs.ErrDimensionMismatch if point does not match the file's
// dimensionality, errs.ErrOutOfRange if point falls outside the stored
// bounding box, errs.ErrOutOfHull if point falls inside the bounding box
// but outside the convex hull of stored parameter vectors, and
// errs.ErrNotFound if tag does not exist on every corner card.
func (e *Engine) Interpolate(tag string, point []float64) (*model.Table, error) {
	dim := e.Dimensions()
	if len(point) != dim {
		return nil, &errs.DimensionMismatchError{Want: dim, Got: len(point)}
	}
	if !e.bounds.Contains(point) {
		return nil, &errs.OutOfRangeError{Point: point, Min: e.bounds.Min, Max: e.bounds.Max}
	}

	e.mu.Lock()
	hint := e.lastSimplex
	e.mu.Unlock()

	simplexIdx, weights, err := e.tri.Locate(hint, point)
	if err != nil {
		if errors.Is(err, delaunay.ErrOutOfHull) {
			return nil, &errs.OutOfHullError{Point: point}
		}
		if errors.Is(err, delaunay.ErrDegenerate) {
			return nil, fmt.Errorf("interpolate: %w", errs.ErrDegenerateSimplex)
		}
		return nil, fmt.Errorf("interpolate: %w", errs.ErrInternal)
	}

	e.mu.Lock()
	e.lastSimplex = simplexIdx
	e.mu.Unlock()

	simplex := e.tri.Simplices[simplexIdx]
	corners := make([]*model.Table, len(simplex.Vertices))
	for i, vid := range simplex.Vertices {
		card, ok := e.file.Card(e.keys[vid])
		if !ok {
			return nil, fmt.Errorf("interpolate: %w", errs.ErrInternal)
		}
		table, ok := card.Table(tag)
		if !ok {
			return nil, &errs.NotFoundError{Kind: "table", Name: tag}
		}
		corners[i] = table
	}

	result, err := blend(tag, corners, weights)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("interpolated", "tag", tag, "point", point, "simplex", simplexIdx)
	return result, nil
}

// blend combines corner tables into a single table whose shape and axes
// match every corner (they must already agree), accumulating
// sum(weights[i] * corners[i].Data()) position-wise. Ordinary IEEE-754
// arithmetic already makes this NaN-preserving: any corner cell that is
// NaN poisons the corresponding output cell regardless of its weight.
func blend(tag string, corners []*model.Table, weights []float64) (*model.Table, error) {
	first := corners[0]
	for _, c := range corners[1:] {
		if c.NumRows() != first.NumRows() || c.NumCols() != first.NumCols() || c.VectorSize() != first.VectorSize() {
			return nil, fmt.Errorf("interpolate: corner tables for %q have mismatched shapes", tag)
		}
		if !slices.Equal(c.RowAxisValues(), first.RowAxisValues()) || !slices.Equal(c.ColumnAxisValues(), first.ColumnAxisValues()) {
			return nil, fmt.Errorf("interpolate: corner tables for %q have mismatched axes", tag)
		}
	}

	out := make([]float64, len(first.Data()))
	for i, corner := range corners {
		w := weights[i]
		data := corner.Data()
		for j, v := range data {
			out[j] += w * v
		}
	}

	return model.NewTable(tag, first.RowAxisValues(), first.ColumnAxisValues(), first.VectorSize(), out)
}
