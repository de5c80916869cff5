package opat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/4D-STAR/opat-core/interpolate"
	"github.com/4D-STAR/opat-core/model"
	"github.com/4D-STAR/opat-core/paramkey"
	"github.com/4D-STAR/opat-core/reader"
)

// File is a fully-loaded OPAT container: its parsed model plus an
// interpolation Engine built over it during Open. Open returns one ready to
// query; it is immutable and safe for concurrent reads.
type File struct {
	model  *model.File
	engine *interpolate.Engine
	logger *Logger
}

// Open reads path in full and builds both the in-memory model and its
// interpolation engine. No further I/O happens after Open returns.
func Open(path string, opts ...Option) (*File, error) {
	o := applyOptions(opts)
	log := o.logger.WithPath(path)

	m, err := reader.OpenFile(path, reader.Config{
		MaxConcurrency:  o.maxConcurrency,
		VerifyChecksums: o.verifyChecksums,
		Logger:          slogFrom(o.logger),
	})
	if err != nil {
		log.LogOpenFailed(path, err)
		return nil, err
	}

	engine, err := interpolate.NewEngine(m, o.mode, interpolate.WithLogger(slogFrom(o.logger)))
	if err != nil {
		log.LogOpenFailed(path, err)
		return nil, err
	}

	log.LogOpen(path, len(m.Cards()), m.NumDimensions())
	log.LogTriangulate(len(m.Cards()), engine.NumSimplices())
	return &File{model: m, engine: engine, logger: o.logger}, nil
}

// OpenBytes parses an already-loaded byte buffer instead of reading from
// disk, for callers that manage their own I/O (embedded assets, network
// fetches staged into memory, test fixtures).
func OpenBytes(buf []byte, opts ...Option) (*File, error) {
	o := applyOptions(opts)
	log := o.logger.WithPath("<memory>")

	m, err := reader.Open(buf, reader.Config{
		MaxConcurrency:  o.maxConcurrency,
		VerifyChecksums: o.verifyChecksums,
		Logger:          slogFrom(o.logger),
	})
	if err != nil {
		log.LogOpenFailed("<memory>", err)
		return nil, err
	}

	engine, err := interpolate.NewEngine(m, o.mode, interpolate.WithLogger(slogFrom(o.logger)))
	if err != nil {
		log.LogOpenFailed("<memory>", err)
		return nil, err
	}

	log.LogOpen("<memory>", len(m.Cards()), m.NumDimensions())
	log.LogTriangulate(len(m.Cards()), engine.NumSimplices())
	return &File{model: m, engine: engine, logger: o.logger}, nil
}

// Version returns the container format version the file was read as.
func (f *File) Version() uint32 { return f.model.Version() }

// NumDimensions returns N, the dimensionality of every card's parameter
// key in this file.
func (f *File) NumDimensions() int { return f.model.NumDimensions() }

// Keys returns every stored parameter vector, sorted for deterministic
// iteration.
func (f *File) Keys() []paramkey.Key { return f.model.Keys() }

// Card looks up the table collection stored at an exact parameter vector.
// It does not interpolate; use Interpolate for points between stored
// vectors.
func (f *File) Card(key paramkey.Key) (*model.DataCard, bool) { return f.model.Card(key) }

// GetByValues constructs a ParamKey from values at the file's own precision
// and looks up the card at that exact key. It does not interpolate.
func (f *File) GetByValues(values []float64) (*model.DataCard, error) {
	return f.model.GetByValues(values)
}

// Bounds returns the axis-aligned bounding box of every stored parameter
// vector.
func (f *File) Bounds() model.Bounds { return f.engine.Bounds() }

// Interpolate evaluates tag at point by locating the simplex of stored
// parameter vectors containing it and blending the corner tables by
// barycentric weight. See interpolate.Engine.Interpolate for the error
// taxonomy.
func (f *File) Interpolate(tag string, point []float64) (*model.Table, error) {
	log := f.logger.WithTag(tag)
	table, err := f.engine.Interpolate(tag, point)
	if err != nil {
		log.LogInterpolateFailed(tag, point, err)
		return nil, err
	}
	log.LogInterpolate(tag, point, -1)
	return table, nil
}

// InterpolateContext behaves like Interpolate but logs through
// Logger.WithContext(ctx); see that method for what it adds to each record.
func (f *File) InterpolateContext(ctx context.Context, tag string, point []float64) (*model.Table, error) {
	log := f.logger.WithContext(ctx).WithTag(tag)
	table, err := f.engine.Interpolate(tag, point)
	if err != nil {
		log.LogInterpolateFailed(tag, point, err)
		return nil, err
	}
	log.LogInterpolate(tag, point, -1)
	return table, nil
}

// Write and Append are intentionally unimplemented: a File is a read-only
// view of an existing container. Producing OPAT containers is out of scope
// for this package.
func (f *File) Write(string) error {
	return fmt.Errorf("opat: %w: writing containers is not supported", ErrUnimplemented)
}

func slogFrom(l *Logger) *slog.Logger {
	if l == nil {
		return nil
	}
	return l.slog
}
