package opat

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with a handful of domain-specific convenience
// methods so call sites read as what happened, not as raw key/value pairs.
type Logger struct {
	slog *slog.Logger
}

// NewLogger builds a Logger around an existing slog.Logger.
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{slog: l}
}

// NewJSONLogger builds a Logger writing JSON lines to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return &Logger{slog: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))}
}

// NewTextLogger builds a Logger writing human-readable lines to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return &Logger{slog: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))}
}

// NoopLogger discards everything logged through it.
func NoopLogger() *Logger {
	return NewTextLogger(io.Discard, slog.LevelError+1)
}

func defaultLogger() *Logger {
	return NewTextLogger(os.Stderr, slog.LevelWarn)
}

// WithContext returns a Logger that adds a "trace" attribute to every record,
// holding the value ctx stores under this package's unexported trace key.
// Nothing in this package stores a value under that key, so the attribute
// is nil.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return &Logger{slog: slog.New(l.slog.Handler()).With("trace", ctx.Value(traceKey{}))}
}

// WithPath returns a Logger tagged with the container path being operated
// on.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{slog: l.slog.With("path", path)}
}

// WithTag returns a Logger tagged with a table tag.
func (l *Logger) WithTag(tag string) *Logger {
	return &Logger{slog: l.slog.With("tag", tag)}
}

// LogOpen records a successful container open.
func (l *Logger) LogOpen(path string, numCards, numDimensions int) {
	l.slog.Info("opened container", "path", path, "cards", numCards, "dimensions", numDimensions)
}

// LogOpenFailed records a failed container open.
func (l *Logger) LogOpenFailed(path string, err error) {
	l.slog.Error("failed to open container", "path", path, "error", err)
}

// LogTriangulate records how many points the Delaunay triangulation was
// built over and how many simplices it produced.
func (l *Logger) LogTriangulate(numPoints, numSimplices int) {
	l.slog.Debug("built triangulation", "points", numPoints, "simplices", numSimplices)
}

// LogInterpolate records one interpolation query.
func (l *Logger) LogInterpolate(tag string, point []float64, simplex int) {
	l.slog.Debug("interpolated", "tag", tag, "point", point, "simplex", simplex)
}

// LogInterpolateFailed records a failed interpolation query.
func (l *Logger) LogInterpolateFailed(tag string, point []float64, err error) {
	l.slog.Warn("interpolation failed", "tag", tag, "point", point, "error", err)
}

type traceKey struct{}
