package opat

import (
	"log/slog"

	"github.com/4D-STAR/opat-core/interpolate"
)

// options holds every knob configurable via functional Options, populated
// with defaults by applyOptions before any constructor uses it.
type options struct {
	logger          *Logger
	maxConcurrency  int
	verifyChecksums bool
	mode            interpolate.Mode
}

// Option configures an Engine or Reader at construction time.
type Option func(*options)

// WithLogger overrides the default stderr text Logger.
func WithLogger(l *Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSlog is a convenience wrapper for callers who already have a
// *slog.Logger and don't want to build a Logger by hand.
func WithSlog(l *slog.Logger) Option {
	return func(o *options) { o.logger = NewLogger(l) }
}

// WithMaxConcurrency bounds how many data cards are parsed in parallel
// while opening a container. The default is runtime.GOMAXPROCS(0).
func WithMaxConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConcurrency = n
		}
	}
}

// WithChecksumVerification turns per-card SHA-256 verification on or off.
// It defaults to on; disabling it trades integrity checking for faster
// opens of known-good files.
func WithChecksumVerification(enabled bool) Option {
	return func(o *options) { o.verifyChecksums = enabled }
}

// WithMode selects the interpolation scheme built over the file. The
// default is interpolate.Linear; any other value fails Open with
// ErrUnimplemented when Open constructs the engine, before any
// triangulation is built.
func WithMode(m interpolate.Mode) Option {
	return func(o *options) { o.mode = m }
}

func defaultOptions() *options {
	return &options{
		logger:          defaultLogger(),
		maxConcurrency:  0, // resolved to GOMAXPROCS by the reader
		verifyChecksums: true,
		mode:            interpolate.Linear,
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}
