package opat

import "github.com/4D-STAR/opat-core/internal/errs"

// Sentinel errors identify the broad category of a failure. Use errors.Is
// to test against these; use errors.As to recover the typed error values
// below for additional context (offsets, dimensions, tags, checksums). All
// of these live in internal/errs so model, interpolate, and reader can
// produce them without importing this package back.
var (
	// ErrInvalidFormat means the container's structure does not match the
	// OPAT layout (bad magic, corrupt header fields, inconsistent counts).
	ErrInvalidFormat = errs.ErrInvalidFormat
	// ErrTruncatedFile means the container ended before every header,
	// catalog entry, or table a prior section promised was read.
	ErrTruncatedFile = errs.ErrTruncatedFile
	// ErrIO wraps a failure from the underlying filesystem.
	ErrIO = errs.ErrIO
	// ErrChecksumMismatch means a card's stored SHA-256 does not match its
	// recomputed digest.
	ErrChecksumMismatch = errs.ErrChecksumMismatch
	// ErrUnimplemented means the request is valid but this package does
	// not support it (e.g. a non-Linear interpolation mode, or writing to
	// a container).
	ErrUnimplemented = errs.ErrUnimplemented

	// ErrNotFound means a requested card or table does not exist.
	ErrNotFound = errs.ErrNotFound
	// ErrOutOfRange means a query point falls outside the file's
	// per-dimension bounding box.
	ErrOutOfRange = errs.ErrOutOfRange
	// ErrDimensionMismatch means a query vector's length does not match
	// the file's parameter key dimensionality.
	ErrDimensionMismatch = errs.ErrDimensionMismatch
	// ErrOutOfHull means a query point falls within the bounding box but
	// outside the convex hull of stored parameter vectors.
	ErrOutOfHull = errs.ErrOutOfHull
	// ErrDegenerateSimplex means the triangulation could not form a
	// non-degenerate simplex from the stored parameter vectors.
	ErrDegenerateSimplex = errs.ErrDegenerateSimplex
	// ErrInternal means an invariant the package relies on was violated;
	// it should never surface from correct input.
	ErrInternal = errs.ErrInternal
	// ErrInvalidArgument means a caller-supplied argument was malformed
	// independent of any file contents (e.g. an empty or negative vector
	// passed to GetByValues).
	ErrInvalidArgument = errs.ErrInvalidArgument
)

// Typed errors re-exported from internal/errs for errors.As recovery.
type (
	NotFoundError          = errs.NotFoundError
	DimensionMismatchError = errs.DimensionMismatchError
	OutOfRangeError        = errs.OutOfRangeError
	OutOfHullError         = errs.OutOfHullError
	// FormatError carries the byte offset of a format violation.
	FormatError = errs.FormatError
	// ChecksumError carries the card index and expected/actual digests of
	// a failed integrity check.
	ChecksumError = errs.ChecksumError
)
