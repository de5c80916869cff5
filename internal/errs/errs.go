// Package errs holds the sentinel and typed errors shared by model,
// interpolate, and the top-level opat package. It exists so those packages
// can produce a consistent error taxonomy without opat importing them and
// them importing opat back.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a requested card or table does not exist.
	ErrNotFound = errors.New("opat: not found")
	// ErrOutOfRange means a query point falls outside the file's
	// per-dimension bounding box.
	ErrOutOfRange = errors.New("opat: point out of range")
	// ErrDimensionMismatch means a query vector's length does not match
	// the file's parameter key dimensionality.
	ErrDimensionMismatch = errors.New("opat: dimension mismatch")
	// ErrOutOfHull means a query point falls within the bounding box but
	// outside the convex hull of stored parameter vectors.
	ErrOutOfHull = errors.New("opat: point outside convex hull")
	// ErrDegenerateSimplex means the triangulation could not form a
	// non-degenerate simplex from the stored parameter vectors.
	ErrDegenerateSimplex = errors.New("opat: degenerate simplex")
	// ErrInternal means an invariant the package relies on was violated;
	// it should never surface from correct input.
	ErrInternal = errors.New("opat: internal error")
	// ErrInvalidArgument means a caller-supplied argument was malformed
	// independent of any file contents.
	ErrInvalidArgument = errors.New("opat: invalid argument")
	// ErrInvalidFormat means the container's structure does not match the
	// OPAT layout (bad magic, corrupt header fields, inconsistent counts).
	ErrInvalidFormat = errors.New("opat: invalid container format")
	// ErrTruncatedFile means the container ended before every header,
	// catalog entry, or table a prior section promised was read.
	ErrTruncatedFile = errors.New("opat: truncated file")
	// ErrIO wraps a failure from the underlying filesystem.
	ErrIO = errors.New("opat: i/o error")
	// ErrChecksumMismatch means a card's stored SHA-256 does not match its
	// recomputed digest.
	ErrChecksumMismatch = errors.New("opat: checksum mismatch")
	// ErrUnimplemented means the request is valid but this package does
	// not support it (e.g. a non-Linear interpolation mode, or writing to
	// a container).
	ErrUnimplemented = errors.New("opat: unimplemented")
)

// NotFoundError names the missing tag or key.
type NotFoundError struct {
	Kind string // "card" or "table"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("opat: %s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DimensionMismatchError carries the expected and actual vector lengths.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("opat: dimension mismatch: want %d, got %d", e.Want, e.Got)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// OutOfRangeError carries the offending point and the bounds it violated.
type OutOfRangeError struct {
	Point []float64
	Min   []float64
	Max   []float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("opat: point %v out of range [%v, %v]", e.Point, e.Min, e.Max)
}

func (e *OutOfRangeError) Unwrap() error { return ErrOutOfRange }

// OutOfHullError carries the offending point.
type OutOfHullError struct {
	Point []float64
}

func (e *OutOfHullError) Error() string {
	return fmt.Sprintf("opat: point %v lies outside the convex hull of stored parameter vectors", e.Point)
}

func (e *OutOfHullError) Unwrap() error { return ErrOutOfHull }

// FormatError carries the byte offset of a format violation alongside the
// sentinel it wraps.
type FormatError struct {
	Offset int64
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("opat: invalid format at offset %d: %s", e.Offset, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrInvalidFormat }

// ChecksumError carries the card index and expected/actual digests of a
// failed integrity check.
type ChecksumError struct {
	CardIndex int
	Expected  [32]byte
	Actual    [32]byte
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("opat: checksum mismatch in card %d: expected %x, got %x",
		e.CardIndex, e.Expected, e.Actual)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }
