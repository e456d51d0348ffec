// Package wlerr defines the small, flat error taxonomy shared by every
// Wasteland asset codec in this module.
//
// Every codec function reports failures as one of these five sentinel
// errors (wrapped with context via fmt.Errorf and %w) rather than inventing
// a per-package error type. The one exception is a clean end of stream at a
// block or byte boundary, which low-level readers (such as msq.ReadHeader)
// return as a bare io.EOF. Callers can test the kind of a failure with
// errors.Is.
package wlerr

import "errors"

// Sentinel errors covering every failure kind the codecs in this module
// can report.
var (
	// ErrUnexpectedEOF is returned when a bit or byte read hits the end of
	// the stream in the middle of a datum (a tree node, a symbol, a header
	// field, ...).
	ErrUnexpectedEOF = errors.New("wasteland: unexpected end of stream")

	// ErrBadMagic is returned when MSQ block identification fails to match
	// any of the three recognized variants.
	ErrBadMagic = errors.New("wasteland: unrecognized MSQ block header")

	// ErrBadBlockType is returned when an MSQ header parses cleanly but
	// names a block variant that is invalid in context (for example, a
	// base-frame block that is not Compressed).
	ErrBadBlockType = errors.New("wasteland: wrong MSQ block type for context")

	// ErrWriteFailed is returned when the underlying writer reports a
	// failure.
	ErrWriteFailed = errors.New("wasteland: write failed")

	// ErrBadArgument is returned when the caller supplies inconsistent
	// geometry or otherwise malformed arguments, e.g. an odd width to the
	// nibble packer. Treated as a programmer error: never retried.
	ErrBadArgument = errors.New("wasteland: bad argument")
)
