package bson

import "errors"

// Sentinel error kinds the core surfaces. Callers should compare with
// errors.Is; the concrete error returned is always wrapped with context
// (offending type byte, path, or length) via fmt.Errorf's %w verb.
var (
	// ErrMalformedInput covers an unexpected type byte, an implausible
	// length header, or a truncated payload. A declared length that
	// differs from the input size is reported as ErrLengthMismatch instead.
	ErrMalformedInput = errors.New("bson: malformed input")

	// ErrLengthMismatch is returned when a document's declared length does
	// not match the number of bytes actually available.
	ErrLengthMismatch = errors.New("bson: declared length does not match input size")

	// ErrUnsupportedElement is returned for BSON element kinds this decoder
	// recognizes but deliberately does not decode: ObjectId, DBPointer, and
	// JavaScript code with scope.
	ErrUnsupportedElement = errors.New("bson: unsupported element type")

	// ErrBufferTooSmall is returned by EncodeInto when the caller-provided
	// buffer is smaller than Size(root) would report.
	ErrBufferTooSmall = errors.New("bson: destination buffer smaller than computed size")

	// ErrNotADocument is returned by Size/Encode when the root node is
	// neither an Array nor an Object — only those two kinds serialize to a
	// BSON document.
	ErrNotADocument = errors.New("bson: root node must be an array or object")
)
