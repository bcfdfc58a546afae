package format

import "errors"

var (
	// ErrSignatureMismatch indicates a structure had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrOutOfBounds indicates an offset or count pointed outside its enclosing data.
	ErrOutOfBounds = errors.New("format: value out of bounds")
	// ErrUnsupported indicates a format version or layout we cannot decode.
	ErrUnsupported = errors.New("format: unsupported format version")
)
