package types

import "errors"

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindArgument    ErrKind = iota // caller passed a bad index, offset or option
	ErrKindInput                      // malformed or inconsistent prefetch bytes
	ErrKindIO                         // the byte source failed to deliver data
	ErrKindCompression                // compressed payload could not be decoded
	ErrKindMemory                     // allocation request exceeded a safety limit
	ErrKindRuntime                    // invalid state (not open, already open, aborted, unsupported)
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindArgument:
		return "argument"
	case ErrKindInput:
		return "input"
	case ErrKindIO:
		return "io"
	case ErrKindCompression:
		return "compression"
	case ErrKindMemory:
		return "memory"
	case ErrKindRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind. A target with an
// empty Msg matches any error of that kind; otherwise messages must match, so
// errors.Is(err, ErrOutOfBounds) works on errors built from that sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Msg == "" || t.Msg == e.Msg
}

// IsKind reports whether any *Error in err's chain has the given kind.
func IsKind(err error, kind ErrKind) bool {
	var te *Error
	if !errors.As(err, &te) {
		return false
	}
	return te.Kind == kind
}

// Sentinels commonly returned by implementations.
var (
	// ErrSignatureMismatch indicates the input is neither an SCCA record nor a MAM container.
	ErrSignatureMismatch = &Error{Kind: ErrKindInput, Msg: "unsupported signature"}
	// ErrOutOfBounds indicates an offset, count or size points outside its enclosing data.
	ErrOutOfBounds = &Error{Kind: ErrKindInput, Msg: "value out of bounds"}
	// ErrValueMismatch indicates two size fields disagree.
	ErrValueMismatch = &Error{Kind: ErrKindInput, Msg: "value mismatch"}
	// ErrUnsupported indicates a recognized but unsupported format version or layout.
	ErrUnsupported = &Error{Kind: ErrKindRuntime, Msg: "unsupported value"}
	// ErrNotOpen indicates an accessor was called on a file that is not open.
	ErrNotOpen = &Error{Kind: ErrKindRuntime, Msg: "value missing: file not open"}
	// ErrAlreadyOpen indicates Open was called on a file that is already open.
	ErrAlreadyOpen = &Error{Kind: ErrKindRuntime, Msg: "value already set: file already open"}
	// ErrAborted indicates Open observed SignalAbort.
	ErrAborted = &Error{Kind: ErrKindRuntime, Msg: "abort requested"}
	// ErrInvalidIndex indicates an accessor index outside [0, count).
	ErrInvalidIndex = &Error{Kind: ErrKindArgument, Msg: "index out of range"}
	// ErrDecompression indicates the compressed payload was corrupt.
	ErrDecompression = &Error{Kind: ErrKindCompression, Msg: "unable to decompress data"}
	// ErrHistoryRequired is returned by a Decompressor when a chunk refers to
	// output preceding it and no history was passed. Callers retry with the
	// preceding output.
	ErrHistoryRequired = &Error{Kind: ErrKindCompression, Msg: "decompression needs preceding output"}
	// ErrTooLarge indicates a size field asks for more memory than allowed.
	ErrTooLarge = &Error{Kind: ErrKindMemory, Msg: "size exceeds maximum allocation"}
)
