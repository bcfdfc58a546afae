package reader

import (
	"errors"

	"github.com/joshuapare/prefetchkit/internal/format"
	"github.com/joshuapare/prefetchkit/internal/stream"
	"github.com/joshuapare/prefetchkit/pkg/types"
)

// wrapErr maps errors from the internal packages to the public types.Error
// kinds. Errors that already carry a types.Error pass through.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var te *types.Error
	if errors.As(err, &te) {
		return err
	}
	if mapped := wrapStreamErr(err); mapped != nil {
		return mapped
	}
	return wrapFormatErr(err)
}

func wrapStreamErr(err error) error {
	switch {
	case errors.Is(err, stream.ErrDecompress):
		return &types.Error{Kind: types.ErrKindCompression, Msg: types.ErrDecompression.Msg, Err: err}
	case errors.Is(err, stream.ErrTooLarge):
		return &types.Error{Kind: types.ErrKindMemory, Msg: types.ErrTooLarge.Msg, Err: err}
	case errors.Is(err, stream.ErrRead):
		return wrapIOErr(err)
	case errors.Is(err, stream.ErrInvalidOffset):
		return &types.Error{Kind: types.ErrKindArgument, Msg: "invalid stream offset", Err: err}
	default:
		return nil
	}
}

func wrapFormatErr(err error) error {
	switch {
	case errors.Is(err, format.ErrSignatureMismatch):
		return &types.Error{Kind: types.ErrKindInput, Msg: types.ErrSignatureMismatch.Msg, Err: err}
	case errors.Is(err, format.ErrOutOfBounds), errors.Is(err, format.ErrTruncated):
		return &types.Error{Kind: types.ErrKindInput, Msg: types.ErrOutOfBounds.Msg, Err: err}
	case errors.Is(err, format.ErrUnsupported):
		return &types.Error{Kind: types.ErrKindRuntime, Msg: types.ErrUnsupported.Msg, Err: err}
	default:
		return wrapIOErr(err)
	}
}

func wrapIOErr(err error) error {
	return &types.Error{Kind: types.ErrKindIO, Msg: "read failed", Err: err}
}

// errKind extracts the kind of a mapped error for metrics.
func errKind(err error) types.ErrKind {
	var te *types.Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return types.ErrKindRuntime
}
