package prefetch

import (
	"context"
	"fmt"
	"io"

	"github.com/joshuapare/prefetchkit/internal/reader"
	"github.com/joshuapare/prefetchkit/internal/source"
	"github.com/joshuapare/prefetchkit/pkg/types"
)

// Open memory-maps the prefetch file at path and parses it. Gzip and zstd
// compressed copies are decompressed into memory first.
func Open(path string, opts OpenOptions) (Reader, error) {
	f, err := source.OpenFile(path)
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindIO, Msg: "open prefetch file", Err: err}
	}
	src, err := source.Unwrap(f)
	if err != nil {
		_ = f.Close()
		return nil, &types.Error{Kind: types.ErrKindInput, Msg: "unwrap prefetch file", Err: err}
	}
	if src != types.ByteSource(f) {
		// Unwrapped content lives in memory; the mapping is no longer needed.
		if err := f.Close(); err != nil {
			return nil, &types.Error{Kind: types.ErrKindIO, Msg: "close prefetch file", Err: err}
		}
		return OpenSource(src, opts)
	}
	return openOwned(src, f, opts)
}

// OpenBytes parses the prefetch file held in b. b must not change while the
// Reader is open.
func OpenBytes(b []byte, opts OpenOptions) (Reader, error) {
	return OpenSource(source.Bytes(b), opts)
}

// OpenSource parses the prefetch file readable from src. The caller keeps
// ownership of src.
func OpenSource(src ByteSource, opts OpenOptions) (Reader, error) {
	f := reader.New(opts)
	if err := f.Open(src); err != nil {
		return nil, err
	}
	return f, nil
}

// OpenS3 parses an S3 object through ranged GETs. ctx bounds every read made
// while the Reader is open.
func OpenS3(ctx context.Context, client source.S3API, bucket, key string, opts OpenOptions) (Reader, error) {
	obj, err := source.OpenS3(ctx, client, bucket, key)
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindIO, Msg: "open s3 object", Err: err}
	}
	src, err := source.Unwrap(obj)
	if err != nil {
		return nil, &types.Error{Kind: types.ErrKindInput, Msg: "unwrap s3 object", Err: err}
	}
	return OpenSource(src, opts)
}

// New returns a closed File for callers that open several sources in turn or
// call SignalAbort from another goroutine while Open runs.
func New(opts OpenOptions) *File {
	return reader.New(opts)
}

func openOwned(src ByteSource, c io.Closer, opts OpenOptions) (Reader, error) {
	f := reader.New(opts)
	if err := f.Open(src); err != nil {
		_ = c.Close()
		return nil, err
	}
	return &ownedReader{File: f, closer: c}, nil
}

// ownedReader closes its byte source together with the parsed file.
type ownedReader struct {
	*reader.File
	closer io.Closer
}

func (r *ownedReader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.File.Close()
	if cerr := r.closer.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close source: %w", cerr)
	}
	r.closer = nil
	return err
}
