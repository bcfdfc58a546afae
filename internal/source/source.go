// Package source provides the byte sources a prefetch file can be read from:
// memory, memory-mapped local files and ranged S3 objects. Sources that hold
// a gzip or zstd stream are unwrapped into memory first.
package source

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/joshuapare/prefetchkit/internal/mmfile"
	"github.com/joshuapare/prefetchkit/pkg/types"
)

// MaxUnwrappedSize bounds the output of gzip or zstd unwrapping.
const MaxUnwrappedSize = 64 << 20

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Bytes returns a source over b. The slice is not copied.
func Bytes(b []byte) types.ByteSource {
	return bytes.NewReader(b)
}

// File is a memory-mapped local file.
type File struct {
	*bytes.Reader
	release func() error
}

// OpenFile maps the file at path.
func OpenFile(path string) (*File, error) {
	data, release, err := mmfile.Map(path)
	if err != nil {
		return nil, err
	}
	return &File{Reader: bytes.NewReader(data), release: release}, nil
}

// Close unmaps the file. Reads after Close fault, so callers release every
// view of the source first.
func (f *File) Close() error {
	if f.release == nil {
		return nil
	}
	err := f.release()
	f.release = nil
	f.Reader = bytes.NewReader(nil)
	return err
}

// Unwrap returns src unchanged unless it starts with a gzip or zstd magic
// number, in which case the decompressed content is returned as an
// in-memory source.
func Unwrap(src types.ByteSource) (types.ByteSource, error) {
	head := make([]byte, len(zstdMagic))
	n, err := src.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("source: read magic: %w", err)
	}
	head = head[:n]

	var r io.ReadCloser
	whole := io.NewSectionReader(src, 0, src.Size())
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		gz, err := gzip.NewReader(whole)
		if err != nil {
			return nil, fmt.Errorf("source: gzip: %w", err)
		}
		r = gz
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(whole, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("source: zstd: %w", err)
		}
		r = zr.IOReadCloser()
	default:
		return src, nil
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, MaxUnwrappedSize+1))
	if err != nil {
		return nil, fmt.Errorf("source: unwrap: %w", err)
	}
	if len(data) > MaxUnwrappedSize {
		return nil, fmt.Errorf("source: unwrapped content exceeds %d bytes", MaxUnwrappedSize)
	}
	return bytes.NewReader(data), nil
}
