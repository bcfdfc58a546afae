// Package stream presents a prefetch file's payload as one contiguous,
// seekable byte stream. Uncompressed files pass straight through to the byte
// source; Windows 10 containers are indexed into decompressed blocks that are
// produced on demand and kept in a bounded cache.
package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/joshuapare/prefetchkit/internal/format"
	"github.com/joshuapare/prefetchkit/internal/lzxpress"
	"github.com/joshuapare/prefetchkit/pkg/types"
)

// MaxCompressedSize bounds the compressed payload read while indexing a
// container. Real prefetch containers are well under a megabyte.
const MaxCompressedSize = 256 << 20

var (
	// ErrDecompress wraps any failure reported by the decompressor.
	ErrDecompress = errors.New("stream: decompression failed")
	// ErrRead wraps byte source failures.
	ErrRead = errors.New("stream: read failed")
	// ErrInvalidOffset indicates a seek or read before the start of the stream.
	ErrInvalidOffset = errors.New("stream: invalid offset")
	// ErrTooLarge indicates the compressed payload exceeds MaxCompressedSize.
	ErrTooLarge = errors.New("stream: compressed payload too large")
)

// Block locates one decompressed block within the container and the stream.
type Block struct {
	Index              int
	CompressedOffset   int64 // absolute offset in the byte source
	CompressedSize     int
	UncompressedOffset int64 // offset in the virtual stream
	UncompressedSize   int
}

// BlockTable is the ordered list of blocks of a compressed container.
type BlockTable struct {
	Blocks []Block
	// DeclaredSize is the uncompressed size from the container header.
	DeclaredSize int64
	// Size is the total produced by all blocks and is the stream length.
	Size int64
	// TrailingBytes counts compressed bytes left once the declared size was
	// produced. Up to format.MinCompressedTrailer bytes are normal padding.
	TrailingBytes int64
}

// Shortfall is how many declared bytes the compressed data did not produce.
func (t *BlockTable) Shortfall() int64 { return t.DeclaredSize - t.Size }

// Len returns the number of blocks.
func (t *BlockTable) Len() int { return len(t.Blocks) }

// buildBlockTable walks the compressed payload once, decompressing each block
// to learn how many compressed bytes it consumes. keep receives every block's
// output so the caller can seed its cache. Any decompression failure aborts
// the walk; no partial table is returned.
func buildBlockTable(
	src types.ByteSource,
	hdr format.ContainerHeader,
	dec types.Decompressor,
	blockSize int,
	metrics types.MetricsSink,
	keep func(index int, data []byte),
) (*BlockTable, error) {
	compressedSize := hdr.RawSize - format.ContainerHeaderSize
	if compressedSize < 0 {
		compressedSize = 0
	}
	if compressedSize > MaxCompressedSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, compressedSize)
	}
	data := make([]byte, compressedSize)
	if err := readFull(src, data, format.ContainerHeaderSize); err != nil {
		return nil, err
	}

	t := &BlockTable{DeclaredSize: hdr.UncompressedSize}
	var (
		cursor     int64
		remainingC = compressedSize
		remainingU = hdr.UncompressedSize
		history    []byte
	)
	for remainingC > format.MinCompressedTrailer && remainingU > 0 {
		want := int(min(remainingU, int64(blockSize)))
		index := len(t.Blocks)

		out, consumed, err := dec.Decompress(data[cursor:], want, history)
		if err != nil {
			return nil, fmt.Errorf("%w: block %d at 0x%x: %w", ErrDecompress, index, cursor+format.ContainerHeaderSize, err)
		}
		// A match crossing the end of a 64 KiB chunk makes a block longer than
		// requested; the next block starts where this one ended.
		if consumed <= 0 || int64(consumed) > remainingC || len(out) < want || int64(len(out)) > remainingU {
			return nil, fmt.Errorf("%w: block %d: consumed %d of %d bytes, produced %d of %d",
				ErrDecompress, index, consumed, remainingC, len(out), want)
		}
		if metrics != nil {
			metrics.BlockDecompressed(len(out))
		}

		t.Blocks = append(t.Blocks, Block{
			Index:              index,
			CompressedOffset:   cursor + format.ContainerHeaderSize,
			CompressedSize:     consumed,
			UncompressedOffset: t.Size,
			UncompressedSize:   len(out),
		})
		if keep != nil {
			keep(index, out)
		}

		history = appendHistory(history, out)
		cursor += int64(consumed)
		remainingC -= int64(consumed)
		remainingU -= int64(len(out))
		t.Size += int64(len(out))
	}
	t.TrailingBytes = remainingC
	return t, nil
}

// appendHistory keeps the last lzxpress.MaxMatchOffset bytes of output.
func appendHistory(history, out []byte) []byte {
	if len(out) >= lzxpress.MaxMatchOffset {
		return append(history[:0], out[len(out)-lzxpress.MaxMatchOffset:]...)
	}
	history = append(history, out...)
	if over := len(history) - lzxpress.MaxMatchOffset; over > 0 {
		history = append(history[:0], history[over:]...)
	}
	return history
}

// readFull fills p from src at off.
func readFull(src types.ByteSource, p []byte, off int64) error {
	if len(p) == 0 {
		return nil
	}
	n, err := src.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %d bytes at 0x%x: %w", ErrRead, len(p), off, err)
}
