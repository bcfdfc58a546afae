package stream

import (
	"fmt"
	"io"
	"sort"

	"github.com/joshuapare/prefetchkit/internal/format"
	"github.com/joshuapare/prefetchkit/internal/lzxpress"
	"github.com/joshuapare/prefetchkit/pkg/types"
)

// Options configures a compressed stream. Zero values select defaults.
type Options struct {
	BlockSize     int
	CacheCapacity int
	Decompressor  types.Decompressor
	Metrics       types.MetricsSink
}

func (o Options) withDefaults() Options {
	if o.BlockSize <= 0 {
		o.BlockSize = types.DefaultBlockSize
	}
	if o.CacheCapacity <= 0 {
		o.CacheCapacity = types.DefaultCacheCapacity
	}
	if o.Decompressor == nil {
		o.Decompressor = lzxpress.Decoder{}
	}
	return o
}

// Stream is a seekable view of the uncompressed record. It implements
// io.Reader, io.Seeker and io.ReaderAt. A Stream is not safe for concurrent
// use.
type Stream struct {
	src   types.ByteSource
	size  int64
	pos   int64
	table *BlockTable // nil for uncompressed files
	cache *BlockCache
}

// NewPassthrough returns a stream that reads src directly.
func NewPassthrough(src types.ByteSource) *Stream {
	return &Stream{src: src, size: src.Size()}
}

// NewCompressed indexes a MAM container and returns a stream over its
// decompressed payload. Blocks decoded while indexing seed the cache.
func NewCompressed(src types.ByteSource, hdr format.ContainerHeader, opts Options) (*Stream, error) {
	opts = opts.withDefaults()

	var seed [][]byte
	table, err := buildBlockTable(src, hdr, opts.Decompressor, opts.BlockSize, opts.Metrics, func(_ int, data []byte) {
		seed = append(seed, data)
		if len(seed) > opts.CacheCapacity {
			seed[len(seed)-opts.CacheCapacity-1] = nil
		}
	})
	if err != nil {
		return nil, err
	}

	cache, err := newBlockCache(opts.CacheCapacity, table, src, opts.Decompressor, opts.Metrics)
	if err != nil {
		return nil, err
	}
	for i, data := range seed {
		if data != nil {
			cache.put(i, data)
		}
	}
	return &Stream{src: src, size: table.Size, table: table, cache: cache}, nil
}

// Size returns the stream length.
func (s *Stream) Size() int64 { return s.size }

// Table returns the block table, or nil for an uncompressed stream.
func (s *Stream) Table() *BlockTable { return s.table }

// Cache returns the block cache, or nil for an uncompressed stream.
func (s *Stream) Cache() *BlockCache { return s.cache }

// Seek sets the offset for the next Read. Offsets past the end are allowed
// and read as EOF; negative offsets fail.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		abs = s.size + offset
	default:
		return 0, fmt.Errorf("%w: whence %d", ErrInvalidOffset, whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidOffset, abs)
	}
	s.pos = abs
	return abs, nil
}

// Read copies from the current offset up to the end of the segment holding
// it, so reads that cross a block boundary return short.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if s.pos >= s.size {
		return 0, io.EOF
	}
	n, err := s.readSegment(p, s.pos)
	s.pos += int64(n)
	return n, err
}

// ReadAt reads len(p) bytes at off without moving the Read offset. It loops
// over segment boundaries and returns io.EOF when the stream ends first.
func (s *Stream) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidOffset, off)
	}
	total := 0
	for total < len(p) {
		if off >= s.size {
			return total, io.EOF
		}
		n, err := s.readSegment(p[total:], off)
		total += n
		off += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Close releases cached blocks.
func (s *Stream) Close() error {
	if s.cache != nil {
		s.cache.Clear()
	}
	return nil
}

// readSegment copies from the segment containing off; off < s.size.
func (s *Stream) readSegment(p []byte, off int64) (int, error) {
	if s.table == nil {
		n := int(min(int64(len(p)), s.size-off))
		if err := readFull(s.src, p[:n], off); err != nil {
			return 0, err
		}
		return n, nil
	}

	blocks := s.table.Blocks
	i := sort.Search(len(blocks), func(i int) bool {
		return blocks[i].UncompressedOffset+int64(blocks[i].UncompressedSize) > off
	})
	if i == len(blocks) {
		return 0, io.EOF
	}
	data, err := s.cache.Get(i)
	if err != nil {
		return 0, err
	}
	return copy(p, data[off-blocks[i].UncompressedOffset:]), nil
}
