// Package lzxpress implements the LZXPRESS Huffman decompressor ([MS-XCA]
// section 2.2) used by Windows 10 prefetch containers.
//
// A compressed stream is a sequence of chunks. Each chunk starts with a
// 256-byte table of 4-bit code lengths for 512 symbols, followed by a bit
// stream read in little-endian 16-bit words. A chunk decodes symbols until
// 64 KiB of output has been produced; its last match may run past that point
// and the next chunk starts wherever the output ended.
package lzxpress

import (
	"errors"
	"fmt"

	"github.com/joshuapare/prefetchkit/internal/buf"
	"github.com/joshuapare/prefetchkit/pkg/types"
)

const (
	// ChunkSize is the maximum output produced by one Huffman table.
	ChunkSize = 64 << 10

	// MaxMatchOffset is the largest back-reference distance a chunk can encode.
	MaxMatchOffset = 1<<16 - 1

	// MaxOverrun bounds how far the last match of a chunk may run past the
	// requested size when that size ends on a chunk boundary.
	MaxOverrun = ChunkSize

	tableSize    = 256
	numSymbols   = 512
	maxCodeBits  = 15
	decodeSize   = 1 << maxCodeBits
	minMatchLen  = 3
	literalLimit = 256
)

var (
	// ErrCorrupt indicates the compressed data cannot be decoded.
	ErrCorrupt = errors.New("lzxpress: corrupt input")
	// ErrHistoryRequired indicates a match refers to output produced before
	// this call and no history was supplied.
	ErrHistoryRequired = types.ErrHistoryRequired
)

// Decoder is a stateless LZXPRESS Huffman decoder.
type Decoder struct{}

// Decompress decodes at least size bytes from src. history is output that
// precedes this call; only its last MaxMatchOffset bytes are used. It returns
// the output and the number of bytes of src consumed, which is where the next
// chunk starts.
//
// When size ends exactly on a chunk boundary the chunk's last match may carry
// the output up to MaxOverrun bytes past size. Otherwise output past size is
// corrupt.
func (Decoder) Decompress(src []byte, size int, history []byte) ([]byte, int, error) {
	if size < 0 {
		return nil, 0, fmt.Errorf("%w: negative output size %d", ErrCorrupt, size)
	}
	if len(history) > MaxMatchOffset {
		history = history[len(history)-MaxMatchOffset:]
	}
	out := make([]byte, len(history), len(history)+size)
	copy(out, history)
	base := len(history)

	pos := 0
	limit := base + size
	for len(out) < limit {
		chunkEnd := len(out) + ChunkSize
		end, maxOut := min(chunkEnd, limit), limit
		if chunkEnd == limit {
			maxOut += MaxOverrun
		}
		var err error
		out, pos, err = decodeChunk(src, pos, out, end, maxOut, history == nil, base)
		if err != nil {
			return nil, 0, err
		}
	}
	return out[base:], pos, nil
}

// decodeChunk decodes one table and its bit stream starting at src[pos],
// appending to out until len(out) >= end. No match may carry out past maxOut.
func decodeChunk(src []byte, pos int, out []byte, end, maxOut int, noHistory bool, base int) ([]byte, int, error) {
	tbl, ok := buf.Slice(src, pos, tableSize)
	if !ok {
		return nil, 0, fmt.Errorf("%w: truncated code length table at %d", ErrCorrupt, pos)
	}
	var lengths [numSymbols]uint8
	for i, b := range tbl {
		lengths[2*i] = b & 0x0f
		lengths[2*i+1] = b >> 4
	}
	decode, err := buildDecodeTable(&lengths)
	if err != nil {
		return nil, 0, err
	}
	pos += tableSize

	br := bitReader{src: src, pos: pos}
	if err := br.init(); err != nil {
		return nil, 0, err
	}

	for len(out) < end {
		sym := decode[br.peek15()]
		if err := br.consume(int(lengths[sym])); err != nil {
			return nil, 0, err
		}
		if sym < literalLimit {
			out = append(out, byte(sym))
			continue
		}

		sym -= literalLimit
		length := int(sym & 0x0f)
		offBits := int(sym >> 4)
		if length == 0x0f {
			b, err := br.readByte()
			if err != nil {
				return nil, 0, err
			}
			length = int(b)
			if length == 0xff {
				w, err := br.readWord()
				if err != nil {
					return nil, 0, err
				}
				length = int(w)
				if w == 0 {
					d, err := br.readDword()
					if err != nil {
						return nil, 0, err
					}
					length = int(d)
				}
				if length < 0x0f {
					return nil, 0, fmt.Errorf("%w: match length %d", ErrCorrupt, length)
				}
				length -= 0x0f
			}
			length += 0x0f
		}
		length += minMatchLen

		offset := int(br.top(offBits)) + 1<<offBits
		if err := br.consume(offBits); err != nil {
			return nil, 0, err
		}

		if offset > len(out)-base && noHistory {
			return nil, 0, ErrHistoryRequired
		}
		if offset > len(out) {
			return nil, 0, fmt.Errorf("%w: match offset %d before start of data", ErrCorrupt, offset)
		}
		if length > maxOut-len(out) {
			return nil, 0, fmt.Errorf("%w: match of %d bytes overruns output", ErrCorrupt, length)
		}
		from := len(out) - offset
		for i := 0; i < length; i++ {
			out = append(out, out[from+i])
		}
	}
	return out, br.pos, nil
}

// buildDecodeTable maps every 15-bit prefix to its symbol. Codes are assigned
// canonically: shorter lengths first, then ascending symbol value.
func buildDecodeTable(lengths *[numSymbols]uint8) (*[decodeSize]uint16, error) {
	var t [decodeSize]uint16
	n := 0
	for bits := 1; bits <= maxCodeBits; bits++ {
		span := 1 << (maxCodeBits - bits)
		for sym := 0; sym < numSymbols; sym++ {
			if int(lengths[sym]) != bits {
				continue
			}
			if n+span > decodeSize {
				return nil, fmt.Errorf("%w: oversubscribed Huffman table", ErrCorrupt)
			}
			for i := 0; i < span; i++ {
				t[n+i] = uint16(sym)
			}
			n += span
		}
	}
	if n != decodeSize {
		return nil, fmt.Errorf("%w: incomplete Huffman table (%d of %d)", ErrCorrupt, n, decodeSize)
	}
	return &t, nil
}

// bitReader holds at least 16 unread bits in the top of next once extra is
// non-negative. Raw bytes for long match lengths are read from pos directly.
type bitReader struct {
	src   []byte
	pos   int
	next  uint32
	extra int
}

func (r *bitReader) init() error {
	if !buf.Has(r.src, r.pos, 4) {
		return fmt.Errorf("%w: truncated bit stream at %d", ErrCorrupt, r.pos)
	}
	r.next = uint32(buf.U16LE(r.src[r.pos:]))<<16 | uint32(buf.U16LE(r.src[r.pos+2:]))
	r.pos += 4
	r.extra = 16
	return nil
}

func (r *bitReader) peek15() uint32 { return r.next >> (32 - maxCodeBits) }

// top returns the n most significant unread bits; n may be 0.
func (r *bitReader) top(n int) uint32 {
	if n == 0 {
		return 0
	}
	return r.next >> (32 - n)
}

func (r *bitReader) consume(n int) error {
	r.next <<= n
	r.extra -= n
	if r.extra < 0 {
		if !buf.Has(r.src, r.pos, 2) {
			return fmt.Errorf("%w: bit stream exhausted at %d", ErrCorrupt, r.pos)
		}
		r.next |= uint32(buf.U16LE(r.src[r.pos:])) << (-r.extra)
		r.extra += 16
		r.pos += 2
	}
	return nil
}

func (r *bitReader) readByte() (byte, error) {
	if r.pos >= len(r.src) {
		return 0, fmt.Errorf("%w: match length byte past end", ErrCorrupt)
	}
	b := r.src[r.pos]
	r.pos++
	return b, nil
}

func (r *bitReader) readWord() (uint16, error) {
	if !buf.Has(r.src, r.pos, 2) {
		return 0, fmt.Errorf("%w: match length word past end", ErrCorrupt)
	}
	w := buf.U16LE(r.src[r.pos:])
	r.pos += 2
	return w, nil
}

func (r *bitReader) readDword() (uint32, error) {
	if !buf.Has(r.src, r.pos, 4) {
		return 0, fmt.Errorf("%w: match length dword past end", ErrCorrupt)
	}
	d := buf.U32LE(r.src[r.pos:])
	r.pos += 4
	return d, nil
}
