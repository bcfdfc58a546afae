package testutil

import (
	"bytes"

	"github.com/joshuapare/prefetchkit/internal/buf"
)

// CompressLiterals encodes data as LZXPRESS Huffman chunks of chunkSize output
// bytes each (64 KiB for real containers), using only literal symbols with
// 8-bit codes. Each chunk is a 256-byte length table followed by the bit
// stream and one zero word, which is exactly what a decoder consumes.
func CompressLiterals(data []byte, chunkSize int) []byte {
	var out []byte
	for start := 0; start < len(data); start += chunkSize {
		chunk := data[start:min(start+chunkSize, len(data))]
		out = append(out, literalTable()...)
		var w BitWriter
		for _, c := range chunk {
			w.Write(uint32(c), 8)
		}
		out = append(out, w.Finish()...)
	}
	return out
}

// MAMContainer wraps payload (an uncompressed SCCA record) in a Windows 10
// compressed container using chunkSize-output chunks.
func MAMContainer(payload []byte, chunkSize int) []byte {
	out := make([]byte, 8, 8+len(payload)+len(payload)/chunkSize*260+260)
	copy(out, "MAM\x04")
	buf.PutU32LE(out, 4, uint32(len(payload)))
	return append(out, CompressLiterals(payload, chunkSize)...)
}

// literalTable gives symbols 0-255 an 8-bit code and 256-511 none, so the
// canonical code for a literal is its own byte value.
func literalTable() []byte {
	t := make([]byte, 256)
	for i := 0; i < 128; i++ {
		t[i] = 0x88
	}
	return t
}

// BitWriter packs codes most-significant bit first into little-endian 16-bit
// words.
type BitWriter struct {
	out  []byte
	acc  uint32
	bits int
}

// Write appends the low n bits of v.
func (w *BitWriter) Write(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.acc = w.acc<<1 | (v>>i)&1
		w.bits++
		if w.bits == 16 {
			w.out = append(w.out, byte(w.acc), byte(w.acc>>8))
			w.acc, w.bits = 0, 0
		}
	}
}

// Finish flushes a partial word zero-padded and appends one zero word.
func (w *BitWriter) Finish() []byte {
	if w.bits > 0 {
		w.acc <<= 16 - w.bits
		w.out = append(w.out, byte(w.acc), byte(w.acc>>8))
		w.acc, w.bits = 0, 0
	}
	return append(w.out, 0, 0)
}

// CompressWithRun encodes literals followed by one match that repeats the
// last literal run times, as a single chunk in which every symbol has a 9-bit
// code. run must be between 4 and 17. When literals end just short of a
// 64 KiB chunk boundary the match crosses it.
func CompressWithRun(literals []byte, run int) []byte {
	var w BitWriter
	for _, c := range literals {
		w.Write(uint32(c), 9)
	}
	// offset bits 0 (offset 1), length nibble run-3
	w.Write(uint32(256+run-3), 9)
	return append(bytes.Repeat([]byte{0x99}, 256), w.Finish()...)
}
