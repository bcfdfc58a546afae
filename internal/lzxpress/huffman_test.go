package lzxpress

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/joshuapare/prefetchkit/internal/testutil"
	"github.com/stretchr/testify/require"
)

// nineBitTable gives all 512 symbols a 9-bit code, so symbol s is coded as s.
func nineBitTable() []byte {
	return bytes.Repeat([]byte{0x99}, 256)
}

func TestDecompressLiterals(t *testing.T) {
	want := []byte("SCCA prefetch payload")
	src := testutil.CompressLiterals(want, ChunkSize)

	got, consumed, err := Decoder{}.Decompress(src, len(want), nil)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, len(src), consumed, "decoder must consume the whole chunk")
}

func TestDecompressMatch(t *testing.T) {
	var w testutil.BitWriter
	for _, c := range []byte("abc") {
		w.Write(uint32(c), 9)
	}
	// symbol 256+19: match length 3+3, 1 offset bit; offset = 1 + 2 = 3
	w.Write(256+19, 9)
	w.Write(1, 1)
	src := append(nineBitTable(), w.Finish()...)

	got, consumed, err := Decoder{}.Decompress(src, 9, nil)
	require.NoError(t, err)
	require.Equal(t, "abcabcabc", string(got))
	require.Equal(t, 256+8, consumed)
}

func TestDecompressMultipleChunks(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	want := make([]byte, 3*ChunkSize/2)
	rng.Read(want)
	src := testutil.CompressLiterals(want, ChunkSize)

	got, consumed, err := Decoder{}.Decompress(src, len(want), nil)
	require.NoError(t, err)
	require.True(t, bytes.Equal(want, got))
	require.Equal(t, len(src), consumed)
}

func TestDecompressChunkByChunk(t *testing.T) {
	want := bytes.Repeat([]byte("0123456789"), 50)
	const chunk = 128
	src := testutil.CompressLiterals(want, chunk)

	var got []byte
	pos := 0
	for len(got) < len(want) {
		n := min(chunk, len(want)-len(got))
		out, consumed, err := Decoder{}.Decompress(src[pos:], n, got)
		require.NoError(t, err)
		got = append(got, out...)
		pos += consumed
	}
	require.Equal(t, want, got)
	require.Equal(t, len(src), pos)
}

func TestDecompressNeedsHistory(t *testing.T) {
	var w testutil.BitWriter
	// match of 6 bytes at offset 3 with nothing decoded yet
	w.Write(256+19, 9)
	w.Write(1, 1)
	src := append(nineBitTable(), w.Finish()...)

	_, _, err := Decoder{}.Decompress(src, 6, nil)
	require.ErrorIs(t, err, ErrHistoryRequired)

	got, _, err := Decoder{}.Decompress(src, 6, []byte("xyzabc"))
	require.NoError(t, err)
	require.Equal(t, "abcabc", string(got))

	_, _, err = Decoder{}.Decompress(src, 6, []byte("c"))
	require.ErrorIs(t, err, ErrCorrupt)
	require.False(t, errors.Is(err, ErrHistoryRequired))
}

func TestDecompressCorruptInput(t *testing.T) {
	literals := testutil.CompressLiterals([]byte("hello"), ChunkSize)

	tests := []struct {
		name string
		src  []byte
		size int
	}{
		{"short table", make([]byte, 100), 1},
		{"empty table", make([]byte, 260), 1},
		{"oversubscribed", append(bytes.Repeat([]byte{0x11}, 256), 0, 0, 0, 0), 1},
		{"no bit stream", literals[:257], 5},
		{"stream exhausted", literals[:len(literals)-4], 5},
		{"negative size", literals, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decoder{}.Decompress(tt.src, tt.size, nil)
			require.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestDecompressMatchOverrun(t *testing.T) {
	var w testutil.BitWriter
	w.Write('a', 9)
	// length 6 at offset 2 (offset bits 1, extra bit 0) from one byte of output
	w.Write(256+19, 9)
	w.Write(0, 1)
	src := append(nineBitTable(), w.Finish()...)

	// asks for 4 bytes; the match would produce 7
	_, _, err := Decoder{}.Decompress(src, 4, []byte("zz"))
	require.ErrorIs(t, err, ErrCorrupt)
}

// chunkWithCrossingMatch returns one chunk of ChunkSize-2 literals and a
// match of matchLen bytes at offset 1 that runs past the chunk end.
func chunkWithCrossingMatch(matchLen int) []byte {
	lits := make([]byte, ChunkSize-2)
	for i := range lits {
		lits[i] = byte(i*7 + i/251)
	}
	return testutil.CompressWithRun(lits, matchLen)
}

func TestDecompressMatchCrossesChunk(t *testing.T) {
	src := chunkWithCrossingMatch(10)

	for _, size := range []int{ChunkSize, ChunkSize + 8} {
		got, consumed, err := Decoder{}.Decompress(src, size, nil)
		require.NoError(t, err, "size %d", size)
		require.Len(t, got, ChunkSize+8)
		require.Equal(t, bytes.Repeat(got[ChunkSize-3:ChunkSize-2], 10), got[ChunkSize-2:])
		require.Equal(t, len(src), consumed)
	}
}

func TestDecompressChunkAfterCrossingMatch(t *testing.T) {
	tail := []byte("next chunk")
	src := append(chunkWithCrossingMatch(10), testutil.CompressLiterals(tail, ChunkSize)...)

	got, consumed, err := Decoder{}.Decompress(src, ChunkSize+8+len(tail), nil)
	require.NoError(t, err)
	require.Len(t, got, ChunkSize+8+len(tail))
	require.Equal(t, tail, got[ChunkSize+8:])
	require.Equal(t, len(src), consumed)
}

func TestDecompressMatchPastDataEnd(t *testing.T) {
	src := chunkWithCrossingMatch(10)
	// The chunk boundary is not the end of the request, so the match must
	// stop at the requested size.
	_, _, err := Decoder{}.Decompress(src, ChunkSize+4, nil)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestDecompressLongMatchLength(t *testing.T) {
	var w testutil.BitWriter
	w.Write('a', 9)
	// symbol 256+15: length nibble 15 (extended), offset bits 0
	w.Write(256+15, 9)
	w.Write(0, 30)
	words := w.Finish()[:6]

	u16 := func(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }
	u32 := func(v uint32) []byte { return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)} }

	tests := []struct {
		name    string
		lengths []byte
		wantErr bool
	}{
		{"16-bit length", append([]byte{0xff}, u16(300)...), false},
		{"32-bit length", append(append([]byte{0xff}, u16(0)...), u32(300)...), false},
		{"16-bit length too small", append([]byte{0xff}, u16(5)...), true},
		{"32-bit length too small", append(append([]byte{0xff}, u16(0)...), u32(5)...), true},
		{"32-bit length truncated", append([]byte{0xff}, u16(0)...), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := append(append(nineBitTable(), words...), tt.lengths...)
			// 300 - 15 + 15 + 3 match bytes after one literal
			got, consumed, err := Decoder{}.Decompress(src, 304, nil)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrCorrupt)
				return
			}
			require.NoError(t, err)
			require.Equal(t, bytes.Repeat([]byte("a"), 304), got)
			require.Equal(t, len(src), consumed)
		})
	}
}
