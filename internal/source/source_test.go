package source

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var record = []byte("\x11\x00\x00\x00SCCA\x0f\x00\x00\x00 prefetch body")

func readAll(t *testing.T, r io.ReaderAt, size int64) []byte {
	t.Helper()
	p := make([]byte, size)
	n, err := r.ReadAt(p, 0)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadAt: %v", err)
	}
	return p[:n]
}

func TestBytes(t *testing.T) {
	src := Bytes(record)
	assert.Equal(t, int64(len(record)), src.Size())
	assert.Equal(t, record, readAll(t, src, src.Size()))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CALC.EXE-77FDF17F.pf")
	require.NoError(t, os.WriteFile(path, record, 0o644))

	f, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(record)), f.Size())
	assert.Equal(t, record, readAll(t, f, f.Size()))

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.Zero(t, f.Size())
}

func TestOpenFileMissing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing.pf"))
	assert.True(t, os.IsNotExist(err))
}

func TestUnwrapPlain(t *testing.T) {
	src := Bytes(record)
	got, err := Unwrap(src)
	require.NoError(t, err)
	assert.Same(t, src, got)

	empty := Bytes(nil)
	got, err = Unwrap(empty)
	require.NoError(t, err)
	assert.Same(t, empty, got)
}

func TestUnwrapGzip(t *testing.T) {
	var b bytes.Buffer
	w := gzip.NewWriter(&b)
	_, err := w.Write(record)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := Unwrap(Bytes(b.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, record, readAll(t, got, got.Size()))
}

func TestUnwrapZstd(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll(record, nil)
	require.NoError(t, enc.Close())

	got, err := Unwrap(Bytes(compressed))
	require.NoError(t, err)
	assert.Equal(t, record, readAll(t, got, got.Size()))
}

func TestUnwrapCorruptGzip(t *testing.T) {
	_, err := Unwrap(Bytes([]byte{0x1f, 0x8b, 0x00, 0x00}))
	assert.Error(t, err)
}
