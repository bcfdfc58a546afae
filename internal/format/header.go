package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/prefetchkit/internal/buf"
)

// FileHeader is the 84-byte record header at the start of the uncompressed
// stream.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	 0x00    4    Format version (17, 23, 26, 30)
//	 0x04    4    'S' 'C' 'C' 'A'
//	 0x08    4    Unknown
//	 0x0C    4    File size
//	 0x10   60    Executable filename (UTF-16LE, zero terminated/padded)
//	 0x4C    4    Prefetch hash
//	 0x50    4    Unknown
type FileHeader struct {
	FormatVersion uint32
	FileSize      uint32
	PrefetchHash  uint32
	// ExecutableFilename is the UTF-16LE name up to, not including, the first
	// zero code unit.
	ExecutableFilename []byte
}

// ParseFileHeader validates the SCCA signature and extracts the header fields.
func ParseFileHeader(b []byte) (FileHeader, error) {
	if len(b) < FileHeaderSize {
		return FileHeader{}, fmt.Errorf("file header: %w", ErrTruncated)
	}
	if !bytes.Equal(b[HeaderSignatureOffset:HeaderSignatureOffset+4], SCCASignature) {
		return FileHeader{}, fmt.Errorf("file header: %w", ErrSignatureMismatch)
	}
	name := b[HeaderExecutableOffset : HeaderExecutableOffset+HeaderExecutableSize]
	n := UTF16TerminatorIndex(name)
	if n < 0 {
		n = len(name)
	}
	exe := make([]byte, n)
	copy(exe, name[:n])
	return FileHeader{
		FormatVersion:      buf.U32LE(b[HeaderFormatVersionOffset:]),
		FileSize:           buf.U32LE(b[HeaderFileSizeOffset:]),
		PrefetchHash:       buf.U32LE(b[HeaderPrefetchHashOffset:]),
		ExecutableFilename: exe,
	}, nil
}

// UTF16TerminatorIndex returns the byte index of the first 16-bit zero code
// unit in b (checked on even offsets only), or -1 when there is none.
func UTF16TerminatorIndex(b []byte) int {
	for i := 0; i+1 < len(b); i += UTF16CodeUnitSize {
		if b[i] == 0 && b[i+1] == 0 {
			return i
		}
	}
	return -1
}
