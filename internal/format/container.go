package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/prefetchkit/internal/buf"
)

// ContainerFormat identifies the outer framing of a prefetch file.
type ContainerFormat int

const (
	FormatUnknown ContainerFormat = iota
	FormatUncompressed
	FormatCompressedWin10
)

func (f ContainerFormat) String() string {
	switch f {
	case FormatUncompressed:
		return "uncompressed"
	case FormatCompressedWin10:
		return "compressed-win10"
	default:
		return "unknown"
	}
}

// ContainerHeader is the result of probing the first bytes of a file.
type ContainerHeader struct {
	Format ContainerFormat
	// RawSize is the size of the underlying source in bytes.
	RawSize int64
	// UncompressedSize is the logical record size: the raw size for an SCCA
	// file, the declared size for a MAM container.
	UncompressedSize int64
}

// ProbeContainer classifies a file from its first ContainerHeaderSize bytes.
//
//	'?' '?' '?' '?' 'S' 'C' 'C' 'A'   uncompressed record
//	'M' 'A' 'M' 0x04 <u32 size>       compressed container
func ProbeContainer(head []byte, rawSize int64) (ContainerHeader, error) {
	if len(head) < ContainerHeaderSize {
		return ContainerHeader{}, fmt.Errorf("container: %d bytes: %w", len(head), ErrSignatureMismatch)
	}
	switch {
	case bytes.Equal(head[HeaderSignatureOffset:HeaderSignatureOffset+4], SCCASignature):
		return ContainerHeader{
			Format:           FormatUncompressed,
			RawSize:          rawSize,
			UncompressedSize: rawSize,
		}, nil
	case bytes.Equal(head[MAMSignatureOffset:MAMSignatureOffset+4], MAMSignature):
		size := buf.U32LE(head[MAMUncompressedSizeOffset:])
		if size == 0 {
			return ContainerHeader{}, fmt.Errorf("container: uncompressed size 0: %w", ErrOutOfBounds)
		}
		return ContainerHeader{
			Format:           FormatCompressedWin10,
			RawSize:          rawSize,
			UncompressedSize: int64(size),
		}, nil
	default:
		return ContainerHeader{}, fmt.Errorf("container: % x: %w", head[:ContainerHeaderSize], ErrSignatureMismatch)
	}
}
