package types

import (
	"fmt"
	"io"
	"log/slog"
)

// -----------------------------------------------------------------------------
// Byte sources and codecs
// -----------------------------------------------------------------------------

// ByteSource is random-access, read-only input with a known length.
// *bytes.Reader, *os.File wrappers and ranged object-store readers all fit.
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

// Decompressor decodes one chunk of a compressed payload.
//
// src holds the remaining compressed bytes and size is the number of bytes
// the chunk must produce. history is the decompressed output that immediately
// precedes the chunk (nil for the first chunk). Implementations return the
// produced bytes and how many bytes of src they consumed. The output may be
// longer than size when a back-reference crosses a chunk boundary; callers
// index the block by the length actually produced.
type Decompressor interface {
	Decompress(src []byte, size int, history []byte) (out []byte, consumed int, err error)
}

// MetricsSink receives counters from the block cache and open pipeline.
// Implementations must be cheap; calls happen on the read path.
type MetricsSink interface {
	CacheHit()
	CacheMiss()
	CacheEvict()
	BlockDecompressed(bytes int)
	FileOpened(format ContainerFormat)
	OpenFailed(kind ErrKind)
}

// -----------------------------------------------------------------------------
// Open Options
// -----------------------------------------------------------------------------

const (
	// DefaultCacheCapacity is the number of decompressed blocks kept resident.
	DefaultCacheCapacity = 8

	// DefaultBlockSize is the LZXPRESS Huffman chunk size used by Windows 10
	// prefetch containers.
	DefaultBlockSize = 64 << 10
)

// OpenOptions controls parsing policy and resource limits for a prefetch file.
type OpenOptions struct {
	// CacheCapacity bounds the number of decompressed blocks held in memory.
	// Zero selects DefaultCacheCapacity.
	CacheCapacity int

	// BlockSize is the uncompressed size requested per decompression call.
	// Zero selects DefaultBlockSize.
	BlockSize int

	// Strict turns advisory inconsistencies (declared vs. produced size,
	// header file size vs. stream size) into ErrValueMismatch failures.
	Strict bool

	// CollectDiagnostics records advisory findings during Open. They can be
	// retrieved with Diagnostics() until the file is closed.
	CollectDiagnostics bool

	// Logger receives debug and warning records. Nil discards them.
	Logger *slog.Logger

	// Decompressor overrides the built-in LZXPRESS Huffman decoder.
	Decompressor Decompressor

	// Metrics receives cache and open counters. Nil disables them.
	Metrics MetricsSink
}

// -----------------------------------------------------------------------------
// Core metadata
// -----------------------------------------------------------------------------

// ContainerFormat identifies the outer framing of a prefetch file.
type ContainerFormat int

const (
	FormatUnknown         ContainerFormat = iota
	FormatUncompressed                    // bare SCCA record
	FormatCompressedWin10                 // MAM\x04 + LZXPRESS Huffman payload
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

// Info aggregates the record header and the scalar file information fields.
type Info struct {
	Container          ContainerFormat
	UncompressedSize   int64
	FormatVersion      uint32
	FileSize           uint32 // size declared in the record header
	PrefetchHash       uint32
	ExecutableFilename string
	RunCount           uint32
	LastRunTimes       []Filetime
}

// MetricsEntry is one decoded file metrics array entry.
type MetricsEntry struct {
	StartTime          uint32 // in milliseconds
	Duration           uint32 // in milliseconds
	AverageDuration    uint32 // version 23 and later
	HasAverageDuration bool
	FilenameOffset     uint32 // byte offset into the filename strings
	FilenameLength     uint32 // in characters, without terminator
	Flags              uint32
	FileReference      FileReference // version 23 and later
	HasFileReference   bool
	Filename           string // resolved through the filename strings; empty when unresolved
}

// Volume is one decoded volume information record.
type Volume struct {
	DevicePath            string
	CreationTime          Filetime
	SerialNumber          uint32
	FileReferencesVersion uint32
	FileReferences        []FileReference
	DirectoryStrings      []string
}

// NumberOfFileReferences returns the number of NTFS file references.
func (v Volume) NumberOfFileReferences() int { return len(v.FileReferences) }

// FileReference returns the i-th NTFS file reference.
func (v Volume) FileReference(i int) (FileReference, error) {
	if i < 0 || i >= len(v.FileReferences) {
		return 0, IndexError("file reference", i, len(v.FileReferences))
	}
	return v.FileReferences[i], nil
}

// NumberOfDirectoryStrings returns the number of directory strings.
func (v Volume) NumberOfDirectoryStrings() int { return len(v.DirectoryStrings) }

// DirectoryString returns the i-th directory string.
func (v Volume) DirectoryString(i int) (string, error) {
	if i < 0 || i >= len(v.DirectoryStrings) {
		return "", IndexError("directory string", i, len(v.DirectoryStrings))
	}
	return v.DirectoryStrings[i], nil
}

// IndexError builds the Argument error returned by indexed accessors.
func IndexError(what string, i, n int) error {
	return &Error{
		Kind: ErrKindArgument,
		Msg:  ErrInvalidIndex.Msg,
		Err:  fmt.Errorf("%s %d not in [0, %d)", what, i, n),
	}
}

// -----------------------------------------------------------------------------
// Read-Only API
// -----------------------------------------------------------------------------

// Reader is a read-only view over one parsed prefetch file. A Reader is not
// safe for concurrent use except for SignalAbort.
type Reader interface {
	// Close releases the stream, block cache and parsed metadata. Closing an
	// already closed Reader is a no-op.
	Close() error

	// SignalAbort asks an in-progress Open to stop at its next checkpoint.
	SignalAbort()

	// Info returns the header and scalar file information fields.
	Info() (Info, error)

	FormatVersion() (uint32, error)
	PrefetchHash() (uint32, error)
	ExecutableFilename() (string, error)
	ExecutableFilenameUTF16() ([]byte, error)
	RunCount() (uint32, error)

	// NumberOfLastRunTimes is 1 for versions before 26 and 8 afterwards.
	NumberOfLastRunTimes() (int, error)
	LastRunTime(i int) (Filetime, error)

	NumberOfFileMetricsEntries() (int, error)
	FileMetricsEntry(i int) (MetricsEntry, error)

	NumberOfFilenames() (int, error)
	Filename(i int) (string, error)
	FilenameUTF16(i int) ([]byte, error)

	NumberOfVolumes() (int, error)
	VolumeInformation(i int) (Volume, error)

	// Diagnostics returns advisory findings collected during Open, or nil
	// when OpenOptions.CollectDiagnostics was false.
	Diagnostics() *DiagnosticReport
}
