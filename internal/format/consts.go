// Package format houses low-level decoders for the Windows Prefetch (SCCA)
// file format. Decoders operate on byte slices already read from the
// decompressed stream, validate every offset before use and return plain
// structs so higher-level packages can orchestrate the data.
package format

var (
	// SCCASignature is the record signature stored after the format version.
	// Layout (little-endian):
	//   0x00  format version (4)
	//   0x04  'S' 'C' 'C' 'A'
	SCCASignature = []byte{'S', 'C', 'C', 'A'}

	// MAMSignature opens a Windows 10 compressed container.
	// Layout:
	//   0x00  'M' 'A' 'M' 0x04
	//   0x04  uncompressed size (4)
	//   0x08  LZXPRESS Huffman payload
	MAMSignature = []byte{'M', 'A', 'M', 0x04}
)

const (
	// ContainerHeaderSize is the number of bytes ProbeContainer inspects. The
	// compressed payload of a MAM container begins right after it.
	ContainerHeaderSize = 8

	// MAM container fields.
	MAMSignatureOffset        = 0x00
	MAMUncompressedSizeOffset = 0x04

	// MinCompressedTrailer is the number of trailing compressed bytes that are
	// treated as padding rather than another block.
	MinCompressedTrailer = 2
)

// File header (first 84 bytes of the uncompressed record).
const (
	FileHeaderSize = 84

	HeaderFormatVersionOffset  = 0x00 // 4
	HeaderSignatureOffset      = 0x04 // 4 'SCCA'
	HeaderUnknown1Offset       = 0x08 // 4
	HeaderFileSizeOffset       = 0x0C // 4
	HeaderExecutableOffset     = 0x10 // 60 UTF-16LE, zero padded
	HeaderExecutableSize       = 60
	HeaderPrefetchHashOffset   = 0x4C // 4
	HeaderUnknown2Offset       = 0x50 // 4
	FileInformationOffset      = FileHeaderSize
	UTF16CodeUnitSize          = 2
	MaxExecutableFilenameChars = HeaderExecutableSize / UTF16CodeUnitSize
)

// Supported format versions.
const (
	Version17 = 17 // Windows XP, 2003
	Version23 = 23 // Vista, 7
	Version26 = 26 // 8.1
	Version30 = 30 // 10, 11
)

// File information, fields shared by every layout.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------
//	 0x00    4    metrics array offset
//	 0x04    4    number of file metrics entries
//	 0x08    4    trace chain array offset
//	 0x0C    4    number of trace chain array entries
//	 0x10    4    filename strings offset
//	 0x14    4    filename strings size
//	 0x18    4    volumes information offset
//	 0x1C    4    number of volumes
//	 0x20    4    volumes information size
const (
	FIMetricsOffsetField    = 0x00
	FIMetricsCountField     = 0x04
	FITraceChainOffsetField = 0x08
	FITraceChainCountField  = 0x0C
	FIFilenameOffsetField   = 0x10
	FIFilenameSizeField     = 0x14
	FIVolumesOffsetField    = 0x18
	FIVolumesCountField     = 0x1C
	FIVolumesSizeField      = 0x20
	FICommonSize            = 0x24
	MaxLastRunTimes         = 8
	FiletimeSize            = 8
)

// Layout-specific file information sizes and field offsets.
//
// Version 17 (68 bytes):
//
//	0x24  8   last run time
//	0x2C  16  unknown
//	0x3C  4   run count
//	0x40  4   unknown
//
// Version 23 (156 bytes):
//
//	0x24  8   unknown
//	0x2C  8   last run time
//	0x34  16  unknown
//	0x44  4   run count
//	0x48  4   unknown
//	0x4C  80  unknown
//
// Version 26 and version 30 with metrics at 0x130 (224 bytes):
//
//	0x24  8   unknown
//	0x2C  64  last run times (8 x FILETIME)
//	0x6C  16  unknown
//	0x7C  4   run count
//	0x80  4   unknown
//	0x84  4   unknown
//	0x88  88  unknown
//
// Version 30 with metrics at 0x128 (212 bytes):
//
//	0x24  8   unknown
//	0x2C  64  last run times (8 x FILETIME)
//	0x6C  8   unknown
//	0x74  4   run count
//	0x78  4   unknown
//	0x7C  88  unknown
const (
	FIV17Size          = 68
	FIV17LastRunOffset = 0x24
	FIV17RunCount      = 0x3C

	FIV23Size          = 156
	FIV23LastRunOffset = 0x2C
	FIV23RunCount      = 0x44

	FIV26Size          = 224
	FIV26LastRunOffset = 0x2C
	FIV26RunCount      = 0x7C

	FIV30Variant2Size          = 212
	FIV30Variant2LastRunOffset = 0x2C
	FIV30Variant2RunCount      = 0x74

	// Version 30 layouts are told apart by where the metrics array starts.
	// Variant 2 places it directly after its 212-byte file information.
	// Variant 1 (and version 26) start it 4 bytes before the end of the
	// 224-byte file information, overlapping its last field.
	V30Variant1MetricsOffset = FileHeaderSize + FIV26Size - 4     // 0x130
	V30Variant2MetricsOffset = FileHeaderSize + FIV30Variant2Size // 0x128
)

// File metrics entries.
//
// Version 17 (20 bytes):
//
//	0x00  4  start time (ms)
//	0x04  4  duration (ms)
//	0x08  4  filename string offset
//	0x0C  4  filename string number of characters
//	0x10  4  flags
//
// Version 23 and later (32 bytes):
//
//	0x00  4  start time (ms)
//	0x04  4  duration (ms)
//	0x08  4  average duration (ms)
//	0x0C  4  filename string offset
//	0x10  4  filename string number of characters
//	0x14  4  flags
//	0x18  8  NTFS file reference
const (
	MetricsEntryV17Size = 20
	MetricsEntryV23Size = 32
)

// Trace chain entries: 12 bytes before version 30 (next entry index, block
// load count, two bytes, one word), 8 bytes from version 30 (no next index).
const (
	TraceChainEntryV17Size = 12
	TraceChainEntryV30Size = 8
)

// Volume information records.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------
//	 0x00    4    device path offset (relative to volumes blob)
//	 0x04    4    device path number of characters
//	 0x08    8    creation time (FILETIME)
//	 0x10    4    serial number
//	 0x14    4    file references offset
//	 0x18    4    file references size
//	 0x1C    4    directory strings offset
//	 0x20    4    number of directory strings
//	 0x24    4    unknown
//	 ...          version dependent padding (v23/v26: 64, v30: 56)
const (
	VolumeRecordV17Size = 40
	VolumeRecordV23Size = 104
	VolumeRecordV30Size = 96

	VolDevicePathOffsetField  = 0x00
	VolDevicePathCharsField   = 0x04
	VolCreationTimeField      = 0x08
	VolSerialNumberField      = 0x10
	VolFileRefsOffsetField    = 0x14
	VolFileRefsSizeField      = 0x18
	VolDirStringsOffsetField  = 0x1C
	VolDirStringsCountField   = 0x20
	FileReferencesHeaderSize  = 8
	FileReferenceSize         = 8
	DirectoryStringCountWidth = 2
)
