package format

import (
	"fmt"

	"github.com/joshuapare/prefetchkit/internal/buf"
)

// Layout identifies which file information variant was decoded.
type Layout int

const (
	LayoutV17 Layout = iota
	LayoutV23
	LayoutV26 // also version 30 with the metrics array at 0x130
	LayoutV30Variant2
)

func (l Layout) String() string {
	switch l {
	case LayoutV17:
		return "v17"
	case LayoutV23:
		return "v23"
	case LayoutV26:
		return "v26"
	case LayoutV30Variant2:
		return "v30-variant2"
	default:
		return "unknown"
	}
}

// FileInformation is the normalized view of every file information layout.
// Offsets are relative to the start of the uncompressed stream.
type FileInformation struct {
	Version uint32
	Layout  Layout
	// Size is the number of bytes the layout occupies on disk.
	Size int

	MetricsArrayOffset             uint32
	NumberOfFileMetricsEntries     uint32
	TraceChainArrayOffset          uint32
	NumberOfTraceChainArrayEntries uint32
	FilenameStringsOffset          uint32
	FilenameStringsSize            uint32
	VolumesInformationOffset       uint32
	NumberOfVolumes                uint32
	VolumesInformationSize         uint32

	LastRunTimes         [MaxLastRunTimes]uint64
	NumberOfLastRunTimes int
	RunCount             uint32
}

// MetricsEntrySize returns the on-disk size of one file metrics entry.
func (fi FileInformation) MetricsEntrySize() int {
	if fi.Version == Version17 {
		return MetricsEntryV17Size
	}
	return MetricsEntryV23Size
}

// TraceChainEntrySize returns the on-disk size of one trace chain entry.
func (fi FileInformation) TraceChainEntrySize() int {
	if fi.Version >= Version30 {
		return TraceChainEntryV30Size
	}
	return TraceChainEntryV17Size
}

// VolumeRecordSize returns the on-disk size of one volume information record.
func (fi FileInformation) VolumeRecordSize() int {
	switch {
	case fi.Version == Version17:
		return VolumeRecordV17Size
	case fi.Version >= Version30:
		return VolumeRecordV30Size
	default:
		return VolumeRecordV23Size
	}
}

// layoutSpec describes where a variant keeps its version-specific fields.
type layoutSpec struct {
	layout        Layout
	size          int
	lastRunOffset int
	lastRunSlots  int
	runCount      int
}

var (
	specV17 = layoutSpec{LayoutV17, FIV17Size, FIV17LastRunOffset, 1, FIV17RunCount}
	specV23 = layoutSpec{LayoutV23, FIV23Size, FIV23LastRunOffset, 1, FIV23RunCount}
	specV26 = layoutSpec{LayoutV26, FIV26Size, FIV26LastRunOffset, MaxLastRunTimes, FIV26RunCount}
	specV30 = layoutSpec{LayoutV30Variant2, FIV30Variant2Size, FIV30Variant2LastRunOffset, MaxLastRunTimes, FIV30Variant2RunCount}
)

// layoutSelector picks a layout for a version. metricsOffset is the first
// field of the file information, read before the layout is known.
type layoutSelector func(metricsOffset uint32) (layoutSpec, error)

var layoutTable = map[uint32]layoutSelector{
	Version17: fixedLayout(specV17),
	Version23: fixedLayout(specV23),
	Version26: fixedLayout(specV26),
	Version30: func(metricsOffset uint32) (layoutSpec, error) {
		switch metricsOffset {
		case V30Variant1MetricsOffset:
			return specV26, nil
		case V30Variant2MetricsOffset:
			return specV30, nil
		default:
			return layoutSpec{}, fmt.Errorf("version 30 metrics array offset 0x%x: %w", metricsOffset, ErrUnsupported)
		}
	},
}

func fixedLayout(s layoutSpec) layoutSelector {
	return func(uint32) (layoutSpec, error) { return s, nil }
}

// FileInformationSize reports how many bytes ParseFileInformation needs for
// version, given the metrics array offset peeked from the first 4 bytes.
func FileInformationSize(version, metricsOffset uint32) (int, error) {
	sel, ok := layoutTable[version]
	if !ok {
		return 0, fmt.Errorf("file information: version %d: %w", version, ErrUnsupported)
	}
	s, err := sel(metricsOffset)
	if err != nil {
		return 0, fmt.Errorf("file information: %w", err)
	}
	return s.size, nil
}

// ParseFileInformation decodes the file information that follows the record
// header. b must start at FileInformationOffset.
func ParseFileInformation(version uint32, b []byte) (FileInformation, error) {
	sel, ok := layoutTable[version]
	if !ok {
		return FileInformation{}, fmt.Errorf("file information: version %d: %w", version, ErrUnsupported)
	}
	if len(b) < FICommonSize {
		return FileInformation{}, fmt.Errorf("file information: %w", ErrTruncated)
	}
	s, err := sel(buf.U32LE(b[FIMetricsOffsetField:]))
	if err != nil {
		return FileInformation{}, fmt.Errorf("file information: %w", err)
	}
	if len(b) < s.size {
		return FileInformation{}, fmt.Errorf("file information %s: %w", s.layout, ErrTruncated)
	}

	fi := FileInformation{
		Version:                        version,
		Layout:                         s.layout,
		Size:                           s.size,
		MetricsArrayOffset:             buf.U32LE(b[FIMetricsOffsetField:]),
		NumberOfFileMetricsEntries:     buf.U32LE(b[FIMetricsCountField:]),
		TraceChainArrayOffset:          buf.U32LE(b[FITraceChainOffsetField:]),
		NumberOfTraceChainArrayEntries: buf.U32LE(b[FITraceChainCountField:]),
		FilenameStringsOffset:          buf.U32LE(b[FIFilenameOffsetField:]),
		FilenameStringsSize:            buf.U32LE(b[FIFilenameSizeField:]),
		VolumesInformationOffset:       buf.U32LE(b[FIVolumesOffsetField:]),
		NumberOfVolumes:                buf.U32LE(b[FIVolumesCountField:]),
		VolumesInformationSize:         buf.U32LE(b[FIVolumesSizeField:]),
		NumberOfLastRunTimes:           s.lastRunSlots,
		RunCount:                       buf.U32LE(b[s.runCount:]),
	}
	for i := 0; i < s.lastRunSlots; i++ {
		fi.LastRunTimes[i] = buf.U64LE(b[s.lastRunOffset+i*FiletimeSize:])
	}
	return fi, nil
}
