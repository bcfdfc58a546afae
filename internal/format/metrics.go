package format

import (
	"fmt"

	"github.com/joshuapare/prefetchkit/internal/buf"
)

// FileMetricsEntry is one entry of the file metrics array.
type FileMetricsEntry struct {
	StartTime          uint32
	Duration           uint32
	AverageDuration    uint32
	HasAverageDuration bool
	FilenameOffset     uint32
	FilenameLength     uint32
	Flags              uint32
	FileReference      uint64
	HasFileReference   bool
}

// ParseFileMetrics decodes count entries from b, which holds exactly the
// metrics array region.
func ParseFileMetrics(version uint32, b []byte, count int) ([]FileMetricsEntry, error) {
	size := MetricsEntryV23Size
	if version == Version17 {
		size = MetricsEntryV17Size
	}
	if _, err := buf.CheckListBounds(len(b), 0, count, size); err != nil {
		return nil, fmt.Errorf("metrics array: %w: %w", ErrOutOfBounds, err)
	}
	entries := make([]FileMetricsEntry, count)
	for i := range entries {
		e := b[i*size : (i+1)*size]
		if version == Version17 {
			entries[i] = FileMetricsEntry{
				StartTime:      buf.U32LE(e[0x00:]),
				Duration:       buf.U32LE(e[0x04:]),
				FilenameOffset: buf.U32LE(e[0x08:]),
				FilenameLength: buf.U32LE(e[0x0C:]),
				Flags:          buf.U32LE(e[0x10:]),
			}
			continue
		}
		entries[i] = FileMetricsEntry{
			StartTime:          buf.U32LE(e[0x00:]),
			Duration:           buf.U32LE(e[0x04:]),
			AverageDuration:    buf.U32LE(e[0x08:]),
			HasAverageDuration: true,
			FilenameOffset:     buf.U32LE(e[0x0C:]),
			FilenameLength:     buf.U32LE(e[0x10:]),
			Flags:              buf.U32LE(e[0x14:]),
			FileReference:      buf.U64LE(e[0x18:]),
			HasFileReference:   true,
		}
	}
	return entries, nil
}
