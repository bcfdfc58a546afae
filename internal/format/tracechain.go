package format

import (
	"fmt"

	"github.com/joshuapare/prefetchkit/internal/buf"
)

// TraceChainEntry is one trace chain array entry. The array is validated on
// open but only decoded for debug output.
type TraceChainEntry struct {
	NextEntryIndex      uint32 // before version 30 only
	TotalBlockLoadCount uint32
	Unknown1            uint8
	Unknown2            uint8
	Unknown3            uint16
}

// ParseTraceChain decodes count entries from b, which holds exactly the trace
// chain array region.
func ParseTraceChain(version uint32, b []byte, count int) ([]TraceChainEntry, error) {
	size := TraceChainEntryV17Size
	if version >= Version30 {
		size = TraceChainEntryV30Size
	}
	if _, err := buf.CheckListBounds(len(b), 0, count, size); err != nil {
		return nil, fmt.Errorf("trace chain array: %w: %w", ErrOutOfBounds, err)
	}
	entries := make([]TraceChainEntry, count)
	for i := range entries {
		e := b[i*size : (i+1)*size]
		off := 0
		if size == TraceChainEntryV17Size {
			entries[i].NextEntryIndex = buf.U32LE(e)
			off = 4
		}
		entries[i].TotalBlockLoadCount = buf.U32LE(e[off:])
		entries[i].Unknown1 = e[off+4]
		entries[i].Unknown2 = e[off+5]
		entries[i].Unknown3 = buf.U16LE(e[off+6:])
	}
	return entries, nil
}
