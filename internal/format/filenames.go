package format

// FilenameSpan locates one filename inside the filename strings blob. Size
// includes the terminating zero code unit when one is present.
type FilenameSpan struct {
	Offset int
	Size   int
}

// FilenameTable indexes the filename strings blob. Entries are found in a
// single linear pass; each ends at an aligned 16-bit zero code unit, and a
// trailing run without a terminator becomes the last entry.
type FilenameTable struct {
	data  []byte
	spans []FilenameSpan
}

// ParseFilenameStrings indexes b. The table keeps a reference to b.
func ParseFilenameStrings(b []byte) *FilenameTable {
	t := &FilenameTable{data: b}
	start := 0
	for i := 0; i+1 < len(b); i += UTF16CodeUnitSize {
		if b[i] == 0 && b[i+1] == 0 {
			t.spans = append(t.spans, FilenameSpan{Offset: start, Size: i + UTF16CodeUnitSize - start})
			start = i + UTF16CodeUnitSize
		}
	}
	if start < len(b) {
		t.spans = append(t.spans, FilenameSpan{Offset: start, Size: len(b) - start})
	}
	return t
}

// Len returns the number of filenames.
func (t *FilenameTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.spans)
}

// Span returns the location of filename i.
func (t *FilenameTable) Span(i int) FilenameSpan { return t.spans[i] }

// Raw returns filename i as stored, including its terminator.
func (t *FilenameTable) Raw(i int) []byte {
	s := t.spans[i]
	return t.data[s.Offset : s.Offset+s.Size]
}

// UTF16 returns filename i without its terminator.
func (t *FilenameTable) UTF16(i int) []byte {
	raw := t.Raw(i)
	if n := len(raw); n >= UTF16CodeUnitSize && raw[n-1] == 0 && raw[n-2] == 0 {
		return raw[:n-UTF16CodeUnitSize]
	}
	return raw
}

// IndexAt returns the index of the filename starting at byte offset off.
func (t *FilenameTable) IndexAt(off uint32) (int, bool) {
	if t == nil {
		return 0, false
	}
	lo, hi := 0, len(t.spans)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if uint32(t.spans[mid].Offset) < off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(t.spans) && uint32(t.spans[lo].Offset) == off {
		return lo, true
	}
	return 0, false
}
