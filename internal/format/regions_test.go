package format

import (
	"bytes"
	"errors"
	"testing"

	"github.com/joshuapare/prefetchkit/internal/buf"
	"github.com/joshuapare/prefetchkit/internal/testutil"
)

func TestParseFileMetrics(t *testing.T) {
	for _, version := range []uint32{Version17, Version23, Version30} {
		p := testutil.Sample(version)
		data, l := p.BuildWithLayout()
		region := data[l.Metrics:l.TraceChain]

		entries, err := ParseFileMetrics(version, region, len(p.Metrics))
		if err != nil {
			t.Fatalf("v%d: ParseFileMetrics: %v", version, err)
		}
		if len(entries) != 3 {
			t.Fatalf("v%d: %d entries", version, len(entries))
		}
		e := entries[1]
		if e.StartTime != 12 || e.Duration != 3 || e.Flags != 0x200 {
			t.Fatalf("v%d: entry=%+v", version, e)
		}
		if e.FilenameOffset != uint32(l.FilenameOffsets[1]) {
			t.Fatalf("v%d: FilenameOffset=%d want %d", version, e.FilenameOffset, l.FilenameOffsets[1])
		}
		if version == Version17 {
			if e.HasFileReference || e.HasAverageDuration {
				t.Fatalf("v17 entry must not carry v23 fields: %+v", e)
			}
			continue
		}
		if !e.HasFileReference || e.FileReference != 0x000200000000113a || e.AverageDuration != 4 {
			t.Fatalf("v%d: entry=%+v", version, e)
		}
	}
}

func TestParseFileMetricsBounds(t *testing.T) {
	region := make([]byte, 2*MetricsEntryV23Size)
	if _, err := ParseFileMetrics(Version30, region, 3); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("err=%v want ErrOutOfBounds", err)
	}
	if _, err := ParseFileMetrics(Version17, region[:MetricsEntryV17Size*3], 3); err != nil {
		t.Fatalf("v17 entries are 20 bytes: %v", err)
	}
}

func TestParseTraceChain(t *testing.T) {
	for _, version := range []uint32{Version23, Version30} {
		p := testutil.Sample(version)
		data, l := p.BuildWithLayout()
		entries, err := ParseTraceChain(version, data[l.TraceChain:l.Filenames], p.TraceChain)
		if err != nil {
			t.Fatalf("v%d: ParseTraceChain: %v", version, err)
		}
		if entries[2].TotalBlockLoadCount != 7 || entries[2].Unknown1 != 2 || entries[2].Unknown3 != 1 {
			t.Fatalf("v%d: entry=%+v", version, entries[2])
		}
		if version == Version23 && entries[2].NextEntryIndex != 3 {
			t.Fatalf("NextEntryIndex=%d want 3", entries[2].NextEntryIndex)
		}
		if _, err := ParseTraceChain(version, data[l.TraceChain:l.Filenames-1], p.TraceChain); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("v%d: short region err=%v", version, err)
		}
	}
}

func TestParseFilenameStrings(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []string
	}{
		{"two terminated", utf16z("A", "B"), []string{"A", "B"}},
		{"trailing unterminated", append(utf16z("A"), testutil.UTF16("BC")...), []string{"A", "BC"}},
		{"empty entries kept", []byte{0, 0, 0, 0}, []string{"", ""}},
		{"empty blob", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := ParseFilenameStrings(tt.in)
			if tbl.Len() != len(tt.want) {
				t.Fatalf("Len=%d want %d", tbl.Len(), len(tt.want))
			}
			for i, w := range tt.want {
				if got := tbl.UTF16(i); !bytes.Equal(got, testutil.UTF16(w)) {
					t.Fatalf("entry %d = % x want %q", i, got, w)
				}
			}
		})
	}
}

func TestFilenameSpansIncludeTerminator(t *testing.T) {
	tbl := ParseFilenameStrings(utf16z("AB", "C"))
	if s := tbl.Span(0); s.Offset != 0 || s.Size != 6 {
		t.Fatalf("span 0 = %+v", s)
	}
	if s := tbl.Span(1); s.Offset != 6 || s.Size != 4 {
		t.Fatalf("span 1 = %+v", s)
	}
	if i, ok := tbl.IndexAt(6); !ok || i != 1 {
		t.Fatalf("IndexAt(6)=%d,%v", i, ok)
	}
	if _, ok := tbl.IndexAt(2); ok {
		t.Fatalf("IndexAt(2) should not match the middle of an entry")
	}
}

func TestParseVolumes(t *testing.T) {
	for _, version := range []uint32{Version17, Version23, Version26, Version30} {
		p := testutil.Sample(version)
		data, l := p.BuildWithLayout()
		vols, err := ParseVolumes(version, data[l.Volumes:l.Volumes+l.VolumesSize], 1)
		if err != nil {
			t.Fatalf("v%d: ParseVolumes: %v", version, err)
		}
		v := vols[0]
		if !bytes.Equal(v.DevicePath, testutil.UTF16(p.Volumes[0].DevicePath)) {
			t.Fatalf("v%d: DevicePath=% x", version, v.DevicePath)
		}
		if v.SerialNumber != 0x5a6b7c8d || v.CreationTime != testutil.SampleVolumeBirth {
			t.Fatalf("v%d: volume=%+v", version, v)
		}
		if len(v.FileReferences) != 2 || v.FileReferences[1] != 0x0001000000000024 || v.FileReferencesVersion != 3 {
			t.Fatalf("v%d: FileReferences=%x version=%d", version, v.FileReferences, v.FileReferencesVersion)
		}
		if len(v.DirectoryStrings) != 2 || !bytes.Equal(v.DirectoryStrings[1], testutil.UTF16(p.Volumes[0].DirectoryStrings[1])) {
			t.Fatalf("v%d: DirectoryStrings=%q", version, v.DirectoryStrings)
		}
	}
}

func TestParseVolumesBounds(t *testing.T) {
	p := testutil.Sample(Version30)
	data, l := p.BuildWithLayout()
	blob := func() []byte {
		return append([]byte(nil), data[l.Volumes:l.Volumes+l.VolumesSize]...)
	}

	tests := []struct {
		name   string
		mutate func(b []byte) []byte
		count  int
	}{
		{"record past blob", func(b []byte) []byte { return b[:VolumeRecordV30Size-1] }, 1},
		{"too many records", func(b []byte) []byte { return b }, 1000},
		{"device path offset", func(b []byte) []byte {
			buf.PutU32LE(b, VolDevicePathOffsetField, uint32(len(b)))
			return b
		}, 1},
		{"device path length", func(b []byte) []byte {
			buf.PutU32LE(b, VolDevicePathCharsField, uint32(len(b)))
			return b
		}, 1},
		{"device path length overflow", func(b []byte) []byte {
			buf.PutU32LE(b, VolDevicePathCharsField, 0x80000000)
			return b
		}, 1},
		{"file references size", func(b []byte) []byte {
			buf.PutU32LE(b, VolFileRefsSizeField, uint32(len(b)))
			return b
		}, 1},
		{"file references count", func(b []byte) []byte {
			off := buf.U32LE(b[VolFileRefsOffsetField:])
			buf.PutU32LE(b, int(off)+4, 0xffff)
			return b
		}, 1},
		{"directory strings offset", func(b []byte) []byte {
			buf.PutU32LE(b, VolDirStringsOffsetField, uint32(len(b)+1))
			return b
		}, 1},
		{"directory strings count", func(b []byte) []byte {
			buf.PutU32LE(b, VolDirStringsCountField, 3)
			return b
		}, 1},
		{"directory string length", func(b []byte) []byte {
			off := buf.U32LE(b[VolDirStringsOffsetField:])
			buf.PutU16LE(b, int(off), 0x7fff)
			return b
		}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVolumes(Version30, tt.mutate(blob()), tt.count)
			if !errors.Is(err, ErrOutOfBounds) {
				t.Fatalf("err=%v want ErrOutOfBounds", err)
			}
		})
	}
}

func utf16z(names ...string) []byte {
	var out []byte
	for _, n := range names {
		out = append(out, testutil.UTF16Z(n)...)
	}
	return out
}
