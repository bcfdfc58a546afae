package testutil

import (
	"github.com/joshuapare/prefetchkit/internal/buf"
	"golang.org/x/text/encoding/unicode"
)

// Record sizes mirrored from internal/format so fixtures stay independent of
// the decoders under test.
const (
	headerSize = 84

	fiV17Size         = 68
	fiV23Size         = 156
	fiV26Size         = 224
	fiV30Variant2Size = 212

	// Windows 8.1 and 10 records start the metrics array at 0x130, inside the
	// last 4 bytes of the 224-byte file information.
	metricsV26Offset = 0x130
)

// Metric describes one file metrics entry. Filename indexes Prefetch.Filenames;
// a negative value writes FilenameOffset verbatim instead.
type Metric struct {
	StartTime       uint32
	Duration        uint32
	AverageDuration uint32
	Filename        int
	FilenameOffset  uint32
	Flags           uint32
	FileReference   uint64
}

// Volume describes one volume information record and its nested data.
type Volume struct {
	DevicePath       string
	CreationTime     uint64
	SerialNumber     uint32
	FileReferences   []uint64
	DirectoryStrings []string
}

// Prefetch describes a synthetic uncompressed prefetch record. Build lays it
// out as header, file information, metrics, trace chain, filename strings and
// volumes, in that order.
type Prefetch struct {
	Version uint32
	// V30Variant2 selects the 212-byte version 30 file information.
	V30Variant2 bool

	Executable   string
	PrefetchHash uint32
	RunCount     uint32
	LastRunTimes []uint64

	Filenames  []string
	Metrics    []Metric
	TraceChain int
	Volumes    []Volume
}

// Layout reports where Build placed each region, for tests that corrupt one.
type Layout struct {
	FileInformation int
	Metrics         int
	TraceChain      int
	Filenames       int
	FilenamesSize   int
	Volumes         int
	VolumesSize     int
	// FilenameOffsets holds each filename's byte offset in the strings blob.
	FilenameOffsets []int
}

// FileInformationSize returns the size of the file information for p.
func (p Prefetch) FileInformationSize() int {
	switch p.Version {
	case 17:
		return fiV17Size
	case 23:
		return fiV23Size
	case 30:
		if p.V30Variant2 {
			return fiV30Variant2Size
		}
		return fiV26Size
	default:
		return fiV26Size
	}
}

// metricsOffset returns where Build places the metrics array.
func (p Prefetch) metricsOffset() int {
	if p.FileInformationSize() == fiV26Size {
		return metricsV26Offset
	}
	return headerSize + p.FileInformationSize()
}

func (p Prefetch) metricsEntrySize() int {
	if p.Version == 17 {
		return 20
	}
	return 32
}

func (p Prefetch) traceEntrySize() int {
	if p.Version >= 30 {
		return 8
	}
	return 12
}

func (p Prefetch) volumeRecordSize() int {
	switch {
	case p.Version == 17:
		return 40
	case p.Version >= 30:
		return 96
	default:
		return 104
	}
}

// Build serializes p.
func (p Prefetch) Build() []byte {
	b, _ := p.BuildWithLayout()
	return b
}

// BuildWithLayout serializes p and reports region offsets.
func (p Prefetch) BuildWithLayout() ([]byte, Layout) {
	var l Layout
	l.FileInformation = headerSize
	l.Metrics = p.metricsOffset()
	l.TraceChain = l.Metrics + len(p.Metrics)*p.metricsEntrySize()

	names := make([]byte, 0)
	for _, n := range p.Filenames {
		l.FilenameOffsets = append(l.FilenameOffsets, len(names))
		names = append(names, UTF16Z(n)...)
	}
	l.Filenames = l.TraceChain + p.TraceChain*p.traceEntrySize()
	l.FilenamesSize = len(names)

	vols := p.buildVolumes()
	l.Volumes = l.Filenames + len(names)
	l.VolumesSize = len(vols)

	out := make([]byte, max(l.Volumes+len(vols), headerSize+p.FileInformationSize()))

	// header
	buf.PutU32LE(out, 0x00, p.Version)
	copy(out[0x04:], "SCCA")
	buf.PutU32LE(out, 0x08, 0x11)
	buf.PutU32LE(out, 0x0C, uint32(len(out)))
	exe := UTF16(p.Executable)
	if len(exe) > 58 {
		exe = exe[:58]
	}
	copy(out[0x10:], exe)
	buf.PutU32LE(out, 0x4C, p.PrefetchHash)

	// file information
	fi := out[l.FileInformation:]
	buf.PutU32LE(fi, 0x00, uint32(l.Metrics))
	buf.PutU32LE(fi, 0x04, uint32(len(p.Metrics)))
	buf.PutU32LE(fi, 0x08, uint32(l.TraceChain))
	buf.PutU32LE(fi, 0x0C, uint32(p.TraceChain))
	buf.PutU32LE(fi, 0x10, uint32(l.Filenames))
	buf.PutU32LE(fi, 0x14, uint32(l.FilenamesSize))
	buf.PutU32LE(fi, 0x18, uint32(l.Volumes))
	buf.PutU32LE(fi, 0x1C, uint32(len(p.Volumes)))
	buf.PutU32LE(fi, 0x20, uint32(l.VolumesSize))
	lastRun, slots, runCount := 0x2C, 8, 0x7C
	switch {
	case p.Version == 17:
		lastRun, slots, runCount = 0x24, 1, 0x3C
	case p.Version == 23:
		lastRun, slots, runCount = 0x2C, 1, 0x44
	case p.Version == 30 && p.V30Variant2:
		runCount = 0x74
	}
	for i := 0; i < slots && i < len(p.LastRunTimes); i++ {
		buf.PutU64LE(fi, lastRun+i*8, p.LastRunTimes[i])
	}
	buf.PutU32LE(fi, runCount, p.RunCount)

	// metrics
	for i, m := range p.Metrics {
		e := out[l.Metrics+i*p.metricsEntrySize():]
		off := m.FilenameOffset
		chars := uint32(0)
		if m.Filename >= 0 && m.Filename < len(p.Filenames) {
			off = uint32(l.FilenameOffsets[m.Filename])
			chars = uint32(len(UTF16(p.Filenames[m.Filename])) / 2)
		}
		if p.Version == 17 {
			buf.PutU32LE(e, 0x00, m.StartTime)
			buf.PutU32LE(e, 0x04, m.Duration)
			buf.PutU32LE(e, 0x08, off)
			buf.PutU32LE(e, 0x0C, chars)
			buf.PutU32LE(e, 0x10, m.Flags)
			continue
		}
		buf.PutU32LE(e, 0x00, m.StartTime)
		buf.PutU32LE(e, 0x04, m.Duration)
		buf.PutU32LE(e, 0x08, m.AverageDuration)
		buf.PutU32LE(e, 0x0C, off)
		buf.PutU32LE(e, 0x10, chars)
		buf.PutU32LE(e, 0x14, m.Flags)
		buf.PutU64LE(e, 0x18, m.FileReference)
	}

	// trace chain
	for i := 0; i < p.TraceChain; i++ {
		e := out[l.TraceChain+i*p.traceEntrySize():]
		off := 0
		if p.traceEntrySize() == 12 {
			next := uint32(i + 1)
			if i == p.TraceChain-1 {
				next = 0xffffffff
			}
			buf.PutU32LE(e, 0, next)
			off = 4
		}
		buf.PutU32LE(e, off, uint32(i*3+1))
		e[off+4] = 0x02
		e[off+5] = 0x01
		buf.PutU16LE(e, off+6, 0x0001)
	}

	copy(out[l.Filenames:], names)
	copy(out[l.Volumes:], vols)
	return out, l
}

// buildVolumes lays out the volume records followed by each volume's device
// path, file references block and directory strings.
func (p Prefetch) buildVolumes() []byte {
	if len(p.Volumes) == 0 {
		return nil
	}
	recSize := p.volumeRecordSize()
	blob := make([]byte, len(p.Volumes)*recSize)
	for i, v := range p.Volumes {
		rec := i * recSize

		path := UTF16Z(v.DevicePath)
		buf.PutU32LE(blob, rec+0x00, uint32(len(blob)))
		buf.PutU32LE(blob, rec+0x04, uint32(len(path)/2-1))
		blob = append(blob, path...)

		buf.PutU64LE(blob, rec+0x08, v.CreationTime)
		buf.PutU32LE(blob, rec+0x10, v.SerialNumber)

		if len(v.FileReferences) > 0 {
			refs := make([]byte, 8+8*(len(v.FileReferences)+1))
			buf.PutU32LE(refs, 0, 3)
			buf.PutU32LE(refs, 4, uint32(len(v.FileReferences)+1))
			for j, r := range v.FileReferences {
				buf.PutU64LE(refs, 16+8*j, r)
			}
			buf.PutU32LE(blob, rec+0x14, uint32(len(blob)))
			buf.PutU32LE(blob, rec+0x18, uint32(len(refs)))
			blob = append(blob, refs...)
		}

		if len(v.DirectoryStrings) > 0 {
			buf.PutU32LE(blob, rec+0x1C, uint32(len(blob)))
			buf.PutU32LE(blob, rec+0x20, uint32(len(v.DirectoryStrings)))
			for _, s := range v.DirectoryStrings {
				enc := UTF16Z(s)
				var n [2]byte
				buf.PutU16LE(n[:], 0, uint16(len(enc)/2-1))
				blob = append(blob, n[:]...)
				blob = append(blob, enc...)
			}
		}
	}
	return blob
}

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// UTF16 encodes s as UTF-16LE without a terminator.
func UTF16(s string) []byte {
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(err)
	}
	return b
}

// UTF16Z encodes s as UTF-16LE followed by a zero code unit.
func UTF16Z(s string) []byte {
	return append(UTF16(s), 0, 0)
}
