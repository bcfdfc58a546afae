package format

import (
	"fmt"
	"math"

	"github.com/joshuapare/prefetchkit/internal/buf"
)

// VolumeInformation is one decoded volume record with its nested data
// resolved. All offsets inside a record are relative to the volumes blob.
type VolumeInformation struct {
	// DevicePath is UTF-16LE without terminator, nil when absent.
	DevicePath   []byte
	CreationTime uint64
	SerialNumber uint32

	FileReferencesVersion uint32
	// FileReferences holds the reference slots after the header; the first
	// slot is not a file reference and is kept in FileReferencesUnknown.
	FileReferencesUnknown uint64
	FileReferences        []uint64

	// DirectoryStrings are UTF-16LE without terminators.
	DirectoryStrings [][]byte
}

// ParseVolumes decodes count records from the volumes blob. Every record and
// every nested offset is checked against len(blob) before it is read.
func ParseVolumes(version uint32, blob []byte, count int) ([]VolumeInformation, error) {
	recSize := FileInformation{Version: version}.VolumeRecordSize()
	if _, err := buf.CheckListBounds(len(blob), 0, count, recSize); err != nil {
		return nil, fmt.Errorf("volumes information: %w: %w", ErrOutOfBounds, err)
	}
	vols := make([]VolumeInformation, count)
	for i := range vols {
		rec := blob[i*recSize : (i+1)*recSize]
		v, err := parseVolume(rec, blob)
		if err != nil {
			return nil, fmt.Errorf("volume %d: %w", i, err)
		}
		vols[i] = v
	}
	return vols, nil
}

func parseVolume(rec, blob []byte) (VolumeInformation, error) {
	v := VolumeInformation{
		CreationTime: buf.U64LE(rec[VolCreationTimeField:]),
		SerialNumber: buf.U32LE(rec[VolSerialNumberField:]),
	}

	pathOff := buf.U32LE(rec[VolDevicePathOffsetField:])
	pathChars := buf.U32LE(rec[VolDevicePathCharsField:])
	if pathOff != 0 && pathChars != 0 {
		if pathChars >= math.MaxUint32/2 {
			return v, fmt.Errorf("device path length %d: %w", pathChars, ErrOutOfBounds)
		}
		p, ok := buf.Slice(blob, int(pathOff), int(pathChars)*UTF16CodeUnitSize)
		if !ok {
			return v, fmt.Errorf("device path at 0x%x (%d chars): %w", pathOff, pathChars, ErrOutOfBounds)
		}
		v.DevicePath = trimUTF16(p)
	}

	refsOff := buf.U32LE(rec[VolFileRefsOffsetField:])
	refsSize := buf.U32LE(rec[VolFileRefsSizeField:])
	if refsOff != 0 {
		refs, ok := buf.Slice(blob, int(refsOff), int(refsSize))
		if !ok {
			return v, fmt.Errorf("file references at 0x%x (%d bytes): %w", refsOff, refsSize, ErrOutOfBounds)
		}
		if err := parseFileReferences(refs, &v); err != nil {
			return v, err
		}
	}

	dirOff := buf.U32LE(rec[VolDirStringsOffsetField:])
	dirCount := buf.U32LE(rec[VolDirStringsCountField:])
	if dirOff != 0 {
		if int64(dirOff) > int64(len(blob)) {
			return v, fmt.Errorf("directory strings at 0x%x: %w", dirOff, ErrOutOfBounds)
		}
		strs, err := parseDirectoryStrings(blob[dirOff:], int(dirCount))
		if err != nil {
			return v, err
		}
		v.DirectoryStrings = strs
	}
	return v, nil
}

// parseFileReferences decodes the file references block:
//
//	0x00  4  version
//	0x04  4  number of slots
//	0x08  8  unknown (slot 0)
//	0x10  8  file reference (slot 1) ...
func parseFileReferences(b []byte, v *VolumeInformation) error {
	if len(b) < FileReferencesHeaderSize {
		return fmt.Errorf("file references header: %w", ErrOutOfBounds)
	}
	v.FileReferencesVersion = buf.U32LE(b)
	n := buf.U32LE(b[4:])
	if n == 0 {
		return nil
	}
	if _, err := buf.CheckListBounds(len(b), FileReferencesHeaderSize, int(n), FileReferenceSize); err != nil {
		return fmt.Errorf("file references (%d): %w: %w", n, ErrOutOfBounds, err)
	}
	v.FileReferencesUnknown = buf.U64LE(b[FileReferencesHeaderSize:])
	v.FileReferences = make([]uint64, n-1)
	for i := range v.FileReferences {
		v.FileReferences[i] = buf.U64LE(b[FileReferencesHeaderSize+(i+1)*FileReferenceSize:])
	}
	return nil
}

// parseDirectoryStrings decodes count strings, each stored as a 16-bit
// character count followed by the characters and a zero code unit.
func parseDirectoryStrings(b []byte, count int) ([][]byte, error) {
	if count < 0 || count > len(b)/(DirectoryStringCountWidth+UTF16CodeUnitSize) {
		return nil, fmt.Errorf("directory strings count %d: %w", count, ErrOutOfBounds)
	}
	out := make([][]byte, 0, count)
	off := 0
	for i := 0; i < count; i++ {
		if !buf.Has(b, off, DirectoryStringCountWidth) {
			return nil, fmt.Errorf("directory string %d length: %w", i, ErrOutOfBounds)
		}
		chars := int(buf.U16LE(b[off:]))
		off += DirectoryStringCountWidth
		size := (chars + 1) * UTF16CodeUnitSize
		s, ok := buf.Slice(b, off, size)
		if !ok {
			return nil, fmt.Errorf("directory string %d (%d chars): %w", i, chars, ErrOutOfBounds)
		}
		out = append(out, s[:chars*UTF16CodeUnitSize])
		off += size
	}
	return out, nil
}

// trimUTF16 drops everything from the first zero code unit on.
func trimUTF16(b []byte) []byte {
	if n := UTF16TerminatorIndex(b); n >= 0 {
		return b[:n]
	}
	return b
}
