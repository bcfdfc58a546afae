package types

import (
	"fmt"
	"time"
)

const (
	filetimeUnixOffset  = 116444736000000000 // FILETIME ticks between 1601-01-01 and 1970-01-01
	filetimeTicksPerSec = 10000000
)

// Filetime is a Windows FILETIME: 100ns ticks since 1601-01-01 UTC.
type Filetime uint64

// IsZero reports whether the slot was never written.
func (f Filetime) IsZero() bool { return f == 0 }

// Time converts f to UTC. Zero converts to the zero time.Time.
func (f Filetime) Time() time.Time {
	if f == 0 {
		return time.Time{}
	}
	v := uint64(f)
	if v >= filetimeUnixOffset {
		d := v - filetimeUnixOffset
		return time.Unix(int64(d/filetimeTicksPerSec), int64(d%filetimeTicksPerSec)*100).UTC()
	}
	d := filetimeUnixOffset - v
	return time.Unix(-int64(d/filetimeTicksPerSec), -int64(d%filetimeTicksPerSec)*100).UTC()
}

func (f Filetime) String() string {
	if f == 0 {
		return "Not set (0)"
	}
	return f.Time().Format("Jan 02, 2006 15:04:05.000000000 UTC")
}

// FiletimeFromTime converts t to a FILETIME.
func FiletimeFromTime(t time.Time) Filetime {
	sec := t.Unix()
	ticks := sec*filetimeTicksPerSec + int64(t.Nanosecond())/100
	return Filetime(uint64(ticks + filetimeUnixOffset))
}

// FileReference is an NTFS file reference: MFT entry index in the low 48 bits
// and sequence number in the high 16 bits.
type FileReference uint64

// MFTEntry returns the MFT entry index.
func (r FileReference) MFTEntry() uint64 { return uint64(r) & 0x0000ffffffffffff }

// Sequence returns the sequence number.
func (r FileReference) Sequence() uint16 { return uint16(uint64(r) >> 48) }

func (r FileReference) String() string {
	if r == 0 {
		return "0"
	}
	return fmt.Sprintf("%d-%d", r.MFTEntry(), r.Sequence())
}
