// Package buf contains bounds arithmetic and little-endian field readers used
// by every decoder that touches untrusted prefetch bytes.
package buf

import "encoding/binary"

// U16LE reads a little-endian uint16 from b. Returns 0 when b is too short.
func U16LE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// U64LE reads a little-endian uint64 from b. Returns 0 when b is too short.
func U64LE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// PutU16LE, PutU32LE and PutU64LE write little-endian values at b[off:].
// They are used by the synthetic fixture builders and panic on short buffers
// like their encoding/binary counterparts.
func PutU16LE(b []byte, off int, v uint16) { binary.LittleEndian.PutUint16(b[off:], v) }

func PutU32LE(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }

func PutU64LE(b []byte, off int, v uint64) { binary.LittleEndian.PutUint64(b[off:], v) }
