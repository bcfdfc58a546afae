package buf

import "testing"

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	if got := U16LE(data); got != 0x2301 {
		t.Fatalf("U16LE = 0x%x, want 0x2301", got)
	}
	if got := U32LE(data); got != 0x67452301 {
		t.Fatalf("U32LE = 0x%x, want 0x67452301", got)
	}
	if got := U64LE(data); got != 0xefcdab8967452301 {
		t.Fatalf("U64LE = 0x%x, want 0xefcdab8967452301", got)
	}
	if got := U16LE(data[6:]); got != 0xefcd {
		t.Fatalf("U16LE(data[6:]) = 0x%x, want 0xefcd", got)
	}
	if got := U32LE(data[4:]); got != 0xefcdab89 {
		t.Fatalf("U32LE(data[4:]) = 0x%x, want 0xefcdab89", got)
	}
}

func TestEndianShortReads(t *testing.T) {
	short := []byte{0xAA}
	if U16LE(short) != 0 || U32LE(short) != 0 || U64LE(short) != 0 {
		t.Fatalf("short reads should return 0")
	}
	if U16LE(nil) != 0 || U32LE([]byte{1, 2, 3}) != 0 || U64LE(make([]byte, 7)) != 0 {
		t.Fatalf("truncated reads should return 0")
	}
}

func TestPutRoundTrip(t *testing.T) {
	b := make([]byte, 14)
	PutU16LE(b, 0, 0xbeef)
	PutU32LE(b, 2, 0xdeadc0de)
	PutU64LE(b, 6, 0x01d2c3b4a5968778)
	if U16LE(b) != 0xbeef || U32LE(b[2:]) != 0xdeadc0de || U64LE(b[6:]) != 0x01d2c3b4a5968778 {
		t.Fatalf("put/get mismatch: % x", b)
	}
}
