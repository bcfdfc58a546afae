package utf16x

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, ""},
		{"ascii", []byte{'C', 0, 'A', 0, 'L', 0, 'C', 0}, "CALC"},
		{"terminated", []byte{'A', 0, 0, 0, 'B', 0}, "A"},
		{"odd trailing byte", []byte{'A', 0, 'B'}, "A"},
		{"latin", []byte{0xe9, 0x00, 't', 0}, "ét"},
		{"cjk", []byte{0x2d, 0x4e, 0x87, 0x65}, "中文"},
		{"surrogate pair", []byte{0x3d, 0xd8, 0x00, 0xde}, "😀"},
		{"unpaired surrogate", []byte{0x3d, 0xd8, 'x', 0}, "�x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.in))
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, s := range []string{"", `\VOLUME{01d3f2a1}\WINDOWS\SYSTEM32\CALC.EXE`, "Ünïcødé 中文"} {
		assert.Equal(t, s, Decode(Encode(s)))
	}
	assert.Equal(t, []byte{'A', 0, 'B', 0}, Encode("AB"))
}
