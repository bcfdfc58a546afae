// Package utf16x converts the UTF-16 little-endian strings stored in prefetch
// records to UTF-8.
package utf16x

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

const asciiLimit = 0x80

var le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Decode converts UTF-16LE bytes to a UTF-8 string. Decoding stops at the
// first NUL code unit. Unpaired surrogates become U+FFFD and a trailing odd
// byte is dropped.
func Decode(data []byte) string {
	data = trim(data)
	if len(data) == 0 {
		return ""
	}

	// Prefetch paths are almost always ASCII.
	allASCII := true
	for i := 0; i < len(data); i += 2 {
		if data[i+1] != 0 || data[i] >= asciiLimit {
			allASCII = false
			break
		}
	}
	if allASCII {
		var b strings.Builder
		b.Grow(len(data) / 2)
		for i := 0; i < len(data); i += 2 {
			b.WriteByte(data[i])
		}
		return b.String()
	}

	// Invalid sequences are replaced, never reported.
	out, _ := le.NewDecoder().Bytes(data)
	return string(out)
}

// Encode converts s to UTF-16LE without a terminator.
func Encode(s string) []byte {
	out, err := le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil
	}
	return out
}

// trim cuts data at the first NUL code unit and drops an odd trailing byte.
func trim(data []byte) []byte {
	data = data[:len(data)&^1]
	for i := 0; i < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			return data[:i]
		}
	}
	return data
}
