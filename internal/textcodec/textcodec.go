// Package textcodec normalizes stored post text to valid UTF-8.
package textcodec

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encode returns the storage form of s.
func Encode(s string) []byte {
	return []byte(s)
}

// Decode turns stored bytes into display text. Valid UTF-8 is returned
// unchanged, even when it looks double encoded, since "Â©" and similar
// sequences are legitimate text. Only bytes that are not UTF-8 are read as Latin-1.
func Decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(decoded)
}
