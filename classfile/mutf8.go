package classfile

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// DecodeModifiedUTF8 decodes the class file string encoding: NUL is stored
// as C0 80 and supplementary characters as a pair of 3-byte surrogates.
// It returns the decoded string and -1, or the offset of the first malformed
// byte. Unpaired surrogates decode to U+FFFD.
func DecodeModifiedUTF8(b []byte) (string, int) {
	var sb strings.Builder
	sb.Grow(len(b))

	i := 0
	for i < len(b) {
		c := b[i]
		switch {
		case c == 0:
			return "", i
		case c < 0x80:
			sb.WriteByte(c)
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", i
			}
			sb.WriteRune(rune(c&0x1F)<<6 | rune(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0:
			r, ok := decodeThree(b, i)
			if !ok {
				return "", i
			}
			i += 3
			if utf16.IsSurrogate(r) {
				if r < 0xDC00 {
					if low, ok := decodeThree(b, i); ok && low >= 0xDC00 && low <= 0xDFFF {
						sb.WriteRune(utf16.DecodeRune(r, low))
						i += 3
						continue
					}
				}
				r = utf8.RuneError
			}
			sb.WriteRune(r)
		default:
			return "", i
		}
	}
	return sb.String(), -1
}

func decodeThree(b []byte, i int) (rune, bool) {
	if i+2 >= len(b) || b[i]&0xF0 != 0xE0 || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
		return 0, false
	}
	return rune(b[i]&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F), true
}
