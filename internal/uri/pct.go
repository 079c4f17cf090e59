package uri

import (
	"fmt"
	"strings"
)

// reserved lists the bytes that Encode escapes.
const reserved = "/:&%="

const upperHex = "0123456789ABCDEF"

// Decode turns a percent-encoded string such as "hello%20world" into
// "hello world". Every '%' must be followed by two hex digits.
func Decode(s string) (string, error) {
	if strings.IndexByte(s, '%') < 0 {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("%w: truncated escape in %q", ErrMalformedURI, s)
		}
		hi, okHi := unhex(s[i+1])
		lo, okLo := unhex(s[i+2])
		if !okHi || !okLo {
			return "", fmt.Errorf("%w: invalid escape %q", ErrMalformedURI, s[i:i+3])
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}
	return b.String(), nil
}

// Encode escapes the reserved bytes of s as %XX. All other bytes are
// copied unchanged.
func Encode(s string) string {
	out, _ := encode(s, -1)
	return out
}

// EncodeLimit is Encode with an output bound of max bytes. When the
// result would not fit, the longest prefix that does is returned along
// with ErrEncodingOverflow. An escape sequence is never split.
func EncodeLimit(s string, max int) (string, error) {
	return encode(s, max)
}

func encode(s string, max int) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		n := 1
		if strings.IndexByte(reserved, c) >= 0 {
			n = 3
		}
		if max >= 0 && b.Len()+n > max {
			return b.String(), ErrEncodingOverflow
		}
		if n == 1 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0xf])
	}
	return b.String(), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
