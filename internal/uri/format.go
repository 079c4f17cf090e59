package uri

import (
	"fmt"
	"strconv"
	"strings"
)

// Flags alter the output of Format.
type Flags uint

const (
	// PathOnly omits the "//" authority marker and an empty user name.
	PathOnly Flags = 1 << 1

	// EncodePath percent-encodes each path segment. By default the path is
	// written as-is, so a path containing reserved bytes does not survive a
	// Format/Parse round trip.
	EncodePath Flags = 1 << 2
)

// Format serializes u. The password is never written.
func (u *URI) Format(flags Flags) (string, error) {
	if u == nil {
		return "", fmt.Errorf("%w: nil uri", ErrMalformedURI)
	}
	if u.Scheme == SchemeUnknown {
		return "", ErrUnknownScheme
	}

	var b strings.Builder
	b.WriteString(u.Scheme.Name())
	b.WriteByte(':')

	if u.Host != nil {
		if flags&PathOnly == 0 {
			b.WriteString("//")
		}

		if u.User != nil && (*u.User != "" || flags&PathOnly == 0) {
			b.WriteString(Encode(*u.User))
			b.WriteByte('@')
		}

		if strings.IndexByte(*u.Host, ':') >= 0 {
			b.WriteByte('[')
			b.WriteString(*u.Host)
			b.WriteByte(']')
		} else {
			b.WriteString(*u.Host)
		}

		if u.Port != 0 {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(int(u.Port)))
		}
		b.WriteByte('/')
	}

	if u.Path != nil {
		if flags&EncodePath != 0 {
			b.WriteString(encodePath(*u.Path))
		} else {
			b.WriteString(*u.Path)
		}
	}

	for i, p := range u.Query {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(Encode(p.Name))
		b.WriteByte('=')
		b.WriteString(Encode(p.Value))
	}

	return b.String(), nil
}

// String returns Format(0), or "" when u cannot be formatted.
func (u *URI) String() string {
	s, err := u.Format(0)
	if err != nil {
		return ""
	}
	return s
}

func encodePath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = Encode(seg)
	}
	return strings.Join(segments, "/")
}
