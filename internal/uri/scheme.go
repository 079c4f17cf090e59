package uri

import "strings"

// Scheme identifies the protocol named by a URI.
type Scheme int

const (
	SchemeUnknown Scheme = iota
	SchemeFile
	SchemeIMAP
	SchemeIMAPS
	SchemePOP
	SchemePOPS
	SchemeNNTP
	SchemeNNTPS
	SchemeSMTP
	SchemeSMTPS
	SchemeMailto
	SchemeNotmuch
)

// maxSchemeLen bounds the text examined by SchemeOf.
const maxSchemeLen = 255

// schemes is ordered: Name returns the first token registered for a tag.
var schemes = []struct {
	token  string
	scheme Scheme
}{
	{"file", SchemeFile},
	{"imap", SchemeIMAP},
	{"imaps", SchemeIMAPS},
	{"pop", SchemePOP},
	{"pops", SchemePOPS},
	{"news", SchemeNNTP},
	{"snews", SchemeNNTPS},
	{"nntp", SchemeNNTP},
	{"nntps", SchemeNNTPS},
	{"mailto", SchemeMailto},
	{"notmuch", SchemeNotmuch},
	{"smtp", SchemeSMTP},
	{"smtps", SchemeSMTPS},
}

// SchemeOf reports the scheme of s, matched case-insensitively against the
// text before the first ':'. It returns SchemeUnknown when there is no
// separator or the text is not a registered scheme.
func SchemeOf(s string) Scheme {
	i := strings.IndexByte(s, ':')
	if i < 0 || i >= maxSchemeLen {
		return SchemeUnknown
	}
	token := strings.ToLower(s[:i])
	for _, e := range schemes {
		if e.token == token {
			return e.scheme
		}
	}
	return SchemeUnknown
}

// Name returns the token used when serializing the scheme, or "" for
// SchemeUnknown.
func (s Scheme) Name() string {
	for _, e := range schemes {
		if e.scheme == s {
			return e.token
		}
	}
	return ""
}

// Secure reports whether the scheme is the TLS variant of its protocol.
func (s Scheme) Secure() bool {
	switch s {
	case SchemeIMAPS, SchemePOPS, SchemeNNTPS, SchemeSMTPS:
		return true
	}
	return false
}

func (s Scheme) String() string {
	if name := s.Name(); name != "" {
		return name
	}
	return "unknown"
}
