// Package mailbox resolves mailbox path strings, either local files or
// remote URIs, into a canonical form that can be compared and walked.
package mailbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nhle/mailacct/internal/uri"
)

// ErrNotMailbox is returned for URIs that name something other than a
// mailbox, such as mailto: or smtp: addresses.
var ErrNotMailbox = errors.New("not a mailbox path")

// Kind is the type of store a mailbox path points at.
type Kind int

const (
	KindUnknown Kind = iota
	KindLocal
	KindIMAP
	KindPOP
	KindNNTP
	KindNotmuch
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindIMAP:
		return "imap"
	case KindPOP:
		return "pop"
	case KindNNTP:
		return "nntp"
	case KindNotmuch:
		return "notmuch"
	}
	return "unknown"
}

// Canonical is the canonical form of a path. It is either the original
// text itself or a distinct string.
type Canonical struct {
	distinct bool
	value    string
}

// SameAsOriginal reports whether the canonical form is the original text.
func (c Canonical) SameAsOriginal() bool {
	return !c.distinct
}

// Path is a mailbox path as the user wrote it, plus what Resolve learned
// about it.
type Path struct {
	Orig string

	kind     Kind
	canon    Canonical
	resolved bool
}

// New returns an unresolved path.
func New(orig string) *Path {
	return &Path{Orig: orig}
}

// Kind returns the store type; KindUnknown until Resolve succeeds.
func (p *Path) Kind() Kind {
	return p.kind
}

// Resolved reports whether Resolve has succeeded.
func (p *Path) Resolved() bool {
	return p.resolved
}

// Canonical returns the tagged canonical form.
func (p *Path) Canonical() Canonical {
	return p.canon
}

// Canon returns the canonical text, which is Orig until resolved.
func (p *Path) Canon() string {
	if p.canon.distinct {
		return p.canon.value
	}
	return p.Orig
}

// Resolve determines the path's kind and canonical form. Remote paths
// are re-serialized without a password; local paths have "~/" expanded
// and are made absolute and clean.
func (p *Path) Resolve() error {
	if p.Orig == "" {
		return fmt.Errorf("resolving mailbox path: %w", uri.ErrMalformedURI)
	}

	kind, canon, err := resolve(p.Orig)
	if err != nil {
		return fmt.Errorf("resolving mailbox path %q: %w", p.Orig, err)
	}

	p.kind = kind
	p.canon = Canonical{distinct: canon != p.Orig}
	if p.canon.distinct {
		p.canon.value = canon
	}
	p.resolved = true
	return nil
}

func resolve(orig string) (Kind, string, error) {
	scheme := uri.SchemeOf(orig)
	switch scheme {
	case uri.SchemeUnknown:
		if strings.Contains(orig, "://") {
			return KindUnknown, "", uri.ErrUnknownScheme
		}
		canon, err := localCanon(orig)
		return KindLocal, canon, err
	case uri.SchemeFile:
		u, err := uri.Parse(orig)
		if err != nil {
			return KindUnknown, "", err
		}
		if u.Path == nil || *u.Path == "" {
			return KindUnknown, "", uri.ErrMalformedURI
		}
		canon, err := localCanon(*u.Path)
		return KindLocal, canon, err
	case uri.SchemeNotmuch:
		return KindNotmuch, orig, nil
	}

	kind := remoteKind(scheme)
	if kind == KindUnknown {
		return KindUnknown, "", fmt.Errorf("%w: %s", ErrNotMailbox, scheme.Name())
	}

	u, err := uri.Parse(orig)
	if err != nil {
		return KindUnknown, "", err
	}
	if u.Host == nil {
		return KindUnknown, "", fmt.Errorf("%w: no host", uri.ErrMalformedURI)
	}
	u.Pass = nil
	canon, err := u.Format(0)
	if err != nil {
		return KindUnknown, "", err
	}
	return kind, canon, nil
}

func remoteKind(s uri.Scheme) Kind {
	switch s {
	case uri.SchemeIMAP, uri.SchemeIMAPS:
		return KindIMAP
	case uri.SchemePOP, uri.SchemePOPS:
		return KindPOP
	case uri.SchemeNNTP, uri.SchemeNNTPS:
		return KindNNTP
	}
	return KindUnknown
}

func localCanon(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding ~: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return abs, nil
}

// Compare orders resolved paths by kind, then canonical text. It returns
// -1, 0 or +1.
func Compare(a, b *Path) int {
	switch {
	case a.kind < b.kind:
		return -1
	case a.kind > b.kind:
		return 1
	}
	return strings.Compare(a.Canon(), b.Canon())
}

// Parent returns the enclosing mailbox of a resolved path. The boolean is
// false when the path has no parent: the root of a filesystem, a remote
// server's top level, or a notmuch query.
func (p *Path) Parent() (*Path, bool, error) {
	if !p.resolved {
		return nil, false, fmt.Errorf("parent of %q: path not resolved", p.Orig)
	}

	var parent string
	switch p.kind {
	case KindLocal:
		dir := filepath.Dir(p.Canon())
		if dir == p.Canon() {
			return nil, false, nil
		}
		parent = dir
	case KindIMAP, KindPOP, KindNNTP:
		u, err := uri.Parse(p.Canon())
		if err != nil {
			return nil, false, err
		}
		if u.Path == nil {
			return nil, false, nil
		}
		i := strings.LastIndexByte(*u.Path, '/')
		if i < 0 {
			u.Path = nil
		} else {
			u.Path = uri.StringPtr((*u.Path)[:i])
		}
		parent, err = u.Format(0)
		if err != nil {
			return nil, false, err
		}
	default:
		return nil, false, nil
	}

	pp := New(parent)
	if err := pp.Resolve(); err != nil {
		return nil, false, err
	}
	return pp, true, nil
}

// Pretty abbreviates a path below folder with the "=" shorthand, and one
// below the home directory with "~".
func (p *Path) Pretty(folder string) string {
	canon := p.Canon()
	if folder != "" {
		f := strings.TrimSuffix(folder, "/")
		if rest, ok := strings.CutPrefix(canon, f+"/"); ok && rest != "" {
			return "=" + rest
		}
	}
	if p.kind == KindLocal {
		if home, err := os.UserHomeDir(); err == nil {
			if rest, ok := strings.CutPrefix(canon, home+string(filepath.Separator)); ok {
				return "~/" + rest
			}
		}
	}
	return canon
}
