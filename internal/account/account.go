// Package account holds the connection account used to log in to a
// remote mail service, and the resolver that fills in its credentials from
// configuration, the keyring or interactive prompts.
package account

import (
	"fmt"
	"net"
	"strconv"

	"github.com/nhle/mailacct/internal/uri"
)

// Type identifies the protocol an account connects with.
type Type string

const (
	TypeNone Type = ""
	TypeIMAP Type = "imap"
	TypePOP  Type = "pop"
	TypeSMTP Type = "smtp"
	TypeNNTP Type = "nntp"
)

// Flags records which credential fields have been resolved. An unset flag
// means "not yet determined", which is distinct from an empty value.
type Flags uint8

const (
	FlagUser Flags = 1 << iota
	FlagLogin
	FlagPass
	FlagPort
)

// Account is a protocol-specific credential bundle for one remote mailbox.
type Account struct {
	Host   string
	User   string
	Login  string
	Pass   string
	Port   uint16
	Type   Type
	Secure bool
	Flags  Flags
}

// Has reports whether every field in f has been resolved.
func (a *Account) Has(f Flags) bool {
	return a.Flags&f == f
}

// FromURI builds an account from a parsed URI. The host is required; the
// user, password and port are copied, and flagged, only when present.
func FromURI(u *uri.URI) (*Account, error) {
	if u == nil || u.Host == nil {
		return nil, ErrMissingHost
	}

	a := &Account{Host: *u.Host}
	a.Type, a.Secure = typeOf(u.Scheme)

	if u.User != nil {
		a.User = *u.User
		a.Flags |= FlagUser
	}
	if u.Pass != nil {
		a.Pass = *u.Pass
		a.Flags |= FlagPass
	}
	if u.Port != 0 {
		a.Port = u.Port
		a.Flags |= FlagPort
	}

	return a, nil
}

// URI projects the account back into a URI for display or storage. Only
// flagged fields are copied.
func (a *Account) URI() *uri.URI {
	u := &uri.URI{
		Scheme: a.Scheme(),
		Host:   uri.StringPtr(a.Host),
	}
	if a.Has(FlagPort) {
		u.Port = a.Port
	}
	if a.Has(FlagUser) {
		u.User = uri.StringPtr(a.User)
	}
	if a.Has(FlagPass) {
		u.Pass = uri.StringPtr(a.Pass)
	}
	return u
}

// Scheme returns the URI scheme matching the account's type and
// transport security.
func (a *Account) Scheme() uri.Scheme {
	switch a.Type {
	case TypeIMAP:
		if a.Secure {
			return uri.SchemeIMAPS
		}
		return uri.SchemeIMAP
	case TypePOP:
		if a.Secure {
			return uri.SchemePOPS
		}
		return uri.SchemePOP
	case TypeSMTP:
		if a.Secure {
			return uri.SchemeSMTPS
		}
		return uri.SchemeSMTP
	case TypeNNTP:
		if a.Secure {
			return uri.SchemeNNTPS
		}
		return uri.SchemeNNTP
	}
	return uri.SchemeUnknown
}

// UnsetPass forgets that the password was resolved, forcing the next
// ResolvePass to fetch it again. The stored value is left in place.
func (a *Account) UnsetPass() {
	a.Flags &^= FlagPass
}

// DefaultPort returns the well-known port for the account's protocol.
func (a *Account) DefaultPort() uint16 {
	switch a.Type {
	case TypeIMAP:
		if a.Secure {
			return 993
		}
		return 143
	case TypePOP:
		if a.Secure {
			return 995
		}
		return 110
	case TypeSMTP:
		if a.Secure {
			return 465
		}
		return 25
	case TypeNNTP:
		if a.Secure {
			return 563
		}
		return 119
	}
	return 0
}

// EffectivePort is the resolved port, or the protocol default.
func (a *Account) EffectivePort() uint16 {
	if a.Has(FlagPort) {
		return a.Port
	}
	return a.DefaultPort()
}

// Addr returns the "host:port" dial address.
func (a *Account) Addr() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.EffectivePort())))
}

// String describes the account without credentials, for logs and errors.
func (a *Account) String() string {
	s, err := a.URI().Format(0)
	if err != nil {
		return fmt.Sprintf("account on %s", a.Host)
	}
	return s
}

func typeOf(s uri.Scheme) (Type, bool) {
	switch s {
	case uri.SchemeIMAP, uri.SchemeIMAPS:
		return TypeIMAP, s.Secure()
	case uri.SchemePOP, uri.SchemePOPS:
		return TypePOP, s.Secure()
	case uri.SchemeSMTP, uri.SchemeSMTPS:
		return TypeSMTP, s.Secure()
	case uri.SchemeNNTP, uri.SchemeNNTPS:
		return TypeNNTP, s.Secure()
	}
	return TypeNone, false
}
