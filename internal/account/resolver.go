package account

import (
	"context"
	"fmt"
	"os/user"
	"strings"

	"github.com/sirupsen/logrus"
)

// keyringPrefix marks a configured password that is stored in the system
// keyring, e.g. "keyring:mailacct-work".
const keyringPrefix = "keyring:"

// ProtocolDefaults are the configured fallback credentials for one
// protocol. Empty strings mean "not configured".
type ProtocolDefaults struct {
	User                string `mapstructure:"user" yaml:"user"`
	Login               string `mapstructure:"login" yaml:"login"`
	Pass                string `mapstructure:"pass" yaml:"pass"`
	OAuthRefreshCommand string `mapstructure:"oauth_refresh_command" yaml:"oauth_refresh_command"`
}

// Defaults is a snapshot of the per-protocol fallback credentials.
type Defaults struct {
	IMAP ProtocolDefaults `mapstructure:"imap" yaml:"imap"`
	POP  ProtocolDefaults `mapstructure:"pop" yaml:"pop"`
	SMTP ProtocolDefaults `mapstructure:"smtp" yaml:"smtp"`
	NNTP ProtocolDefaults `mapstructure:"nntp" yaml:"nntp"`
}

// For returns the defaults that apply to protocol t. The login override
// exists only for IMAP, and NNTP has no OAUTH refresh command.
func (d Defaults) For(t Type) ProtocolDefaults {
	var p ProtocolDefaults
	switch t {
	case TypeIMAP:
		p = d.IMAP
	case TypePOP:
		p = d.POP
	case TypeSMTP:
		p = d.SMTP
	case TypeNNTP:
		p = d.NNTP
		p.OAuthRefreshCommand = ""
	default:
		return ProtocolDefaults{}
	}
	if t != TypeIMAP {
		p.Login = ""
	}
	return p
}

// Prompter asks the user for missing credentials.
type Prompter interface {
	// Interactive reports whether prompting is possible at all.
	Interactive() bool
	// Text asks for a visible value, pre-filled with initial.
	Text(prompt, initial string) (string, error)
	// Secret asks for a masked value.
	Secret(prompt string) (string, error)
}

// CommandRunner runs an external command and returns the first line it
// prints, without the line terminator.
type CommandRunner interface {
	FirstLine(ctx context.Context, command string) (string, error)
}

// SecretLookup fetches a stored secret by key.
type SecretLookup interface {
	Get(key string) (string, error)
}

// Resolver fills in missing account credentials. Each lookup tries the
// configured defaults first and prompts only when the session is
// interactive.
type Resolver struct {
	Defaults Defaults
	Prompter Prompter
	Runner   CommandRunner
	Secrets  SecretLookup

	// LocalUser returns the name pre-filled in the user prompt. It
	// defaults to the current OS user.
	LocalUser func() string

	Log logrus.FieldLogger
}

// ResolveUser makes sure a.User is set.
func (r *Resolver) ResolveUser(a *Account) error {
	if a.Has(FlagUser) {
		return nil
	}

	if def := r.Defaults.For(a.Type).User; def != "" {
		a.User = def
	} else if !r.interactive() {
		return resolveErr(a, "resolving user", ErrMissingCredential)
	} else {
		name, err := r.Prompter.Text(fmt.Sprintf("Username at %s: ", a.Host), r.localUser())
		if err != nil {
			return resolveErr(a, "prompting for user", err)
		}
		a.User = name
	}

	a.Flags |= FlagUser
	return nil
}

// ResolveLogin makes sure a.Login is set. IMAP accounts may configure a
// login distinct from the user name; everything else logs in as the user.
func (r *Resolver) ResolveLogin(a *Account) error {
	if a.Has(FlagLogin) {
		return nil
	}

	if login := r.Defaults.For(a.Type).Login; login != "" {
		a.Login = login
		a.Flags |= FlagLogin
		return nil
	}

	if err := r.ResolveUser(a); err != nil {
		r.logger().WithField("host", a.Host).Debug("couldn't get user info")
		return err
	}
	a.Login = a.User
	a.Flags |= FlagLogin
	return nil
}

// ResolvePass makes sure a.Pass is set. An empty password still counts as
// resolved.
func (r *Resolver) ResolvePass(a *Account) error {
	if a.Has(FlagPass) {
		return nil
	}

	if def := r.Defaults.For(a.Type).Pass; def != "" {
		pass, err := r.lookupSecret(def)
		if err != nil {
			return resolveErr(a, "resolving password", err)
		}
		a.Pass = pass
	} else if !r.interactive() {
		return resolveErr(a, "resolving password", ErrMissingCredential)
	} else {
		who := a.User
		if a.Has(FlagLogin) {
			who = a.Login
		}
		pass, err := r.Prompter.Secret(fmt.Sprintf("Password for %s@%s: ", who, a.Host))
		if err != nil {
			return resolveErr(a, "prompting for password", err)
		}
		a.Pass = pass
	}

	a.Flags |= FlagPass
	return nil
}

// lookupSecret expands "keyring:<key>" references; other values are
// returned as-is.
func (r *Resolver) lookupSecret(value string) (string, error) {
	key, ok := strings.CutPrefix(value, keyringPrefix)
	if !ok {
		return value, nil
	}
	if r.Secrets == nil {
		return "", fmt.Errorf("%w: no keyring available for %q", ErrMissingCredential, key)
	}
	secret, err := r.Secrets.Get(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingCredential, err)
	}
	return secret, nil
}

func (r *Resolver) interactive() bool {
	return r.Prompter != nil && r.Prompter.Interactive()
}

func (r *Resolver) localUser() string {
	if r.LocalUser != nil {
		return r.LocalUser()
	}
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}

func (r *Resolver) logger() logrus.FieldLogger {
	if r.Log != nil {
		return r.Log
	}
	return logrus.StandardLogger()
}
