package account

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingHost is returned when a URI has no host to connect to.
	ErrMissingHost = errors.New("uri has no host")

	// ErrMissingCredential is returned when a required user name or
	// password is not configured and the session cannot prompt for it.
	ErrMissingCredential = errors.New("credential not available")

	// ErrRefreshCommandMissing is returned when OAUTHBEARER is requested
	// without a configured refresh command.
	ErrRefreshCommandMissing = errors.New("no OAUTH refresh command defined")

	// ErrRefreshCommandFailed is returned when the refresh command cannot
	// be run or prints nothing.
	ErrRefreshCommandFailed = errors.New("OAUTH refresh command failed")
)

// ResolveError reports a failed credential lookup for a specific account.
type ResolveError struct {
	Type Type
	Host string
	Op   string
	Err  error
}

func (e *ResolveError) Error() string {
	if e.Type == TypeNone {
		return fmt.Sprintf("%s (on %s): %v", e.Op, e.Host, e.Err)
	}
	return fmt.Sprintf("%s (%s on %s): %v", e.Op, e.Type, e.Host, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// IsResolveError reports whether err (or any error in its chain) is a
// ResolveError.
func IsResolveError(err error) bool {
	var resolveErr *ResolveError
	return errors.As(err, &resolveErr)
}

func resolveErr(a *Account, op string, err error) error {
	return &ResolveError{Type: a.Type, Host: a.Host, Op: op, Err: err}
}
