package connect

import (
	"errors"
	"fmt"
)

// AuthError indicates that the server rejected the account's credentials.
type AuthError struct {
	Account string
	Mech    string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s (%s): %v", e.Account, e.Mech, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
