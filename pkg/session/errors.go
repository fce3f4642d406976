package session

import (
	"errors"
	"fmt"
)

// ErrMissingTokens indicates an authority response without an access or
// refresh token.
var ErrMissingTokens = errors.New("response missing tokens")

// ErrNoRefreshToken is returned by a refresh attempt when no refresh token is held.
var ErrNoRefreshToken = errors.New("no refresh token available")

// AuthError is returned when a login or refresh call against the upstream
// authority fails.
type AuthError struct {
	// Op is "login" or "refresh".
	Op string

	// StatusCode is the authority's HTTP status, or 0 when no response arrived.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s failed (%d): %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s failed (%d)", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s failed", e.Op)
	}
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is or wraps an *AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
