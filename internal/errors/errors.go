package errors

import (
	"errors"
	"fmt"
)

// Request-scoped failures of the authorization flow. None of them are retried; the caller
// restarts the flow.
var (
	// Authorization redirect
	ErrInvalidScope = errors.New("invalid scope")

	// Callback / code exchange
	ErrMissingCode         = errors.New("missing authorization code")
	ErrMissingSessionState = errors.New("missing session state")
	ErrStateMismatch       = errors.New("state mismatch")
	ErrTokenExchangeFailed = errors.New("token exchange failed")

	// Bearer token handling
	ErrMalformedHeader      = errors.New("malformed authorization header")
	ErrInvalidAuthorization = errors.New("invalid authorization")
	ErrTokenNotVerified     = errors.New("token not verified")
	ErrRevocationFailed     = errors.New("revocation failed")

	// Identity provider could not be reached or did not answer in time
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidSession  = errors.New("invalid session")

	// General errors
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Join marks err as an instance of kind while keeping err in the chain.
func Join(kind, err error) error {
	if err == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
