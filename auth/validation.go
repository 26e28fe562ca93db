package auth

import (
	"strings"

	apperrors "github.com/jrsteele09/go-github-auth-gateway/internal/errors"
)

// ValidateScope accepts requested only when it is exactly the required scope string.
func ValidateScope(requested, required string) error {
	if requested == "" || requested != required {
		return apperrors.ErrInvalidScope
	}
	return nil
}

// ParseAuthorizationHeader extracts the token from a "bearer <token>" or "token <token>" header.
// The scheme is case-insensitive; anything else is ErrMalformedHeader.
func ParseAuthorizationHeader(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", apperrors.ErrMalformedHeader
	}
	if !strings.EqualFold(parts[0], "bearer") && !strings.EqualFold(parts[0], "token") {
		return "", apperrors.ErrMalformedHeader
	}
	return parts[1], nil
}
