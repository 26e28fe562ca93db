package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	apperrors "github.com/jrsteele09/go-github-auth-gateway/internal/errors"
)

// StatusError reports a response from GitHub with an unexpected HTTP status.
// Message holds GitHub's short error message or error code, never the raw body.
type StatusError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: github responded %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: github responded %d", e.Operation, e.StatusCode)
}

// StatusCode extracts the upstream HTTP status from err, or 0 when GitHub never answered.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// classifyTransportError marks network failures and timeouts as upstream unavailability.
func classifyTransportError(operation string, err error) error {
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.Join(apperrors.ErrUpstreamUnavailable, fmt.Errorf("%s: %w", operation, err))
	}
	return fmt.Errorf("%s: %w", operation, err)
}
