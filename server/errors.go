package server

import (
	"fmt"
	"net/http"

	apperrors "github.com/jrsteele09/go-github-auth-gateway/internal/errors"
	"github.com/jrsteele09/go-github-auth-gateway/provider"
)

// Public response bodies. Upstream error bodies are never echoed.
const (
	msgInvalidScope         = "Bad request."
	msgBadCallback          = "Bad request"
	msgExchangeFailed       = "Error while authenticating with GitHub."
	msgVerifyFailedFormat   = "Error verifying token: %s"
	msgTokenVerified        = "Token verified."
	msgInvalidAuthorization = "Invalid authorization."
	msgRevocationFailed     = "Failed to revoke token grants."
	msgInternal             = "Internal server error."
)

// statusAndMessage maps an error from the authorization service to its HTTP status and body.
func statusAndMessage(err error) (int, string) {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidScope):
		return http.StatusBadRequest, msgInvalidScope
	case apperrors.Is(err, apperrors.ErrMissingCode),
		apperrors.Is(err, apperrors.ErrMissingSessionState),
		apperrors.Is(err, apperrors.ErrStateMismatch):
		return http.StatusBadRequest, msgBadCallback
	case apperrors.Is(err, apperrors.ErrTokenExchangeFailed):
		return http.StatusInternalServerError, msgExchangeFailed
	case apperrors.Is(err, apperrors.ErrMalformedHeader),
		apperrors.Is(err, apperrors.ErrTokenNotVerified):
		return http.StatusBadRequest, fmt.Sprintf(msgVerifyFailedFormat, verificationDetail(err))
	case apperrors.Is(err, apperrors.ErrInvalidAuthorization):
		return http.StatusBadRequest, msgInvalidAuthorization
	case apperrors.Is(err, apperrors.ErrRevocationFailed):
		return http.StatusBadRequest, msgRevocationFailed
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// verificationDetail is the short reason shown to a caller whose token failed verification.
func verificationDetail(err error) string {
	var statusErr *provider.StatusError
	switch {
	case apperrors.Is(err, apperrors.ErrMalformedHeader):
		return apperrors.ErrMalformedHeader.Error()
	case apperrors.Is(err, apperrors.ErrUpstreamUnavailable):
		return "GitHub is unavailable"
	case apperrors.As(err, &statusErr):
		if statusErr.Message != "" {
			return statusErr.Message
		}
		return fmt.Sprintf("GitHub responded %d", statusErr.StatusCode)
	default:
		return apperrors.ErrTokenNotVerified.Error()
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusAndMessage(err)
	if status >= http.StatusInternalServerError {
		logError(r.Method, r.URL.Path, err.Error())
	}
	http.Error(w, message, status)
}
