package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-github-auth-gateway/provider"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser stores the GitHub user of a verified bearer token
const ContextKeyUser ContextKey = "github_user"

// RequireToken is middleware for routes that need a bearer token GitHub currently accepts.
// The token is verified live on every request.
func (s *Server) RequireToken() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, err := s.auth.Verify(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				status, message := statusAndMessage(err)
				if status == http.StatusBadRequest {
					status = http.StatusUnauthorized
					w.Header().Set("WWW-Authenticate", `Bearer realm="github"`)
				}
				http.Error(w, message, status)
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyUser, user)))
		}
	}
}

// UserFromContext returns the user stored by RequireToken.
func UserFromContext(ctx context.Context) (*provider.User, bool) {
	user, ok := ctx.Value(ContextKeyUser).(*provider.User)
	return user, ok && user != nil
}
