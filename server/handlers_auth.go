package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// AuthorizeHandler starts the flow: GET {mount}/?scope=...
func (s *Server) AuthorizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectURL, session, err := s.auth.Authorize(r.Context(), s.sessionIDFromRequest(r), r.URL.Query().Get("scope"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := s.setSessionCookie(w, session); err != nil {
			writeError(w, r, err)
			return
		}
		http.Redirect(w, r, redirectURL, http.StatusMovedPermanently)
	}
}

// CallbackHandler receives GitHub's redirect and renders the access token.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		accessToken, err := s.auth.Exchange(r.Context(), s.sessionIDFromRequest(r), query.Get("code"), query.Get("state"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		var page bytes.Buffer
		if err := s.handlerView.Execute(&page, handlerView{AppName: s.config.GetAppName(), Token: accessToken}); err != nil {
			log.Error().Err(err).Msg("Failed to render handler view")
			http.Error(w, msgInternal, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = page.WriteTo(w)
	}
}

// VerifyHandler reports whether the bearer token is currently valid at GitHub.
func (s *Server) VerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.Verify(r.Context(), r.Header.Get("Authorization")); err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(msgTokenVerified))
	}
}

// RevokeGrantsHandler deletes the application's grant for the bearer token.
func (s *Server) RevokeGrantsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.Revoke(r.Context(), r.Header.Get("Authorization")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UserHandler returns the GitHub identity behind a verified token.
func (s *Server) UserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			http.Error(w, msgInternal, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// HealthHandler reports whether the session store is reachable.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.sessions.Ping(r.Context()); err != nil {
			log.Warn().Err(err).Msg("Session store health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
