package server

import (
	"math"
	"net/http"

	"github.com/jrsteele09/go-github-auth-gateway/sessions"
)

// sessionIDFromRequest returns the session ID carried by a valid session cookie, or "".
func (s *Server) sessionIDFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(s.config.GetSessionCookieName())
	if err != nil {
		return ""
	}
	sessionID, err := s.cookies.Decode(cookie.Value)
	if err != nil {
		return ""
	}
	return sessionID
}

func (s *Server) setSessionCookie(w http.ResponseWriter, session *sessions.Session) error {
	value, err := s.cookies.Encode(session.ID, session.ExpiresAt)
	if err != nil {
		return err
	}

	path := s.mountPath
	if path == "" {
		path = "/"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Value:    value,
		Path:     path,
		Expires:  session.ExpiresAt,
		MaxAge:   int(math.Ceil(session.ExpiresAt.Sub(s.nowTime()).Seconds())),
		HttpOnly: true,
		Secure:   s.config.GetSessionCookieSecure(),
		// Lax so the cookie survives the top-level redirect back from GitHub
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
