package sessions

import (
	"crypto/subtle"
	"time"

	"github.com/google/uuid"
)

// Session is the server-side half of one browser session. StateValue is only set while an
// OAuth authorization is in flight; a new authorization overwrites it.
type Session struct {
	ID         string    `json:"id"`
	StateValue string    `json:"state_value,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// New creates a session with a random identifier that expires ttl after now.
func New(now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session lifetime has elapsed at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Touch extends the session lifetime to ttl after now.
func (s *Session) Touch(now time.Time, ttl time.Duration) {
	s.ExpiresAt = now.Add(ttl)
}

// HasState reports whether an authorization is in flight.
func (s *Session) HasState() bool {
	return s.StateValue != ""
}

// StateMatches reports whether state equals the in-flight state value, in constant time.
func (s *Session) StateMatches(state string) bool {
	return s.HasState() && subtle.ConstantTimeCompare([]byte(state), []byte(s.StateValue)) == 1
}

// ClearState drops the in-flight state value.
func (s *Session) ClearState() {
	s.StateValue = ""
}
