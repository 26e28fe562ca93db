package sessions

import "context"

// Repo persists sessions until their ExpiresAt. Implementations enforce the expiry
// themselves; Get never returns an expired session.
type Repo interface {
	// Upsert stores the session, replacing any previous version with the same ID
	Upsert(ctx context.Context, session *Session) error

	// Get returns ErrSessionNotFound for unknown or expired sessions
	Get(ctx context.Context, sessionID string) (*Session, error)

	// ConsumeState atomically clears the session's state value if it equals state, keeping the
	// session's expiry. It returns ErrSessionNotFound, ErrMissingSessionState or ErrStateMismatch
	// and leaves the session untouched otherwise.
	ConsumeState(ctx context.Context, sessionID, state string) error

	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error
}
