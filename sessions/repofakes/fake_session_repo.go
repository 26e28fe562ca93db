package fakesessionrepo

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-github-auth-gateway/internal/errors"
	"github.com/jrsteele09/go-github-auth-gateway/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is a thread-safe in-memory session store with lazy expiry.
type FakeSessionRepo struct {
	sessions map[string]sessions.Session
	lock     sync.RWMutex
	nowTime  func() time.Time
}

type Option func(*FakeSessionRepo)

// WithNowTime sets the clock used for expiry checks (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(sr *FakeSessionRepo) {
		sr.nowTime = nowFunc
	}
}

func NewFakeSessionRepo(options ...Option) *FakeSessionRepo {
	sr := &FakeSessionRepo{
		sessions: make(map[string]sessions.Session),
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(sr)
	}
	return sr
}

func (sr *FakeSessionRepo) Upsert(_ context.Context, session *sessions.Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if session.ID == "" {
		return errors.New("session ID is required")
	}

	sr.lock.Lock()
	defer sr.lock.Unlock()

	if session.Expired(sr.nowTime()) {
		delete(sr.sessions, session.ID)
		return apperrors.ErrSessionExpired
	}

	// Store a copy to prevent external modifications
	sr.sessions[session.ID] = *session
	sr.cleanupLocked()
	return nil
}

func (sr *FakeSessionRepo) Get(_ context.Context, sessionID string) (*sessions.Session, error) {
	sr.lock.RLock()
	session, ok := sr.sessions[sessionID]
	sr.lock.RUnlock()

	if !ok || session.Expired(sr.nowTime()) {
		return nil, apperrors.ErrSessionNotFound
	}
	return &session, nil
}

func (sr *FakeSessionRepo) ConsumeState(_ context.Context, sessionID, state string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	session, ok := sr.sessions[sessionID]
	if !ok || session.Expired(sr.nowTime()) {
		return apperrors.ErrSessionNotFound
	}
	if !session.HasState() {
		return apperrors.ErrMissingSessionState
	}
	if !session.StateMatches(state) {
		return apperrors.ErrStateMismatch
	}

	session.ClearState()
	sr.sessions[sessionID] = session
	return nil
}

func (sr *FakeSessionRepo) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored sessions, expired ones included until the next cleanup.
func (sr *FakeSessionRepo) Len() int {
	sr.lock.RLock()
	defer sr.lock.RUnlock()
	return len(sr.sessions)
}

func (sr *FakeSessionRepo) cleanupLocked() {
	now := sr.nowTime()
	for id, session := range sr.sessions {
		if session.Expired(now) {
			delete(sr.sessions, id)
		}
	}
}
