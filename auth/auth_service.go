package auth

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-github-auth-gateway/internal/errors"
	"github.com/jrsteele09/go-github-auth-gateway/internal/utils"
	"github.com/jrsteele09/go-github-auth-gateway/provider"
	"github.com/jrsteele09/go-github-auth-gateway/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	defaultStateLength = 20
	defaultSessionTTL  = 5 * time.Minute
)

// Settings are the fixed values the service is built with.
type Settings struct {
	Scope        string        // The single scope set clients may request
	StateLength  int           // Random bytes per state value
	SessionTTL   time.Duration // Lifetime granted to a session on every write
	ConsumeState bool          // Clear the state value once a callback passes the state check
}

// AuthorizationService runs the GitHub authorization code flow on top of server-side sessions.
type AuthorizationService struct {
	settings     Settings
	sessions     sessions.Repo
	provider     IdentityProvider
	randomString utils.RandomGenerator
	nowTime      func() time.Time
}

// AuthorizationServiceOption defines a function type to modify the AuthorizationService instance.
type AuthorizationServiceOption func(*AuthorizationService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.nowTime = nowFunc
	}
}

// WithRandomGenerator replaces the crypto/rand backed state generator (primarily for testing)
func WithRandomGenerator(gen utils.RandomGenerator) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.randomString = gen
	}
}

// NewAuthorizationService initializes a new AuthorizationService with required dependencies.
func NewAuthorizationService(
	settings Settings,
	sessionRepo sessions.Repo,
	idp IdentityProvider,
	options ...AuthorizationServiceOption,
) (*AuthorizationService, error) {
	if sessionRepo == nil {
		return nil, errors.New("[NewAuthorizationService] session repo is required")
	}
	if idp == nil {
		return nil, errors.New("[NewAuthorizationService] identity provider is required")
	}
	if strings.TrimSpace(settings.Scope) == "" {
		return nil, errors.New("[NewAuthorizationService] scope is required")
	}
	if settings.StateLength <= 0 {
		settings.StateLength = defaultStateLength
	}
	if settings.SessionTTL <= 0 {
		settings.SessionTTL = defaultSessionTTL
	}

	authService := &AuthorizationService{
		settings:     settings,
		sessions:     sessionRepo,
		provider:     idp,
		randomString: utils.RandomURLSafeString,
		nowTime:      time.Now,
	}

	for _, opt := range options {
		opt(authService)
	}

	return authService, nil
}

// Scope returns the scope set clients must request.
func (as *AuthorizationService) Scope() string {
	return as.settings.Scope
}

// Authorize checks the requested scope, stores a fresh state value on the session and returns
// the provider URL to redirect to. An unknown or expired sessionID starts a new session; the
// returned session carries the ID and expiry the caller should put in its cookie.
// A scope mismatch fails with ErrInvalidScope before anything is written.
func (as *AuthorizationService) Authorize(ctx context.Context, sessionID, requestedScope string) (string, *sessions.Session, error) {
	if err := ValidateScope(requestedScope, as.settings.Scope); err != nil {
		return "", nil, err
	}

	session, err := as.loadOrCreateSession(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}

	state, err := as.randomString(as.settings.StateLength)
	if err != nil {
		return "", nil, apperrors.Join(apperrors.ErrInternal, errors.Wrap(err, "[Authorize] generate state"))
	}

	// Only one authorization may be in flight per session
	session.StateValue = state
	session.Touch(as.nowTime(), as.settings.SessionTTL)
	if err := as.sessions.Upsert(ctx, session); err != nil {
		return "", nil, apperrors.Join(apperrors.ErrInternal, errors.Wrap(err, "[Authorize] store session"))
	}

	return as.provider.AuthorizationURL(state), session, nil
}

// Exchange validates the callback against the session's state value and trades the code for
// an access token. The token is returned to the caller and never stored.
func (as *AuthorizationService) Exchange(ctx context.Context, sessionID, code, state string) (string, error) {
	if code == "" {
		return "", apperrors.ErrMissingCode
	}

	if err := as.checkState(ctx, sessionID, state); err != nil {
		return "", err
	}

	token, err := as.provider.ExchangeCode(ctx, code, state)
	if err != nil {
		log.Error().
			Int("status", provider.StatusCode(err)).
			Bool("upstream_unavailable", apperrors.Is(err, apperrors.ErrUpstreamUnavailable)).
			Err(err).
			Msg("GitHub code exchange failed")
		return "", apperrors.Join(apperrors.ErrTokenExchangeFailed, err)
	}
	if token.AccessToken == "" {
		log.Error().Msg("GitHub code exchange returned no access token")
		return "", apperrors.ErrTokenExchangeFailed
	}

	return token.AccessToken, nil
}

// Verify confirms with GitHub that the bearer token in authorizationHeader is valid.
// A malformed header fails with ErrMalformedHeader without contacting GitHub; every other
// call is a live round trip.
func (as *AuthorizationService) Verify(ctx context.Context, authorizationHeader string) (*provider.User, error) {
	accessToken, err := ParseAuthorizationHeader(authorizationHeader)
	if err != nil {
		return nil, err
	}

	user, err := as.provider.ValidateToken(ctx, accessToken)
	if err != nil {
		log.Debug().Int("status", provider.StatusCode(err)).Err(err).Msg("GitHub token verification failed")
		return nil, apperrors.Join(apperrors.ErrTokenNotVerified, err)
	}
	return user, nil
}

// Revoke asks GitHub to delete the application's grant for the bearer token in
// authorizationHeader. Any GitHub answer but 204 is ErrRevocationFailed.
func (as *AuthorizationService) Revoke(ctx context.Context, authorizationHeader string) error {
	accessToken, err := ParseAuthorizationHeader(authorizationHeader)
	if err != nil {
		return apperrors.Join(apperrors.ErrInvalidAuthorization, err)
	}

	if err := as.provider.RevokeGrant(ctx, accessToken); err != nil {
		log.Error().Int("status", provider.StatusCode(err)).Err(err).Msg("GitHub grant revocation failed")
		return apperrors.Join(apperrors.ErrRevocationFailed, err)
	}
	return nil
}

// checkState enforces the state round trip. When consuming, the compare and clear happen in
// one store operation, so of two callbacks carrying the same state only one gets through.
func (as *AuthorizationService) checkState(ctx context.Context, sessionID, state string) error {
	if sessionID == "" {
		return apperrors.ErrMissingSessionState
	}

	if !as.settings.ConsumeState {
		session, err := as.getSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if session == nil || !session.HasState() {
			return apperrors.ErrMissingSessionState
		}
		if !session.StateMatches(state) {
			return apperrors.ErrStateMismatch
		}
		return nil
	}

	err := as.sessions.ConsumeState(ctx, sessionID, state)
	switch {
	case err == nil:
		return nil
	case apperrors.Is(err, apperrors.ErrSessionNotFound), apperrors.Is(err, apperrors.ErrSessionExpired):
		return apperrors.ErrMissingSessionState
	case apperrors.Is(err, apperrors.ErrMissingSessionState), apperrors.Is(err, apperrors.ErrStateMismatch):
		return err
	default:
		return apperrors.Join(apperrors.ErrInternal, errors.Wrap(err, "[checkState] consume state"))
	}
}

// getSession returns nil without error when there is no live session for sessionID.
func (as *AuthorizationService) getSession(ctx context.Context, sessionID string) (*sessions.Session, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := as.sessions.Get(ctx, sessionID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, apperrors.Join(apperrors.ErrInternal, errors.Wrap(err, "[getSession] load session"))
	}
	return session, nil
}

func (as *AuthorizationService) loadOrCreateSession(ctx context.Context, sessionID string) (*sessions.Session, error) {
	session, err := as.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session = sessions.New(as.nowTime(), as.settings.SessionTTL)
	}
	return session, nil
}
