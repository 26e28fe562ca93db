package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	apperrors "github.com/jrsteele09/go-github-auth-gateway/internal/errors"
)

const sessionIDClaim = "sid"

// SessionCookieCodec turns a session ID into a tamper-proof cookie value and back.
// The cookie carries only the ID and its expiry; all session data stays in the store.
type SessionCookieCodec struct {
	signer  Signer
	nowTime func() time.Time
}

type SessionCookieOption func(*SessionCookieCodec)

// WithNowTime sets the clock used for issuing and validating cookies (primarily for testing)
func WithNowTime(nowFunc func() time.Time) SessionCookieOption {
	return func(c *SessionCookieCodec) {
		c.nowTime = nowFunc
	}
}

// NewSessionCookieCodec derives the cookie key from the session secret.
func NewSessionCookieCodec(sessionSecret string, options ...SessionCookieOption) (*SessionCookieCodec, error) {
	key, err := DeriveKey(sessionSecret, PurposeSessionCookie)
	if err != nil {
		return nil, errors.Wrap(err, "[NewSessionCookieCodec]")
	}

	c := &SessionCookieCodec{
		signer:  NewHMACSigner(key),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Encode signs sessionID with the given expiry.
func (c *SessionCookieCodec) Encode(sessionID string, expiresAt time.Time) (string, error) {
	if sessionID == "" {
		return "", errors.New("session ID is required")
	}
	return c.signer.Sign(jwt.MapClaims{
		sessionIDClaim: sessionID,
		"iat":          c.nowTime().Unix(),
		"exp":          expiresAt.Unix(),
	})
}

// Decode verifies the cookie value and returns the session ID it carries.
// Tampered, expired or malformed values yield ErrInvalidSession.
func (c *SessionCookieCodec) Decode(value string) (string, error) {
	if value == "" {
		return "", apperrors.ErrInvalidSession
	}

	parsed, err := jwt.Parse(value, c.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.nowTime),
	)
	if err != nil {
		return "", apperrors.Join(apperrors.ErrInvalidSession, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperrors.ErrInvalidSession
	}
	sessionID, ok := claims[sessionIDClaim].(string)
	if !ok || sessionID == "" {
		return "", apperrors.ErrInvalidSession
	}
	return sessionID, nil
}
