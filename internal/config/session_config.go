package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	minSessionSecretLength = 16
)

type SessionConfig interface {
	GetSessionSecret() string
	GetSessionTTL() time.Duration
	GetSessionCookieName() string
	GetSessionCookieSecure() bool
	GetSessionStore() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
}

type Session struct {
	Secret         string        `env:"SESSION_SECRET,required,notEmpty"`
	TTL            time.Duration `env:"SESSION_TTL" envDefault:"5m"`
	CookieName     string        `env:"SESSION_COOKIE_NAME" envDefault:"__session"`
	CookieSecure   bool          `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
	Store          string        `env:"SESSION_STORE" envDefault:"memory"`
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix string        `env:"REDIS_KEY_PREFIX" envDefault:"gh-auth:session:"`
}

var _ SessionConfig = Session{}

func (s Session) GetSessionSecret() string     { return s.Secret }
func (s Session) GetSessionTTL() time.Duration { return s.TTL }
func (s Session) GetSessionCookieName() string { return s.CookieName }
func (s Session) GetSessionCookieSecure() bool { return s.CookieSecure }
func (s Session) GetSessionStore() string      { return s.Store }
func (s Session) GetRedisAddr() string         { return s.RedisAddr }
func (s Session) GetRedisPassword() string     { return s.RedisPassword }
func (s Session) GetRedisDB() int              { return s.RedisDB }
func (s Session) GetRedisKeyPrefix() string    { return s.RedisKeyPrefix }

func (s Session) validate() error {
	if len(s.Secret) < minSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecretLength)
	}
	if s.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if s.CookieName == "" {
		return errors.New("SESSION_COOKIE_NAME must not be empty")
	}
	switch s.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("SESSION_STORE %q is not one of %q, %q", s.Store, SessionStoreMemory, SessionStoreRedis)
	}
	return nil
}
