package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/jrsteele09/go-github-auth-gateway/internal/errors"
	"github.com/jrsteele09/go-github-auth-gateway/sessions"
)

// Default timeouts for Redis operations.
const (
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

var _ sessions.Repo = (*Repo)(nil)

// Config holds the Redis connection settings.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Repo stores each session as a JSON document whose Redis TTL matches the session expiry,
// so Redis drops abandoned sessions on its own.
type Repo struct {
	client    redis.UniversalClient
	keyPrefix string
	nowTime   func() time.Time
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Repo, error) {
	if cfg.Addr == "" {
		return nil, errors.New("[redisrepo New] redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  DefaultDialTimeout,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.Wrapf(err, "[redisrepo New] failed to connect to redis at %s", cfg.Addr)
	}

	return NewWithClient(client, cfg.KeyPrefix), nil
}

// NewWithClient wraps an existing client. This is useful for testing with miniredis.
func NewWithClient(client redis.UniversalClient, keyPrefix string) *Repo {
	return &Repo{
		client:    client,
		keyPrefix: keyPrefix,
		nowTime:   time.Now,
	}
}

func (r *Repo) key(sessionID string) string {
	return r.keyPrefix + sessionID
}

func (r *Repo) Upsert(ctx context.Context, session *sessions.Session) error {
	if session == nil || session.ID == "" {
		return errors.New("[redisrepo Upsert] session with ID is required")
	}

	ttl := session.ExpiresAt.Sub(r.nowTime())
	if ttl <= 0 {
		_ = r.client.Del(ctx, r.key(session.ID)).Err()
		return apperrors.ErrSessionExpired
	}

	data, err := json.Marshal(session)
	if err != nil {
		return apperrors.Wrapf(err, "[redisrepo Upsert] marshal session")
	}

	if err := r.client.Set(ctx, r.key(session.ID), data, ttl).Err(); err != nil {
		return apperrors.Wrapf(err, "[redisrepo Upsert] session %s", session.ID)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, sessionID string) (*sessions.Session, error) {
	if sessionID == "" {
		return nil, apperrors.ErrSessionNotFound
	}

	data, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, apperrors.Wrapf(err, "[redisrepo Get] session %s", sessionID)
	}

	var session sessions.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, apperrors.Wrapf(err, "[redisrepo Get] unmarshal session %s", sessionID)
	}
	if session.Expired(r.nowTime()) {
		return nil, apperrors.ErrSessionNotFound
	}
	return &session, nil
}

// consumeStateScript compares and clears state_value in one step so that two callbacks
// carrying the same state cannot both pass. KEEPTTL leaves the session expiry in place.
// Returns 1 when consumed, 0 if the key doesn't exist, 2 without an in-flight state and 3 on mismatch.
var consumeStateScript = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
	return 0
end
local session = cjson.decode(data)
local stored = session.state_value
if stored == nil or stored == '' then
	return 2
end
if stored ~= ARGV[1] then
	return 3
end
session.state_value = nil
redis.call('SET', KEYS[1], cjson.encode(session), 'KEEPTTL')
return 1
`)

func (r *Repo) ConsumeState(ctx context.Context, sessionID, state string) error {
	if sessionID == "" {
		return apperrors.ErrSessionNotFound
	}

	result, err := consumeStateScript.Run(ctx, r.client, []string{r.key(sessionID)}, state).Int()
	if err != nil {
		return apperrors.Wrapf(err, "[redisrepo ConsumeState] session %s", sessionID)
	}

	switch result {
	case 1:
		return nil
	case 0:
		return apperrors.ErrSessionNotFound
	case 2:
		return apperrors.ErrMissingSessionState
	default:
		return apperrors.ErrStateMismatch
	}
}

func (r *Repo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (r *Repo) Close() error {
	return r.client.Close()
}
