// Package redis stores sessions in Redis. Keys expire with the session, so
// no background pruning is needed.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lborres/pinto/core"
)

const DefaultKeyPrefix = "pinto:session"

var ErrRedisUnavailable = errors.New("session redis unavailable")

// record is the stored form of a session; core.Session hides TokenHash from JSON.
type record struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"uid"`
	TokenHash string    `json:"th"`
	IPAddress string    `json:"ip,omitempty"`
	UserAgent string    `json:"ua,omitempty"`
	ExpiresAt time.Time `json:"exp"`
	CreatedAt time.Time `json:"iat"`
}

type SessionStore struct {
	client goredis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ core.SessionStore = (*SessionStore)(nil)

func NewSessionStore(client goredis.UniversalClient, prefix string) *SessionStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &SessionStore{client: client, prefix: prefix, now: time.Now}
}

// NewClient parses a redis:// URL into a client.
func NewClient(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return goredis.NewClient(opts), nil
}

// WithClock overrides the time source used to compute key TTLs.
func (s *SessionStore) WithClock(now func() time.Time) *SessionStore {
	s.now = now
	return s
}

func (s *SessionStore) key(tokenHash string) string {
	return s.prefix + ":" + tokenHash
}

func (s *SessionStore) CreateSession(ctx context.Context, session *core.Session) error {
	if session == nil || session.TokenHash == "" {
		return core.ErrInvalidSession
	}

	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return core.ErrSessionExpired
	}

	encoded, err := json.Marshal(record{
		ID:        session.ID,
		UserID:    session.UserID,
		TokenHash: session.TokenHash,
		IPAddress: session.IPAddress,
		UserAgent: session.UserAgent,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(session.TokenHash), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (s *SessionStore) GetSessionByHash(ctx context.Context, tokenHash string) (*core.Session, error) {
	raw, err := s.client.Get(ctx, s.key(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, core.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &core.Session{
		ID:        r.ID,
		UserID:    r.UserID,
		TokenHash: r.TokenHash,
		IPAddress: r.IPAddress,
		UserAgent: r.UserAgent,
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
	}, nil
}

func (s *SessionStore) DeleteSessionByHash(ctx context.Context, tokenHash string) error {
	if err := s.client.Del(ctx, s.key(tokenHash)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// DeleteExpiredSessions always reports zero: Redis drops expired keys itself.
func (s *SessionStore) DeleteExpiredSessions(context.Context) (int, error) {
	return 0, nil
}

// Ping checks connectivity, used by the health endpoint.
func (s *SessionStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
