package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidtube/backend/internal/store"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore implements SessionStore on Redis. Sessions expire
// server-side via key TTLs, so expired tokens vanish without a sweep.
type RedisSessionStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisSessionStore wraps the provided client as a SessionStore.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	if client == nil {
		panic("auth: redis client must not be nil")
	}
	return &RedisSessionStore{client: client, now: func() time.Time { return time.Now().UTC() }}
}

type sessionRecord struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Save persists the session under its refresh token with a TTL matching
// its expiry.
func (s *RedisSessionStore) Save(ctx context.Context, session Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("save session: already expired")
	}
	payload, err := json.Marshal(sessionRecord{
		UserID:    session.UserID.String(),
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.RefreshToken, payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Find retrieves a session by refresh token.
func (s *RedisSessionStore) Find(ctx context.Context, refreshToken string) (Session, error) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+refreshToken).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, fmt.Errorf("find session: %w", err)
	}
	var record sessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return Session{}, fmt.Errorf("find session: %w", err)
	}
	return Session{
		RefreshToken: refreshToken,
		UserID:       store.ID(record.UserID),
		ExpiresAt:    record.ExpiresAt,
	}, nil
}

// Delete removes the session associated with the refresh token.
func (s *RedisSessionStore) Delete(ctx context.Context, refreshToken string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+refreshToken).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
