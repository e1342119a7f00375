// README: Opaque bearer sessions stored in Redis under session:<id>.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func (s *SessionStore) Issue(ctx context.Context, p Principal) (string, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionKey(token), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Verify also slides the session expiry forward.
func (s *SessionStore) Verify(ctx context.Context, token string) (Principal, error) {
	if _, err := uuid.Parse(token); err != nil {
		return Principal{}, ErrInvalidToken
	}
	raw, err := s.rdb.GetEx(ctx, sessionKey(token), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return Principal{}, ErrInvalidToken
	}
	if err != nil {
		return Principal{}, fmt.Errorf("load session: %w", err)
	}
	var p Principal
	if err := json.Unmarshal(raw, &p); err != nil || !p.Role.Valid() {
		return Principal{}, ErrInvalidToken
	}
	return p, nil
}

func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
