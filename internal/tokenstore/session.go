package tokenstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps values in Redis for a bounded lifetime, mirroring
// browser session storage.
type SessionStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewSessionStore builds a Redis-backed store whose keys expire after ttl.
func NewSessionStore(client redis.Cmdable, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, s.ttl).Err()
}

func (s *SessionStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
