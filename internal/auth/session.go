package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore maps an issued access token to its paired refresh token.
// TakeAndRemove is the single-use rotation primitive: concurrent calls
// with the same key must yield exactly one non-empty result.
type SessionStore interface {
	Put(ctx context.Context, accessToken, refreshToken string, ttl time.Duration) error
	TakeAndRemove(ctx context.Context, accessToken string) (string, error)
}

const sessionKeyPrefix = "auth:session:"

type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Put(ctx context.Context, accessToken, refreshToken string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKeyPrefix+accessToken, refreshToken, ttl).Err(); err != nil {
		return fmt.Errorf("store session pairing: %w", err)
	}

	return nil
}

// TakeAndRemove relies on GETDEL executing atomically on the server:
// of any number of concurrent callers, exactly one observes the value.
func (s *RedisSessionStore) TakeAndRemove(ctx context.Context, accessToken string) (string, error) {
	value, err := s.client.GetDel(ctx, sessionKeyPrefix+accessToken).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("take session pairing: %w", err)
	}

	return value, nil
}
