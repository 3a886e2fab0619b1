package session

import (
	"context"
	"errors"
	"time"

	"ragchat/internal/redis"
)

// Store is the TTL-bounded key-value persistence behind session state. The
// redis-backed implementation is the production one; tests substitute an
// in-memory fake.
type Store interface {
	// Set writes value under key with the given TTL, replacing any prior value.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the stored value, with ok=false when the key is absent or expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Del removes the key, reporting whether it existed.
	Del(ctx context.Context, key string) (bool, error)
	// Exists reports whether the key is present.
	Exists(ctx context.Context, key string) (bool, error)
	// Expire resets the TTL countdown without touching the value.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// TTL returns the remaining lifetime of the key.
	TTL(ctx context.Context, key string) (time.Duration, error)
	// Keys enumerates keys matching the glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// RedisStore implements Store on the shared redis client.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps the injected redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl)
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *RedisStore) Del(ctx context.Context, key string) (bool, error) {
	return s.client.Del(ctx, key)
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.client.Exists(ctx, key)
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.Expire(ctx, key, ttl)
}

func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	return s.client.TTL(ctx, key)
}

func (s *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	return s.client.Keys(ctx, pattern)
}
