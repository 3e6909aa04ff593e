package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/p-n-ai/curricuforge/internal/platform/cache"
)

// RedisStore keeps session state in Redis or Dragonfly under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a store that namespaces every key with prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return cache.Key(s.prefix, k)
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, unavailable("get", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return unavailable("remove", key, err)
	}
	return nil
}
