package session

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const KeyPrefix = "toothquest:session:"

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func key(id string) string {
	return KeyPrefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (string, error) {
	token, err := s.rdb.Get(ctx, key(id)).Result()
	if err == redis.Nil {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStore) Set(ctx context.Context, id, token string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.rdb.Set(ctx, key(id), token, ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, key(id)).Err()
}
