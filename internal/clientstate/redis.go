package clientstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each client's values as fields of one hash. Every write refreshes the
// hash TTL, so idle clients expire together with all their values.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore stores hashes under "<prefix>:client:<clientID>". A zero ttl disables expiry.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) hashKey(clientID string) string {
	return fmt.Sprintf("%s:client:%s", s.prefix, clientID)
}

func (s *RedisStore) Get(ctx context.Context, clientID, key string) ([]byte, error) {
	val, err := s.client.HGet(ctx, s.hashKey(clientID), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hget %s: %w", key, err)
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, clientID, key string, value []byte) error {
	hash := s.hashKey(clientID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, hash, key, value)
		if s.ttl > 0 {
			pipe.Expire(ctx, hash, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, clientID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, s.hashKey(clientID), keys...).Err(); err != nil {
		return fmt.Errorf("hdel: %w", err)
	}
	return nil
}
