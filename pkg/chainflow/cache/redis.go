package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore caches results in Redis, shared across processes.
// Expiry is delegated to Redis TTLs, so no lazy eviction is needed here.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces the store's keys. Default: "chainflow:result:".
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a result cache backed by the given Redis client.
// The caller owns the client's configuration; Close closes it.
func NewRedisStore(rdb *redis.Client, opts ...RedisOption) (*RedisStore, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	s := &RedisStore{
		rdb:    rdb,
		prefix: "chainflow:result:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, chain, query string) ([]byte, bool, error) {
	value, err := s.rdb.Get(ctx, s.prefix+Key(chain, query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load cached result: %w", err)
	}
	return value, true, nil
}

// Put implements Store.
// A ttl of zero or less stores the entry without expiry.
func (s *RedisStore) Put(ctx context.Context, chain, query string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.rdb.Set(ctx, s.prefix+Key(chain, query), value, ttl).Err(); err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
