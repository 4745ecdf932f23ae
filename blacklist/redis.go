package blacklist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "authcore:bl:"

// RedisStore keeps blacklist entries as Redis keys with a PX retention
// equal to the token's remaining lifetime. Redis expires the keys
// itself, so the cleanup pass has nothing left to sweep here.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
}

// RedisOption customizes a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides the key namespace.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// WithRedisNowFunc overrides the store's time source. Intended for tests.
func WithRedisNowFunc(now func() time.Time) RedisOption {
	return func(s *RedisStore) { s.now = now }
}

// NewRedisStore returns a Store backed by rdb.
func NewRedisStore(rdb redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{rdb: rdb, prefix: defaultKeyPrefix, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(token string) string {
	return s.prefix + token
}

func (s *RedisStore) Add(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		// The token would already fail verification; nothing to retain.
		return nil
	}

	// SET NX: concurrent duplicate adds race harmlessly, first writer wins.
	if err := s.rdb.SetNX(ctx, s.key(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("%w: add: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Contains(ctx context.Context, token string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: lookup: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

func (s *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	// Key-level PX retention already enforces the expiry bound.
	return 0, nil
}
