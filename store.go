package redlock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/huimingz/redlock/internal/lua"
)

// Store is the atomic key-value service the locks coordinate through.
// CompareAndDelete and CompareAndExpire must check the value and act in one
// atomic step on the store side.
type Store interface {
	// SetIfAbsent creates key with value and ttl, reporting whether it did.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// CompareAndDelete deletes key if it holds value.
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
	// CompareAndExpire resets the ttl of key if it holds value.
	CompareAndExpire(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

type redisStore struct {
	redis   redis.UniversalClient
	scripts *lua.Set
}

// NewRedisStore returns a Store backed by a go-redis client. The scripts are
// shared with every other store of the same variant in the process.
func NewRedisStore(client redis.UniversalClient, variant Variant) Store {
	return &redisStore{
		redis:   client,
		scripts: lua.Scripts(string(variant)),
	}
}

func (s *redisStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.redis.SetNX(ctx, key, value, ttl).Result()
}

func (s *redisStore) CompareAndDelete(ctx context.Context, key, value string) (bool, error) {
	n, err := s.scripts.Release.Run(ctx, s.redis, []string{key}, value).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *redisStore) CompareAndExpire(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	n, err := s.scripts.Renew.Run(ctx, s.redis, []string{key}, value, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
