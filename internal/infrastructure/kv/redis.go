package kv

import (
	"context"
	"errors"
	"time"

	"github.com/ingredient-intel/iie/internal/infrastructure/database/redis"
	apperrors "github.com/ingredient-intel/iie/pkg/errors"
)

// RedisStore adapts the broader redis.Cache contract down to
// capability.KVStore's narrow byte-oriented shape. redis.Cache's typed
// Get/Set (via its pluggable Serializer, JSON by default) round-trips a
// []byte destination cleanly, so no separate wire format is needed here.
type RedisStore struct {
	cache redis.Cache
}

// NewRedisStore wraps an already-constructed redis.Cache.
func NewRedisStore(cache redis.Cache) *RedisStore {
	return &RedisStore{cache: cache}
}

// Get translates a redis.ErrCacheMiss into capability.KVStore's
// (nil, false, nil) not-found tuple; any other error is passed through.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	err := r.cache.Get(ctx, key, &raw)
	if err == nil {
		return raw, true, nil
	}
	if errors.Is(err, redis.ErrCacheMiss) {
		return nil, false, nil
	}
	return nil, false, apperrors.Wrap(err, apperrors.CodeCacheError, "kv get failed")
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.cache.Set(ctx, key, value, ttl); err != nil {
		return apperrors.Wrap(err, apperrors.CodeCacheError, "kv set failed")
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.cache.Delete(ctx, key); err != nil {
		return apperrors.Wrap(err, apperrors.CodeCacheError, "kv delete failed")
	}
	return nil
}
