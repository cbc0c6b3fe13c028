// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/folio/internal/platform/constants"
)

// RedisCache implements [Cache] on Redis strings.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed window cache. Entries expire after ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (cache *RedisCache) Version(context context.Context, workID string) (int64, error) {
	version, err := cache.client.Get(context, constants.RedisPrefixWindowVersion+workID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis_window_version_get_failed: %w", err)
	}
	return version, nil
}

func (cache *RedisCache) Load(context context.Context, key string) (*Window, error) {
	payload, err := cache.client.Get(context, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis_window_get_failed: %w", err)
	}

	var window Window
	if err := json.Unmarshal(payload, &window); err != nil {
		// A corrupt entry behaves like a miss and is overwritten by the next store
		return nil, nil
	}
	return &window, nil
}

func (cache *RedisCache) Store(context context.Context, key string, window *Window) error {
	payload, err := json.Marshal(window)
	if err != nil {
		return fmt.Errorf("redis_window_encode_failed: %w", err)
	}
	if err := cache.client.Set(context, key, payload, cache.ttl).Err(); err != nil {
		return fmt.Errorf("redis_window_set_failed: %w", err)
	}
	return nil
}

// Bump increments the version counter. The counter itself outlives window
// entries so that a version is never reused while its windows are cached.
func (cache *RedisCache) Bump(context context.Context, workID string) error {
	key := constants.RedisPrefixWindowVersion + workID

	pipe := cache.client.TxPipeline()
	pipe.Incr(context, key)
	pipe.Expire(context, key, cache.ttl*2)
	if _, err := pipe.Exec(context); err != nil {
		return fmt.Errorf("redis_window_version_incr_failed: %w", err)
	}
	return nil
}
