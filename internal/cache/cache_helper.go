package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("key not found in cache")
)

// CacheHelper wraps a redis client with a key prefix and JSON marshaling.
// A nil client degrades every operation to a cache miss, so callers never
// need to special-case a missing redis deployment.
type CacheHelper struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

func NewCacheHelper(client *redis.Client, prefix string, logger *slog.Logger) *CacheHelper {
	return &CacheHelper{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (c *CacheHelper) key(parts ...string) string {
	key := c.prefix
	for _, part := range parts {
		key += ":" + part
	}
	return key
}

// Get retrieves a value from cache and unmarshals it into dest.
func (c *CacheHelper) Get(ctx context.Context, dest interface{}, keyParts ...string) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	key := c.key(keyParts...)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrCacheNotFound
	}
	if err != nil {
		return fmt.Errorf("cache get failed for key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal failed for key %s: %w", key, err)
	}

	return nil
}

// Set stores a value in cache with the given TTL.
func (c *CacheHelper) Set(ctx context.Context, value interface{}, ttl time.Duration, keyParts ...string) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	key := c.key(keyParts...)
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed for key %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed for key %s: %w", key, err)
	}

	return nil
}

// Delete removes one or more keys from cache.
func (c *CacheHelper) Delete(ctx context.Context, keyParts ...string) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	key := c.key(keyParts...)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete failed for key %s: %w", key, err)
	}

	return nil
}

// InvalidatePattern removes all keys matching the pattern under this helper's
// prefix. Uses SCAN to avoid blocking redis on large keyspaces.
func (c *CacheHelper) InvalidatePattern(ctx context.Context, pattern string) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	fullPattern := c.prefix + ":" + pattern

	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, fullPattern, 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan failed for pattern %s: %w", fullPattern, err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache delete failed for pattern %s: %w", fullPattern, err)
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return nil
}

// CacheOrExecute implements the cache-aside pattern: return the cached value
// when present, otherwise execute fn, cache its result and return it.
// Cache failures fall through to fn so redis outages never break reads.
func (c *CacheHelper) CacheOrExecute(ctx context.Context, dest interface{}, ttl time.Duration, fn func() (interface{}, error), keyParts ...string) error {
	err := c.Get(ctx, dest, keyParts...)
	if err == nil {
		return nil
	}
	if err != ErrCacheNotFound && err != ErrCacheNotAvailable {
		c.logger.Warn("cache read failed, executing fallback", "error", err)
	}

	result, err := fn()
	if err != nil {
		return err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal result: %w", err)
	}

	if setErr := c.Set(ctx, result, ttl, keyParts...); setErr != nil && setErr != ErrCacheNotAvailable {
		c.logger.Warn("cache write failed", "error", setErr)
	}

	return nil
}

// HealthCheck verifies the redis connection.
func (c *CacheHelper) HealthCheck(ctx context.Context) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}
	return c.client.Ping(ctx).Err()
}

// ===== CACHE MANAGER =====

// Default TTLs per entity. Sessions change often and cache briefly; exams and
// questions are mostly read-only during an exam window and cache longer.
const (
	ExamCacheTTL     = 10 * time.Minute
	QuestionCacheTTL = 10 * time.Minute
	SessionCacheTTL  = 30 * time.Second
	ResultCacheTTL   = 5 * time.Minute
)

// CacheManager groups the per-entity cache helpers used across services.
type CacheManager struct {
	Exam     *CacheHelper
	Question *CacheHelper
	Session  *CacheHelper
	Result   *CacheHelper

	logger *slog.Logger
}

func NewCacheManager(client *redis.Client, logger *slog.Logger) *CacheManager {
	return &CacheManager{
		Exam:     NewCacheHelper(client, "exam", logger),
		Question: NewCacheHelper(client, "question", logger),
		Session:  NewCacheHelper(client, "session", logger),
		Result:   NewCacheHelper(client, "result", logger),
		logger:   logger,
	}
}

func (m *CacheManager) HealthCheck(ctx context.Context) error {
	return m.Exam.HealthCheck(ctx)
}
