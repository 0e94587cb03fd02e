package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/intellinews/newsrec/internal/models"
)

// RedisCache implements ResultCache on Redis with TTL-on-write and a
// SCAN-based prefix sweep for invalidation. All backend errors are logged at
// Warn and swallowed; the caller never sees a cache failure.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache creates a Redis-backed result cache. The connection is
// verified with a short ping, but a failed ping does not fail construction;
// the cache simply misses until Redis becomes reachable.
func NewRedisCache(addr, password string, db int, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not reachable, result caching degraded", zap.String("addr", addr), zap.Error(err))
	} else {
		logger.Info("redis connected", zap.String("addr", addr))
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached ranking for key, or a miss on any backend or decode
// failure.
func (c *RedisCache) Get(ctx context.Context, key string) ([]models.RecommendedItem, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	var items []models.RecommendedItem
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Warn("cache entry corrupt, ignoring", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return items, true
}

// Set stores the ranking under key with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, items []models.RecommendedItem) {
	data, err := json.Marshal(items)
	if err != nil {
		c.logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateAll deletes every key under the ranking prefix via SCAN, so the
// sweep never blocks Redis the way KEYS would.
func (c *RedisCache) InvalidateAll(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			c.deleteKeys(ctx, keys)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("cache invalidation scan failed", zap.Error(err))
		return
	}
	c.deleteKeys(ctx, keys)
	c.logger.Debug("recommendation cache invalidated")
}

func (c *RedisCache) deleteKeys(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache delete failed", zap.Error(err))
	}
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
