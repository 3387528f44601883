package repcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
)

const redisKeyPrefix = "urlrep:"

// RedisCache is a Redis-backed verdict cache shared across instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache creates a Redis verdict cache and verifies the connection.
func NewRedisCache(address string, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: address})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}, nil
}

// Get returns a cached verdict, if present.
func (c *RedisCache) Get(ctx context.Context, rawURL string) (*core.URLVerdict, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+rawURL).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Redis verdict lookup failed", zap.Error(err))
		}
		return nil, false
	}

	var verdict core.URLVerdict
	if err := json.Unmarshal(data, &verdict); err != nil {
		c.logger.Warn("Failed to decode cached verdict", zap.Error(err), zap.String("url", rawURL))
		return nil, false
	}
	return &verdict, true
}

// Set stores a verdict with the configured TTL. Failures are logged only.
func (c *RedisCache) Set(ctx context.Context, rawURL string, verdict *core.URLVerdict) {
	data, err := json.Marshal(verdict)
	if err != nil {
		c.logger.Warn("Failed to encode verdict for cache", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+rawURL, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Redis verdict store failed", zap.Error(err))
	}
}

// Stop closes the Redis connection.
func (c *RedisCache) Stop() {
	if err := c.client.Close(); err != nil {
		c.logger.Warn("Failed to close Redis client", zap.Error(err))
	}
}
