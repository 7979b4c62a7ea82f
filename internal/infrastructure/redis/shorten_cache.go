package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ShortenCache remembers provider results keyed by a digest of the long URL.
type ShortenCache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewShortenCache(client *redis.Client, logger *slog.Logger) *ShortenCache {
	return &ShortenCache{
		client: client,
		logger: logger,
	}
}

func (c *ShortenCache) Get(ctx context.Context, longURL string) (string, error) {
	key := c.buildKey(longURL)

	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Cache miss is not an error
			return "", nil
		}
		c.logger.Error("Failed to get from cache", "key", key, "error", err)
		return "", fmt.Errorf("cache get failed: %w", err)
	}

	return val, nil
}

func (c *ShortenCache) Set(ctx context.Context, longURL, shortURL string, ttl time.Duration) error {
	key := c.buildKey(longURL)

	if err := c.client.Set(ctx, key, shortURL, ttl).Err(); err != nil {
		c.logger.Error("Failed to set cache", "key", key, "error", err)
		return fmt.Errorf("cache set failed: %w", err)
	}

	return nil
}

func (c *ShortenCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.logger.Error("Failed to ping Redis", "error", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *ShortenCache) buildKey(longURL string) string {
	sum := sha256.Sum256([]byte(longURL))
	return "shorten:" + hex.EncodeToString(sum[:])
}
