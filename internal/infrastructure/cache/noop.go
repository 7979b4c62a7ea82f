package cache

import (
	"context"
	"time"
)

// NoOpCache is the ShortenCache used when caching is disabled. Every
// lookup is a miss.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (c *NoOpCache) Set(_ context.Context, _, _ string, _ time.Duration) error {
	return nil
}

func (c *NoOpCache) Ping(_ context.Context) error {
	return nil
}
