package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

type Cache interface {
	// SetIfAbsent stores value only when key is missing or expired and
	// reports whether it did.
	SetIfAbsent(key string, value interface{}, duration time.Duration) bool
}

type goCache struct {
	internal *cache.Cache
}

// NewCache returns a new Cache instance with default expiration and cleanup interval
func NewCache(defaultExpiration, cleanupInterval time.Duration) Cache {
	return &goCache{
		internal: cache.New(defaultExpiration, cleanupInterval),
	}
}

func (c *goCache) SetIfAbsent(key string, value interface{}, duration time.Duration) bool {
	return c.internal.Add(key, value, duration) == nil
}
