package common

import "github.com/jonechelon/matchfly-pseo/internal/logging"

// NewCache selects the cache backend. A Redis backend that cannot connect
// falls back to memory rather than failing the run; caching is an
// optimization here, never a requirement.
func NewCache(backend string) CacheInterface {
	if backend == "redis" {
		c, err := NewRedisCacheService()
		if err == nil {
			return c
		}
		logging.Warn("redis cache unavailable, using in-memory cache", "error", err.Error())
	}
	return NewCacheService(3600, 600)
}
