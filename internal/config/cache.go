package config

import "time"

// CacheConfig controls the Redis cache in front of the aggregate-rating
// endpoint. The average is re-derived from the ratings table on every
// uncached request, so the TTL only bounds how stale a reader can
// momentarily see the value.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 30*time.Second),
		Prefix:  envStr("CACHE_PREFIX", "bookstack:avg"),
	}
}
