package config

import (
	"strings"
	"time"
)

// CacheConfig controls the Redis response cache on the public browse
// routes.  Methods is the set of HTTP methods eligible for caching.
// KeyStrategy selects which request parts form the cache key and Prefix
// namespaces this service's entries in a shared Redis.  MaxBodyBytes
// caps how large a response body may be stored.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads the CACHE_* environment variables, applying
// defaults where unset.  The room catalogue and day schedules change
// rarely within a TTL window, so a short default keeps guests on warm
// responses without serving stale bookings for long.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "booking:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

// parseMethods turns a comma-separated method list into an upper-cased
// membership set.
func parseMethods(s string) map[string]bool {
	m := make(map[string]bool)
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
