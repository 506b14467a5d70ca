package config

import "time"

// RateLimitConfig defines settings for the fixed-window rate limiter applied
// to public endpoints. The queue is polled by every waiting customer, so the
// defaults are generous; the limiter mainly guards against runaway clients.
type RateLimitConfig struct {
	Enabled bool          // disable to bypass the limiter entirely
	Limit   int           // max requests per window per key
	Window  time.Duration // window length
	Prefix  string        // redis key namespace
}

// LoadRateLimitConfig reads environment variables to build a RateLimitConfig.
// Defaults are used when variables are not set.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: getenv("RATE_LIMIT_ENABLED", "true") == "true",
		Limit:   atoi(getenv("RATE_LIMIT_MAX", "60"), 60),
		Window:  parseDur(getenv("RATE_LIMIT_WINDOW", "1m"), time.Minute),
		Prefix:  getenv("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Limit < 1 {
		cfg.Limit = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return cfg
}

// CacheConfig defines settings for the queue snapshot cache. Clients poll the
// queue roughly every ten seconds; a few seconds of staleness is acceptable
// and keeps the read path off the database under load.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled: getenv("QUEUE_CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("QUEUE_CACHE_TTL", "3s"), 3*time.Second),
		Prefix:  getenv("QUEUE_CACHE_PREFIX", "queue-cache"),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 3 * time.Second
	}
	return cfg
}
