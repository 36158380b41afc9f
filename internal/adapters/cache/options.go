package cache

import (
	"time"

	"github.com/okian/gradecast/pkg/logger"
)

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the expiry of published keys.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}
