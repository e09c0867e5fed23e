package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*config)

type config struct {
	capacity    int
	idleTimeout time.Duration
	now         func() time.Time
}

// WithCapacity bounds the number of live entries. The least recently used
// entry is evicted to make room.
func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithIdleTimeout sets how long an untouched entry stays live.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.idleTimeout = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}
