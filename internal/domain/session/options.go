package session

import "time"

// Option applies a configuration option to the in-memory store.
type Option func(*lruStore)

// WithCapacity sets the maximum number of sessions kept. Non-positive values
// keep the default.
func WithCapacity(n int) Option {
	return func(s *lruStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithTTL sets how long an untouched session survives.
func WithTTL(ttl time.Duration) Option {
	return func(s *lruStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}
