package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter decides whether a request identified by key may proceed. Injected
// into the HTTP layer so a multi-instance deployment can swap the in-memory
// implementation for a shared counter without touching the handlers.
type Limiter interface {
	Allow(key string) bool
}

// KeyedLimiter is an in-memory Limiter holding one token bucket per key.
// Suitable for a single-process deployment only.
type KeyedLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewKeyedLimiter creates a limiter allowing r events per second with the
// given burst per key.
func NewKeyedLimiter(r rate.Limit, burst int) *KeyedLimiter {
	return &KeyedLimiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   r,
		burst:   burst,
	}
}

// Allow reports whether the request for key may proceed now.
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = bucket
	}
	l.mu.Unlock()

	return bucket.Allow()
}
