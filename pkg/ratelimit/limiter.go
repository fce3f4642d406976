package ratelimit

import (
	"sync"
	"time"
)

// Config configures a keyed Limiter.
type Config struct {
	// RequestsPerSecond is the sustained rate allowed per key.
	RequestsPerSecond float64

	// Burst is the bucket capacity per key. Values below 1 default to
	// twice the per-second rate, and at least 1.
	Burst int
}

// CheckResult is the outcome of a Limiter check.
type CheckResult struct {
	// Allowed indicates if the request is permitted.
	Allowed bool

	// Limit is the bucket capacity.
	Limit int64

	// Remaining is how many requests remain in the bucket.
	Remaining int64

	// RetryAfter suggests how long to wait before retrying. Zero when
	// Allowed.
	RetryAfter time.Duration
}

// Limiter keeps one token bucket per key, typically a client address.
// Buckets that have refilled completely are dropped by Sweep.
type Limiter struct {
	rate  float64
	burst int64
	now   func() time.Time

	mu      sync.Mutex
	buckets map[string]*TokenBucket
}

// NewLimiter creates a keyed limiter.
func NewLimiter(cfg Config) *Limiter {
	return newLimiter(cfg, time.Now)
}

func newLimiter(cfg Config, now func() time.Time) *Limiter {
	burst := int64(cfg.Burst)
	if burst < 1 {
		burst = int64(cfg.RequestsPerSecond * 2)
		if burst < 1 {
			burst = 1
		}
	}
	return &Limiter{
		rate:    cfg.RequestsPerSecond,
		burst:   burst,
		now:     now,
		buckets: make(map[string]*TokenBucket),
	}
}

// Check consumes one token from key's bucket.
func (l *Limiter) Check(key string) CheckResult {
	bucket := l.bucket(key)

	if bucket.Take(1) {
		return CheckResult{
			Allowed:   true,
			Limit:     l.burst,
			Remaining: bucket.Remaining(),
		}
	}
	return CheckResult{
		Allowed:    false,
		Limit:      l.burst,
		RetryAfter: bucket.TimeUntilAvailable(1),
	}
}

func (l *Limiter) bucket(key string) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = newTokenBucket(l.burst, l.rate, l.now)
		l.buckets[key] = b
	}
	return b
}

// Sweep drops the buckets of keys that have been idle long enough to refill
// completely and returns how many were dropped.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if b.Full() {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
