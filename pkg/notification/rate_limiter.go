package notification

import (
	"sync"
	"time"

	"github.com/Veraticus/worktime/pkg/interfaces"
)

// TokenBucketRateLimiter implements token bucket rate limiting
type TokenBucketRateLimiter struct {
	capacity   int
	tokens     int
	refillRate time.Duration
	lastRefill time.Time
	now        func() time.Time
	mu         sync.Mutex
}

// NewTokenBucketRateLimiter creates a new token bucket rate limiter.
// A non-positive refillRate never refills.
func NewTokenBucketRateLimiter(capacity int, refillRate time.Duration) *TokenBucketRateLimiter {
	capacity = max(capacity, 0)
	return &TokenBucketRateLimiter{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// NewWindowRateLimiter allows maxMessages per window. It returns nil when
// maxMessages is zero, meaning no limit.
func NewWindowRateLimiter(maxMessages int, window time.Duration) interfaces.RateLimiter {
	if maxMessages <= 0 {
		return nil
	}
	return NewTokenBucketRateLimiter(maxMessages, window/time.Duration(maxMessages))
}

// Allow checks if a request is allowed under the rate limit
func (tb *TokenBucketRateLimiter) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	// Refill tokens based on time elapsed
	if tb.refillRate > 0 {
		now := tb.now()
		tokensToAdd := int(now.Sub(tb.lastRefill) / tb.refillRate)
		if tokensToAdd > 0 {
			tb.tokens = min(tb.capacity, tb.tokens+tokensToAdd)
			tb.lastRefill = tb.lastRefill.Add(time.Duration(tokensToAdd) * tb.refillRate)
		}
	}

	// Try to consume a token
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// Reset resets the rate limiter to full capacity
func (tb *TokenBucketRateLimiter) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = tb.now()
}
