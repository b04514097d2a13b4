package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/patentminer/patentminer/pkg/errors"
)

// rate-limited keys are cleaned up after sitting idle for this long.
const bucketIdleTTL = 5 * time.Minute

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

// TokenBucketLimiter is an in-memory per-key token bucket. Keys refill at a
// sustained rate up to a burst ceiling; idle buckets are evicted lazily on
// the next Allow call past the idle TTL.
type TokenBucketLimiter struct {
	rate  float64
	burst int

	mu          sync.Mutex
	buckets     map[string]*tokenBucket
	lastCleanup time.Time
	now         func() time.Time
}

// NewTokenBucketLimiter returns a limiter allowing rate requests per second
// with the given burst size.
func NewTokenBucketLimiter(rate float64, burst int) *TokenBucketLimiter {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucketLimiter{
		rate:    rate,
		burst:   burst,
		buckets: make(map[string]*tokenBucket),
		now:     time.Now,
	}
}

// Allow consumes one token for key. It reports whether the request may
// proceed and how many tokens remain.
func (l *TokenBucketLimiter) Allow(key string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.maybeCleanup(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: float64(l.burst), lastRefill: now}
		l.buckets[key] = b
	}

	b.tokens += now.Sub(b.lastRefill).Seconds() * l.rate
	if b.tokens > float64(l.burst) {
		b.tokens = float64(l.burst)
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false, 0
	}
	b.tokens--
	return true, int(b.tokens)
}

func (l *TokenBucketLimiter) maybeCleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < bucketIdleTTL {
		return
	}
	l.lastCleanup = now
	for key, b := range l.buckets {
		if now.Sub(b.lastRefill) > bucketIdleTTL {
			delete(l.buckets, key)
		}
	}
}

// RateLimit enforces a per-client-IP token bucket on API routes. Health and
// metrics endpoints are exempt. Exceeding the limit answers 429 with
// Retry-After and X-RateLimit headers.
func RateLimit(limiter *TokenBucketLimiter) gin.HandlerFunc {
	skip := map[string]bool{"/healthz": true, "/readyz": true, "/metrics": true}

	return func(c *gin.Context) {
		if limiter == nil || skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		allowed, remaining := limiter.Allow(c.ClientIP())

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(limiter.burst))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			h.Set("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    string(errors.ErrCodeTooManyRequests),
				"message": "rate limit exceeded, retry later",
			})
			return
		}
		c.Next()
	}
}
