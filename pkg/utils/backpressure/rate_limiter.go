// Package backpressure provides the request rate limiting the API server
// applies to pricing endpoints.
package backpressure

import (
	"context"
	"sync"
	"time"

	"github.com/quantkit/option-engine/pkg/utils/logger"
)

// RateLimiter is the admission interface the API middleware consumes
type RateLimiter interface {
	Allow() bool
	AllowN(n int) bool
	Wait(ctx context.Context) error
	Limit() float64
	Burst() int
	TokensRemaining() int
}

// TokenBucketLimiter implements token bucket rate limiting
type TokenBucketLimiter struct {
	rate       float64
	burst      int
	tokens     float64
	lastUpdate time.Time
	mutex      sync.Mutex
	log        *logger.Logger
}

// NewTokenBucketLimiter creates a limiter refilling at rate tokens per
// second up to burst
func NewTokenBucketLimiter(rate float64, burst int) *TokenBucketLimiter {
	if rate <= 0 {
		rate = 1.0
	}
	if burst <= 0 {
		burst = 1
	}

	limiter := &TokenBucketLimiter{
		rate:       rate,
		burst:      burst,
		tokens:     float64(burst),
		lastUpdate: time.Now(),
		log:        logger.GetLogger("rate_limiter.token_bucket"),
	}

	limiter.log.Infof("Token bucket rate limiter created with rate=%.2f, burst=%d",
		rate, burst)

	return limiter
}

// Allow checks if a single operation is allowed
func (tb *TokenBucketLimiter) Allow() bool {
	return tb.AllowN(1)
}

// AllowN checks if n operations are allowed
func (tb *TokenBucketLimiter) AllowN(n int) bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.refillTokens(time.Now())

	if tb.tokens >= float64(n) {
		tb.tokens -= float64(n)
		return true
	}
	return false
}

// Wait blocks until a single operation is allowed or the context ends
func (tb *TokenBucketLimiter) Wait(ctx context.Context) error {
	for {
		if tb.Allow() {
			return nil
		}

		waitTime := tb.waitTime(1)
		select {
		case <-time.After(waitTime):
			continue
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// refillTokens adds tokens based on elapsed time; callers hold the mutex
func (tb *TokenBucketLimiter) refillTokens(now time.Time) {
	elapsed := now.Sub(tb.lastUpdate)
	if elapsed <= 0 {
		return
	}

	tb.tokens += elapsed.Seconds() * tb.rate
	if tb.tokens > float64(tb.burst) {
		tb.tokens = float64(tb.burst)
	}
	tb.lastUpdate = now
}

func (tb *TokenBucketLimiter) waitTime(n int) time.Duration {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	needed := float64(n) - tb.tokens
	if needed <= 0 {
		return 0
	}

	waitTime := time.Duration(needed / tb.rate * float64(time.Second))
	if waitTime < time.Millisecond {
		waitTime = time.Millisecond
	}
	return waitTime
}

// Limit returns the current rate limit
func (tb *TokenBucketLimiter) Limit() float64 {
	return tb.rate
}

// Burst returns the burst capacity
func (tb *TokenBucketLimiter) Burst() int {
	return tb.burst
}

// TokensRemaining returns the number of tokens remaining
func (tb *TokenBucketLimiter) TokensRemaining() int {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.refillTokens(time.Now())
	return int(tb.tokens)
}
