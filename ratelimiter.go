package qreg

import (
	"sync"
	"time"
)

/*
RateLimiter implements the Regulator interface using a token bucket. Each
admitted request consumes a token and tokens are replenished at a fixed
rate up to the bucket capacity, so short bursts pass while sustained load
is throttled.

A throttled request is not rejected: the orchestrator answers it with the
current register, exactly like any other inapplicable operation.
*/
type RateLimiter struct {
	tokens     int           // Current number of available tokens
	maxTokens  int           // Maximum token capacity
	refillRate time.Duration // Time between token replenishments
	lastRefill time.Time     // Last time tokens were added
	mu         sync.Mutex
	metrics    *Metrics
}

/*
NewRateLimiter creates a limiter admitting maxTokens requests per refill
window once the burst is spent.

Example:

	limiter := NewRateLimiter(100, 10*time.Millisecond) // 100 burst, 100 ops/second sustained
*/
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	now := time.Now()
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: now.Add(-refillRate), // Start with a full refill period elapsed
	}
}

// Observe keeps a handle on the metrics so throttled requests are counted.
func (rl *RateLimiter) Observe(metrics *Metrics) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.metrics = metrics
}

/*
Limit consumes a token if one is available. It returns true when the bucket
is empty and the request should be held back.
*/
func (rl *RateLimiter) Limit() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens > 0 {
		rl.tokens--
		return false
	}

	if rl.metrics != nil {
		rl.metrics.RecordRateLimitHit()
	}
	return true
}

// Renormalize triggers a refill check.
func (rl *RateLimiter) Renormalize() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
}

/*
refill adds tokens proportional to the time elapsed since the last refill,
up to the bucket capacity. Caller holds rl.mu.
*/
func (rl *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)

	elapsedNs := elapsed.Nanoseconds()
	refillRateNs := rl.refillRate.Nanoseconds()
	if refillRateNs <= 0 {
		rl.tokens = rl.maxTokens
		rl.lastRefill = now
		return
	}

	// Only round up if we're at least halfway through a period
	tokensToAdd := (elapsedNs + (refillRateNs / 2)) / refillRateNs

	if tokensToAdd > 0 {
		rl.tokens = min(rl.maxTokens, rl.tokens+int(tokensToAdd))
		// Only move lastRefill forward by the number of complete periods
		rl.lastRefill = rl.lastRefill.Add(time.Duration(tokensToAdd) * rl.refillRate)
	}
}
