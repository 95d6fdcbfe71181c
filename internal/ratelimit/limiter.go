// Package ratelimit provides per-key token bucket rate limiting for the
// MCP tools.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRateLimited is returned by CheckLimit when a tool's bucket is empty.
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter is a per-key token bucket. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   int     // bucket size, also the initial token count
	nowFunc func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewLimiter creates a limiter refilling at rate tokens per second with the
// given burst.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// PerMinute creates a limiter allowing n calls per minute with the given burst.
func PerMinute(n int, burst int) *Limiter {
	return NewLimiter(float64(n)/60.0, burst)
}

// Allow takes one token from key's bucket and reports whether it had one.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), last: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = min(b.tokens+l.rate*elapsed, float64(l.burst))
		b.last = now
	}

	if b.tokens < 1.0 {
		return false
	}
	b.tokens--
	return true
}

// ToolLimiters maps tool names to their limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters returns the default limits for the contagion MCP tools.
// Simulations and imports write to disk and get the tighter budgets.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"contagion_run":    PerMinute(30, 5),
		"contagion_import": PerMinute(10, 3),
		"contagion_delete": PerMinute(10, 3),
		"contagion_render": PerMinute(30, 5),
		"contagion_graphs": PerMinute(60, 10),
		"contagion_models": PerMinute(60, 10),
	}
}

// CheckLimit returns an error wrapping ErrRateLimited when toolName is out of
// tokens. Tools without a limiter are never limited.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}
	if !limiter.Allow(toolName) {
		return fmt.Errorf("%w for %s, please try again shortly", ErrRateLimited, toolName)
	}
	return nil
}
