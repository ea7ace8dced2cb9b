// Package memory provides single-process fallbacks for Redis-backed ports.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is an in-process sliding window limiter used when REDIS_URL is unset.
type RateLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	requests map[string][]time.Time
	now      func() time.Time
}

// NewRateLimiter admits limit requests per key in any window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limit:    limit,
		window:   window,
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow records a request for key if the window has room.
func (r *RateLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	if r.limit <= 0 {
		return true, 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-r.window)

	// timestamps are appended in order, so expired ones form a prefix
	times := r.requests[key]
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	times = times[i:]

	if len(times) >= r.limit {
		r.requests[key] = times
		retry := times[0].Add(r.window).Sub(now)
		if retry < time.Second {
			retry = time.Second
		}
		return false, retry, nil
	}

	r.requests[key] = append(times, now)
	r.sweep(cutoff)
	return true, 0, nil
}

// sweep drops keys whose newest request has left the window.
func (r *RateLimiter) sweep(cutoff time.Time) {
	if len(r.requests) < 1024 {
		return
	}
	for key, times := range r.requests {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(r.requests, key)
		}
	}
}

// Limit returns the number of requests admitted per window
func (r *RateLimiter) Limit() int {
	return r.limit
}
