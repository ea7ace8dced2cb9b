package driven

import (
	"context"
	"time"
)

// RateLimiter admits or rejects requests per key over a sliding window
type RateLimiter interface {
	// Allow records a request for key and reports whether it is within budget.
	// When rejected, retryAfter is how long until the window has room again.
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)

	// Limit returns the number of requests admitted per window
	Limit() int
}
