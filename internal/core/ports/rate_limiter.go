package ports

import (
	"context"
	"time"
)

// RateLimitDecision is the outcome of one rate-limit check.
type RateLimitDecision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // zero when allowed
}

// RateLimiter counts hits per scope and caller identity.
type RateLimiter interface {
	Allow(ctx context.Context, scope, identity string, limit int, window time.Duration) (RateLimitDecision, error)
}
