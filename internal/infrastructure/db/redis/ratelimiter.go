package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campuslink/internship-auth/internal/core/ports"
)

// incrWithExpiry bumps the window counter and starts its TTL on the first hit,
// atomically. Returns {count, ttl_ms}.
var incrWithExpiry = redis.NewScript(`
local c = redis.call("INCR", KEYS[1])
if c == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {c, redis.call("PTTL", KEYS[1])}
`)

// FixedWindowLimiter counts hits per key in fixed windows stored in Redis.
// Key format: ratelimit:<scope>:<identity>
type FixedWindowLimiter struct {
	client *redis.Client
}

func NewFixedWindowLimiter(client *redis.Client) *FixedWindowLimiter {
	return &FixedWindowLimiter{client: client}
}

// Allow records a hit for scope/identity and reports whether it fits in limit.
// A non-positive limit disables limiting.
func (l *FixedWindowLimiter) Allow(ctx context.Context, scope, identity string, limit int, window time.Duration) (ports.RateLimitDecision, error) {
	if limit <= 0 {
		return ports.RateLimitDecision{Allowed: true, Limit: limit}, nil
	}
	if window < time.Millisecond {
		window = time.Minute
	}

	res, err := incrWithExpiry.Run(ctx, l.client, []string{l.key(scope, identity)}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return ports.RateLimitDecision{}, fmt.Errorf("rate limit: %w", err)
	}
	if len(res) != 2 {
		return ports.RateLimitDecision{}, fmt.Errorf("rate limit: unexpected reply %v", res)
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	d := ports.RateLimitDecision{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: max(0, limit-count),
	}
	if !d.Allowed {
		d.RetryAfter = window
		if ttl > 0 {
			d.RetryAfter = ttl
		}
	}
	return d, nil
}

func (l *FixedWindowLimiter) key(scope, identity string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, identity)
}
