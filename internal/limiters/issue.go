package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLimiterUnavailable wraps Redis connectivity failures so the engine can
// distinguish "denied" from "undecidable" and fail open on the latter.
var ErrLimiterUnavailable = errors.New("issue limiter unavailable")

// IssueConfig holds cooldown tuning for the issuance limiter.
type IssueConfig struct {
	Cooldown time.Duration
}

// IssueLimiter throttles code issuance per identity with a transient Redis
// marker. Creation is race-free: SET NX guarantees exactly one winner among
// concurrent requests for the same identity inside a cooldown window.
type IssueLimiter struct {
	redis  redis.UniversalClient
	prefix string
	config IssueConfig
}

// New creates an [IssueLimiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, prefix string, cfg IssueConfig) *IssueLimiter {
	if prefix == "" {
		prefix = "vr"
	}
	return &IssueLimiter{
		redis:  redisClient,
		prefix: prefix,
		config: cfg,
	}
}

// Acquire attempts to claim the issuance slot for identity. When denied, the
// returned duration is the remaining wait until the window clears. The TTL is
// read in a second round trip; it informs the wait figure only, never the
// allow/deny decision.
func (l *IssueLimiter) Acquire(ctx context.Context, identity string) (bool, time.Duration, error) {
	key := l.key(identity)

	created, err := l.redis.SetNX(ctx, key, "1", l.config.Cooldown).Result()
	if err != nil {
		return false, 0, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	if created {
		return true, 0, nil
	}

	wait, err := l.redis.TTL(ctx, key).Result()
	if err != nil || wait < 0 {
		// Marker raced away or TTL read failed; report the full cooldown.
		wait = l.config.Cooldown
	}

	return false, wait, nil
}

func (l *IssueLimiter) key(identity string) string {
	return l.prefix + ":" + identity
}
