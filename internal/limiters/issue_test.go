package limiters

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiterRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

func TestIssueLimiterAcquireAndDeny(t *testing.T) {
	_, rdb := newLimiterRedis(t)

	limiter := New(rdb, "vr", IssueConfig{Cooldown: time.Minute})
	ctx := context.Background()

	allowed, wait, err := limiter.Acquire(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !allowed || wait != 0 {
		t.Fatalf("expected first acquire to win with zero wait, got allowed=%v wait=%v", allowed, wait)
	}

	allowed, wait, err = limiter.Acquire(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if allowed {
		t.Fatal("expected second acquire inside cooldown to be denied")
	}
	if wait <= 0 || wait > time.Minute {
		t.Fatalf("expected wait in (0, cooldown], got %v", wait)
	}
}

func TestIssueLimiterWaitShrinks(t *testing.T) {
	mr, rdb := newLimiterRedis(t)

	limiter := New(rdb, "vr", IssueConfig{Cooldown: time.Minute})
	ctx := context.Background()

	if _, _, err := limiter.Acquire(ctx, "a@b.com"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	_, first, err := limiter.Acquire(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	mr.FastForward(20 * time.Second)

	_, second, err := limiter.Acquire(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if second > first {
		t.Fatalf("wait grew from %v to %v", first, second)
	}

	mr.FastForward(41 * time.Second)

	allowed, _, err := limiter.Acquire(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !allowed {
		t.Fatal("expected acquire to succeed after cooldown elapsed")
	}
}

func TestIssueLimiterIsPerIdentity(t *testing.T) {
	_, rdb := newLimiterRedis(t)

	limiter := New(rdb, "vr", IssueConfig{Cooldown: time.Minute})
	ctx := context.Background()

	if allowed, _, err := limiter.Acquire(ctx, "a@b.com"); err != nil || !allowed {
		t.Fatalf("expected first identity to win, got allowed=%v err=%v", allowed, err)
	}
	if allowed, _, err := limiter.Acquire(ctx, "c@d.com"); err != nil || !allowed {
		t.Fatalf("expected second identity to win, got allowed=%v err=%v", allowed, err)
	}
}

func TestIssueLimiterExactlyOneWinner(t *testing.T) {
	_, rdb := newLimiterRedis(t)

	limiter := New(rdb, "vr", IssueConfig{Cooldown: time.Minute})
	ctx := context.Background()

	const racers = 32
	var wins atomic.Int64
	var wg sync.WaitGroup
	errs := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _, err := limiter.Acquire(ctx, "a@b.com")
			if err != nil {
				errs <- err
				return
			}
			if allowed {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Acquire failed: %v", err)
	}

	if got := wins.Load(); got != 1 {
		t.Fatalf("expected exactly one winner, got %d", got)
	}
}

func TestIssueLimiterUnavailable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	limiter := New(rdb, "vr", IssueConfig{Cooldown: time.Minute})

	_, _, err := limiter.Acquire(context.Background(), "a@b.com")
	if !errors.Is(err, ErrLimiterUnavailable) {
		t.Fatalf("expected ErrLimiterUnavailable, got %v", err)
	}
}
