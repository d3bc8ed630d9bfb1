package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/verikit/verikit"
)

func main() {
	var (
		identities  = flag.Int("identities", 50000, "number of identities to issue codes for")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		digits      = flag.Int("digits", 6, "code length in digits")
	)
	flag.Parse()

	if *identities <= 0 || *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "identities and concurrency must be > 0")
		os.Exit(2)
	}
	if *digits < 4 || *digits > 10 {
		fmt.Fprintln(os.Stderr, "digits must be between 4 and 10")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	capture := &codeCapture{codes: make(map[string]string, *identities)}

	config := verikit.DefaultConfig()
	config.Code.Digits = *digits
	// One issuance per identity; the cooldown window never triggers and its
	// round trips would only skew the issue-phase numbers.
	config.RateLimit.Enabled = false

	engine, err := verikit.New().
		WithConfig(config).
		WithRedis(client).
		WithDelivery(capture).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	names := make([]string, *identities)
	for i := range names {
		names[i] = fmt.Sprintf("user-%d@load.test", i)
	}

	issueStats := runPhase(names, *concurrency, func(identity string) error {
		_, err := engine.RequestCode(ctx, identity)
		return err
	})

	verifyStats := runPhase(names, *concurrency, func(identity string) error {
		result, err := engine.SubmitCode(ctx, identity, capture.code(identity))
		if err != nil {
			return err
		}
		if result.Outcome != verikit.OutcomeSuccess {
			return fmt.Errorf("unexpected outcome %s", result.Outcome)
		}
		return nil
	})

	tokens := make([]string, *identities)
	tokenStats := runPhase(names, *concurrency, func(identity string) error {
		token, err := engine.ExchangeForToken(ctx, identity)
		if err != nil {
			return err
		}
		tokens[indexOf(identity)] = token
		return nil
	})

	checkStats := runPhase(names, *concurrency, func(identity string) error {
		info, err := engine.CheckToken(ctx, tokens[indexOf(identity)])
		if err != nil {
			return err
		}
		if !info.Valid || info.Identity != identity {
			return fmt.Errorf("token lookup mismatch for %s", identity)
		}
		return nil
	})

	fmt.Println("---- results ----")
	printStats("issue", issueStats)
	printStats("verify", verifyStats)
	printStats("exchange", tokenStats)
	printStats("check", checkStats)

	snapshot := engine.MetricsSnapshot()
	fmt.Printf("engine: issued=%d verified=%d tokens=%d checks=%d store_errors=%d\n",
		snapshot.Counters[verikit.MetricCodeIssued],
		snapshot.Counters[verikit.MetricVerifySuccess],
		snapshot.Counters[verikit.MetricTokenIssued],
		snapshot.Counters[verikit.MetricTokenCheckValid],
		snapshot.Counters[verikit.MetricStoreUnavailable],
	)
}

// codeCapture is a DeliveryChannel that records each code instead of sending
// it, so the verify phase can replay the real values.
type codeCapture struct {
	mu    sync.Mutex
	codes map[string]string
}

func (c *codeCapture) Deliver(_ context.Context, destination, code, _ string) error {
	c.mu.Lock()
	c.codes[destination] = code
	c.mu.Unlock()
	return nil
}

func (c *codeCapture) code(destination string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codes[destination]
}

// indexOf recovers the slice index baked into a generated identity name.
func indexOf(identity string) int {
	var i int
	_, _ = fmt.Sscanf(identity, "user-%d@load.test", &i)
	return i
}

func runPhase(names []string, concurrency int, op func(identity string) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, len(names))
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= len(names) {
					return
				}
				t0 := time.Now()
				err := op(names[i])
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
