package verikit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricCodeIssued)
	if m.Value(MetricCodeIssued) != 0 {
		t.Fatal("disabled metrics must not count")
	}

	snap := m.Snapshot()
	if len(snap.Counters) != 0 {
		t.Fatal("disabled metrics snapshot must be empty")
	}
}

func TestMetricsCountersConcurrent(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Inc(MetricVerifyMismatch)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricVerifyMismatch); got != 8000 {
		t.Fatalf("expected 8000, got %d", got)
	}
}

func TestMetricsLatencyHistogram(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Observe(MetricVerifyLatency, 2*time.Millisecond)
	m.Observe(MetricVerifyLatency, 40*time.Millisecond)
	m.Observe(MetricVerifyLatency, time.Second)

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricVerifyLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("expected %d buckets, got %d", histBucketCount, len(buckets))
	}
	if buckets[0] != 1 || buckets[3] != 1 || buckets[7] != 1 {
		t.Fatalf("unexpected bucket fill: %v", buckets)
	}
}

func TestEngineCountsOutcomes(t *testing.T) {
	_, rdb := newTestRedis(t)

	ctx := context.Background()
	ch := &captureChannel{}

	cfg := testConfig()
	cfg.Metrics.Enabled = true
	engine := newTestEngine(t, rdb, ch, cfg)

	code := issueCode(t, engine, ch, "a@b.com")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if _, err := engine.SubmitCode(ctx, "a@b.com", wrong); err != nil {
		t.Fatalf("SubmitCode failed: %v", err)
	}
	if _, err := engine.SubmitCode(ctx, "a@b.com", code); err != nil {
		t.Fatalf("SubmitCode failed: %v", err)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricCodeIssued] != 1 {
		t.Fatalf("expected 1 issued, got %d", snap.Counters[MetricCodeIssued])
	}
	if snap.Counters[MetricVerifyMismatch] != 1 {
		t.Fatalf("expected 1 mismatch, got %d", snap.Counters[MetricVerifyMismatch])
	}
	if snap.Counters[MetricVerifySuccess] != 1 {
		t.Fatalf("expected 1 success, got %d", snap.Counters[MetricVerifySuccess])
	}
}
