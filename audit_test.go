package verikit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestJSONWriterSinkEmitsOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		ID:        "e1",
		EventType: auditEventCodeRequest,
		Identity:  "a@b.com",
		Success:   true,
	})

	var decoded AuditEvent
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal emitted line: %v", err)
	}
	if decoded.EventType != auditEventCodeRequest || decoded.Identity != "a@b.com" || !decoded.Success {
		t.Fatalf("unexpected event: %+v", decoded)
	}
}

func TestAuditDispatcherDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	sink := Func(func(AuditEvent) { <-block })

	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)
	defer func() {
		close(block)
		d.Close()
	}()

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		d.Emit(ctx, AuditEvent{EventType: auditEventCodeRequest})
	}

	if d.Dropped() == 0 {
		t.Fatal("expected dropped events with a blocked sink")
	}
}

// Func adapts a plain function to AuditSink for tests.
type Func func(event AuditEvent)

func (f Func) Emit(_ context.Context, event AuditEvent) { f(event) }

func TestEngineEmitsAuditEvents(t *testing.T) {
	_, rdb := newTestRedis(t)

	ctx := context.Background()
	ch := &captureChannel{}
	sink := NewChannelSink(64)

	cfg := testConfig()
	cfg.Audit.Enabled = true

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithDelivery(ch).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if _, err := engine.RequestCode(WithClientIP(ctx, "10.0.0.9"), "a@b.com"); err != nil {
		t.Fatalf("RequestCode failed: %v", err)
	}
	if _, err := engine.RequestCode(ctx, "a@b.com"); err == nil {
		t.Fatal("expected rate-limited second request")
	}

	engine.Close() // flush the dispatcher

	events := drainEvents(t, sink, 2)
	if events[0].EventType != auditEventCodeRequest || !events[0].Success {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[0].Identity != "a@b.com" || events[0].IP != "10.0.0.9" {
		t.Fatalf("expected identity and IP on event, got %+v", events[0])
	}
	if events[0].ID == "" {
		t.Fatal("expected event ID")
	}
	if events[1].EventType != auditEventCodeRateLimited || events[1].Error != string(auditErrRateLimited) {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
	if events[1].Metadata["wait_seconds"] == "" {
		t.Fatal("expected wait_seconds metadata on rate-limit event")
	}
}

func drainEvents(t *testing.T, sink *ChannelSink, n int) []AuditEvent {
	t.Helper()

	events := make([]AuditEvent, 0, n)
	for len(events) < n {
		select {
		case event := <-sink.Events():
			events = append(events, event)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %d audit events, have %d", n, len(events))
		}
	}
	return events
}
