package ratelimit

import (
	"context"
	"net/netip"
	"testing"
	"time"
)

func TestManagerAcquireRelease(t *testing.T) {
	m := NewManager(2, 1, 4, 50*time.Millisecond)
	target := netip.MustParseAddr("192.0.2.1")

	ctx := context.Background()
	if err := m.Acquire(ctx, target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.Release(target)
}

func TestManagerBacksOffAfterRepeatedFailures(t *testing.T) {
	m := NewManager(2, 1, 4, 50*time.Millisecond)
	target := netip.MustParseAddr("192.0.2.1")

	for i := 0; i < 3; i++ {
		m.OnFailure(target)
	}
	if !m.IsTargetBackedOff(target) {
		t.Fatal("expected target to be backed off after repeated failures")
	}

	time.Sleep(60 * time.Millisecond)
	if m.IsTargetBackedOff(target) {
		t.Fatal("expected backoff window to have expired")
	}
}

func TestManagerSuccessClearsBackoff(t *testing.T) {
	m := NewManager(2, 1, 4, time.Second)
	target := netip.MustParseAddr("192.0.2.1")

	for i := 0; i < 3; i++ {
		m.OnFailure(target)
	}
	if !m.IsTargetBackedOff(target) {
		t.Fatal("expected backoff after failures")
	}

	m.OnSuccess(target, 20*time.Millisecond)
	if m.IsTargetBackedOff(target) {
		t.Fatal("expected success to clear backoff")
	}
}

func TestManagerSeparatesHostgroups(t *testing.T) {
	m := NewManager(1, 1, 1, time.Second)
	a := netip.MustParseAddr("192.0.2.1")
	b := netip.MustParseAddr("203.0.113.1")

	ctx := context.Background()
	if err := m.Acquire(ctx, a); err != nil {
		t.Fatalf("unexpected error acquiring a: %v", err)
	}

	// b is in a different /24 hostgroup, so it must not be blocked by a's
	// exhausted single-token limiter.
	shortCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := m.Acquire(shortCtx, b); err != nil {
		t.Fatalf("expected independent hostgroup limiter for b, got %v", err)
	}
}
