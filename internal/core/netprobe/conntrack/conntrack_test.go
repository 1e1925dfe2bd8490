package conntrack

import (
	"net/netip"
	"testing"
	"time"
)

func testKey() ConnKey {
	return ConnKey{
		TargetIP:   netip.MustParseAddr("192.0.2.1"),
		TargetPort: 80,
		SourcePort: 40000,
	}
}

func TestInsertGetRemove(t *testing.T) {
	table := New()
	key := testKey()

	table.Insert(key, &ConnectionState{State: StateSynSent, SeqSent: 1000, SentAt: time.Now()})

	got, ok := table.Get(key)
	if !ok {
		t.Fatal("expected entry to exist")
	}
	if got.State != StateSynSent || got.SeqSent != 1000 {
		t.Fatalf("unexpected state: %+v", got)
	}

	table.Remove(key)
	if _, ok := table.Get(key); ok {
		t.Fatal("expected entry to be removed")
	}
}

func TestMutateAppliesInPlace(t *testing.T) {
	table := New()
	key := testKey()
	table.Insert(key, &ConnectionState{State: StateSynSent, SentAt: time.Now()})

	ok := table.Mutate(key, func(cs *ConnectionState) {
		cs.State = StateSynAckReceived
		cs.RTT = 50 * time.Millisecond
	})
	if !ok {
		t.Fatal("expected mutate to find the entry")
	}

	got, _ := table.Get(key)
	if got.State != StateSynAckReceived || got.RTT != 50*time.Millisecond {
		t.Fatalf("mutate did not apply: %+v", got)
	}
}

func TestMutateMissingKeyReturnsFalse(t *testing.T) {
	table := New()
	if table.Mutate(testKey(), func(cs *ConnectionState) {}) {
		t.Fatal("expected false for missing key")
	}
}

func TestSweepTimedOut(t *testing.T) {
	table := New()
	key := testKey()
	table.Insert(key, &ConnectionState{State: StateSynSent, SentAt: time.Now().Add(-time.Second)})

	expired := table.SweepTimedOut(100 * time.Millisecond)
	if len(expired) != 1 || expired[0] != key {
		t.Fatalf("expected key to be swept, got %+v", expired)
	}

	got, _ := table.Get(key)
	if got.State != StateTimedOut {
		t.Fatalf("expected state to be marked timed out, got %s", got.State)
	}
}

func TestSweepIgnoresFreshEntries(t *testing.T) {
	table := New()
	key := testKey()
	table.Insert(key, &ConnectionState{State: StateSynSent, SentAt: time.Now()})

	expired := table.SweepTimedOut(time.Second)
	if len(expired) != 0 {
		t.Fatalf("expected no entries swept, got %+v", expired)
	}
}
