package synscan

import (
	"encoding/binary"
	"net/netip"
	"testing"
	"time"

	"netprobe/internal/core/netprobe/conntrack"
)

func buildIPv4TCPFrame(src, dst netip.Addr, srcPort, dstPort uint16, ack uint32, flags byte) []byte {
	frame := make([]byte, 40)
	frame[0] = 0x45
	binary.BigEndian.PutUint16(frame[2:4], 40)
	frame[9] = 6 // TCP
	srcBytes := src.As4()
	dstBytes := dst.As4()
	copy(frame[12:16], srcBytes[:])
	copy(frame[16:20], dstBytes[:])

	tcp := frame[20:]
	binary.BigEndian.PutUint16(tcp[0:2], srcPort)
	binary.BigEndian.PutUint16(tcp[2:4], dstPort)
	binary.BigEndian.PutUint32(tcp[8:12], ack)
	tcp[12] = 5 << 4 // data offset 20 bytes, no options
	tcp[13] = flags
	return frame
}

func newTestScanner() *Scanner {
	return &Scanner{table: conntrack.New()}
}

func TestHandleFrameMatchesSynAck(t *testing.T) {
	s := newTestScanner()
	target := netip.MustParseAddr("192.0.2.10")
	us := netip.MustParseAddr("192.0.2.1")

	key := conntrack.ConnKey{TargetIP: target, TargetPort: 80, SourcePort: 40000}
	s.table.Insert(key, &conntrack.ConnectionState{State: conntrack.StateSynSent, SeqSent: 1000, SentAt: time.Now()})

	frame := buildIPv4TCPFrame(target, us, 80, 40000, 1001, 0x12) // SYN|ACK
	s.handleFrame(target, frame)

	cs, ok := s.table.Get(key)
	if !ok || cs.State != conntrack.StateSynAckReceived {
		t.Fatalf("expected SYN/ACK to be recorded, got %+v ok=%v", cs, ok)
	}
}

func TestHandleFrameMatchesRst(t *testing.T) {
	s := newTestScanner()
	target := netip.MustParseAddr("192.0.2.10")
	us := netip.MustParseAddr("192.0.2.1")

	key := conntrack.ConnKey{TargetIP: target, TargetPort: 81, SourcePort: 40001}
	s.table.Insert(key, &conntrack.ConnectionState{State: conntrack.StateSynSent, SeqSent: 2000, SentAt: time.Now()})

	frame := buildIPv4TCPFrame(target, us, 81, 40001, 2001, 0x04) // RST
	s.handleFrame(target, frame)

	cs, ok := s.table.Get(key)
	if !ok || cs.State != conntrack.StateRstReceived {
		t.Fatalf("expected RST to be recorded, got %+v ok=%v", cs, ok)
	}
}

func TestHandleFrameIgnoresWrongAck(t *testing.T) {
	s := newTestScanner()
	target := netip.MustParseAddr("192.0.2.10")
	us := netip.MustParseAddr("192.0.2.1")

	key := conntrack.ConnKey{TargetIP: target, TargetPort: 82, SourcePort: 40002}
	s.table.Insert(key, &conntrack.ConnectionState{State: conntrack.StateSynSent, SeqSent: 3000, SentAt: time.Now()})

	// Ack number does not match sent_sequence + 1: cross-talk from another probe.
	frame := buildIPv4TCPFrame(target, us, 82, 40002, 9999, 0x12)
	s.handleFrame(target, frame)

	cs, _ := s.table.Get(key)
	if cs.State != conntrack.StateSynSent {
		t.Fatalf("expected state unchanged on ack mismatch, got %s", cs.State)
	}
}

func TestHandleFrameIgnoresWrongPort(t *testing.T) {
	s := newTestScanner()
	target := netip.MustParseAddr("192.0.2.10")
	us := netip.MustParseAddr("192.0.2.1")

	key := conntrack.ConnKey{TargetIP: target, TargetPort: 83, SourcePort: 40003}
	s.table.Insert(key, &conntrack.ConnectionState{State: conntrack.StateSynSent, SeqSent: 4000, SentAt: time.Now()})

	// Source port doesn't match the scanned port: no matching entry exists for this key.
	frame := buildIPv4TCPFrame(target, us, 9999, 40003, 4001, 0x12)
	s.handleFrame(target, frame)

	cs, _ := s.table.Get(key)
	if cs.State != conntrack.StateSynSent {
		t.Fatalf("expected state unchanged on port mismatch, got %s", cs.State)
	}
}
