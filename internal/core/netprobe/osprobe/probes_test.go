package osprobe

import (
	"net/netip"
	"testing"

	"netprobe/internal/core/netprobe/packet"
)

func TestBuildTCPProbeProducesIPv4Packet(t *testing.T) {
	src := netip.MustParseAddr("192.0.2.1")
	dst := netip.MustParseAddr("192.0.2.2")

	pkt, err := buildTCPProbe(src, dst, 40000, 80, 1000, packet.FlagSYN, 1024, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkt[0]>>4 != 4 {
		t.Fatalf("expected IPv4 packet")
	}
	if pkt[9] != packet.ProtocolTCP {
		t.Fatalf("expected TCP protocol field")
	}
}

func TestBuildICMPProbeProducesIPv4Packet(t *testing.T) {
	src := netip.MustParseAddr("192.0.2.1")
	dst := netip.MustParseAddr("192.0.2.2")

	pkt, err := buildICMPProbe(src, dst, 0x09, 1234, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkt[9] != packet.ProtocolICMP {
		t.Fatalf("expected ICMP protocol field")
	}
}

func TestBuildUDPProbeProducesIPv4Packet(t *testing.T) {
	src := netip.MustParseAddr("192.0.2.1")
	dst := netip.MustParseAddr("192.0.2.2")

	pkt, err := buildUDPProbe(src, dst, 40000, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkt[9] != packet.ProtocolUDP {
		t.Fatalf("expected UDP protocol field")
	}
}

func TestSeqWindowDoublesPerIndex(t *testing.T) {
	for i := 0; i < 6; i++ {
		want := uint16(1024 << uint(i))
		if got := seqWindow(i); got != want {
			t.Fatalf("seqWindow(%d) = %d, want %d", i, got, want)
		}
	}
}
