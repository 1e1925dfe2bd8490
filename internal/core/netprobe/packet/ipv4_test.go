package packet

import (
	"net/netip"
	"testing"
)

func TestIPv4BuilderSynPacket(t *testing.T) {
	src := netip.MustParseAddr("192.0.2.1")
	dst := netip.MustParseAddr("192.0.2.2")

	tcpSeg, err := NewTCPPacketBuilder().
		WithAddrs(src, dst).
		WithPorts(40000, 80).
		WithFlags(FlagSYN).
		WithOptions(OptMSS(1460)).
		Build()
	if err != nil {
		t.Fatalf("unexpected tcp build error: %v", err)
	}

	ipPkt, err := NewIPv4PacketBuilder().
		WithAddrs(src, dst).
		WithProtocol(ProtocolTCP).
		WithTTL(64).
		WithID(1234).
		WithPayload(tcpSeg).
		Build()
	if err != nil {
		t.Fatalf("unexpected ip build error: %v", err)
	}

	if ipPkt[0]>>4 != 4 {
		t.Fatalf("expected IPv4 version nibble")
	}
	if int(ipPkt[0]&0x0F) != 5 {
		t.Fatalf("expected IHL of 5 (no options)")
	}
	if len(ipPkt) != 20+len(tcpSeg) {
		t.Fatalf("expected total length %d, got %d", 20+len(tcpSeg), len(ipPkt))
	}
	if ipPkt[9] != ProtocolTCP {
		t.Fatalf("expected protocol field to be TCP")
	}
}

func TestIPv4FragmentationEightByteAlignment(t *testing.T) {
	src := netip.MustParseAddr("192.0.2.1")
	dst := netip.MustParseAddr("192.0.2.2")
	payload := make([]byte, 100)
	for i := range payload {
		payload[i] = byte(i)
	}

	frags, err := NewIPv4PacketBuilder().
		WithAddrs(src, dst).
		WithProtocol(ProtocolUDP).
		WithID(42).
		WithPayload(payload).
		Fragment(24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frags) < 2 {
		t.Fatalf("expected payload to split into multiple fragments")
	}

	for i, f := range frags[:len(frags)-1] {
		fragPayloadLen := len(f) - 20
		if fragPayloadLen%8 != 0 {
			t.Fatalf("fragment %d payload length %d not a multiple of 8", i, fragPayloadLen)
		}
		id := uint16(f[4])<<8 | uint16(f[5])
		if id != 42 {
			t.Fatalf("fragment %d identification mismatch: %d", i, id)
		}
		moreFragments := f[6]&0x20 != 0
		if !moreFragments {
			t.Fatalf("fragment %d expected to carry the more-fragments flag", i)
		}
	}

	last := frags[len(frags)-1]
	if last[6]&0x20 != 0 {
		t.Fatalf("last fragment must not carry the more-fragments flag")
	}
}

func TestIPv4BuilderRejectsIPv6Address(t *testing.T) {
	src := netip.MustParseAddr("2001:db8::1")
	dst := netip.MustParseAddr("192.0.2.2")

	_, err := NewIPv4PacketBuilder().WithAddrs(src, dst).WithProtocol(ProtocolTCP).Build()
	if err == nil {
		t.Fatal("expected error for IPv6 address passed to IPv4 builder")
	}
}
