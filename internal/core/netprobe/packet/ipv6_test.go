package packet

import (
	"encoding/binary"
	"net/netip"
	"testing"
)

func TestIPv6BuilderUdpPacket(t *testing.T) {
	src := netip.MustParseAddr("2001:db8::1")
	dst := netip.MustParseAddr("2001:db8::2")

	udpDatagram, err := NewUDPPacketBuilder().
		WithAddrs(src, dst).
		WithPorts(33434, 33434).
		WithPayload([]byte("x")).
		Build()
	if err != nil {
		t.Fatalf("unexpected udp build error: %v", err)
	}

	ipPkt, err := NewIPv6PacketBuilder().
		WithAddrs(src, dst).
		WithNextHeader(ProtocolUDP).
		WithHopLimit(64).
		WithPayload(udpDatagram).
		Build()
	if err != nil {
		t.Fatalf("unexpected ip build error: %v", err)
	}

	if ipPkt[0]>>4 != 6 {
		t.Fatalf("expected IPv6 version nibble")
	}
	if int(binary.BigEndian.Uint16(ipPkt[4:6])) != len(udpDatagram) {
		t.Fatalf("payload length field mismatch")
	}
	if ipPkt[6] != ProtocolUDP {
		t.Fatalf("expected next header to be UDP")
	}
	if len(ipPkt) != 40+len(udpDatagram) {
		t.Fatalf("expected total length %d, got %d", 40+len(udpDatagram), len(ipPkt))
	}
}

func TestIPv6BuilderRejectsIPv4MappedAddress(t *testing.T) {
	src := netip.MustParseAddr("::ffff:192.0.2.1")
	dst := netip.MustParseAddr("2001:db8::2")

	_, err := NewIPv6PacketBuilder().WithAddrs(src, dst).WithNextHeader(ProtocolUDP).Build()
	if err == nil {
		t.Fatal("expected error for IPv4-mapped address passed to IPv6 builder")
	}
}
