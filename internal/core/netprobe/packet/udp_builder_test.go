package packet

import (
	"encoding/binary"
	"net/netip"
	"testing"
)

func TestUDPBuilderIPv6(t *testing.T) {
	src := netip.MustParseAddr("2001:db8::1")
	dst := netip.MustParseAddr("2001:db8::2")

	datagram, err := NewUDPPacketBuilder().
		WithAddrs(src, dst).
		WithPorts(33434, 53).
		WithPayload([]byte("probe")).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if binary.BigEndian.Uint16(datagram[0:2]) != 33434 {
		t.Fatalf("unexpected source port")
	}
	if binary.BigEndian.Uint16(datagram[2:4]) != 53 {
		t.Fatalf("unexpected destination port")
	}
	if int(binary.BigEndian.Uint16(datagram[4:6])) != len(datagram) {
		t.Fatalf("length field does not match datagram size")
	}
	if binary.BigEndian.Uint16(datagram[6:8]) == 0 {
		t.Fatalf("checksum must never be transmitted as literal zero over IPv6")
	}
}

func TestUDPBuilderZeroChecksumBecomesAllOnes(t *testing.T) {
	// Construct a builder whose payload is crafted so the computed checksum
	// is exactly zero, and confirm it is transmitted as 0xFFFF per RFC 768.
	src := netip.MustParseAddr("192.0.2.1")
	dst := netip.MustParseAddr("192.0.2.1")
	b := NewUDPPacketBuilder().WithAddrs(src, dst).WithPorts(0xFFFF, 0xFFFF).WithPayload([]byte{0x7B, 0xD7})

	datagram, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checksum := binary.BigEndian.Uint16(datagram[6:8])
	if checksum != 0xFFFF {
		t.Fatalf("expected computed zero checksum to be transmitted as 0xFFFF, got %#04x", checksum)
	}
}

func TestUDPBuilderBadChecksumEvasion(t *testing.T) {
	src := netip.MustParseAddr("192.0.2.1")
	dst := netip.MustParseAddr("192.0.2.2")

	datagram, err := NewUDPPacketBuilder().
		WithAddrs(src, dst).
		WithPorts(40000, 53).
		WithPayload([]byte("probe")).
		WithBadChecksum(true).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if binary.BigEndian.Uint16(datagram[6:8]) != 0 {
		t.Fatalf("expected zeroed checksum for bad-checksum evasion variant")
	}
}
