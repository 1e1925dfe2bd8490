package packet

import (
	"encoding/binary"
	"net/netip"
	"testing"

	"netprobe/internal/core/netprobe/bufpool"
)

func TestTCPBuilderSynWithOptions(t *testing.T) {
	src := netip.MustParseAddr("192.0.2.1")
	dst := netip.MustParseAddr("192.0.2.2")

	seg, err := NewTCPPacketBuilder().
		WithAddrs(src, dst).
		WithPorts(40000, 80).
		WithSeqAck(1000, 0).
		WithFlags(FlagSYN).
		WithOptions(OptMSS(1460), OptSackPermitted(), OptWScale(7)).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if binary.BigEndian.Uint16(seg[0:2]) != 40000 {
		t.Fatalf("unexpected source port")
	}
	if binary.BigEndian.Uint16(seg[2:4]) != 80 {
		t.Fatalf("unexpected destination port")
	}
	dataOffset := int(seg[12]>>4) * 4
	if dataOffset != len(seg) {
		t.Fatalf("data offset %d does not cover full segment length %d", dataOffset, len(seg))
	}
	flags := TcpFlags(seg[13]) | TcpFlags(seg[12]&0x0F)<<8
	if !flags.Has(FlagSYN) {
		t.Fatalf("expected SYN flag set, got %s", flags)
	}
	if binary.BigEndian.Uint16(seg[16:18]) == 0 {
		t.Fatalf("expected non-zero checksum for well-formed segment")
	}
}

func TestTCPBuilderBadChecksumEvasion(t *testing.T) {
	src := netip.MustParseAddr("192.0.2.1")
	dst := netip.MustParseAddr("192.0.2.2")

	seg, err := NewTCPPacketBuilder().
		WithAddrs(src, dst).
		WithPorts(40000, 80).
		WithFlags(FlagSYN).
		WithBadChecksum(true).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if binary.BigEndian.Uint16(seg[16:18]) != 0 {
		t.Fatalf("expected zeroed checksum for bad-checksum evasion variant")
	}
}

func TestTCPBuilderMissingFields(t *testing.T) {
	_, err := NewTCPPacketBuilder().Build()
	if err == nil {
		t.Fatal("expected MissingFieldError for unset addresses")
	}
	if _, ok := err.(*MissingFieldError); !ok {
		t.Fatalf("expected *MissingFieldError, got %T", err)
	}
}

func TestTCPBuilderAddressFamilyMismatch(t *testing.T) {
	src := netip.MustParseAddr("192.0.2.1")
	dst := netip.MustParseAddr("2001:db8::1")

	_, err := NewTCPPacketBuilder().
		WithAddrs(src, dst).
		WithPorts(1, 2).
		Build()
	if _, ok := err.(*InvalidParameterError); !ok {
		t.Fatalf("expected *InvalidParameterError for mixed address families, got %T (%v)", err, err)
	}
}

func TestTCPBuilderWithBufferUsesPool(t *testing.T) {
	src := netip.MustParseAddr("192.0.2.1")
	dst := netip.MustParseAddr("192.0.2.2")
	pool := bufpool.New(256)

	seg, err := NewTCPPacketBuilder().
		WithAddrs(src, dst).
		WithPorts(1, 2).
		WithFlags(FlagACK).
		BuildWithBuffer(pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seg) != 20 {
		t.Fatalf("expected 20-byte segment with no options, got %d", len(seg))
	}
	if pool.Remaining() != 256-20 {
		t.Fatalf("expected pool offset to advance by segment length")
	}
}
