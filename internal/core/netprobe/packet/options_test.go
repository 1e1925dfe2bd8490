package packet

import "testing"

func TestSerializeOptionsPadsToFourByteBoundary(t *testing.T) {
	opts := []TCPOption{OptMSS(1460), OptSackPermitted(), OptWScale(7)}
	raw, dataOffset := SerializeOptions(opts)

	if len(raw)%4 != 0 {
		t.Fatalf("expected options padded to 4-byte boundary, got length %d", len(raw))
	}
	if dataOffset*4 != 20+len(raw) {
		t.Fatalf("data offset %d inconsistent with options length %d", dataOffset, len(raw))
	}
}

func TestParseOptionsRoundTrip(t *testing.T) {
	opts := []TCPOption{
		OptMSS(1460),
		OptSackPermitted(),
		OptTimestamp(111, 222),
		OptWScale(7),
	}
	raw, _ := SerializeOptions(opts)
	parsed := ParseOptions(raw)

	if len(parsed) != len(opts) {
		t.Fatalf("expected %d options, got %d: %+v", len(opts), len(parsed), parsed)
	}
	for i, o := range opts {
		if parsed[i] != o {
			t.Fatalf("option %d mismatch: want %+v got %+v", i, o, parsed[i])
		}
	}

	reRaw, _ := SerializeOptions(parsed)
	minLen := len(raw)
	if len(reRaw) < minLen {
		minLen = len(reRaw)
	}
	for i := 0; i < minLen; i++ {
		if raw[i] != reRaw[i] {
			t.Fatalf("re-serialized bytes differ at %d: %x vs %x", i, raw, reRaw)
		}
	}
}

func TestParseOptionsStopsAtEOL(t *testing.T) {
	raw := []byte{OptKindMSS, 4, 0x05, 0xB4, OptKindEOL, OptKindNOP, OptKindNOP}
	parsed := ParseOptions(raw)
	if len(parsed) != 1 || parsed[0].Kind != OptKindMSS {
		t.Fatalf("expected parsing to stop at EOL, got %+v", parsed)
	}
}
