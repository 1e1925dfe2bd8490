package packet

import "testing"

func TestChecksumZeroForValidPacket(t *testing.T) {
	// A buffer whose checksum field already holds the correct complement
	// sums to all-ones when checksummed again including that field.
	data := []byte{0x45, 0x00, 0x00, 0x14}
	sum := Checksum(data)
	withChecksum := make([]byte, len(data)+2)
	copy(withChecksum, data)
	withChecksum[len(data)], withChecksum[len(data)+1] = byte(sum>>8), byte(sum)

	if Checksum(withChecksum) != 0 {
		t.Fatalf("expected zero checksum when verification field included, got %x", Checksum(withChecksum))
	}
}

func TestChecksumOddLengthPadding(t *testing.T) {
	a := Checksum([]byte{0x01})
	b := Checksum([]byte{0x01, 0x00})
	if a != b {
		t.Fatalf("odd-length checksum should pad with a trailing zero byte: %x vs %x", a, b)
	}
}
