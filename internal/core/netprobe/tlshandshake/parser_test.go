package tlshandshake

import (
	"encoding/binary"
	"testing"
)

// buildServerHelloRecord assembles a minimal TLS record carrying a
// ServerHello with no extensions, mirroring spec scenario 7.
func buildServerHelloRecord(version uint16, cipher uint16, extra []byte) []byte {
	body := make([]byte, 0, 64)
	body = appendU16(body, version)
	body = append(body, make([]byte, 32)...) // random
	body = append(body, 0x00)                // session_id_len = 0
	body = appendU16(body, cipher)
	body = append(body, 0x00) // compression
	body = append(body, extra...)

	hs := make([]byte, 0, len(body)+4)
	hs = append(hs, handshakeTypeServerHello)
	hs = append(hs, byte(len(body)>>16), byte(len(body)>>8), byte(len(body)))
	hs = append(hs, body...)

	record := make([]byte, 0, len(hs)+5)
	record = append(record, recordTypeHandshake, 0x03, 0x03)
	record = appendU16(record, uint16(len(hs)))
	record = append(record, hs...)
	return record
}

func appendU16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}

func TestParseServerHelloMinimal(t *testing.T) {
	record := buildServerHelloRecord(0x0303, 0x1301, nil)

	sh, err := ParseServerHello(record)
	if err != nil {
		t.Fatalf("ParseServerHello: %v", err)
	}
	if sh.LegacyVersion != VersionTLS12 {
		t.Errorf("legacy version = %v, want TLS1.2", sh.LegacyVersion)
	}
	if len(sh.Extensions) != 0 {
		t.Errorf("extensions = %d, want 0", len(sh.Extensions))
	}
	cs := sh.CipherSuite()
	if cs.Name != "TLS_AES_128_GCM_SHA256" {
		t.Errorf("cipher name = %q, want TLS_AES_128_GCM_SHA256", cs.Name)
	}
}

func TestParseServerHelloTooShort(t *testing.T) {
	short := make([]byte, 42)
	if _, err := ParseServerHello(short); err == nil {
		t.Fatal("expected ParseError for input shorter than 43 bytes")
	}
}

func TestParseServerHelloSupportedVersionsExtension(t *testing.T) {
	ext := make([]byte, 0)
	ext = appendU16(ext, uint16(ExtSupportedVersions))
	ext = appendU16(ext, 2)
	ext = appendU16(ext, uint16(VersionTLS13))

	extBlock := appendU16(nil, uint16(len(ext)))
	extBlock = append(extBlock, ext...)

	record := buildServerHelloRecord(0x0303, 0x1301, extBlock)

	sh, err := ParseServerHello(record)
	if err != nil {
		t.Fatalf("ParseServerHello: %v", err)
	}
	if got := sh.NegotiatedVersion(); got != VersionTLS13 {
		t.Errorf("NegotiatedVersion() = %v, want TLS1.3", got)
	}
	if !sh.IsSecure() {
		t.Error("expected IsSecure() true for TLS1.3 + AES_128_GCM")
	}
}

func TestLookupCipherSuiteUnknown(t *testing.T) {
	cs := LookupCipherSuite(0xFFFF)
	if cs.Strength != StrengthAcceptable {
		t.Errorf("strength = %v, want Acceptable", cs.Strength)
	}
	if len(cs.Name) < len("UNKNOWN_CIPHER") || cs.Name[:len("UNKNOWN_CIPHER")] != "UNKNOWN_CIPHER" {
		t.Errorf("name = %q, want prefix UNKNOWN_CIPHER", cs.Name)
	}
}

func TestCipherSuiteForwardSecrecy(t *testing.T) {
	ecdhe := LookupCipherSuite(0xC02F)
	if !ecdhe.HasForwardSecrecy() {
		t.Error("ECDHE suite should have forward secrecy")
	}
	plainRSA := LookupCipherSuite(0x002F)
	if plainRSA.HasForwardSecrecy() {
		t.Error("plain RSA suite should not have forward secrecy")
	}
	tls13 := LookupCipherSuite(0x1301)
	if !tls13.HasForwardSecrecy() {
		t.Error("TLS 1.3 suite should have forward secrecy")
	}
}
