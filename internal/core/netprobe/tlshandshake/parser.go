package tlshandshake

import (
	"encoding/binary"
	"fmt"
)

const (
	recordTypeHandshake  = 0x16
	handshakeTypeServerHello = 0x02
	// minServerHelloLen is 5 (record header) + 4 (handshake header) +
	// 34 (legacy version + random) bytes: the smallest input that can
	// possibly carry a ServerHello body.
	minServerHelloLen = 5 + 4 + 34
)

// ParseServerHello parses a single TLS record containing a ServerHello
// handshake message. It returns a ParseError — never a partial
// ServerHello — on any short, mistyped, or truncated input.
func ParseServerHello(data []byte) (*ServerHello, error) {
	if len(data) < minServerHelloLen {
		return nil, errShort("record")
	}

	if data[0] != recordTypeHandshake {
		return nil, &ParseError{Reason: "not a handshake record"}
	}
	recordLen := int(binary.BigEndian.Uint16(data[3:5]))
	body := data[5:]
	if recordLen > len(body) {
		return nil, errShort("record body")
	}
	body = body[:recordLen]

	if len(body) < 4 {
		return nil, errShort("handshake header")
	}
	if body[0] != handshakeTypeServerHello {
		return nil, &ParseError{Reason: "not a ServerHello"}
	}
	hsLen := int(body[1])<<16 | int(body[2])<<8 | int(body[3])
	msg := body[4:]
	if hsLen > len(msg) {
		return nil, errShort("handshake body")
	}
	msg = msg[:hsLen]

	r := &reader{buf: msg}

	legacy, err := r.u16()
	if err != nil {
		return nil, errShort("legacy_version")
	}

	var random [32]byte
	rnd, err := r.take(32)
	if err != nil {
		return nil, errShort("random")
	}
	copy(random[:], rnd)

	sessionIDLen, err := r.u8()
	if err != nil {
		return nil, errShort("session_id length")
	}
	sessionID, err := r.take(int(sessionIDLen))
	if err != nil {
		return nil, errShort("session_id")
	}

	cipherCode, err := r.u16()
	if err != nil {
		return nil, errShort("cipher_suite")
	}

	compression, err := r.u8()
	if err != nil {
		return nil, errShort("compression_method")
	}

	sh := &ServerHello{
		LegacyVersion:     Version(legacy),
		SessionID:         append([]byte(nil), sessionID...),
		CipherSuiteCode:   cipherCode,
		CompressionMethod: compression,
	}
	copy(sh.Random[:], random[:])

	// Extensions are optional: a ServerHello with no extensions block is
	// complete once compression_method is read.
	if r.remaining() == 0 {
		return sh, nil
	}

	extBlockLen, err := r.u16()
	if err != nil {
		return nil, errShort("extensions length")
	}
	extBlock, err := r.take(int(extBlockLen))
	if err != nil {
		return nil, errShort("extensions block")
	}

	exts, err := parseExtensions(extBlock)
	if err != nil {
		return nil, err
	}
	sh.Extensions = exts

	return sh, nil
}

func parseExtensions(buf []byte) ([]Extension, error) {
	r := &reader{buf: buf}
	var out []Extension
	for r.remaining() > 0 {
		typ, err := r.u16()
		if err != nil {
			return nil, errShort("extension type")
		}
		length, err := r.u16()
		if err != nil {
			return nil, errShort("extension length")
		}
		data, err := r.take(int(length))
		if err != nil {
			return nil, errShort("extension data")
		}
		raw := append([]byte(nil), data...)
		ext := Extension{Type: ExtensionType(typ), Raw: raw}
		ext.Parsed = parseExtensionBody(ext.Type, raw)
		out = append(out, ext)
	}
	return out, nil
}

// parseExtensionBody best-effort decodes the recognized extension types.
// Malformed bodies are left unparsed (Parsed stays nil) rather than
// failing the whole ServerHello — extension parsing is informational,
// the handshake itself already succeeded.
func parseExtensionBody(typ ExtensionType, data []byte) interface{} {
	switch typ {
	case ExtServerName:
		return parseServerNameList(data)
	case ExtSupportedGroups:
		return parseSupportedGroups(data)
	case ExtSignatureAlgorithms:
		return parseSignatureAlgorithms(data)
	case ExtALPN:
		return parseALPN(data)
	case ExtSupportedVersions:
		return parseSupportedVersions(data)
	case ExtKeyShare:
		return "key_share present"
	default:
		return nil
	}
}

func parseServerNameList(data []byte) []string {
	r := &reader{buf: data}
	listLen, err := r.u16()
	if err != nil {
		return nil
	}
	list, err := r.take(int(listLen))
	if err != nil {
		return nil
	}
	lr := &reader{buf: list}
	var names []string
	for lr.remaining() > 0 {
		nameType, err := lr.u8()
		if err != nil {
			break
		}
		nameLen, err := lr.u16()
		if err != nil {
			break
		}
		name, err := lr.take(int(nameLen))
		if err != nil {
			break
		}
		if nameType == 0 { // host_name
			names = append(names, string(name))
		}
	}
	return names
}

var supportedGroupNames = map[uint16]string{
	0x0017: "secp256r1",
	0x0018: "secp384r1",
	0x0019: "secp521r1",
	0x001D: "x25519",
	0x001E: "x448",
	0x0100: "ffdhe2048",
	0x0101: "ffdhe3072",
}

func parseSupportedGroups(data []byte) []string {
	// In a ServerHello this extension (when present) carries a single
	// selected group, not a list with its own length prefix.
	if len(data) < 2 {
		return nil
	}
	code := binary.BigEndian.Uint16(data[:2])
	if name, ok := supportedGroupNames[code]; ok {
		return []string{name}
	}
	return []string{unknownCode(code)}
}

var signatureAlgorithmNames = map[uint16]string{
	0x0401: "rsa_pkcs1_sha256",
	0x0501: "rsa_pkcs1_sha384",
	0x0601: "rsa_pkcs1_sha512",
	0x0403: "ecdsa_secp256r1_sha256",
	0x0503: "ecdsa_secp384r1_sha384",
	0x0804: "rsa_pss_rsae_sha256",
	0x0805: "rsa_pss_rsae_sha384",
	0x0807: "ed25519",
}

func parseSignatureAlgorithms(data []byte) []string {
	r := &reader{buf: data}
	listLen, err := r.u16()
	if err != nil {
		return nil
	}
	list, err := r.take(int(listLen))
	if err != nil {
		return nil
	}
	var names []string
	for i := 0; i+2 <= len(list); i += 2 {
		code := binary.BigEndian.Uint16(list[i : i+2])
		if name, ok := signatureAlgorithmNames[code]; ok {
			names = append(names, name)
		} else {
			names = append(names, unknownCode(code))
		}
	}
	return names
}

func parseALPN(data []byte) []string {
	r := &reader{buf: data}
	listLen, err := r.u16()
	if err != nil {
		return nil
	}
	list, err := r.take(int(listLen))
	if err != nil {
		return nil
	}
	lr := &reader{buf: list}
	var protos []string
	for lr.remaining() > 0 {
		n, err := lr.u8()
		if err != nil {
			break
		}
		proto, err := lr.take(int(n))
		if err != nil {
			break
		}
		protos = append(protos, string(proto))
	}
	return protos
}

func parseSupportedVersions(data []byte) []Version {
	// A ServerHello's supported_versions extension is just the two-byte
	// negotiated version, unlike the ClientHello's length-prefixed list.
	if len(data) < 2 {
		return nil
	}
	return []Version{Version(binary.BigEndian.Uint16(data[:2]))}
}

func unknownCode(code uint16) string {
	return fmt.Sprintf("0x%04x", code)
}

// reader is a small bounds-checked cursor over a byte slice, used instead
// of manual index juggling throughout this file.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) u8() (uint8, error) {
	if r.remaining() < 1 {
		return 0, errShort("u8")
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, errShort("u16")
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, errShort("bytes")
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}
