// Package tlshandshake parses a captured TLS record carrying a ServerHello
// and classifies the negotiated version and cipher suite. It is a
// stateless, byte-level parser in the same manual encoding/binary offset
// style as the packet builders in internal/core/netprobe/packet: the
// surrounding service-detection scaffold is expected to track
// handshake-in-progress/completed state against the open TCP connection,
// not this package.
package tlshandshake

import (
	"fmt"
	"strings"
)

// Version identifies a negotiated or legacy TLS protocol version.
type Version uint16

const (
	VersionTLS10    Version = 0x0301
	VersionTLS11    Version = 0x0302
	VersionTLS12    Version = 0x0303
	VersionTLS13    Version = 0x0304
	VersionUnknown0 Version = 0x0000 // sentinel, never produced by ParseServerHello
)

// IsDeprecated reports whether the version is TLS 1.0 or 1.1.
func (v Version) IsDeprecated() bool {
	return v == VersionTLS10 || v == VersionTLS11
}

// IsSecure reports whether the version is TLS 1.2 or 1.3.
func (v Version) IsSecure() bool {
	return v == VersionTLS12 || v == VersionTLS13
}

func (v Version) String() string {
	switch v {
	case VersionTLS10:
		return "TLS1.0"
	case VersionTLS11:
		return "TLS1.1"
	case VersionTLS12:
		return "TLS1.2"
	case VersionTLS13:
		return "TLS1.3"
	default:
		return fmt.Sprintf("Unknown(0x%04x)", uint16(v))
	}
}

// Strength classifies how acceptable a negotiated cipher suite is for
// production use.
type Strength string

const (
	StrengthWeak        Strength = "Weak"
	StrengthInsecure    Strength = "Insecure"
	StrengthAcceptable  Strength = "Acceptable"
	StrengthStrong      Strength = "Strong"
	StrengthRecommended Strength = "Recommended"
)

// CipherSuite is a single IANA-registered TLS cipher suite, enriched with
// the component algorithms and a coarse security strength.
type CipherSuite struct {
	Code          uint16
	Name          string
	KeyExchange   string
	Authentication string
	Encryption    string
	MAC           string
	Strength      Strength
}

// HasForwardSecrecy reports whether the key exchange provides forward
// secrecy: (EC)DHE key exchange, or any TLS 1.3 suite (which is always
// ephemeral-keyed by construction).
func (c CipherSuite) HasForwardSecrecy() bool {
	return strings.Contains(c.KeyExchange, "ECDHE") || strings.Contains(c.KeyExchange, "DHE") || c.IsTLS13()
}

// IsTLS13 reports whether this is one of the five TLS 1.3 AEAD suites.
func (c CipherSuite) IsTLS13() bool {
	return c.Strength == StrengthRecommended
}

// ExtensionType enumerates the ServerHello extension types this parser
// understands by structure; any other type is preserved as raw bytes.
type ExtensionType uint16

const (
	ExtServerName         ExtensionType = 0
	ExtSupportedGroups    ExtensionType = 10
	ExtSignatureAlgorithms ExtensionType = 13
	ExtALPN               ExtensionType = 16
	ExtSupportedVersions  ExtensionType = 43
	ExtKeyShare           ExtensionType = 51
)

// Extension is a single ServerHello extension. Parsed is populated for
// recognized types (see ExtensionType); Raw always holds the original
// extension_data bytes.
type Extension struct {
	Type   ExtensionType
	Raw    []byte
	Parsed interface{}
}

// ServerHello is the fully parsed body of a TLS ServerHello handshake
// message, as captured inside its enclosing TLS record.
type ServerHello struct {
	LegacyVersion     Version
	Random            [32]byte
	SessionID         []byte
	CipherSuiteCode   uint16
	CompressionMethod uint8
	Extensions        []Extension
}

// NegotiatedVersion prefers the supported_versions extension (type 43) over
// the legacy version field, since TLS 1.3 servers always set the legacy
// field to 0x0303 and signal the real version only via the extension.
func (sh *ServerHello) NegotiatedVersion() Version {
	for _, ext := range sh.Extensions {
		if ext.Type == ExtSupportedVersions {
			if versions, ok := ext.Parsed.([]Version); ok && len(versions) > 0 {
				return versions[0]
			}
		}
	}
	return sh.LegacyVersion
}

// CipherSuite resolves the negotiated cipher suite code against the static
// classification table.
func (sh *ServerHello) CipherSuite() CipherSuite {
	return LookupCipherSuite(sh.CipherSuiteCode)
}

// IsSecure reports whether this handshake negotiated both a secure protocol
// version and a strong-or-better cipher suite.
func (sh *ServerHello) IsSecure() bool {
	cs := sh.CipherSuite()
	return sh.NegotiatedVersion().IsSecure() && (cs.Strength == StrengthStrong || cs.Strength == StrengthRecommended)
}
