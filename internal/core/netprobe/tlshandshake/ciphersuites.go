package tlshandshake

import "fmt"

// cipherSuiteTable is a static classification over the IANA TLS Cipher
// Suites registry: TLS 1.3 AEAD suites are always Recommended, ECDHE+AEAD
// TLS 1.2 suites are Strong, AES-CBC with SHA256+ is Acceptable, and
// RC4/SEED/3DES/NULL suites are Weak or Insecure. This mirrors the coverage
// crypto/tls and forks like icodeface/tls ship internally, but is written
// out directly here (see DESIGN.md: no verified third-party symbol table
// for this was available to import offline).
var cipherSuiteTable = map[uint16]CipherSuite{
	// TLS 1.3
	0x1301: {0x1301, "TLS_AES_128_GCM_SHA256", "", "", "AES-128-GCM", "AEAD", StrengthRecommended},
	0x1302: {0x1302, "TLS_AES_256_GCM_SHA384", "", "", "AES-256-GCM", "AEAD", StrengthRecommended},
	0x1303: {0x1303, "TLS_CHACHA20_POLY1305_SHA256", "", "", "CHACHA20-POLY1305", "AEAD", StrengthRecommended},
	0x1304: {0x1304, "TLS_AES_128_CCM_SHA256", "", "", "AES-128-CCM", "AEAD", StrengthRecommended},
	0x1305: {0x1305, "TLS_AES_128_CCM_8_SHA256", "", "", "AES-128-CCM-8", "AEAD", StrengthRecommended},

	// ECDHE + AEAD (TLS 1.2) -> Strong
	0xC02B: {0xC02B, "TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256", "ECDHE", "ECDSA", "AES-128-GCM", "AEAD", StrengthStrong},
	0xC02C: {0xC02C, "TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384", "ECDHE", "ECDSA", "AES-256-GCM", "AEAD", StrengthStrong},
	0xC02F: {0xC02F, "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256", "ECDHE", "RSA", "AES-128-GCM", "AEAD", StrengthStrong},
	0xC030: {0xC030, "TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384", "ECDHE", "RSA", "AES-256-GCM", "AEAD", StrengthStrong},
	0xCCA8: {0xCCA8, "TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256", "ECDHE", "RSA", "CHACHA20-POLY1305", "AEAD", StrengthStrong},
	0xCCA9: {0xCCA9, "TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256", "ECDHE", "ECDSA", "CHACHA20-POLY1305", "AEAD", StrengthStrong},

	// DHE + AEAD -> Strong (no elliptic curve, still forward secret)
	0x009E: {0x009E, "TLS_DHE_RSA_WITH_AES_128_GCM_SHA256", "DHE", "RSA", "AES-128-GCM", "AEAD", StrengthStrong},
	0x009F: {0x009F, "TLS_DHE_RSA_WITH_AES_256_GCM_SHA384", "DHE", "RSA", "AES-256-GCM", "AEAD", StrengthStrong},

	// AES-CBC with SHA256/SHA384 -> Acceptable
	0xC023: {0xC023, "TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA256", "ECDHE", "ECDSA", "AES-128-CBC", "SHA256", StrengthAcceptable},
	0xC024: {0xC024, "TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA384", "ECDHE", "ECDSA", "AES-256-CBC", "SHA384", StrengthAcceptable},
	0xC027: {0xC027, "TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA256", "ECDHE", "RSA", "AES-128-CBC", "SHA256", StrengthAcceptable},
	0xC028: {0xC028, "TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA384", "ECDHE", "RSA", "AES-256-CBC", "SHA384", StrengthAcceptable},
	0x003C: {0x003C, "TLS_RSA_WITH_AES_128_CBC_SHA256", "RSA", "RSA", "AES-128-CBC", "SHA256", StrengthAcceptable},
	0x003D: {0x003D, "TLS_RSA_WITH_AES_256_CBC_SHA256", "RSA", "RSA", "AES-256-CBC", "SHA256", StrengthAcceptable},

	// Plain RSA AES-CBC with SHA1, RSA AES-GCM (no forward secrecy) -> Acceptable
	0x002F: {0x002F, "TLS_RSA_WITH_AES_128_CBC_SHA", "RSA", "RSA", "AES-128-CBC", "SHA1", StrengthAcceptable},
	0x0035: {0x0035, "TLS_RSA_WITH_AES_256_CBC_SHA", "RSA", "RSA", "AES-256-CBC", "SHA1", StrengthAcceptable},
	0x009C: {0x009C, "TLS_RSA_WITH_AES_128_GCM_SHA256", "RSA", "RSA", "AES-128-GCM", "AEAD", StrengthAcceptable},
	0x009D: {0x009D, "TLS_RSA_WITH_AES_256_GCM_SHA384", "RSA", "RSA", "AES-256-GCM", "AEAD", StrengthAcceptable},

	// 3DES -> Insecure
	0x000A: {0x000A, "TLS_RSA_WITH_3DES_EDE_CBC_SHA", "RSA", "RSA", "3DES-EDE-CBC", "SHA1", StrengthInsecure},
	0xC012: {0xC012, "TLS_ECDHE_RSA_WITH_3DES_EDE_CBC_SHA", "ECDHE", "RSA", "3DES-EDE-CBC", "SHA1", StrengthInsecure},

	// SEED -> Insecure
	0x0096: {0x0096, "TLS_RSA_WITH_SEED_CBC_SHA", "RSA", "RSA", "SEED-CBC", "SHA1", StrengthInsecure},

	// RC4 -> Weak
	0x0004: {0x0004, "TLS_RSA_WITH_RC4_128_MD5", "RSA", "RSA", "RC4-128", "MD5", StrengthWeak},
	0x0005: {0x0005, "TLS_RSA_WITH_RC4_128_SHA", "RSA", "RSA", "RC4-128", "SHA1", StrengthWeak},
	0xC007: {0xC007, "TLS_ECDHE_ECDSA_WITH_RC4_128_SHA", "ECDHE", "ECDSA", "RC4-128", "SHA1", StrengthWeak},
	0xC011: {0xC011, "TLS_ECDHE_RSA_WITH_RC4_128_SHA", "ECDHE", "RSA", "RC4-128", "SHA1", StrengthWeak},

	// NULL -> Weak
	0x0000: {0x0000, "TLS_NULL_WITH_NULL_NULL", "", "", "NULL", "", StrengthWeak},
	0x0001: {0x0001, "TLS_RSA_WITH_NULL_MD5", "RSA", "RSA", "NULL", "MD5", StrengthWeak},
	0x0002: {0x0002, "TLS_RSA_WITH_NULL_SHA", "RSA", "RSA", "NULL", "SHA1", StrengthWeak},
}

// LookupCipherSuite resolves a 2-byte IANA cipher suite code. Unknown codes
// get a conservative Acceptable strength and a synthesized name — never
// Recommended, since an unrecognized suite cannot be vouched for as a
// modern TLS 1.3 AEAD construction.
func LookupCipherSuite(code uint16) CipherSuite {
	if cs, ok := cipherSuiteTable[code]; ok {
		return cs
	}
	return CipherSuite{
		Code:     code,
		Name:     fmt.Sprintf("UNKNOWN_CIPHER_0x%04X", code),
		Strength: StrengthAcceptable,
	}
}
