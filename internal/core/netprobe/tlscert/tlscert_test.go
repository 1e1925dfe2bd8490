package tlscert

import "testing"

func TestPublicKeyInfoIsSecure(t *testing.T) {
	cases := []struct {
		name string
		pk   PublicKeyInfo
		want bool
	}{
		{"rsa-2048", PublicKeyInfo{Algorithm: KeyAlgorithmRSA, KeyBits: 2048}, true},
		{"rsa-1024", PublicKeyInfo{Algorithm: KeyAlgorithmRSA, KeyBits: 1024}, false},
		{"ecdsa-256", PublicKeyInfo{Algorithm: KeyAlgorithmECDSA, KeyBits: 256}, true},
		{"ecdsa-160", PublicKeyInfo{Algorithm: KeyAlgorithmECDSA, KeyBits: 160}, false},
		{"ed25519", PublicKeyInfo{Algorithm: KeyAlgorithmEd25519, KeyBits: 256}, true},
		{"unknown", PublicKeyInfo{Algorithm: KeyAlgorithmUnknown}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.pk.IsSecure(); got != c.want {
				t.Errorf("IsSecure() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestSubjectAlternativeNameMatchesDNS(t *testing.T) {
	cases := []struct {
		san  SubjectAlternativeName
		host string
		want bool
	}{
		{SubjectAlternativeName{Category: SANDNSName, Value: "example.com"}, "example.com", true},
		{SubjectAlternativeName{Category: SANDNSName, Value: "*.example.com"}, "www.example.com", true},
		{SubjectAlternativeName{Category: SANDNSName, Value: "*.example.com"}, "example.com", false},
		{SubjectAlternativeName{Category: SANDNSName, Value: "*.example.com"}, "a.b.example.com", true},
		{SubjectAlternativeName{Category: SANIPAddress, Value: "example.com"}, "example.com", false},
	}
	for _, c := range cases {
		if got := c.san.MatchesDNS(c.host); got != c.want {
			t.Errorf("MatchesDNS(%q) on %+v = %v, want %v", c.host, c.san, got, c.want)
		}
	}
}

func TestExtendedKeyUsageIsValidForTLSServer(t *testing.T) {
	if (ExtendedKeyUsage{}).IsValidForTLSServer() {
		t.Fatal("empty EKU should not be valid for TLS server")
	}
	if !(ExtendedKeyUsage{ServerAuth: true}).IsValidForTLSServer() {
		t.Fatal("ServerAuth should be valid for TLS server")
	}
	if !(ExtendedKeyUsage{AnyExtendedKeyUsage: true}).IsValidForTLSServer() {
		t.Fatal("AnyExtendedKeyUsage should be valid for TLS server")
	}
}

func TestSignatureAlgorithmInfoClassification(t *testing.T) {
	// signatureAlgorithmInfo is exercised indirectly through Parse in
	// integration scenarios; here we check the string-classification rules
	// it applies are consistent for each hash family via the exported
	// SignatureStrength constants.
	cases := map[string]SignatureStrength{
		"MD5WithRSA":    StrengthWeak,
		"SHA1WithRSA":   StrengthWeak,
		"SHA256WithRSA": StrengthAcceptable,
		"SHA384WithRSA": StrengthStrong,
		"SHA512WithRSA": StrengthStrong,
	}
	for name, want := range cases {
		info := signatureAlgorithmInfoFromName(name)
		if info.Strength != want {
			t.Errorf("%s: strength = %s, want %s", name, info.Strength, want)
		}
	}
}
