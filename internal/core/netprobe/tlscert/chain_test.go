package tlscert

import (
	"strings"
	"testing"
)

func TestVerifyChainLinks(t *testing.T) {
	chain := []*CertificateInfo{
		{Subject: "CN=leaf", Issuer: "CN=intermediate"},
		{Subject: "CN=intermediate", Issuer: "CN=root"},
		{Subject: "CN=root", Issuer: "CN=root", IsSelfSigned: true},
	}
	if !VerifyChainLinks(chain) {
		t.Fatal("expected well-formed self-signed-terminal chain to verify")
	}

	brokenLinkage := []*CertificateInfo{
		{Subject: "CN=leaf", Issuer: "CN=somebody-else"},
		{Subject: "CN=intermediate", Issuer: "CN=root", IsSelfSigned: true},
	}
	if VerifyChainLinks(brokenLinkage) {
		t.Fatal("expected broken linkage to fail verification")
	}

	nonSelfSignedTerminal := []*CertificateInfo{
		{Subject: "CN=leaf", Issuer: "CN=root"},
		{Subject: "CN=root", Issuer: "CN=unknown"},
	}
	if VerifyChainLinks(nonSelfSignedTerminal) {
		t.Fatal("expected non-self-signed terminal certificate to fail verification")
	}
}

func TestCategorizeChain(t *testing.T) {
	chain := []*CertificateInfo{
		{Subject: "CN=leaf", Issuer: "CN=intermediate"},
		{Subject: "CN=intermediate", Issuer: "CN=root"},
		{Subject: "CN=root", Issuer: "CN=root", IsSelfSigned: true},
	}
	got := CategorizeChain(chain)
	want := []ChainCategory{ChainLeaf, ChainIntermediate, ChainRoot}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("category[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCategorizeChainSelfSignedMidChainStaysIntermediate(t *testing.T) {
	chain := []*CertificateInfo{
		{Subject: "CN=leaf", Issuer: "CN=odd"},
		{Subject: "CN=odd", Issuer: "CN=odd", IsSelfSigned: true},
		{Subject: "CN=odd", Issuer: "CN=root", IsSelfSigned: false},
	}
	got := CategorizeChain(chain)
	if got[1] != ChainIntermediate {
		t.Fatalf("expected a self-signed cert that isn't terminal to stay intermediate, got %s", got[1])
	}
	if got[2] != ChainIntermediate {
		t.Fatalf("expected a non-self-signed terminal cert to be intermediate, not root, got %s", got[2])
	}
}

func TestValidateChainComprehensiveEmptyChain(t *testing.T) {
	v := ValidateChainComprehensive(nil)
	if v.Valid {
		t.Fatal("expected empty chain to be invalid")
	}
}

func TestValidateChainComprehensiveBrokenLinkage(t *testing.T) {
	chain := []*CertificateInfo{
		{Subject: "CN=leaf", Issuer: "CN=intermediate"},
		{Subject: "CN=root", Issuer: "CN=root", IsSelfSigned: true},
	}
	v := ValidateChainComprehensive(chain)
	if v.Valid {
		t.Fatal("expected broken-linkage chain to fail validation")
	}
	if len(v.Errors) == 0 || !strings.Contains(v.Errors[0], "Broken certificate chain") {
		t.Fatalf("expected first error to mention broken certificate chain, got %v", v.Errors)
	}
}

func TestValidateChainComprehensiveMD5LeafIsError(t *testing.T) {
	chain := []*CertificateInfo{
		{
			Subject:            "CN=leaf",
			Issuer:             "CN=leaf",
			IsSelfSigned:       true,
			SignatureAlgorithm: SignatureAlgorithmInfo{Hash: "MD5", Strength: StrengthWeak},
		},
	}
	v := ValidateChainComprehensive(chain)
	if v.Valid {
		t.Fatal("expected MD5 leaf signature to be an error, not a warning")
	}
	if len(v.Warnings) != 0 {
		t.Fatalf("expected no warnings for MD5, got %v", v.Warnings)
	}
}

func TestValidateChainComprehensiveSHA1LeafIsWarningOnly(t *testing.T) {
	chain := []*CertificateInfo{
		{
			Subject:            "CN=leaf",
			Issuer:             "CN=leaf",
			IsSelfSigned:       true,
			SignatureAlgorithm: SignatureAlgorithmInfo{Hash: "SHA1", Strength: StrengthWeak},
		},
	}
	v := ValidateChainComprehensive(chain)
	if !v.Valid {
		t.Fatalf("expected SHA1 leaf signature to only warn, got errors: %v", v.Errors)
	}
	if len(v.Warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %v", v.Warnings)
	}
}

func TestValidateChainComprehensiveSelfSignedLeafInMultiChainWarns(t *testing.T) {
	chain := []*CertificateInfo{
		{Subject: "CN=leaf", Issuer: "CN=leaf", IsSelfSigned: true},
		{Subject: "CN=leaf", Issuer: "CN=leaf", IsSelfSigned: true},
	}
	v := ValidateChainComprehensive(chain)
	found := false
	for _, w := range v.Warnings {
		if strings.Contains(w, "self-signed leaf") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a self-signed-leaf-in-multi-chain warning, got %v", v.Warnings)
	}
}

func TestValidateChainComprehensiveStrongLeaf(t *testing.T) {
	chain := []*CertificateInfo{
		{
			Subject:            "CN=leaf",
			Issuer:             "CN=leaf",
			IsSelfSigned:       true,
			PublicKey:          PublicKeyInfo{Algorithm: KeyAlgorithmECDSA, KeyBits: 256},
			SignatureAlgorithm: SignatureAlgorithmInfo{Hash: "SHA256", Strength: StrengthStrong},
		},
	}
	v := ValidateChainComprehensive(chain)
	if !v.Valid {
		t.Fatalf("expected strong leaf to pass validation, got errors: %v", v.Errors)
	}
	if len(v.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", v.Warnings)
	}
}
