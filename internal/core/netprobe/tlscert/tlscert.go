// Package tlscert parses DER-encoded X.509 certificates into a fully
// populated CertificateInfo, classifies their public keys and signatures,
// and verifies simple certificate chains.
package tlscert

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/asn1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/zmap/zcrypto/x509"
	"github.com/zmap/zcrypto/x509/pkix"
)

// KeyAlgorithm 是识别出的公钥算法族
type KeyAlgorithm string

const (
	KeyAlgorithmRSA     KeyAlgorithm = "RSA"
	KeyAlgorithmECDSA   KeyAlgorithm = "ECDSA"
	KeyAlgorithmEd25519 KeyAlgorithm = "Ed25519"
	KeyAlgorithmUnknown KeyAlgorithm = "Unknown"
)

// SignatureStrength 对签名哈希算法的强度分级
type SignatureStrength string

const (
	StrengthWeak       SignatureStrength = "Weak"
	StrengthAcceptable SignatureStrength = "Acceptable"
	StrengthStrong     SignatureStrength = "Strong"
)

// PublicKeyInfo 描述证书的 SubjectPublicKeyInfo
type PublicKeyInfo struct {
	Algorithm KeyAlgorithm
	Curve     string // only set for ECDSA
	KeyBits   int
}

// IsSecure 报告该公钥是否达到最低安全强度：RSA >= 2048, ECDSA >= 256, Ed25519 恒真
func (p PublicKeyInfo) IsSecure() bool {
	switch p.Algorithm {
	case KeyAlgorithmRSA:
		return p.KeyBits >= 2048
	case KeyAlgorithmECDSA:
		return p.KeyBits >= 256
	case KeyAlgorithmEd25519:
		return true
	default:
		return false
	}
}

// KeyUsage 是 X.509 Key Usage 扩展的 9 个布尔位
type KeyUsage struct {
	DigitalSignature, ContentCommitment, KeyEncipherment, DataEncipherment,
	KeyAgreement, KeyCertSign, CRLSign, EncipherOnly, DecipherOnly bool
}

// ExtendedKeyUsage 是 Extended Key Usage 扩展的解析结果
type ExtendedKeyUsage struct {
	ServerAuth, ClientAuth, CodeSigning, EmailProtection,
	TimeStamping, OCSPSigning, AnyExtendedKeyUsage bool
	Other []string
}

// IsValidForTLSServer 报告该证书是否可用作 TLS 服务端证书
func (e ExtendedKeyUsage) IsValidForTLSServer() bool {
	return e.ServerAuth || e.AnyExtendedKeyUsage
}

// SANCategory 对 SAN 条目按类型分类
type SANCategory string

const (
	SANDNSName   SANCategory = "dns"
	SANIPAddress SANCategory = "ip"
	SANEmail     SANCategory = "email"
	SANURI       SANCategory = "uri"
)

// SubjectAlternativeName 是一个分类后的 SAN 条目
type SubjectAlternativeName struct {
	Category SANCategory
	Value    string
}

// MatchesDNS 实现 RFC 6125 风格的通配符匹配：*.domain 匹配 <非空>.domain，但不匹配 domain 本身
func (s SubjectAlternativeName) MatchesDNS(host string) bool {
	if s.Category != SANDNSName {
		return false
	}
	if s.Value == host {
		return true
	}
	if strings.HasPrefix(s.Value, "*.") {
		suffix := s.Value[1:] // ".domain"
		if strings.HasSuffix(host, suffix) && len(host) > len(suffix) {
			return true
		}
	}
	return false
}

// ExtensionInfo 是一个可读的扩展摘要
type ExtensionInfo struct {
	OID         string
	Name        string
	Critical    bool
	ValueSummary string
}

// SignatureAlgorithmInfo 描述签名算法及其推断出的哈希强度
type SignatureAlgorithmInfo struct {
	Name     string
	Hash     string
	Strength SignatureStrength
}

// CertificateInfo 是解析后的证书全貌
type CertificateInfo struct {
	Issuer, Subject        string
	NotBefore, NotAfter     time.Time
	SerialNumberHex         string
	DNSNames                []string // legacy flat SAN list
	SANs                    []SubjectAlternativeName
	PublicKey               PublicKeyInfo
	KeyUsage                *KeyUsage
	ExtKeyUsage             *ExtendedKeyUsage
	Extensions              []ExtensionInfo
	SignatureAlgorithm      SignatureAlgorithmInfo
	IsSelfSigned            bool
	Raw                     *x509.Certificate
}

var commonOIDNames = map[string]string{
	"2.5.29.15": "keyUsage",
	"2.5.29.17": "subjectAltName",
	"2.5.29.19": "basicConstraints",
	"2.5.29.31": "cRLDistributionPoints",
	"2.5.29.35": "authorityKeyIdentifier",
	"2.5.29.14": "subjectKeyIdentifier",
	"2.5.29.37": "extKeyUsage",
	"1.3.6.1.5.5.7.1.1":  "authorityInfoAccess",
	"2.5.29.32":          "certificatePolicies",
}

// Parse 解析一段 DER 编码的 X.509 证书
func Parse(der []byte) (*CertificateInfo, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}
	return fromCertificate(cert), nil
}

func fromCertificate(cert *x509.Certificate) *CertificateInfo {
	info := &CertificateInfo{
		Issuer:       rdnString(cert.Issuer),
		Subject:      rdnString(cert.Subject),
		NotBefore:    cert.NotBefore,
		NotAfter:     cert.NotAfter,
		SerialNumberHex: strings.ToUpper(hex.EncodeToString(cert.SerialNumber.Bytes())),
		DNSNames:     cert.DNSNames,
		PublicKey:    publicKeyInfo(cert),
		Extensions:   extensionInfos(cert),
		SignatureAlgorithm: signatureAlgorithmInfo(cert),
		IsSelfSigned: rdnString(cert.Issuer) == rdnString(cert.Subject),
		Raw:          cert,
	}
	info.SANs = sanList(cert)
	info.KeyUsage = keyUsageFromBits(cert.KeyUsage)
	info.ExtKeyUsage = extKeyUsageFrom(cert)
	return info
}

func rdnString(name pkix.Name) string {
	return name.String()
}

func sanList(cert *x509.Certificate) []SubjectAlternativeName {
	var sans []SubjectAlternativeName
	for _, d := range cert.DNSNames {
		sans = append(sans, SubjectAlternativeName{Category: SANDNSName, Value: d})
	}
	for _, ip := range cert.IPAddresses {
		sans = append(sans, SubjectAlternativeName{Category: SANIPAddress, Value: ip.String()})
	}
	for _, e := range cert.EmailAddresses {
		sans = append(sans, SubjectAlternativeName{Category: SANEmail, Value: e})
	}
	// zcrypto's Certificate predates the stdlib URIs field; URI SANs are
	// categorized if encountered via raw extension parsing elsewhere, but
	// the typed accessor isn't available here.
	return sans
}

// pkixPublicKeyAlgorithm and subjectPublicKeyInfo let publicKeyInfo walk the
// raw SubjectPublicKeyInfo's AlgorithmIdentifier to
// recover the OID family, since the typed PublicKey alone collapses RSA/ECDSA
// curve identity that the wire format keeps explicit.
type pkixPublicKeyAlgorithm struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.RawValue `asn1:"optional"`
}

type subjectPublicKeyInfo struct {
	Algorithm pkixPublicKeyAlgorithm
	PublicKey asn1.BitString
}

func publicKeyInfo(cert *x509.Certificate) PublicKeyInfo {
	var spki subjectPublicKeyInfo
	algOID := ""
	keyBits := 0
	if _, err := asn1.Unmarshal(cert.RawSubjectPublicKeyInfo, &spki); err == nil {
		algOID = spki.Algorithm.Algorithm.String()
		keyBits = len(spki.PublicKey.Bytes) * 8
	}

	switch {
	case strings.HasPrefix(algOID, "1.2.840.113549.1.1."):
		bits := keyBits
		if pub, ok := cert.PublicKey.(*rsa.PublicKey); ok {
			bits = pub.N.BitLen()
		}
		return PublicKeyInfo{Algorithm: KeyAlgorithmRSA, KeyBits: bits}
	case algOID == "1.2.840.10045.2.1":
		curve := ""
		bits := keyBits
		if pub, ok := cert.PublicKey.(*ecdsa.PublicKey); ok {
			bits = pub.Curve.Params().BitSize
			curve = pub.Curve.Params().Name
		}
		return PublicKeyInfo{Algorithm: KeyAlgorithmECDSA, Curve: curve, KeyBits: bits}
	case algOID == "1.3.101.112":
		bits := keyBits
		if pub, ok := cert.PublicKey.(ed25519.PublicKey); ok {
			bits = len(pub) * 8
		}
		return PublicKeyInfo{Algorithm: KeyAlgorithmEd25519, KeyBits: bits}
	default:
		return PublicKeyInfo{Algorithm: KeyAlgorithmUnknown, KeyBits: keyBits}
	}
}

func keyUsageFromBits(ku x509.KeyUsage) *KeyUsage {
	if ku == 0 {
		return nil
	}
	return &KeyUsage{
		DigitalSignature:   ku&x509.KeyUsageDigitalSignature != 0,
		ContentCommitment:  ku&x509.KeyUsageContentCommitment != 0,
		KeyEncipherment:    ku&x509.KeyUsageKeyEncipherment != 0,
		DataEncipherment:   ku&x509.KeyUsageDataEncipherment != 0,
		KeyAgreement:       ku&x509.KeyUsageKeyAgreement != 0,
		KeyCertSign:        ku&x509.KeyUsageCertSign != 0,
		CRLSign:            ku&x509.KeyUsageCRLSign != 0,
		EncipherOnly:       ku&x509.KeyUsageEncipherOnly != 0,
		DecipherOnly:       ku&x509.KeyUsageDecipherOnly != 0,
	}
}

func extKeyUsageFrom(cert *x509.Certificate) *ExtendedKeyUsage {
	if len(cert.ExtKeyUsage) == 0 && len(cert.UnknownExtKeyUsage) == 0 {
		return nil
	}
	eku := &ExtendedKeyUsage{}
	for _, u := range cert.ExtKeyUsage {
		switch u {
		case x509.ExtKeyUsageServerAuth:
			eku.ServerAuth = true
		case x509.ExtKeyUsageClientAuth:
			eku.ClientAuth = true
		case x509.ExtKeyUsageCodeSigning:
			eku.CodeSigning = true
		case x509.ExtKeyUsageEmailProtection:
			eku.EmailProtection = true
		case x509.ExtKeyUsageTimeStamping:
			eku.TimeStamping = true
		case x509.ExtKeyUsageOCSPSigning:
			eku.OCSPSigning = true
		case x509.ExtKeyUsageAny:
			eku.AnyExtendedKeyUsage = true
		}
	}
	for _, oid := range cert.UnknownExtKeyUsage {
		eku.Other = append(eku.Other, oid.String())
	}
	return eku
}

func extensionInfos(cert *x509.Certificate) []ExtensionInfo {
	infos := make([]ExtensionInfo, 0, len(cert.Extensions))
	for _, ext := range cert.Extensions {
		oid := ext.Id.String()
		name, ok := commonOIDNames[oid]
		if !ok {
			name = oid
		}
		infos = append(infos, ExtensionInfo{
			OID:          oid,
			Name:         name,
			Critical:     ext.Critical,
			ValueSummary: summarizeExtensionValue(ext.Value),
		})
	}
	return infos
}

func summarizeExtensionValue(v []byte) string {
	const maxLen = 32
	enc := hex.EncodeToString(v)
	if len(enc) > maxLen {
		return enc[:maxLen] + "..."
	}
	return enc
}

func signatureAlgorithmInfo(cert *x509.Certificate) SignatureAlgorithmInfo {
	return signatureAlgorithmInfoFromName(cert.SignatureAlgorithm.String())
}

func signatureAlgorithmInfoFromName(name string) SignatureAlgorithmInfo {
	upper := strings.ToUpper(name)

	hash := "Unknown"
	strength := StrengthAcceptable
	switch {
	case strings.Contains(upper, "MD5"):
		hash, strength = "MD5", StrengthWeak
	case strings.Contains(upper, "SHA1") || strings.Contains(upper, "SHA-1"):
		hash, strength = "SHA1", StrengthWeak
	case strings.Contains(upper, "SHA256") || strings.Contains(upper, "SHA-256"):
		hash, strength = "SHA256", StrengthAcceptable
	case strings.Contains(upper, "SHA384") || strings.Contains(upper, "SHA-384"):
		hash, strength = "SHA384", StrengthStrong
	case strings.Contains(upper, "SHA512") || strings.Contains(upper, "SHA-512"):
		hash, strength = "SHA512", StrengthStrong
	}

	return SignatureAlgorithmInfo{Name: name, Hash: hash, Strength: strength}
}
