package lactoserv

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"
)

// HostEntry is one binding of a set of SNI hostnames to TLS credentials
// Exactly one of (Certificate+PrivateKey) or
// SelfSigned may be set.
type HostEntry struct {
	Hostnames   []string
	Certificate []byte // PEM
	PrivateKey  []byte // PEM
	SelfSigned  bool
}

// HostManager maps an SNI server-name to a certificate chain + key via
// find-with-fallback.
type HostManager struct {
	tree      *TreeMap[*tls.Certificate]
	component *Component
}

// NewHostManager builds a HostManager from entries. Self-signed entries
// generate their credentials at construction time ("at start", per
// self-signed cert is generated for it at construction time).
func NewHostManager(entries []HostEntry) (*HostManager, error) {
	tree := NewTreeMap[*tls.Certificate]()

	for _, e := range entries {
		if e.SelfSigned && (len(e.Certificate) > 0 || len(e.PrivateKey) > 0) {
			return nil, fmt.Errorf("lactoserv: host entry %v: selfSigned is exclusive with certificate/privateKey", e.Hostnames)
		}

		var cert tls.Certificate
		var err error
		if e.SelfSigned {
			cert, err = generateSelfSigned(e.Hostnames)
		} else {
			cert, err = tls.X509KeyPair(e.Certificate, e.PrivateKey)
		}
		if err != nil {
			return nil, fmt.Errorf("lactoserv: host entry %v: %w", e.Hostnames, err)
		}

		for _, h := range e.Hostnames {
			key, err := ParseHostname(h)
			if err != nil {
				return nil, fmt.Errorf("lactoserv: host entry hostname %q: %w", h, err)
			}
			if err := tree.Add(key, &cert); err != nil {
				return nil, fmt.Errorf("lactoserv: host entry hostname %q: %w", h, err)
			}
		}
	}

	return &HostManager{tree: tree}, nil
}

// CertificateFor resolves the credentials for serverName via
// find-with-fallback, returning the most-specific match.
func (m *HostManager) CertificateFor(serverName string) (*tls.Certificate, bool) {
	key, err := ParseHostname(serverName)
	if err != nil {
		return nil, false
	}

	matches := m.tree.FindWithFallback(key)
	if len(matches) == 0 {
		return nil, false
	}

	return matches[0].Value, true
}

// GetCertificate is a tls.Config.GetCertificate callback, used directly
// by the TLS wranglers to select credentials per connection by SNI.
func (m *HostManager) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	cert, ok := m.CertificateFor(hello.ServerName)
	if !ok {
		return nil, fmt.Errorf("lactoserv: no certificate for server name %q", hello.ServerName)
	}
	return cert, nil
}

func generateSelfSigned(hostnames []string) (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, err
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: firstOr(hostnames, "localhost")},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     hostnames,
		IsCA:         true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
		Leaf:        template,
	}, nil
}

// Component returns the manager's tree node, or nil if it was built
// standalone rather than via New.
func (m *HostManager) Component() *Component { return m.component }

func firstOr(s []string, fallback string) string {
	if len(s) == 0 {
		return fallback
	}
	return s[0]
}
