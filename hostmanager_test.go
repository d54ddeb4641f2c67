package lactoserv

import (
	"crypto/tls"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostManagerSelfSigned(t *testing.T) {
	m, err := NewHostManager([]HostEntry{
		{Hostnames: []string{"*.example.com"}, SelfSigned: true},
	})
	require.NoError(t, err)

	cert, ok := m.CertificateFor("a.example.com")
	assert.True(t, ok)
	require.NotNil(t, cert)

	_, ok = m.CertificateFor("other.net")
	assert.False(t, ok)
}

func TestHostManagerMutualExclusion(t *testing.T) {
	_, err := NewHostManager([]HostEntry{
		{Hostnames: []string{"x.com"}, SelfSigned: true, Certificate: []byte("pem")},
	})
	assert.Error(t, err)
}

func TestHostManagerGetCertificateCallback(t *testing.T) {
	m, err := NewHostManager([]HostEntry{
		{Hostnames: []string{"example.com"}, SelfSigned: true},
	})
	require.NoError(t, err)

	cert, err := m.GetCertificate(&tls.ClientHelloInfo{ServerName: "example.com"})
	require.NoError(t, err)
	assert.NotNil(t, cert)

	_, err = m.GetCertificate(&tls.ClientHelloInfo{ServerName: "nope.net"})
	assert.Error(t, err)
}
