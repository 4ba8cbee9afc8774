package transport

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// selfSignedCert generates a throwaway in-memory certificate for
// exercising the TLS dial path without touching the filesystem.
func selfSignedCert(t *testing.T, commonName string) tls.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}

func TestDefaultTLSConfigMinVersion(t *testing.T) {
	cfg, err := DefaultTLSConfig().Build()
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	assert.False(t, cfg.InsecureSkipVerify)
}

func TestTLSConfigBuildRejectsUnreadableCAFile(t *testing.T) {
	cfg := &TLSConfig{CAFile: "/nonexistent/ca.pem"}
	_, err := cfg.Build()
	assert.ErrorIs(t, err, ErrInvalidTLSConfig)
}

func TestTLSClientHandshake(t *testing.T) {
	cert := selfSignedCert(t, "broker.local")

	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
		Certificates: []tls.Certificate{cert},
	})
	require.NoError(t, err)
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4)
		_, _ = conn.Read(buf)
	}()

	plain, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)

	cfg := &TLSConfig{InsecureSkipVerify: true, ServerName: "broker.local"}
	tlsConn, err := cfg.Client(plain)
	require.NoError(t, err)
	defer tlsConn.Close()

	assert.NoError(t, VerifyPeerCommonName(tlsConn, "broker.local"))
	assert.Error(t, VerifyPeerCommonName(tlsConn, "someone-else"))

	_, err = tlsConn.Write([]byte("ping"))
	require.NoError(t, err)
	<-serverDone
}
