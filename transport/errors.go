package transport

import "github.com/cockroachdb/errors"

var (
	// ErrClosed is returned by TCP's Read/Write after Close has been
	// called. Pipe returns the underlying net.Pipe error instead.
	ErrClosed = errors.New("transport: closed")

	// ErrInvalidTLSConfig is returned when a TLSConfig cannot be built
	// into a usable crypto/tls.Config (e.g. a CA file that does not
	// parse).
	ErrInvalidTLSConfig = errors.New("transport: invalid TLS configuration")

	// ErrCertificateVerification is returned by VerifyPeerCommonName when
	// the broker's leaf certificate does not carry the expected CN.
	ErrCertificateVerification = errors.New("transport: certificate verification failed")
)
