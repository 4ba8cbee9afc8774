// Package wire implements the MQTT v3.1.1 fixed-header, variable-length
// integer, and length-prefixed string primitives shared by every control
// packet in package packet.
package wire

import "github.com/cockroachdb/errors"

var (
	// ErrTransportIO is returned whenever a read or write to the underlying
	// transport transfers fewer bytes than requested.
	ErrTransportIO = errors.New("transport: short read or write")

	// ErrInvalidArgument is returned when an MQTT string violates the size
	// bounds required to put it on the wire (zero length, nil buffer, or a
	// length beyond 65535 bytes).
	ErrInvalidArgument = errors.New("wire: invalid argument")

	// ErrMalformedLength is returned when a remaining-length field carries a
	// fifth continuation byte.
	ErrMalformedLength = errors.New("wire: malformed remaining length")
)
