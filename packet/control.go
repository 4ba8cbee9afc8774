package packet

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/simonlbn/simba/wire"
)

// EncodePingreq writes a zero-length PINGREQ packet.
func EncodePingreq(w io.Writer) error {
	return wire.WriteFixedHeader(w, wire.TypePingreq, 0, 0)
}

// EncodeDisconnect writes a zero-length DISCONNECT packet.
func EncodeDisconnect(w io.Writer) error {
	return wire.WriteFixedHeader(w, wire.TypeDisconnect, 0, 0)
}

// DecodePingresp validates a PINGRESP's remaining length (always 0).
func DecodePingresp(remaining uint32) error {
	if remaining != 0 {
		return errors.Wrapf(ErrMalformedSize, "PINGRESP remaining length %d, want 0", remaining)
	}
	return nil
}

// Drain reads and discards the remaining bytes of a packet the client
// accepts but does not act on: PUBREC, PUBREL, PUBCOMP (QoS-2
// outbound completion is a non-goal, so these are received and silently
// dropped rather than driving the PUBREL/PUBCOMP handshake).
func Drain(r io.Reader, remaining uint32) error {
	if remaining == 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, int64(remaining)); err != nil {
		return errors.Wrap(wire.ErrTransportIO, err.Error())
	}
	return nil
}
