// Package packet implements encode/decode for the MQTT v3.1.1 control
// packet subset a client needs: CONNECT, CONNACK, PUBLISH, PUBACK,
// SUBSCRIBE, SUBACK, UNSUBSCRIBE, UNSUBACK, PINGREQ, PINGRESP, DISCONNECT,
// plus draining (never driving) PUBREC/PUBREL/PUBCOMP.
package packet

import "github.com/cockroachdb/errors"

var (
	// ErrMalformedSize is returned when a response packet's remaining
	// length does not match the fixed value expected for its type.
	ErrMalformedSize = errors.New("packet: remaining length does not match expected size")

	// ErrConnectRejected is returned when the broker's CONNACK carries a
	// non-zero return code.
	ErrConnectRejected = errors.New("packet: CONNACK rejected the connection")

	// ErrSubscribeRejected is returned when a SUBACK's granted QoS byte is
	// the failure code (0x80/3).
	ErrSubscribeRejected = errors.New("packet: SUBACK rejected the subscription")

	// ErrUnexpectedPacketID is returned when an ack packet's packet
	// identifier does not echo the fixed value the client used.
	ErrUnexpectedPacketID = errors.New("packet: unexpected packet identifier")

	// ErrSessionPresent is returned when CONNACK's session-present byte is
	// non-zero, which this client never expects (it always requests a
	// clean session).
	ErrSessionPresent = errors.New("packet: unexpected session-present flag")
)
