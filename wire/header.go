package wire

import (
	"io"

	"github.com/cockroachdb/errors"
)

// Control packet types, MQTT 3.1.1 section 2.2.1.
const (
	TypeConnect     byte = 1
	TypeConnack     byte = 2
	TypePublish     byte = 3
	TypePuback      byte = 4
	TypePubrec      byte = 5
	TypePubrel      byte = 6
	TypePubcomp     byte = 7
	TypeSubscribe   byte = 8
	TypeSuback      byte = 9
	TypeUnsubscribe byte = 10
	TypeUnsuback    byte = 11
	TypePingreq     byte = 12
	TypePingresp    byte = 13
	TypeDisconnect  byte = 14
)

// FixedHeader is the 2-5 byte prefix common to every control packet.
type FixedHeader struct {
	Type      byte
	Flags     byte
	Remaining uint32
}

// WriteFixedHeader writes the packed type/flags byte followed by the
// base-128 remaining-length field.
func WriteFixedHeader(w io.Writer, typ, flags byte, remaining uint32) error {
	first := (typ << 4) | (flags & 0x0f)
	if err := writeFull(w, []byte{first}); err != nil {
		return err
	}
	return WriteRemainingLength(w, remaining)
}

// ReadFixedHeader reads one fixed header from r.
func ReadFixedHeader(r io.Reader) (FixedHeader, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return FixedHeader{}, errors.Wrap(ErrTransportIO, err.Error())
	}

	remaining, err := ReadRemainingLength(r)
	if err != nil {
		return FixedHeader{}, err
	}

	return FixedHeader{
		Type:      b[0] >> 4,
		Flags:     b[0] & 0x0f,
		Remaining: remaining,
	}, nil
}

// NameOf returns a human-readable name for a control packet type, for
// logging. Replaces the teacher's global message-name table with a pure
// function — no shared lookup table to race on across goroutines.
func NameOf(typ byte) string {
	switch typ {
	case TypeConnect:
		return "CONNECT"
	case TypeConnack:
		return "CONNACK"
	case TypePublish:
		return "PUBLISH"
	case TypePuback:
		return "PUBACK"
	case TypePubrec:
		return "PUBREC"
	case TypePubrel:
		return "PUBREL"
	case TypePubcomp:
		return "PUBCOMP"
	case TypeSubscribe:
		return "SUBSCRIBE"
	case TypeSuback:
		return "SUBACK"
	case TypeUnsubscribe:
		return "UNSUBSCRIBE"
	case TypeUnsuback:
		return "UNSUBACK"
	case TypePingreq:
		return "PINGREQ"
	case TypePingresp:
		return "PINGRESP"
	case TypeDisconnect:
		return "DISCONNECT"
	default:
		return "UNKNOWN"
	}
}
