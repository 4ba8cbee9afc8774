package packet

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/simonlbn/simba/wire"
)

// EncodeSubscribe writes a SUBSCRIBE packet carrying a single topic
// filter (multiple filters per SUBSCRIBE is out of scope here).
func EncodeSubscribe(w io.Writer, topic []byte, qos byte) error {
	remaining := uint32(len(topic)) + 5
	if err := wire.WriteFixedHeader(w, wire.TypeSubscribe, 0x2, remaining); err != nil {
		return err
	}

	var idBuf [2]byte
	binary.BigEndian.PutUint16(idBuf[:], subscribePacketID)
	if err := writeAll(w, idBuf[:]); err != nil {
		return err
	}

	var topicLen [2]byte
	binary.BigEndian.PutUint16(topicLen[:], uint16(len(topic)))
	if err := writeAll(w, topicLen[:]); err != nil {
		return err
	}
	if err := writeAll(w, topic); err != nil {
		return err
	}

	return writeAll(w, []byte{qos & 0x3})
}

// DecodeSuback validates a SUBACK's remaining length, echoed packet
// identifier, and granted-QoS byte. Returns ErrSubscribeRejected if the
// broker refused the subscription (granted QoS byte 3 / 0x80).
func DecodeSuback(r io.Reader, remaining uint32) (grantedQoS byte, err error) {
	if remaining != 3 {
		return 0, errors.Wrapf(ErrMalformedSize, "SUBACK remaining length %d, want 3", remaining)
	}

	id, err := readPacketID(r)
	if err != nil {
		return 0, err
	}
	if id != subscribePacketID {
		return 0, errors.Wrapf(ErrUnexpectedPacketID, "got %d, want %d", id, subscribePacketID)
	}

	var qosBuf [1]byte
	if _, err := io.ReadFull(r, qosBuf[:]); err != nil {
		return 0, errors.Wrap(wire.ErrTransportIO, err.Error())
	}

	granted := qosBuf[0]
	if granted > 2 {
		return granted, errors.Wrapf(ErrSubscribeRejected, "granted QoS code 0x%02x", granted)
	}

	return granted, nil
}

// EncodeUnsubscribe writes an UNSUBSCRIBE packet carrying a single topic
// filter.
func EncodeUnsubscribe(w io.Writer, topic []byte) error {
	remaining := uint32(len(topic)) + 4
	if err := wire.WriteFixedHeader(w, wire.TypeUnsubscribe, 0x2, remaining); err != nil {
		return err
	}

	var idBuf [2]byte
	binary.BigEndian.PutUint16(idBuf[:], unsubscribePacketID)
	if err := writeAll(w, idBuf[:]); err != nil {
		return err
	}

	var topicLen [2]byte
	binary.BigEndian.PutUint16(topicLen[:], uint16(len(topic)))
	if err := writeAll(w, topicLen[:]); err != nil {
		return err
	}
	return writeAll(w, topic)
}
