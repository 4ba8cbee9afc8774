package packet

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/simonlbn/simba/wire"
)

// EncodePublish writes a PUBLISH packet. Flags bit 1-2 carry the QoS; the
// topic length is written as a full big-endian uint16 (the teacher's
// broker-side codec truncated this to one byte, capping outbound topics
// at 255 bytes — this implementation does not repeat that bug). A packet
// identifier is only present for QoS > 0, fixed at 1 (the client never
// has two publishes outstanding at once).
func EncodePublish(w io.Writer, topic, payload []byte, qos byte) error {
	remaining := uint32(len(topic)) + 2 + uint32(len(payload))
	if qos > 0 {
		remaining += 2
	}

	flags := (qos & 0x3) << 1
	if err := wire.WriteFixedHeader(w, wire.TypePublish, flags, remaining); err != nil {
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

	if qos > 0 {
		var idBuf [2]byte
		binary.BigEndian.PutUint16(idBuf[:], publishPacketID)
		if err := writeAll(w, idBuf[:]); err != nil {
			return err
		}
	}

	return writeAll(w, payload)
}

// DecodePublish reads the topic and (for QoS>0) packet identifier of an
// inbound PUBLISH, writes the matching PUBACK/PUBREC acknowledgement, and
// returns the topic and the number of payload bytes still unread on r.
// The caller is responsible for reading exactly payloadSize bytes from r
// before doing anything else with the transport — failure to do so
// desynchronises the stream.
func DecodePublish(r io.Reader, w io.Writer, flags byte, remaining uint32, maxTopicLen int) (topic []byte, payloadSize uint32, err error) {
	var topicLen [2]byte
	if _, err := io.ReadFull(r, topicLen[:]); err != nil {
		return nil, 0, errors.Wrap(wire.ErrTransportIO, err.Error())
	}
	n := binary.BigEndian.Uint16(topicLen[:])
	if int(n) > maxTopicLen {
		return nil, 0, errors.Wrapf(ErrMalformedSize, "topic length %d exceeds %d", n, maxTopicLen)
	}

	topic = make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, topic); err != nil {
			return nil, 0, errors.Wrap(wire.ErrTransportIO, err.Error())
		}
	}

	qos := (flags >> 1) & 0x3
	consumed := uint32(n) + 2

	switch qos {
	case 0:
		payloadSize = remaining - consumed
	case 1:
		id, err := readPacketID(r)
		if err != nil {
			return nil, 0, err
		}
		if err := writeAckPacket(w, wire.TypePuback, id); err != nil {
			return nil, 0, err
		}
		payloadSize = remaining - consumed - 2
	case 2:
		id, err := readPacketID(r)
		if err != nil {
			return nil, 0, err
		}
		if err := writeAckPacket(w, wire.TypePubrec, id); err != nil {
			return nil, 0, err
		}
		payloadSize = remaining - consumed - 2
	}

	return topic, payloadSize, nil
}

// DecodePuback validates a PUBACK's remaining length and echoed packet
// identifier.
func DecodePuback(r io.Reader, remaining uint32) error {
	return decodeSimpleAck(r, remaining, 2, publishPacketID)
}

// DecodeUnsuback validates an UNSUBACK's remaining length and echoed
// packet identifier.
func DecodeUnsuback(r io.Reader, remaining uint32) error {
	return decodeSimpleAck(r, remaining, 2, unsubscribePacketID)
}

func decodeSimpleAck(r io.Reader, remaining uint32, wantRemaining int, wantID uint16) error {
	if remaining != uint32(wantRemaining) {
		return errors.Wrapf(ErrMalformedSize, "ack remaining length %d, want %d", remaining, wantRemaining)
	}

	id, err := readPacketID(r)
	if err != nil {
		return err
	}
	if id != wantID {
		return errors.Wrapf(ErrUnexpectedPacketID, "got %d, want %d", id, wantID)
	}
	return nil
}

func readPacketID(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.Wrap(wire.ErrTransportIO, err.Error())
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func writeAckPacket(w io.Writer, typ byte, id uint16) error {
	if err := wire.WriteFixedHeader(w, typ, 0, 2); err != nil {
		return err
	}
	var idBuf [2]byte
	binary.BigEndian.PutUint16(idBuf[:], id)
	return writeAll(w, idBuf[:])
}

func writeAll(w io.Writer, buf []byte) error {
	n, err := w.Write(buf)
	if err != nil {
		return errors.Wrap(wire.ErrTransportIO, err.Error())
	}
	if n != len(buf) {
		return errors.Wrap(wire.ErrTransportIO, "short write")
	}
	return nil
}
