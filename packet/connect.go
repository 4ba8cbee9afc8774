package packet

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/simonlbn/simba/wire"
)

// protocolName is the literal "MQTT" string written, length-prefixed, at
// the start of every CONNECT variable header.
var protocolName = []byte("MQTT")

// Will describes an MQTT last-will-and-testament.
type Will struct {
	Topic   []byte
	Payload []byte
	QoS     byte
	Retain  bool
}

// ConnectParams is the wire-level input to EncodeConnect. Higher layers
// (package client) translate their Options type into this shape.
type ConnectParams struct {
	ClientID []byte
	Will     *Will
	UserName []byte
	Password []byte
}

// EncodeConnect writes a CONNECT packet. Clean-session is always set (the
// core has no session-resumption story).
func EncodeConnect(w io.Writer, p ConnectParams) error {
	var payload bytes.Buffer

	if err := wire.WriteString(&payload, p.ClientID); err != nil {
		return err
	}

	flags := connectFlagCleanSession
	if p.Will != nil {
		flags |= connectFlagWill
		switch p.Will.QoS {
		case 1:
			flags |= connectFlagWillQoS1
		case 2:
			flags |= connectFlagWillQoS2
		}
		if p.Will.Retain {
			flags |= connectFlagWillRetain
		}
		if err := wire.WriteString(&payload, p.Will.Topic); err != nil {
			return err
		}
		if err := wire.WriteString(&payload, p.Will.Payload); err != nil {
			return err
		}
	}

	if p.UserName != nil {
		flags |= connectFlagUserName
		if err := wire.WriteString(&payload, p.UserName); err != nil {
			return err
		}
	}

	if p.Password != nil {
		flags |= connectFlagPassword
		if err := wire.WriteString(&payload, p.Password); err != nil {
			return err
		}
	}

	// Variable header is 12 bytes: length-prefixed "MQTT" (6), protocol
	// level (1), connect flags (1), keep-alive (2), payload-length (2).
	const varHeaderLen = 12
	remaining := uint32(varHeaderLen + payload.Len())
	if err := wire.WriteFixedHeader(w, wire.TypeConnect, 0, remaining); err != nil {
		return err
	}

	var varHeader bytes.Buffer
	if err := wire.WriteString(&varHeader, protocolName); err != nil {
		return err
	}
	varHeader.WriteByte(ProtocolLevel)
	varHeader.WriteByte(flags)

	var keepAlive [2]byte
	binary.BigEndian.PutUint16(keepAlive[:], KeepAliveSeconds)
	varHeader.Write(keepAlive[:])

	var payloadLen [2]byte
	binary.BigEndian.PutUint16(payloadLen[:], uint16(payload.Len()))
	varHeader.Write(payloadLen[:])

	if _, err := w.Write(varHeader.Bytes()); err != nil {
		return errors.Wrap(wire.ErrTransportIO, err.Error())
	}
	if _, err := w.Write(payload.Bytes()); err != nil {
		return errors.Wrap(wire.ErrTransportIO, err.Error())
	}

	return nil
}

// DecodeConnack validates a CONNACK's remaining length, session-present
// byte, and return code. Returns ErrConnectRejected if the broker refused
// the connection.
func DecodeConnack(r io.Reader, remaining uint32) error {
	if remaining != 2 {
		return errors.Wrapf(ErrMalformedSize, "CONNACK remaining length %d, want 2", remaining)
	}

	var body [2]byte
	if _, err := io.ReadFull(r, body[:]); err != nil {
		return errors.Wrap(wire.ErrTransportIO, err.Error())
	}

	if body[0] != 0 {
		return errors.Wrap(ErrSessionPresent, "CONNACK session-present must be 0")
	}

	if body[1] != 0 {
		return errors.Wrapf(ErrConnectRejected, "return code 0x%02x", body[1])
	}

	return nil
}
