// Package client implements the MQTT v3.1.1 session state machine,
// command dispatcher, and event loop: a single worker goroutine
// multiplexes the application command channel and the transport's
// inbound byte stream, translating each into wire activity via package
// packet.
package client

import (
	"github.com/cockroachdb/errors"

	"github.com/simonlbn/simba/packet"
	"github.com/simonlbn/simba/wire"
)

var (
	// ErrUnexpectedResponse is returned when an inbound response packet's
	// type does not match the currently outstanding request.
	ErrUnexpectedResponse = errors.New("client: unexpected response for outstanding request")

	// ErrProtocolOther covers any other response-handler validation
	// failure not captured by a more specific error.
	ErrProtocolOther = errors.New("client: protocol violation")

	// ErrWrongState is returned when a command is invalid for the
	// client's current connection state (e.g. publish while
	// disconnected). The teacher's broker-side equivalent silently
	// dropped such commands, which deadlocks the caller forever; that is
	// treated as a bug here and fixed to report WrongState instead.
	ErrWrongState = errors.New("client: command invalid for current connection state")

	// ErrClosed is returned by any operation attempted after Close.
	ErrClosed = errors.New("client: closed")

	// ErrConnectRejected, ErrSubscribeRejected, ErrTransportIO, and
	// ErrInvalidArgument are re-exported from the codec layers so callers
	// only need to import this package to use errors.Is against any
	// wire- or packet-level error kind.
	ErrConnectRejected   = packet.ErrConnectRejected
	ErrSubscribeRejected = packet.ErrSubscribeRejected
	ErrTransportIO       = wire.ErrTransportIO
	ErrInvalidArgument   = wire.ErrInvalidArgument
	ErrMalformedLength   = wire.ErrMalformedLength
	ErrMalformedSize     = packet.ErrMalformedSize
)
