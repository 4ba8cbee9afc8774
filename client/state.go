package client

// connState is the two-valued connection-state variant.
type connState int32

const (
	stateDisconnected connState = iota
	stateConnected
)

func (s connState) String() string {
	switch s {
	case stateDisconnected:
		return "disconnected"
	case stateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// outstanding is the single-valued "currently outstanding request" variant
// the worker may have in flight. The worker holds exactly one of these
// at a time; it only accepts a new command from cmdCh while the slot is
// outNone.
//
// Kept as its own small closed enum rather than packed into connState:
// the two axes are gated independently in dispatch, and packing them
// would just reintroduce a "two free-standing integer fields" shape,
// only inside one field instead of two.
type outstanding byte

const (
	outNone outstanding = iota
	outConnect
	outPing
	outPublish
	outSubscribe
	outUnsubscribe
)

func (o outstanding) String() string {
	switch o {
	case outNone:
		return "none"
	case outConnect:
		return "connect"
	case outPing:
		return "ping"
	case outPublish:
		return "publish"
	case outSubscribe:
		return "subscribe"
	case outUnsubscribe:
		return "unsubscribe"
	default:
		return "unknown"
	}
}
