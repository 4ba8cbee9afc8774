// Package client implements the MQTT v3.1.1 session state machine,
// command dispatcher, and event loop: a single worker goroutine
// multiplexes the application command channel and the transport's
// inbound byte stream, translating each into wire activity via package
// packet.
package client

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/simonlbn/simba/packet"
	"github.com/simonlbn/simba/wire"
)

// PublishFunc is invoked by the worker for every inbound PUBLISH. It must
// consume exactly payloadSize bytes from payload before returning — the
// worker does not read the payload itself and cannot resynchronise the
// transport if the callback under-reads. payload is limited to
// payloadSize bytes, so the callback cannot over-read.
type PublishFunc func(c *Client, topic string, payload io.Reader, payloadSize uint32) error

// ErrorFunc is invoked by the worker whenever a handler — command- or
// inbound-packet-originated — returns a non-nil error. It runs
// synchronously on the worker goroutine, so the worker waits for it to
// return, and its own panics are not recovered (the same contract the
// teacher's hook.Manager gives its callbacks).
type ErrorFunc func(c *Client, err error)

// Client is the process-lifetime MQTT session handle.
// After New, all mutable state (connection state, outstanding-request
// slot, the transport) is owned exclusively by the worker goroutine
// started inside New; application goroutines touch only the public
// methods below, which communicate over cmdCh — there is no mutex on
// the client handle at all.
type Client struct {
	name string
	log  Logger

	transport io.ReadWriter
	metrics   *Metrics

	onPublish PublishFunc
	onError   ErrorFunc

	cmdCh     chan command
	headerCh  chan inboundHeader
	pumpNext  chan struct{}
	closeCh   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	state       atomic.Int32
	outstanding atomic.Int32

	// pending is the reply channel of the in-flight application call the
	// worker owes exactly one response to, or nil when outstanding is
	// outNone. Touched only inside run(), never from another goroutine.
	pending chan commandResult

	maxInboundTopicLen int
}

type inboundHeader struct {
	fh  wire.FixedHeader
	err error
}

// New creates a client bound to a single transport and starts its worker
// goroutine. transport must support concurrent Read (from
// the worker's internal reader pump) and Write (from the worker itself) —
// a plain net.Conn or transport.Transport both qualify.
//
// onPublish may be nil, in which case inbound PUBLISH payloads are read
// and discarded; onError may be nil, in which case errors are only
// logged.
func New(name string, log Logger, transport io.ReadWriter, onPublish PublishFunc, onError ErrorFunc) *Client {
	if log == nil {
		log = nopLogger{}
	}
	c := &Client{
		name:               name,
		log:                log,
		transport:          transport,
		onPublish:          onPublish,
		onError:            onError,
		cmdCh:              make(chan command),
		headerCh:           make(chan inboundHeader),
		pumpNext:           make(chan struct{}, 1),
		closeCh:            make(chan struct{}),
		maxInboundTopicLen: packet.MaxInboundTopicLen,
	}
	c.state.Store(int32(stateDisconnected))
	c.outstanding.Store(int32(outNone))

	c.wg.Add(2)
	go c.pump()
	go c.run()

	return c
}

// SetMaxInboundTopicLen overrides the default 127-byte cap on an inbound
// PUBLISH topic name — the cap is a parameter here, not a fixed stack
// buffer. Must be called before the first inbound PUBLISH
// arrives; it is not safe to call concurrently with traffic.
func (c *Client) SetMaxInboundTopicLen(n int) {
	c.maxInboundTopicLen = n
}

// SetMetrics attaches a Metrics collector. A nil Metrics (the default) is
// a no-op, mirroring how the teacher treats optional collaborators like
// hook.Manager.
func (c *Client) SetMetrics(m *Metrics) {
	c.metrics = m
}

// State reports the current connection state. Safe to call from any
// goroutine: connState is the one field callers may read directly, via
// this atomic accessor, without going through cmdCh.
func (c *Client) State() string {
	return connState(c.state.Load()).String()
}

// Name returns the client's human-readable identifier.
func (c *Client) Name() string { return c.name }

// Close stops the worker and releases its goroutines. If the transport
// implements io.Closer it is closed too, which unblocks the reader pump's
// pending Read. It does not write DISCONNECT; call Disconnect first for a
// clean shutdown.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		if cl, ok := c.transport.(io.Closer); ok {
			_ = cl.Close()
		}
	})
	c.wg.Wait()
	return nil
}

// Connect dispatches a CONNECT and blocks for CONNACK.
func (c *Client) Connect(opts *Options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	res := c.dispatch(command{tag: cmdConnect, opts: opts})
	return res.err
}

// Disconnect writes DISCONNECT and blocks for the worker's immediate
// acknowledgement: disconnect's result is posted right away, not
// deferred to a response handler, since DISCONNECT has no ack.
func (c *Client) Disconnect() error {
	res := c.dispatch(command{tag: cmdDisconnect})
	return res.err
}

// Ping dispatches a PINGREQ and blocks for PINGRESP.
func (c *Client) Ping() error {
	res := c.dispatch(command{tag: cmdPing})
	return res.err
}

// Publish dispatches a PUBLISH. For QoS 0 the result is immediate (no
// acknowledgement on the wire); for QoS 1 it blocks for PUBACK.
func (c *Client) Publish(msg Message) error {
	if err := msg.validateTopic(); err != nil {
		return err
	}
	res := c.dispatch(command{tag: cmdPublish, msg: &msg})
	return res.err
}

// Subscribe dispatches a SUBSCRIBE carrying a single topic filter and
// blocks for SUBACK, returning the broker's granted QoS.
func (c *Client) Subscribe(msg Message) (grantedQoS byte, err error) {
	if err := msg.validateTopic(); err != nil {
		return 0, err
	}
	res := c.dispatch(command{tag: cmdSubscribe, msg: &msg})
	return res.grantedQoS, res.err
}

// Unsubscribe dispatches an UNSUBSCRIBE carrying a single topic filter
// and blocks for UNSUBACK.
func (c *Client) Unsubscribe(msg Message) error {
	if err := msg.validateTopic(); err != nil {
		return err
	}
	res := c.dispatch(command{tag: cmdUnsubscribe, msg: &msg})
	return res.err
}

// dispatch is the command-dispatcher's shared body: write the command
// to cmdCh, block for exactly one reply. cmdCh is unbuffered, so
// concurrent callers from multiple goroutines serialise naturally on
// the send.
func (c *Client) dispatch(cmd command) commandResult {
	cmd.reply = make(chan commandResult, 1)
	select {
	case c.cmdCh <- cmd:
	case <-c.closeCh:
		return commandResult{err: ErrClosed}
	}

	select {
	case res := <-cmd.reply:
		return res
	case <-c.closeCh:
		return commandResult{err: ErrClosed}
	}
}

// pump is the dedicated reader goroutine that lets a single select
// cover both cmdCh and the transport: transport reads are always
// blocking, so a goroutine turns "a new packet has started" into a
// channel event the worker can select on alongside cmdCh, without ever
// racing the worker for payload bytes — see DESIGN.md.
//
// It reads only the fixed header of each inbound packet, then waits for
// the worker to finish handling that packet (pumpNext) before reading the
// next one, preserving "inbound packets are processed in arrival order"
// and leaving everything past the fixed header — topic, identifiers,
// and PUBLISH payload — to be read by the worker itself (directly, or
// via the user's PublishFunc) from the same transport.
func (c *Client) pump() {
	defer c.wg.Done()
	for {
		fh, err := wire.ReadFixedHeader(c.transport)
		select {
		case c.headerCh <- inboundHeader{fh: fh, err: err}:
		case <-c.closeCh:
			return
		}
		if err != nil {
			return
		}
		select {
		case <-c.pumpNext:
		case <-c.closeCh:
			return
		}
	}
}

// run is the event loop: one iteration handles exactly one command or
// one inbound packet, then loops.
//
// cmdCh must not be offered again once a request is outstanding:
// otherwise a second concurrent caller's command could
// overwrite the outstanding slot before the first caller's response
// arrives. A nil channel is never selected, so cmdCh is only live when
// nothing is outstanding; PUBLISH keeps arriving regardless because
// headerCh is always live.
func (c *Client) run() {
	defer c.wg.Done()
	for {
		var cmdCh chan command
		if outstanding(c.outstanding.Load()) == outNone {
			cmdCh = c.cmdCh
		}

		select {
		case cmd := <-cmdCh:
			c.handleCommand(cmd)
		case hdr := <-c.headerCh:
			c.handleInbound(hdr)
		case <-c.closeCh:
			return
		}
	}
}

func (c *Client) reportError(err error) {
	if err == nil {
		return
	}
	c.log.Error("client error", "name", c.name, "error", err.Error())
	if c.onError != nil {
		c.onError(c, err)
	}
}

// validForState reports whether tag may be dispatched in the current
// connection state. Unlike the teacher's broker-side equivalent — which
// silently dropped an invalid command, permanently hanging the caller's
// response channel — this returns false so the caller gets ErrWrongState
// instead.
func (c *Client) validForState(tag cmdTag) bool {
	if connState(c.state.Load()) == stateDisconnected {
		return tag == cmdConnect
	}
	return tag != cmdConnect
}

// handleCommand gates on connection state, encodes the outgoing packet,
// sets the outstanding slot, and — except for Disconnect, whose result
// has no wire acknowledgement — leaves completion of cmd.reply to the
// matching inbound handler.
func (c *Client) handleCommand(cmd command) {
	if !c.validForState(cmd.tag) {
		cmd.reply <- commandResult{err: ErrWrongState}
		return
	}

	var err error
	switch cmd.tag {
	case cmdConnect:
		err = packet.EncodeConnect(c.transport, connectParams(cmd.opts))
	case cmdDisconnect:
		err = packet.EncodeDisconnect(c.transport)
		c.state.Store(int32(stateDisconnected))
		c.outstanding.Store(int32(outNone))
		cmd.reply <- commandResult{err: err}
		if err != nil {
			c.reportError(err)
		}
		return
	case cmdPing:
		err = packet.EncodePingreq(c.transport)
	case cmdPublish:
		err = packet.EncodePublish(c.transport, cmd.msg.Topic, cmd.msg.Payload, cmd.msg.QoS)
		if err == nil && cmd.msg.QoS == 0 {
			// No wire acknowledgement for QoS 0: complete immediately.
			c.outstanding.Store(int32(outNone))
			cmd.reply <- commandResult{}
			return
		}
	case cmdSubscribe:
		err = packet.EncodeSubscribe(c.transport, cmd.msg.Topic, cmd.msg.QoS)
	case cmdUnsubscribe:
		err = packet.EncodeUnsubscribe(c.transport, cmd.msg.Topic)
	}

	if err != nil {
		c.outstanding.Store(int32(outNone))
		cmd.reply <- commandResult{err: err}
		// The teacher's equivalent suppressed its error callback for
		// command-originated failures by always returning a success code
		// from its dispatch loop. Here both the caller (above) and onError
		// (below) hear about it.
		c.reportError(err)
		return
	}

	c.outstanding.Store(int32(cmd.tag.outstanding()))
	c.pending = cmd.reply
	if c.metrics != nil {
		c.metrics.observeSent(cmd.tag)
	}
}

// connectParams adapts the client-facing Options into the wire-level
// packet.ConnectParams, substituting the default client ID when none was
// supplied.
func connectParams(opts *Options) packet.ConnectParams {
	p := packet.ConnectParams{ClientID: opts.clientID()}
	if opts != nil {
		p.UserName = opts.UserName
		p.Password = opts.Password
		if opts.Will != nil {
			p.Will = &packet.Will{
				Topic:   opts.Will.Topic,
				Payload: opts.Will.Payload,
				QoS:     opts.Will.QoS,
				Retain:  opts.Will.Retain,
			}
		}
	}
	return p
}

// handleInbound reads one fixed header (already done by pump) and
// dispatches by packet type.
func (c *Client) handleInbound(hdr inboundHeader) {
	if hdr.err != nil {
		// A fatal transport error returns the outstanding slot to none and
		// fails whatever caller was waiting, rather than leaving it blocked
		// forever now that the pump has stopped.
		c.failPending(errors.Wrap(ErrTransportIO, hdr.err.Error()))
		c.outstanding.Store(int32(outNone))
		c.reportError(errors.Wrap(ErrTransportIO, hdr.err.Error()))
		return
	}

	switch hdr.fh.Type {
	case wire.TypeConnack:
		c.completeConnack(hdr.fh.Remaining)
	case wire.TypePuback:
		c.completeResponse(outPublish, func() error {
			return packet.DecodePuback(c.transport, hdr.fh.Remaining)
		})
	case wire.TypeSuback:
		c.completeSubscribe(hdr.fh.Remaining)
	case wire.TypeUnsuback:
		c.completeResponse(outUnsubscribe, func() error {
			return packet.DecodeUnsuback(c.transport, hdr.fh.Remaining)
		})
	case wire.TypePingresp:
		c.completeResponse(outPing, func() error {
			return packet.DecodePingresp(hdr.fh.Remaining)
		})
	case wire.TypePublish:
		c.handlePublish(hdr.fh)
	case wire.TypePubrec, wire.TypePubrel, wire.TypePubcomp:
		// QoS 2 outbound completion is out of scope: accept and discard
		// silently.
		if err := packet.Drain(c.transport, hdr.fh.Remaining); err != nil {
			c.reportError(err)
		}
	default:
		if err := packet.Drain(c.transport, hdr.fh.Remaining); err != nil {
			c.reportError(err)
		}
		c.reportError(errors.Wrapf(ErrProtocolOther, "unexpected inbound packet type %d", hdr.fh.Type))
	}

	c.releasePump()
}

// completeResponse runs decode, validates that want matches the
// outstanding slot, then completes the pending caller with exactly
// one reply: every command dispatched by a connected client that
// yields a response packet gets exactly one result posted back.
// completeResponse always runs decode first — the bytes of the packet
// are on the wire whether or not it was expected, and leaving them
// unread would desynchronise the stream for the next inbound packet.
// Only once the packet is consumed does it check the outstanding slot: a
// mismatch still completes whatever caller is currently pending, with
// ErrUnexpectedResponse — but unlike a validated match, it does not
// claim the outstanding slot itself (the slot only returns to none on a
// matching, validated response or a fatal transport error, neither of
// which this is).
func (c *Client) completeResponse(want outstanding, decode func() error) {
	got := outstanding(c.outstanding.Load())
	err := decode()

	if got != want {
		mismatch := errors.Wrapf(ErrUnexpectedResponse, "got response for %s, outstanding is %s", want, got)
		c.failPending(mismatch)
		c.reportError(mismatch)
		return
	}

	c.outstanding.Store(int32(outNone))
	if c.metrics != nil {
		c.metrics.observeReceived(want, err)
	}
	c.completePending(commandResult{err: err})
	if err != nil {
		c.reportError(err)
	}
}

// completeConnack is completeResponse's CONNACK-specific twin: the state
// transition to Connected must only happen on a validated match — a
// CONNACK received while the outstanding slot isn't connect must not
// transition to Connected — so it can't live inside a decode closure
// that runs unconditionally like the other response types' does.
func (c *Client) completeConnack(remaining uint32) {
	got := outstanding(c.outstanding.Load())
	err := packet.DecodeConnack(c.transport, remaining)

	if got != outConnect {
		mismatch := errors.Wrapf(ErrUnexpectedResponse, "got CONNACK, outstanding is %s", got)
		c.failPending(mismatch)
		c.reportError(mismatch)
		return
	}

	if err == nil {
		c.state.Store(int32(stateConnected))
	}
	c.outstanding.Store(int32(outNone))
	if c.metrics != nil {
		c.metrics.observeReceived(outConnect, err)
	}
	c.completePending(commandResult{err: err})
	if err != nil {
		c.reportError(err)
	}
}

func (c *Client) completeSubscribe(remaining uint32) {
	got := outstanding(c.outstanding.Load())
	granted, err := packet.DecodeSuback(c.transport, remaining)

	if got != outSubscribe {
		mismatch := errors.Wrapf(ErrUnexpectedResponse, "got SUBACK, outstanding is %s", got)
		c.failPending(mismatch)
		c.reportError(mismatch)
		return
	}

	c.outstanding.Store(int32(outNone))
	if c.metrics != nil {
		c.metrics.observeReceived(outSubscribe, err)
	}
	c.completePending(commandResult{err: err, grantedQoS: granted})
	if err != nil {
		c.reportError(err)
	}
}

// handlePublish decodes the topic and (for QoS>0) writes the matching
// ack, then hands the remaining payload bytes to the user callback
// directly off the transport. PUBLISH never touches the outstanding
// slot or a pending caller's result.
func (c *Client) handlePublish(fh wire.FixedHeader) {
	topic, payloadSize, err := packet.DecodePublish(c.transport, c.transport, fh.Flags, fh.Remaining, c.maxInboundTopicLen)
	if err != nil {
		c.reportError(err)
		return
	}

	if c.metrics != nil {
		c.metrics.observePublishReceived(payloadSize)
	}

	if c.onPublish == nil {
		if err := packet.Drain(c.transport, payloadSize); err != nil {
			c.reportError(err)
		}
		return
	}

	if err := c.onPublish(c, string(topic), io.LimitReader(c.transport, int64(payloadSize)), payloadSize); err != nil {
		c.reportError(errors.Wrap(ErrProtocolOther, err.Error()))
	}
}

func (c *Client) completePending(res commandResult) {
	if c.pending == nil {
		return
	}
	c.pending <- res
	c.pending = nil
}

func (c *Client) failPending(err error) {
	c.completePending(commandResult{err: err})
}

func (c *Client) releasePump() {
	select {
	case c.pumpNext <- struct{}{}:
	default:
	}
}
