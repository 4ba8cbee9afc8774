// Package transport provides the byte-stream abstraction the client core
// requires: an opaque pair of blocking inbound/outbound byte streams.
// Package client never touches net.Conn, a serial port, or a test
// fixture directly — only this interface.
package transport

import "io"

// Transport is the opaque byte-stream pair a client session is built on.
// Read and Write behave like io.Reader/io.Writer: a short read or write
// (n < len(p) with err == nil) never happens on a well-behaved
// implementation — callers treat any error, including io.EOF, as
// transport failure and surface it through client.ErrTransportIO.
type Transport interface {
	io.Reader
	io.Writer

	// Close releases the underlying connection. A worker loop blocked in
	// Read unblocks with an error when Close is called from another
	// goroutine.
	Close() error
}
