package transport

import (
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// TCPConfig configures a TCP-backed Transport. Adapted from the teacher's
// network.ConnectionConfig: this client keeps only the pieces relevant to
// a single outbound connection (deadlines, byte counters, activity
// tracking) and drops the pool/listener-oriented fields a broker-side
// connection carries.
type TCPConfig struct {
	// ReadTimeout/WriteTimeout, if non-zero, bound each individual Read
	// or Write call. The client core itself has no notion of wall time
	// — keep-alive is driven by the application calling Ping —
	// these exist purely to keep a dead TCP connection from hanging a
	// Read forever.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// TLS, if non-nil, is used to wrap the dial in DialTCP.
	TLS *TLSConfig
}

// DefaultTCPConfig mirrors the teacher's DefaultConnectionConfig values.
func DefaultTCPConfig() *TCPConfig {
	return &TCPConfig{
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// TCP is a Transport backed by a net.Conn. It is the production
// implementation; transport.Pipe is the in-memory fixture used by tests.
type TCP struct {
	conn net.Conn

	readTimeout  time.Duration
	writeTimeout time.Duration

	lastActivity atomic.Int64
	bytesRead    atomic.Uint64
	bytesWritten atomic.Uint64

	closeOnce sync.Once
	closed    atomic.Bool
}

// DialTCP connects to addr and wraps the resulting net.Conn as a
// Transport. If cfg.TLS is set, the connection is upgraded to TLS before
// the MQTT CONNECT handshake begins.
func DialTCP(addr string, cfg *TCPConfig) (*TCP, error) {
	if cfg == nil {
		cfg = DefaultTCPConfig()
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	if cfg.TLS != nil {
		tlsConn, err := cfg.TLS.Client(conn)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		conn = tlsConn
	}

	return NewTCP(conn, cfg), nil
}

// NewTCP wraps an already-established net.Conn (e.g. one returned by a
// test listener) as a Transport.
func NewTCP(conn net.Conn, cfg *TCPConfig) *TCP {
	if cfg == nil {
		cfg = DefaultTCPConfig()
	}

	t := &TCP{
		conn:         conn,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}
	t.touch()

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetKeepAlive(true)
		_ = tcpConn.SetKeepAlivePeriod(30 * time.Second)
	}

	return t
}

func (t *TCP) Read(p []byte) (int, error) {
	if t.closed.Load() {
		return 0, ErrClosed
	}
	if t.readTimeout > 0 {
		_ = t.conn.SetReadDeadline(time.Now().Add(t.readTimeout))
	}
	n, err := t.conn.Read(p)
	if n > 0 {
		t.bytesRead.Add(uint64(n))
		t.touch()
	}
	return n, err
}

func (t *TCP) Write(p []byte) (int, error) {
	if t.closed.Load() {
		return 0, ErrClosed
	}
	if t.writeTimeout > 0 {
		_ = t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	}
	n, err := t.conn.Write(p)
	if n > 0 {
		t.bytesWritten.Add(uint64(n))
		t.touch()
	}
	return n, err
}

func (t *TCP) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		err = t.conn.Close()
	})
	return err
}

func (t *TCP) touch() {
	t.lastActivity.Store(time.Now().UnixNano())
}

// LastActivity reports when Read or Write last transferred bytes.
func (t *TCP) LastActivity() time.Time {
	return time.Unix(0, t.lastActivity.Load())
}

// BytesRead and BytesWritten expose the running byte counters, surfaced by
// cmd/simbactl's status line.
func (t *TCP) BytesRead() uint64    { return t.bytesRead.Load() }
func (t *TCP) BytesWritten() uint64 { return t.bytesWritten.Load() }

var _ Transport = (*TCP)(nil)
