package wire

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// MaxStringLen is the largest payload a two-byte length prefix can address.
const MaxStringLen = 65535

// WriteString writes an MQTT length-prefixed string: a big-endian uint16
// length followed by the raw bytes.
//
// buf must be non-nil and 1-65535 bytes; a zero-length or oversized buffer
// is rejected with ErrInvalidArgument, matching the codec's documented
// behavior for client IDs and topic names. Callers that need to write a
// genuinely empty payload field (the MQTT string abstraction otherwise
// permits this) must not route it through WriteString.
func WriteString(w io.Writer, buf []byte) error {
	if buf == nil || len(buf) == 0 || len(buf) > MaxStringLen {
		return errors.Wrap(ErrInvalidArgument, "mqtt string size out of bounds")
	}

	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(buf)))
	if err := writeFull(w, lenBuf[:]); err != nil {
		return err
	}
	return writeFull(w, buf)
}

// ReadString reads an MQTT length-prefixed string from r.
func ReadString(r io.Reader) ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, errors.Wrap(ErrTransportIO, err.Error())
	}

	n := binary.BigEndian.Uint16(lenBuf[:])
	if n == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(ErrTransportIO, err.Error())
	}
	return buf, nil
}
