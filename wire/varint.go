package wire

import (
	"io"

	"github.com/cockroachdb/errors"
)

// MaxRemainingLength is the largest value the MQTT remaining-length field
// can encode: 128^3 + 128^2 + 128 + 127.
const MaxRemainingLength = 268435455

// EncodeRemainingLength returns the 1-4 byte base-128 encoding of n.
//
// Per MQTT 2.2.3: while value > 0, emit (value mod 128) with the
// continuation bit (0x80) set when more bytes follow; divide by 128;
// repeat. A value of 0 still produces one output byte.
func EncodeRemainingLength(n uint32) ([]byte, error) {
	if n > MaxRemainingLength {
		return nil, errors.Wrap(ErrMalformedLength, "remaining length exceeds maximum")
	}

	out := make([]byte, 0, 4)
	for {
		b := byte(n % 128)
		n /= 128
		if n > 0 {
			b |= 0x80
		}
		out = append(out, b)
		if n == 0 {
			break
		}
	}
	return out, nil
}

// WriteRemainingLength writes the base-128 encoding of n to w.
func WriteRemainingLength(w io.Writer, n uint32) error {
	buf, err := EncodeRemainingLength(n)
	if err != nil {
		return err
	}
	return writeFull(w, buf)
}

// ReadRemainingLength decodes a base-128 remaining-length field from r.
//
// Fails with ErrMalformedLength when the fourth byte still has its
// continuation bit set, i.e. whenever a fifth byte would follow,
// regardless of that byte's own continuation bit; the fifth byte is not
// read. The remaining-length field is never more than four bytes.
func ReadRemainingLength(r io.Reader) (uint32, error) {
	var (
		value      uint32
		multiplier uint32 = 1
		buf        [1]byte
	)

	for i := 0; i < 4; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, errors.Wrap(ErrTransportIO, err.Error())
		}

		encoded := buf[0]
		value += uint32(encoded&0x7f) * multiplier

		if encoded&0x80 == 0 {
			return value, nil
		}
		multiplier *= 128
	}

	return 0, errors.Wrap(ErrMalformedLength, "fifth continuation byte")
}

// writeFull writes buf to w in full, translating a short write into
// ErrTransportIO the way every other wire write does.
func writeFull(w io.Writer, buf []byte) error {
	n, err := w.Write(buf)
	if err != nil {
		return errors.Wrap(ErrTransportIO, err.Error())
	}
	if n != len(buf) {
		return errors.Wrap(ErrTransportIO, "short write")
	}
	return nil
}
