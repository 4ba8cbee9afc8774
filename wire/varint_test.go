package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemainingLengthRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		value uint32
		size  int
	}{
		{"zero", 0, 1},
		{"one byte max", 127, 1},
		{"two byte min", 128, 2},
		{"two byte max", 16383, 2},
		{"three byte min", 16384, 3},
		{"three byte max", 2097151, 3},
		{"four byte min", 2097152, 4},
		{"four byte max", MaxRemainingLength, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := EncodeRemainingLength(tc.value)
			require.NoError(t, err)
			assert.Len(t, encoded, tc.size)

			got, err := ReadRemainingLength(bytes.NewReader(encoded))
			require.NoError(t, err)
			assert.Equal(t, tc.value, got)
		})
	}
}

func TestEncodeRemainingLengthTooLarge(t *testing.T) {
	_, err := EncodeRemainingLength(MaxRemainingLength + 1)
	assert.ErrorIs(t, err, ErrMalformedLength)
}

func TestReadRemainingLengthFifthContinuationByte(t *testing.T) {
	malformed := []byte{0xff, 0xff, 0xff, 0xff, 0x01}
	_, err := ReadRemainingLength(bytes.NewReader(malformed))
	assert.ErrorIs(t, err, ErrMalformedLength)
}

func TestReadRemainingLengthShortRead(t *testing.T) {
	_, err := ReadRemainingLength(bytes.NewReader([]byte{0x80}))
	assert.ErrorIs(t, err, ErrTransportIO)
}
