package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedHeaderFirstByte(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFixedHeader(&buf, TypeConnect, 0, 24))
	assert.Equal(t, byte(0x10), buf.Bytes()[0])

	buf.Reset()
	require.NoError(t, WriteFixedHeader(&buf, TypePublish, 0x2, 7))
	assert.Equal(t, byte(0x32), buf.Bytes()[0])
}

func TestFixedHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFixedHeader(&buf, TypeSubscribe, 2, 6))

	hdr, err := ReadFixedHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, TypeSubscribe, hdr.Type)
	assert.Equal(t, byte(2), hdr.Flags)
	assert.Equal(t, uint32(6), hdr.Remaining)
}

func TestNameOf(t *testing.T) {
	assert.Equal(t, "CONNECT", NameOf(TypeConnect))
	assert.Equal(t, "PINGRESP", NameOf(TypePingresp))
	assert.Equal(t, "UNKNOWN", NameOf(0))
}
