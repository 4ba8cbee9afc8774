package wire

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMqttStringRoundTrip(t *testing.T) {
	cases := []string{
		"a",
		"simba_mqtt",
		strings.Repeat("x", 65535),
	}

	for _, s := range cases {
		var buf bytes.Buffer
		require.NoError(t, WriteString(&buf, []byte(s)))

		got, err := ReadString(&buf)
		require.NoError(t, err)
		assert.Equal(t, s, string(got))
	}
}

func TestWriteStringRejectsInvalidArgument(t *testing.T) {
	var buf bytes.Buffer

	assert.ErrorIs(t, WriteString(&buf, nil), ErrInvalidArgument)
	assert.ErrorIs(t, WriteString(&buf, []byte{}), ErrInvalidArgument)
	assert.ErrorIs(t, WriteString(&buf, make([]byte, MaxStringLen+1)), ErrInvalidArgument)
}

func TestReadStringShortRead(t *testing.T) {
	_, err := ReadString(bytes.NewReader([]byte{0x00}))
	assert.ErrorIs(t, err, ErrTransportIO)

	_, err = ReadString(bytes.NewReader([]byte{0x00, 0x02, 'a'}))
	assert.ErrorIs(t, err, ErrTransportIO)
}
