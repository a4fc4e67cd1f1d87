package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMessage struct {
	Kind    string `cbor:"kind"`
	Seq     uint64 `cbor:"seq"`
	Payload []byte `cbor:"payload,omitempty"`
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg := testMessage{
		Kind:    "doc.update",
		Seq:     42,
		Payload: []byte{0xDE, 0xAD, 0xBE, 0xEF},
	}

	frame, err := Encode(msg)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(frame), FrameHeaderSize)
	assert.Equal(t, byte(Version), frame[0])
	assert.Equal(t, FlagNone, frame[1])

	var got testMessage
	require.NoError(t, Decode(frame, &got))
	assert.Equal(t, msg, got)
}

func TestFrameRoundTripOpaqueBody(t *testing.T) {
	body := []byte("already encoded elsewhere")
	frame := EncodeFrame(FlagNone, body)

	flags, got, err := DecodeFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, FlagNone, flags)
	assert.Equal(t, body, got)
}

func TestFrameEmptyBody(t *testing.T) {
	frame := EncodeFrame(FlagNone, nil)
	require.Len(t, frame, FrameHeaderSize)

	_, body, err := DecodeFrame(frame)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestDecodeFrameTooShort(t *testing.T) {
	for _, frame := range [][]byte{nil, {}, {Version}, {Version, 0, 0, 0, 0}} {
		_, _, err := DecodeFrame(frame)
		require.ErrorIs(t, err, ErrFrameTooShort)
	}
}

func TestDecodeFrameVersionMismatch(t *testing.T) {
	frame := EncodeFrame(FlagNone, []byte("body"))
	frame[0] = Version + 1

	_, _, err := DecodeFrame(frame)
	require.ErrorIs(t, err, ErrVersionMismatch)
}

func TestDecodeFrameLengthMismatch(t *testing.T) {
	frame := EncodeFrame(FlagNone, []byte("body"))

	// Truncated body
	_, _, err := DecodeFrame(frame[:len(frame)-1])
	require.ErrorIs(t, err, ErrLengthMismatch)

	// Extra trailing bytes
	_, _, err = DecodeFrame(append(frame, 0x00))
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestDecodeRejectsBadBody(t *testing.T) {
	frame := EncodeFrame(FlagNone, []byte{0xFF, 0xFF, 0xFF})

	var got testMessage
	err := Decode(frame, &got)
	require.Error(t, err)
}
