// Package codec frames application messages for the wire: a fixed outer
// header (version, flags, body length) around a CBOR-encoded body.
//
// The fragmentation layer treats frames as opaque bytes; nothing below this
// package inspects message contents.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Version is the frame format version emitted by this package.
const Version = 1

// FrameHeaderSize is the fixed outer header length: version (1 byte),
// flags (1 byte), body length (big-endian u32).
const FrameHeaderSize = 6

// Frame flag bits. None are assigned yet; the field is reserved so a future
// bit does not need a version bump.
const FlagNone byte = 0

// ErrFrameTooShort is returned when a frame is smaller than its header.
var ErrFrameTooShort = errors.New("frame shorter than header")

// ErrVersionMismatch is returned for frames produced by an unknown format version.
var ErrVersionMismatch = errors.New("unsupported frame version")

// ErrLengthMismatch is returned when the declared body length disagrees with
// the bytes actually present.
var ErrLengthMismatch = errors.New("frame length does not match body")

// EncodeFrame wraps an already-encoded message body in the outer frame header.
func EncodeFrame(flags byte, body []byte) []byte {
	buf := make([]byte, FrameHeaderSize+len(body))
	buf[0] = Version
	buf[1] = flags
	binary.BigEndian.PutUint32(buf[2:6], uint32(len(body)))
	copy(buf[FrameHeaderSize:], body)
	return buf
}

// DecodeFrame validates the outer header and returns the flags and body.
func DecodeFrame(frame []byte) (flags byte, body []byte, err error) {
	if len(frame) < FrameHeaderSize {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrFrameTooShort, len(frame))
	}
	if frame[0] != Version {
		return 0, nil, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, frame[0], Version)
	}
	declared := binary.BigEndian.Uint32(frame[2:6])
	body = frame[FrameHeaderSize:]
	if uint32(len(body)) != declared {
		return 0, nil, fmt.Errorf("%w: header declares %d, body is %d", ErrLengthMismatch, declared, len(body))
	}
	return frame[1], body, nil
}

// Encode CBOR-encodes v and wraps it in a frame.
func Encode(v interface{}) ([]byte, error) {
	body, err := cbor.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return EncodeFrame(FlagNone, body), nil
}

// Decode unwraps a frame and CBOR-decodes its body into v.
func Decode(frame []byte, v interface{}) error {
	_, body, err := DecodeFrame(frame)
	if err != nil {
		return err
	}
	if err := cbor.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode message body: %w", err)
	}
	return nil
}
