package frag

import (
	"encoding/binary"
	"fmt"
)

// ParsePayload recognizes and validates one of the three wire shapes from
// raw bytes. All failures are *ParseError values; the input slice is not
// copied, so callers that retain the result must not reuse the buffer.
func ParsePayload(b []byte) (Payload, error) {
	if len(b) == 0 {
		return nil, &ParseError{Kind: KindEmptyPayload, Detail: "zero-length transport payload"}
	}

	switch b[0] {
	case MarkerComplete:
		return CompleteMessage{Data: b[1:]}, nil

	case MarkerFragmentHeader:
		if len(b) != HeaderChunkSize {
			return nil, &ParseError{
				Kind:   KindTruncatedHeader,
				Detail: fmt.Sprintf("fragment header must be exactly %d bytes, got %d", HeaderChunkSize, len(b)),
			}
		}
		var id BatchID
		copy(id[:], b[1:1+BatchIDSize])
		count := binary.BigEndian.Uint32(b[9:13])
		if count == 0 {
			return nil, &ParseError{Kind: KindZeroCount, Detail: "fragment header declares zero fragments"}
		}
		return FragmentHeader{
			BatchID:   id,
			Count:     count,
			TotalSize: binary.BigEndian.Uint32(b[13:17]),
		}, nil

	case MarkerFragmentData:
		if len(b) < DataPrefixSize {
			return nil, &ParseError{
				Kind:   KindTruncatedData,
				Detail: fmt.Sprintf("fragment data needs at least %d bytes, got %d", DataPrefixSize, len(b)),
			}
		}
		var id BatchID
		copy(id[:], b[1:1+BatchIDSize])
		return FragmentData{
			BatchID: id,
			Index:   binary.BigEndian.Uint32(b[9:13]),
			Data:    b[DataPrefixSize:],
		}, nil

	default:
		return nil, &ParseError{
			Kind:   KindUnknownPrefix,
			Detail: fmt.Sprintf("unrecognized marker byte 0x%02x", b[0]),
		}
	}
}
