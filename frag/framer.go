package frag

import (
	"encoding/binary"
	"fmt"
)

// WrapCompleteMessage frames a payload that needs no fragmentation. The
// output is always exactly one byte longer than the input; zero-length
// payloads are valid.
func WrapCompleteMessage(data []byte) []byte {
	out := make([]byte, CompleteOverhead+len(data))
	out[0] = MarkerComplete
	copy(out[1:], data)
	return out
}

// EncodeFragmentHeader produces the fixed 17-byte header chunk announcing a
// fragmented transfer.
func EncodeFragmentHeader(id BatchID, count, totalSize uint32) []byte {
	buf := make([]byte, HeaderChunkSize)
	buf[0] = MarkerFragmentHeader
	copy(buf[1:1+BatchIDSize], id[:])
	binary.BigEndian.PutUint32(buf[9:13], count)
	binary.BigEndian.PutUint32(buf[13:17], totalSize)
	return buf
}

// EncodeFragmentData produces one data chunk: the 13-byte fixed prefix
// followed by the payload slice.
func EncodeFragmentData(id BatchID, index uint32, data []byte) []byte {
	buf := make([]byte, DataPrefixSize+len(data))
	buf[0] = MarkerFragmentData
	copy(buf[1:1+BatchIDSize], id[:])
	binary.BigEndian.PutUint32(buf[9:13], index)
	copy(buf[DataPrefixSize:], data)
	return buf
}

// FragmentPayload splits data into one header chunk followed by
// ceil(len(data)/maxFragmentSize) data chunks holding contiguous,
// index-ordered slices of at most maxFragmentSize bytes, all under one
// freshly generated batch id. Exact multiples of maxFragmentSize never
// produce a trailing empty chunk; a zero-length payload produces a single
// empty data chunk so the transfer still round-trips.
//
// maxFragmentSize <= 0 is a programmer error and panics.
func FragmentPayload(data []byte, maxFragmentSize int) ([][]byte, error) {
	if maxFragmentSize <= 0 {
		panic(fmt.Sprintf("frag: maxFragmentSize must be positive, got %d", maxFragmentSize))
	}

	id, err := GenerateBatchID()
	if err != nil {
		return nil, err
	}

	count := (len(data) + maxFragmentSize - 1) / maxFragmentSize
	if count == 0 {
		count = 1
	}

	chunks := make([][]byte, 0, count+1)
	chunks = append(chunks, EncodeFragmentHeader(id, uint32(count), uint32(len(data))))
	for i := 0; i < count; i++ {
		start := i * maxFragmentSize
		end := start + maxFragmentSize
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, EncodeFragmentData(id, uint32(i), data[start:end]))
	}
	return chunks, nil
}

// ShouldFragment reports whether a payload of the given size must be split
// before sending. Equality with the threshold does not fragment.
func ShouldFragment(payloadSize, thresholdSize int) bool {
	return payloadSize > thresholdSize
}

// FragmentationOverhead returns the total framing cost in bytes of sending a
// payload of totalSize fragmented at maxFragmentSize: one header chunk plus
// the fixed prefix of every data chunk. Pure cost model for callers deciding
// fragmentation policy.
//
// maxFragmentSize <= 0 is a programmer error and panics.
func FragmentationOverhead(totalSize, maxFragmentSize int) int {
	if maxFragmentSize <= 0 {
		panic(fmt.Sprintf("frag: maxFragmentSize must be positive, got %d", maxFragmentSize))
	}
	count := (totalSize + maxFragmentSize - 1) / maxFragmentSize
	return HeaderChunkSize + DataPrefixSize*count
}
