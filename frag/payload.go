// Package frag implements the wire-level fragmentation protocol: batch
// identifiers, the payload framer that splits oversized messages into bounded
// chunks, and the parser that recognizes the three wire shapes on receive.
//
// The wire format uses a single marker byte followed by big-endian fields:
//   - Complete message: [0x01][payload...]
//   - Fragment header:  [0x02][batchId:8][count:u32][totalSize:u32] — 17 bytes fixed
//   - Fragment data:    [0x03][batchId:8][index:u32][data...] — 13-byte fixed prefix
package frag

// Marker bytes identifying the three wire shapes. Always the first byte of a
// transport payload.
const (
	MarkerComplete       = 0x01
	MarkerFragmentHeader = 0x02
	MarkerFragmentData   = 0x03
)

const (
	// HeaderChunkSize is the exact size of an encoded fragment header chunk.
	HeaderChunkSize = 17

	// DataPrefixSize is the fixed prefix length of a fragment data chunk;
	// the data portion that follows may be empty.
	DataPrefixSize = 13

	// CompleteOverhead is the framing cost of a complete (unfragmented) message.
	CompleteOverhead = 1
)

// Payload is a parsed transport payload. It is exactly one of
// CompleteMessage, FragmentHeader, or FragmentData; consumers should switch
// over all three shapes.
type Payload interface {
	payload()
}

// CompleteMessage is a message that fit in a single chunk. No reassembly is
// needed; Data is the original payload.
type CompleteMessage struct {
	Data []byte
}

// FragmentHeader announces a fragmented transfer: Count data fragments whose
// concatenation is TotalSize bytes, all carrying BatchID.
type FragmentHeader struct {
	BatchID   BatchID
	Count     uint32
	TotalSize uint32
}

// FragmentData is one slice of a fragmented transfer. Index is in
// [0, Count) of the corresponding header.
type FragmentData struct {
	BatchID BatchID
	Index   uint32
	Data    []byte
}

func (CompleteMessage) payload() {}
func (FragmentHeader) payload()  {}
func (FragmentData) payload()    {}
