// Package fragwire carries variable-size, CBOR-encoded application messages
// over transports whose frames are capacity-limited, such as WebRTC data
// channels capped near 16KB.
//
// # Overview
//
// Oversized payloads are split at the sender into bounded wire chunks and
// reliably reassembled at the receiver, tolerating out-of-order arrival,
// duplicate fragments, malformed input, interleaved in-flight transfers, and
// stalled transfers — all under configurable memory ceilings.
//
// # Organization
//
// The library is organized into the following main packages:
//
//   - github.com/localrivet/fragwire/frag: batch identifiers, the payload
//     framer, and the transport payload parser
//   - github.com/localrivet/fragwire/reassembly: the stateful fragment
//     reassembler with eviction and timeout policy
//   - github.com/localrivet/fragwire/codec: the outer message frame around
//     CBOR-encoded application messages
//   - github.com/localrivet/fragwire/transport: transport drivers wired
//     through the fragmentation layer
//
// # Basic Usage
//
//	chunks, err := frag.FragmentPayload(encoded, 15*1024)
//	// send each chunk over the transport...
//
//	r := reassembly.New(reassembly.Config{Timeout: 30 * time.Second})
//	res := r.ReceiveRaw(chunk)
//	if res.Status == reassembly.StatusComplete {
//	    // res.Data is the original payload
//	}
package fragwire

// Version is the current version of the fragwire library.
const Version = "0.1.0"
