package frag

import (
	"fmt"
	"strings"
)

// Kind identifies one failure class in the wire error taxonomy.
type Kind string

// Parse failures: the bytes do not decode to any wire shape.
const (
	KindEmptyPayload    Kind = "empty_payload"
	KindUnknownPrefix   Kind = "unknown_prefix"
	KindTruncatedHeader Kind = "truncated_header"
	KindTruncatedData   Kind = "truncated_data"
	KindZeroCount       Kind = "zero_count"
)

// Reassembly failures: structurally valid fragments that do not form a
// consistent whole.
const (
	KindMissingFragments Kind = "missing_fragments"
	KindInvalidIndex     Kind = "invalid_index"
	KindSizeMismatch     Kind = "size_mismatch"
)

// ParseError reports malformed wire bytes.
type ParseError struct {
	Kind   Kind
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Kind, e.Detail)
}

// ReassembleError reports a batch whose fragments cannot be combined into
// the payload its header declared.
type ReassembleError struct {
	Kind    Kind
	BatchID BatchID
	Missing []uint32 // set for missing_fragments
	Index   uint32   // set for invalid_index
	Count   uint32   // set for invalid_index
	Got     int      // set for size_mismatch: actual concatenated length
	Want    uint32   // set for size_mismatch: the header's totalSize
}

func (e *ReassembleError) Error() string {
	switch e.Kind {
	case KindMissingFragments:
		idx := make([]string, len(e.Missing))
		for i, m := range e.Missing {
			idx[i] = fmt.Sprintf("%d", m)
		}
		return fmt.Sprintf("reassemble %s: batch %s missing indices [%s]", e.Kind, e.BatchID, strings.Join(idx, " "))
	case KindInvalidIndex:
		return fmt.Sprintf("reassemble %s: batch %s index %d out of range [0,%d)", e.Kind, e.BatchID, e.Index, e.Count)
	case KindSizeMismatch:
		return fmt.Sprintf("reassemble %s: batch %s got %d bytes, header declared %d", e.Kind, e.BatchID, e.Got, e.Want)
	default:
		return fmt.Sprintf("reassemble %s: batch %s", e.Kind, e.BatchID)
	}
}
