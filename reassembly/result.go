package reassembly

import "fmt"

// Status classifies the outcome of feeding one transport payload to the
// reassembler.
type Status int

const (
	// StatusPending means the payload was absorbed but the batch is not
	// complete yet.
	StatusPending Status = iota

	// StatusComplete means Result.Data holds a fully reassembled message.
	StatusComplete

	// StatusError means the payload was rejected; Result.Err says why.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusComplete:
		return "complete"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ErrorType enumerates the receive failures surfaced as results.
type ErrorType string

const (
	ErrorDuplicateFragment ErrorType = "duplicate_fragment"
	ErrorInvalidIndex      ErrorType = "invalid_index"
	ErrorParse             ErrorType = "parse_error"
	ErrorSizeMismatch      ErrorType = "size_mismatch"
)

// ReceiveError describes why a payload was rejected. Rejections never abort
// the caller's receive loop and never corrupt unrelated batches.
type ReceiveError struct {
	Type    ErrorType
	BatchID string // hex batch key; empty for parse errors
	Index   uint32 // set for duplicate_fragment and invalid_index
	Count   uint32 // set for invalid_index
	Detail  string
}

func (e *ReceiveError) Error() string {
	switch e.Type {
	case ErrorDuplicateFragment:
		return fmt.Sprintf("receive %s: batch %s index %d already stored", e.Type, e.BatchID, e.Index)
	case ErrorInvalidIndex:
		return fmt.Sprintf("receive %s: batch %s index %d out of range [0,%d)", e.Type, e.BatchID, e.Index, e.Count)
	default:
		return fmt.Sprintf("receive %s: %s", e.Type, e.Detail)
	}
}

// Result is the outcome of one Receive or ReceiveRaw call.
type Result struct {
	Status Status
	Data   []byte        // set when Status is StatusComplete
	Err    *ReceiveError // set when Status is StatusError
}

func pending() Result {
	return Result{Status: StatusPending}
}

func complete(data []byte) Result {
	return Result{Status: StatusComplete, Data: data}
}

func failed(err *ReceiveError) Result {
	return Result{Status: StatusError, Err: err}
}
