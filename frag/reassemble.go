package frag

// ReassembleFragments concatenates a batch's data fragments in ascending
// index order and checks the result against the header's declared size.
// Every index in [0, header.Count) must be present exactly once in
// fragments, and no index may fall outside that range. Failures are
// *ReassembleError values.
func ReassembleFragments(header FragmentHeader, fragments map[uint32][]byte) ([]byte, error) {
	var missing []uint32
	for i := uint32(0); i < header.Count; i++ {
		if _, ok := fragments[i]; !ok {
			missing = append(missing, i)
		}
	}
	if len(missing) > 0 {
		return nil, &ReassembleError{Kind: KindMissingFragments, BatchID: header.BatchID, Missing: missing}
	}

	for idx := range fragments {
		if idx >= header.Count {
			return nil, &ReassembleError{Kind: KindInvalidIndex, BatchID: header.BatchID, Index: idx, Count: header.Count}
		}
	}

	out := make([]byte, 0, header.TotalSize)
	for i := uint32(0); i < header.Count; i++ {
		out = append(out, fragments[i]...)
	}
	if len(out) != int(header.TotalSize) {
		return nil, &ReassembleError{Kind: KindSizeMismatch, BatchID: header.BatchID, Got: len(out), Want: header.TotalSize}
	}
	return out, nil
}
