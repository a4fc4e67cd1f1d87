package frag

import (
	"bytes"
	"errors"
	"testing"
)

func reassembleKind(t *testing.T, h FragmentHeader, frags map[uint32][]byte) *ReassembleError {
	t.Helper()
	_, err := ReassembleFragments(h, frags)
	if err == nil {
		t.Fatal("ReassembleFragments should have failed")
	}
	var rerr *ReassembleError
	if !errors.As(err, &rerr) {
		t.Fatalf("Expected *ReassembleError, got %T: %v", err, err)
	}
	return rerr
}

func TestReassembleFragments(t *testing.T) {
	id := BatchID{1, 1, 1, 1, 1, 1, 1, 1}
	h := FragmentHeader{BatchID: id, Count: 3, TotalSize: 9}
	frags := map[uint32][]byte{
		0: []byte("abc"),
		1: []byte("def"),
		2: []byte("ghi"),
	}

	out, err := ReassembleFragments(h, frags)
	if err != nil {
		t.Fatalf("ReassembleFragments failed: %v", err)
	}
	if !bytes.Equal(out, []byte("abcdefghi")) {
		t.Errorf("Expected abcdefghi, got %q", out)
	}
}

func TestReassembleMissingFragments(t *testing.T) {
	h := FragmentHeader{Count: 4, TotalSize: 8}
	frags := map[uint32][]byte{
		0: []byte("ab"),
		2: []byte("ef"),
	}

	rerr := reassembleKind(t, h, frags)
	if rerr.Kind != KindMissingFragments {
		t.Fatalf("Expected %s, got %s", KindMissingFragments, rerr.Kind)
	}
	want := []uint32{1, 3}
	if len(rerr.Missing) != len(want) {
		t.Fatalf("Expected missing %v, got %v", want, rerr.Missing)
	}
	for i, idx := range want {
		if rerr.Missing[i] != idx {
			t.Errorf("Expected missing %v, got %v", want, rerr.Missing)
			break
		}
	}
}

func TestReassembleInvalidIndex(t *testing.T) {
	h := FragmentHeader{Count: 2, TotalSize: 6}
	frags := map[uint32][]byte{
		0: []byte("ab"),
		1: []byte("cd"),
		5: []byte("ef"), // out of range
	}

	rerr := reassembleKind(t, h, frags)
	if rerr.Kind != KindInvalidIndex {
		t.Fatalf("Expected %s, got %s", KindInvalidIndex, rerr.Kind)
	}
	if rerr.Index != 5 || rerr.Count != 2 {
		t.Errorf("Expected index=5 count=2, got index=%d count=%d", rerr.Index, rerr.Count)
	}
}

func TestReassembleSizeMismatch(t *testing.T) {
	h := FragmentHeader{Count: 2, TotalSize: 100}
	frags := map[uint32][]byte{
		0: []byte("ab"),
		1: []byte("cd"),
	}

	rerr := reassembleKind(t, h, frags)
	if rerr.Kind != KindSizeMismatch {
		t.Fatalf("Expected %s, got %s", KindSizeMismatch, rerr.Kind)
	}
	if rerr.Got != 4 || rerr.Want != 100 {
		t.Errorf("Expected got=4 want=100, got got=%d want=%d", rerr.Got, rerr.Want)
	}
}

func TestReassembleEmptyBatch(t *testing.T) {
	h := FragmentHeader{Count: 1, TotalSize: 0}
	out, err := ReassembleFragments(h, map[uint32][]byte{0: nil})
	if err != nil {
		t.Fatalf("ReassembleFragments failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Expected empty payload, got %d bytes", len(out))
	}
}
