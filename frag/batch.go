package frag

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// BatchIDSize is the wire size of a batch identifier in bytes.
const BatchIDSize = 8

// KeySize is the length of the canonical hex key form of a BatchID.
const KeySize = 2 * BatchIDSize

// BatchID identifies one fragmented transfer. Every fragment of the transfer
// carries the same id on the wire.
type BatchID [BatchIDSize]byte

// GenerateBatchID returns a cryptographically random batch identifier.
func GenerateBatchID() (BatchID, error) {
	var id BatchID
	if _, err := rand.Read(id[:]); err != nil {
		return BatchID{}, fmt.Errorf("failed to generate batch id: %w", err)
	}
	return id, nil
}

// Key returns the canonical 16-character lowercase hex form of the id,
// suitable as a table key. ParseKey inverts it for every possible value.
func (id BatchID) Key() string {
	return hex.EncodeToString(id[:])
}

// String implements fmt.Stringer using the canonical key form.
func (id BatchID) String() string {
	return id.Key()
}

// ParseKey converts a canonical hex key back to a BatchID.
func ParseKey(key string) (BatchID, error) {
	if len(key) != KeySize {
		return BatchID{}, fmt.Errorf("batch key must be %d hex characters, got %d", KeySize, len(key))
	}
	raw, err := hex.DecodeString(key)
	if err != nil {
		return BatchID{}, fmt.Errorf("invalid batch key %q: %w", key, err)
	}
	var id BatchID
	copy(id[:], raw)
	return id, nil
}
