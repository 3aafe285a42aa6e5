package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// SeedPair derives two 64-bit seed words from a base seed and a list of scope
// labels (condition ID, stage name, ...). The same inputs always yield the
// same pair, so every condition gets its own reproducible RNG stream no
// matter which other conditions run concurrently.
func SeedPair(baseSeed int64, scope ...string) (uint64, uint64) {
	var data strings.Builder
	data.WriteString(fmt.Sprintf("%d", baseSeed))
	for _, s := range scope {
		data.WriteString("|")
		data.WriteString(s)
	}

	sum := sha256.Sum256([]byte(data.String()))
	return binary.BigEndian.Uint64(sum[0:8]), binary.BigEndian.Uint64(sum[8:16])
}
