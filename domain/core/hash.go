package core

import (
	"crypto/sha256"
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

// Fingerprint is the determinism fingerprint of one generated sequence
type Fingerprint Hash

func (f Fingerprint) String() string { return Hash(f).String() }

// ComputeFingerprint hashes the ordered parts that fully determine a sequence.
// Parts are joined with a separator that cannot appear in their %v rendering.
func ComputeFingerprint(parts ...interface{}) Fingerprint {
	var data strings.Builder
	for i, part := range parts {
		if i > 0 {
			data.WriteString("\x1f")
		}
		data.WriteString(fmt.Sprintf("%v", part))
	}
	return Fingerprint(NewHash([]byte(data.String())))
}
