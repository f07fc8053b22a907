package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
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

// Fingerprint is a deterministic hash identifying a computed result,
// used to detect whether a summary changed between renders.
type Fingerprint Hash

// String conversion
func (f Fingerprint) String() string { return Hash(f).String() }

// ComputeFingerprint hashes an account plus a set of named metric values.
// Keys are sorted so identical inputs always produce identical fingerprints.
func ComputeFingerprint(account AccountID, metrics map[string]float64) Fingerprint {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	data.WriteString(account.String())
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("%.6f", metrics[key]))
	}

	return Fingerprint(NewHash([]byte(data.String())))
}
