package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
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

// Short returns the first 12 hex characters, enough to tell runs apart in logs.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// DataHash fingerprints the two samples of a run.
type DataHash Hash

func (h DataHash) String() string { return Hash(h).String() }

// ComputeDataHash hashes both samples in order. The group sizes are part of the
// input so that moving a value from A to B changes the fingerprint.
func ComputeDataHash(groupA, groupB []float64) DataHash {
	buf := make([]byte, 0, 16+8*(len(groupA)+len(groupB)))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(groupA)))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(groupB)))
	for _, v := range groupA {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	for _, v := range groupB {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return DataHash(NewHash(buf))
}
