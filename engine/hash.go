package engine

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash is the SHA-256 content hash of a source unit. It is the
// cache key: deterministic, and for practical purposes collision-free.
type ContentHash [32]byte

// HashSource computes the content hash of source text.
//
// The hash is computed over the raw UTF-8 byte sequence, so byte-identical
// sources share a key and any single-character change produces a
// different one. No normalization is applied; whitespace is significant.
func HashSource(source string) ContentHash {
	return sha256.Sum256([]byte(source))
}

// String returns the hash in hex form, as used for logging and as the
// persistent store key.
func (h ContentHash) String() string {
	return hex.EncodeToString(h[:])
}
