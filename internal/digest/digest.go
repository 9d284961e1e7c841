// Package digest computes content digests recorded in gate summaries.
package digest

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Prefix tags digests with the algorithm that produced them.
const Prefix = "blake3:"

// Bytes returns the prefixed, hex-encoded blake3 digest of data.
func Bytes(data []byte) string {
	sum := blake3.Sum256(data)
	return Prefix + hex.EncodeToString(sum[:])
}

// String returns the digest of s.
func String(s string) string {
	return Bytes([]byte(s))
}
