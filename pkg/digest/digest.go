// Package digest fingerprints values by hashing their canonical encoding
// with BLAKE2b.
//
// Because the wire encoder always writes minimal-width heads, two values
// that are equal as data have equal digests, whatever encoding they were
// originally read from.
package digest

import (
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"

	"github.com/mash-protocol/cbor-go/pkg/wire"
)

// Size is the length of a Sum in bytes.
const Size = blake2b.Size256

// Sum is a 256-bit BLAKE2b digest.
type Sum [Size]byte

// String returns the digest as lowercase hex.
func (s Sum) String() string {
	return hex.EncodeToString(s[:])
}

// IsZero reports whether s is the zero Sum.
func (s Sum) IsZero() bool {
	return s == Sum{}
}

// Parse parses a hex digest as returned by Sum.String.
func Parse(s string) (Sum, error) {
	var sum Sum
	b, err := hex.DecodeString(s)
	if err != nil {
		return sum, fmt.Errorf("invalid digest: %w", err)
	}
	if len(b) != Size {
		return sum, fmt.Errorf("invalid digest length %d, want %d", len(b), Size)
	}
	copy(sum[:], b)
	return sum, nil
}

// OfBytes hashes raw bytes.
func OfBytes(data []byte) Sum {
	return blake2b.Sum256(data)
}

// Of hashes the canonical encoding of v.
func Of(v wire.Encodable) (Sum, error) {
	h, _ := blake2b.New256(nil)
	var sum Sum
	if err := write(h, v); err != nil {
		return sum, err
	}
	h.Sum(sum[:0])
	return sum, nil
}

// Keyed computes a keyed digest (a MAC) of the canonical encoding of v.
// The key may be at most 64 bytes.
func Keyed(key []byte, v wire.Encodable) (Sum, error) {
	var sum Sum
	h, err := blake2b.New256(key)
	if err != nil {
		return sum, fmt.Errorf("digest key: %w", err)
	}
	if err := write(h, v); err != nil {
		return sum, err
	}
	h.Sum(sum[:0])
	return sum, nil
}

// Sized hashes the canonical encoding of v into a digest of size bytes,
// between 1 and 64.
func Sized(size int, v wire.Encodable) ([]byte, error) {
	h, err := blake2b.New(size, nil)
	if err != nil {
		return nil, fmt.Errorf("digest size %d: %w", size, err)
	}
	if err := write(h, v); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// Equal reports whether a and b have the same digest.
func Equal(a, b wire.Encodable) (bool, error) {
	da, err := Of(a)
	if err != nil {
		return false, err
	}
	db, err := Of(b)
	if err != nil {
		return false, err
	}
	return da == db, nil
}

func write(h hash.Hash, v wire.Encodable) error {
	if err := wire.NewEncoder(h).Encode(v); err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}
	return nil
}
