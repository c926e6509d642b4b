// Package contenthash provides the deduplication key for chunk content.
// The hash is non-cryptographic: collisions are tolerable, stability and
// speed are what matter.
package contenthash

import "fmt"

// Hasher produces a stable identity string for a text span. The default
// is FNV32; a stronger implementation can be swapped in without changing
// the stored chunk shape.
type Hasher interface {
	Hash(text string) string
}

// FNV32 is a 32-bit FNV-1a hash over the text's byte values, rendered as
// an 8-hex-digit zero-padded lowercase string.
type FNV32 struct{}

const (
	offsetBasis uint32 = 2166136261
	prime       uint32 = 16777619
)

func (FNV32) Hash(text string) string {
	return Hash(text)
}

// Hash is the package-level convenience form of FNV32.Hash.
func Hash(text string) string {
	h := offsetBasis
	for i := 0; i < len(text); i++ {
		h ^= uint32(text[i])
		h *= prime
	}
	return fmt.Sprintf("%08x", h)
}
