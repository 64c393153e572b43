// SPDX-License-Identifier: Apache-2.0

// Package hash implements the 2-to-1 compression function used throughout
// the accumulator: keccak256 over two 32-byte operands, in either an
// "ordered" (position-preserving) or "sorted" (commutative) arrangement.
package hash

import (
	"github.com/ethereum/go-ethereum/crypto"
)

// Size is the length in bytes of every hash value handled by this package:
// leaf images, internal node hashes, and roots are all Size bytes.
const Size = 32

// Digest is a single 32-byte hash value.
type Digest = [Size]byte

// Mode selects how two child hashes are combined into their parent.
//
// Ordered preserves left/right position, which is what makes index
// inference (proof.InferIndices) possible. Sorted discards position by
// hashing the numerically smaller operand first, which shortens multi-proofs
// (no orders stream) at the cost of that inference ability. The two are not
// interchangeable: a tree built under one mode produces different roots
// than the same leaves under the other.
type Mode int

const (
	// Ordered computes H(a, b) = keccak256(a || b).
	Ordered Mode = iota
	// Sorted computes H(min(a,b), max(a,b)) = keccak256(min || max).
	Sorted
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Ordered:
		return "ordered"
	case Sorted:
		return "sorted"
	default:
		return "unknown"
	}
}

// Pair combines two 32-byte digests into their parent hash, according to m.
func Pair(m Mode, a, b Digest) Digest {
	if m == Sorted {
		if less(b, a) {
			a, b = b, a
		}
	}
	return compress(a, b)
}

// less reports whether a is strictly less than b when both are interpreted
// as big-endian unsigned integers.
func less(a, b Digest) bool {
	for i := 0; i < Size; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// compress is the raw 2-to-1 compression function H(a, b) = keccak256(a||b),
// with no reordering. Both C2's tree builder and the C4 multi-proof
// automaton call this directly when they have already decided operand
// order (or when the mode is Ordered and the caller supplies the order).
func compress(a, b Digest) Digest {
	buf := make([]byte, 2*Size)
	copy(buf[:Size], a[:])
	copy(buf[Size:], b[:])
	sum := crypto.Keccak256(buf)
	var out Digest
	copy(out[:], sum)
	return out
}

// LeafImage hashes a bare leaf with a zero domain separator, producing the
// value that is actually inserted into the tree. Bare leaves never enter
// interior hashes directly — every algorithm in this module operates on
// leaf images.
func LeafImage(leaf []byte) Digest {
	var zero Digest
	buf := make([]byte, Size+len(leaf))
	copy(buf[:Size], zero[:])
	copy(buf[Size:], leaf)
	sum := crypto.Keccak256(buf)
	var out Digest
	copy(out[:], sum)
	return out
}

// BindCount folds the element count into an internal root, producing the
// externally visible root: root = H(N as 32 bytes, internalRoot). This
// defends against length-extension ambiguity between trees of different
// sizes that would otherwise share internal structure — e.g. a 3-leaf tree
// and its 4-leaf extension with a duplicated third leaf would collide
// without it.
func BindCount(n uint64, internalRoot Digest) Digest {
	var nBytes Digest
	putUint64BE(nBytes[:], n)
	return compress(nBytes, internalRoot)
}

func putUint64BE(dst []byte, v uint64) {
	dst[24] = byte(v >> 56)
	dst[25] = byte(v >> 48)
	dst[26] = byte(v >> 40)
	dst[27] = byte(v >> 32)
	dst[28] = byte(v >> 24)
	dst[29] = byte(v >> 16)
	dst[30] = byte(v >> 8)
	dst[31] = byte(v)
}
