// SPDX-License-Identifier: Apache-2.0

// Package merkletree builds the flat-array accumulator tree (component C2
// of the design) over an ordered sequence of 32-byte leaves, balanced or
// not, and exposes the node accessors the proof family (package proof)
// needs to walk it.
//
// The tree is conceptually a perfect binary tree over the next power of
// two L >= max(N, 1), with leaf images at the bottom and absent markers in
// slots beyond N. It is stored as a flat array of length 2*L: index 1 is
// the internal root, children of i are 2i and 2i+1, and leaf image i sits
// at L+i.
package merkletree

import (
	"fmt"
	"math/bits"

	"github.com/kilnlabs/merkleaccum/hash"
)

// MaxElementCount is the largest element count the wire format's 32-byte
// count field and the combined-proof arithmetic can address: N < 2^32.
const MaxElementCount = 1<<32 - 1

// Tree is an immutable accumulator over N leaves. Updates (single, multi,
// append, combined) never mutate a Tree; they describe a transition from
// one root to another and are applied by the verifier side (package
// proof), not by recomputing a Tree in place.
type Tree struct {
	mode    hash.Mode
	n       uint64
	l       uint64
	nodes   []hash.Digest
	present []bool
}

// Mode returns the hash variant (ordered or sorted) this tree was built
// with. Trees and proofs are parameterized by this choice; they are not
// interchangeable at runtime.
func (t *Tree) Mode() hash.Mode { return t.mode }

// N returns the element count bound into the root.
func (t *Tree) N() uint64 { return t.n }

// L returns the width of the perfect binary tree backing this accumulator
// (the smallest power of two >= max(N, 1)).
func (t *Tree) L() uint64 { return t.l }

// Build constructs a Tree from an ordered sequence of 32-byte leaves.
//
// Build returns ErrCapacityExceeded if len(leaves) >= 2^32, and an error if
// any leaf is not exactly hash.Size bytes.
func Build(mode hash.Mode, leaves [][]byte) (*Tree, error) {
	n := uint64(len(leaves))
	if n > MaxElementCount {
		return nil, fmt.Errorf("%w: %d elements exceeds 2^32-1", ErrCapacityExceeded, n)
	}
	for i, leaf := range leaves {
		if len(leaf) != hash.Size {
			return nil, fmt.Errorf("merkletree: leaf %d has length %d, want %d", i, len(leaf), hash.Size)
		}
	}

	l := NextPowerOfTwo(n)
	t := &Tree{
		mode:    mode,
		n:       n,
		l:       l,
		nodes:   make([]hash.Digest, 2*l),
		present: make([]bool, 2*l),
	}

	for i, leaf := range leaves {
		idx := l + uint64(i)
		t.nodes[idx] = hash.LeafImage(leaf)
		t.present[idx] = true
	}

	for i := l - 1; i >= 1; i-- {
		left, right := 2*i, 2*i+1
		switch {
		case t.present[left] && t.present[right]:
			t.nodes[i] = hash.Pair(mode, t.nodes[left], t.nodes[right])
			t.present[i] = true
		case t.present[left]:
			// Right sibling missing (unbalanced tree): promote the left
			// child unchanged rather than hashing it with an absent node.
			t.nodes[i] = t.nodes[left]
			t.present[i] = true
		default:
			// Neither child present: this subtree holds no real leaf.
			t.present[i] = false
		}
	}

	return t, nil
}

// InternalRoot returns node[1], the unbound internal root (before N is
// folded in). This is what proof.Proof and proof.Multiproof verification
// reconstruct; callers almost always want Root() instead.
func (t *Tree) InternalRoot() hash.Digest {
	if !t.present[1] {
		var zero hash.Digest
		return zero
	}
	return t.nodes[1]
}

// Root returns root = H(N, tree[1]), or the bare zero root if N == 0.
func (t *Tree) Root() hash.Digest {
	if t.n == 0 {
		var zero hash.Digest
		return zero
	}
	return hash.BindCount(t.n, t.InternalRoot())
}

// Node returns the value at flat array index i and whether that slot is
// present (its subtree contains at least one real leaf). i must satisfy
// 1 <= i < 2*L.
func (t *Tree) Node(i uint64) (hash.Digest, bool) {
	if i == 0 || i >= uint64(len(t.nodes)) {
		var zero hash.Digest
		return zero, false
	}
	return t.nodes[i], t.present[i]
}

// LeafIndex returns the flat array index of leaf position k (0-based).
func (t *Tree) LeafIndex(k uint64) uint64 { return t.l + k }

// NextPowerOfTwo returns the smallest power of two >= max(n, 1).
func NextPowerOfTwo(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

// Present reports whether the subtree rooted at flat index i, in a tree of
// width l over n real leaves, contains at least one real leaf. This is a
// pure structural fact derivable from (i, l, n) alone — verifiers that only
// hold N (not a full Tree) use it to decide whether a sibling decommitment
// is expected or whether the node is promoted unchanged (the only-left-child
// case a multi-proof's skips bit encodes).
func Present(i, l, n uint64) bool {
	if i == 0 || i >= 2*l {
		return false
	}
	start, _ := subtreeRange(i, l)
	return start < n
}

// subtreeRange returns the half-open leaf range [start, start+count) spanned
// by the subtree rooted at flat index i in a tree of width l.
func subtreeRange(i, l uint64) (start, count uint64) {
	level := uint(bits.Len64(i) - 1)
	posInLevel := i - (uint64(1) << level)
	count = l >> level
	start = posInLevel * count
	return start, count
}
