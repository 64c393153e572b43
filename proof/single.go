// SPDX-License-Identifier: Apache-2.0

// Package proof implements the proof families that sit on top of the
// accumulator tree (package merkletree): single-element proofs (C3),
// multi-element proofs (C4), append proofs (C5), combined update+append
// proofs (C6), index inference (C7), and size proofs (C8).
package proof

import (
	"fmt"

	"github.com/kilnlabs/merkleaccum/hash"
	"github.com/kilnlabs/merkleaccum/merkletree"
)

// Proof is a single-element membership proof (component C3). Decommitments
// are stored root-to-leaf: the topmost sibling first, the one adjacent to
// the leaf last.
type Proof struct {
	Mode          hash.Mode
	ElementCount  uint64
	Index         uint64
	Decommitments []hash.Digest
}

// Generate builds a single-element proof for leaf index.
func Generate(t *merkletree.Tree, index uint64) (*Proof, error) {
	if index >= t.N() {
		return nil, fmt.Errorf("proof: index %d out of range for %d elements", index, t.N())
	}

	var leafToRoot []hash.Digest
	p := t.LeafIndex(index)
	for p > 1 {
		sibling := p ^ 1
		if val, present := t.Node(sibling); present {
			leafToRoot = append(leafToRoot, val)
		}
		p /= 2
	}

	decommitments := make([]hash.Digest, len(leafToRoot))
	for i, v := range leafToRoot {
		decommitments[len(leafToRoot)-1-i] = v
	}

	return &Proof{
		Mode:          t.Mode(),
		ElementCount:  t.N(),
		Index:         index,
		Decommitments: decommitments,
	}, nil
}

// Verify checks that leaf, read from position p.Index in an N=p.ElementCount
// tree, folds through p.Decommitments to claimedRoot.
func Verify(p *Proof, leaf []byte, claimedRoot hash.Digest) (bool, error) {
	folded, err := fold(p, leaf)
	if err != nil {
		return false, err
	}
	return hash.BindCount(p.ElementCount, folded) == claimedRoot, nil
}

// ApplyUpdate verifies that leaf folds to oldRoot through p, then returns the
// root that results from replacing that leaf's value with newLeaf. Both
// computations share the same decommitments, since an update never touches
// unrelated siblings.
func ApplyUpdate(p *Proof, leaf, newLeaf []byte, oldRoot hash.Digest) (hash.Digest, error) {
	ok, err := Verify(p, leaf, oldRoot)
	if err != nil {
		return hash.Digest{}, err
	}
	if !ok {
		return hash.Digest{}, merkletree.ErrRootMismatch
	}
	folded, err := fold(p, newLeaf)
	if err != nil {
		return hash.Digest{}, err
	}
	return hash.BindCount(p.ElementCount, folded), nil
}

// fold runs p's decommitments against leaf and returns the resulting
// internal root (before N is bound in).
func fold(p *Proof, leaf []byte) (hash.Digest, error) {
	n := p.ElementCount
	l := merkletree.NextPowerOfTwo(n)
	if p.Index >= n {
		return hash.Digest{}, fmt.Errorf("proof: index %d out of range for %d elements", p.Index, n)
	}

	cur := hash.LeafImage(leaf)
	flat := l + p.Index

	// Decommitments are stored root-to-leaf; consumed leaf-to-root during
	// this bottom-up fold, hence in reverse.
	di := len(p.Decommitments) - 1
	for flat > 1 {
		sibling := flat ^ 1
		if merkletree.Present(sibling, l, n) {
			if di < 0 {
				return hash.Digest{}, fmt.Errorf("%w: not enough decommitments", merkletree.ErrMalformedProof)
			}
			sib := p.Decommitments[di]
			di--

			if p.Mode == hash.Ordered && flat%2 == 1 {
				// flat is the right child; sib is the left.
				cur = hash.Pair(p.Mode, sib, cur)
			} else {
				cur = hash.Pair(p.Mode, cur, sib)
			}
		}
		flat /= 2
	}
	if di != -1 {
		return hash.Digest{}, fmt.Errorf("%w: unconsumed decommitments", merkletree.ErrMalformedProof)
	}
	return cur, nil
}
