// SPDX-License-Identifier: Apache-2.0

package proof

import (
	"fmt"
	"math/bits"

	"github.com/kilnlabs/merkleaccum/hash"
	"github.com/kilnlabs/merkleaccum/merkletree"
)

// AppendProof authorizes extending an N-element tree with new leaves
// (component C5). Its decommitments are the frontier: the perfect-subtree
// roots along the right edge of the tree, one per set bit of N, ordered
// top-to-bottom (largest subtree first). This set is fixed by N alone —
// the same AppendProof underwrites appending one leaf or many.
type AppendProof struct {
	Mode          hash.Mode
	ElementCount  uint64
	Decommitments []hash.Digest
}

// GenerateAppend builds the frontier decommitment set for t.
func GenerateAppend(t *merkletree.Tree) (*AppendProof, error) {
	decs, _ := frontier(t)
	return &AppendProof{
		Mode:          t.Mode(),
		ElementCount:  t.N(),
		Decommitments: decs,
	}, nil
}

// frontier walks the set bits of t.N() from most to least significant,
// fetching the corresponding complete-subtree root from t at each one, and
// returns both the ordered decommitment list and the bit->value mapping
// (the latter is what the multi-append fold needs to know which tree
// level, if any, must absorb a decommitment).
func frontier(t *merkletree.Tree) ([]hash.Digest, map[int]hash.Digest) {
	n, l := t.N(), t.L()
	byBit := make(map[int]hash.Digest)
	var ordered []hash.Digest

	s := uint64(0)
	top := bits.Len64(n)
	for b := top - 1; b >= 0; b-- {
		if n&(uint64(1)<<uint(b)) == 0 {
			continue
		}
		flat := (l + s) >> uint(b)
		val, _ := t.Node(flat)
		byBit[b] = val
		ordered = append(ordered, val)
		s += uint64(1) << uint(b)
	}
	return ordered, byBit
}

// bitDecommitments reconstructs the bit->value frontier mapping from an
// AppendProof's ordered decommitment list, given only the element count
// (no Tree available on the verifier side).
func bitDecommitments(n uint64, decs []hash.Digest) (map[int]hash.Digest, error) {
	out := make(map[int]hash.Digest)
	top := bits.Len64(n)
	i := 0
	for b := top - 1; b >= 0; b-- {
		if n&(uint64(1)<<uint(b)) == 0 {
			continue
		}
		if i >= len(decs) {
			return nil, fmt.Errorf("%w: too few append decommitments for elementCount %d", merkletree.ErrMalformedProof, n)
		}
		out[b] = decs[i]
		i++
	}
	if i != len(decs) {
		return nil, fmt.Errorf("%w: too many append decommitments for elementCount %d", merkletree.ErrMalformedProof, n)
	}
	return out, nil
}

// OldInternalRoot folds p's decommitments alone (largest first) into the
// internal root of the N-element tree p was generated against.
func (p *AppendProof) OldInternalRoot() (hash.Digest, error) {
	if int(popcount(p.ElementCount)) != len(p.Decommitments) {
		return hash.Digest{}, fmt.Errorf("%w: decommitment count does not match popcount(N)", merkletree.ErrMalformedProof)
	}
	if p.ElementCount == 0 {
		return hash.Digest{}, nil
	}
	return foldFrontier(p.Mode, p.Decommitments), nil
}

// foldFrontier folds a top-to-bottom ordered chunk list alone, with no new
// leaves: H(chunks[0], H(chunks[1], ..., chunks[len-1])).
func foldFrontier(mode hash.Mode, chunks []hash.Digest) hash.Digest {
	h := chunks[len(chunks)-1]
	for i := len(chunks) - 2; i >= 0; i-- {
		h = hash.Pair(mode, chunks[i], h)
	}
	return h
}

// verifyOldRoot checks that p's frontier folds to claimedOldRoot, handling
// the bare-zero-root convention for N == 0.
func (p *AppendProof) verifyOldRoot(claimedOldRoot hash.Digest) error {
	if p.ElementCount == 0 {
		var zero hash.Digest
		if claimedOldRoot != zero {
			return merkletree.ErrRootMismatch
		}
		return nil
	}
	internal, err := p.OldInternalRoot()
	if err != nil {
		return err
	}
	if hash.BindCount(p.ElementCount, internal) != claimedOldRoot {
		return merkletree.ErrRootMismatch
	}
	return nil
}

// ApplyAppendSingle verifies p against claimedOldRoot and returns the root
// after appending one new leaf.
func ApplyAppendSingle(p *AppendProof, newLeaf []byte, claimedOldRoot hash.Digest) (hash.Digest, error) {
	if err := p.verifyOldRoot(claimedOldRoot); err != nil {
		return hash.Digest{}, err
	}
	h := hash.LeafImage(newLeaf)
	for i := len(p.Decommitments) - 1; i >= 0; i-- {
		h = hash.Pair(p.Mode, p.Decommitments[i], h)
	}
	newN := p.ElementCount + 1
	return hash.BindCount(newN, h), nil
}

// ApplyAppendMulti verifies p against claimedOldRoot and returns the root
// after appending newLeaves in order.
func ApplyAppendMulti(p *AppendProof, newLeaves [][]byte, claimedOldRoot hash.Digest) (hash.Digest, error) {
	if err := p.verifyOldRoot(claimedOldRoot); err != nil {
		return hash.Digest{}, err
	}
	internal, err := foldAppend(p.Mode, p.ElementCount, p.Decommitments, newLeaves)
	if err != nil {
		return hash.Digest{}, err
	}
	newN := p.ElementCount + uint64(len(newLeaves))
	return hash.BindCount(newN, internal), nil
}

// foldAppend builds the new leaves' own subtree bottom-up, absorbing a
// frontier chunk at any level whose bit is set in elementCount, and returns
// the resulting internal root. With no new leaves it degenerates to a
// plain frontier fold.
func foldAppend(mode hash.Mode, elementCount uint64, decommitments []hash.Digest, newLeaves [][]byte) (hash.Digest, error) {
	if len(newLeaves) == 0 {
		if len(decommitments) == 0 {
			return hash.Digest{}, nil
		}
		return foldFrontier(mode, decommitments), nil
	}

	byBit, err := bitDecommitments(elementCount, decommitments)
	if err != nil {
		return hash.Digest{}, err
	}

	working := make([]hash.Digest, len(newLeaves))
	for i, leaf := range newLeaves {
		working[i] = hash.LeafImage(leaf)
	}

	highest := bits.Len64(elementCount)
	for level := 0; level < highest || len(working) > 1; level++ {
		if d, ok := byBit[level]; ok {
			working[0] = hash.Pair(mode, d, working[0])
		}
		var next []hash.Digest
		i := 0
		for i+1 < len(working) {
			next = append(next, hash.Pair(mode, working[i], working[i+1]))
			i += 2
		}
		if i < len(working) {
			next = append(next, working[i])
		}
		working = next
	}
	return working[0], nil
}

func popcount(n uint64) int { return bits.OnesCount64(n) }
