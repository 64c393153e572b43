// SPDX-License-Identifier: Apache-2.0

package proof

import (
	"errors"

	"github.com/kilnlabs/merkleaccum/hash"
	"github.com/kilnlabs/merkleaccum/merkletree"
)

// SizeProofMode selects how a size proof reveals its data.
type SizeProofMode int

const (
	// SizeFull carries the standard append-proof frontier decommitment
	// set alongside an explicit element count.
	SizeFull SizeProofMode = iota
	// SizeCompact carries the same frontier, but the wire encoding omits
	// the element count (the caller already knows it).
	SizeCompact
	// SizeSimple reveals the bare internal root directly; the verifier
	// checks H(N, internalRoot) == root without any folding.
	SizeSimple
)

// SizeProof proves that (ElementCount, root) corresponds to a real element
// sequence (component C8).
type SizeProof struct {
	Mode         SizeProofMode
	ElementCount uint64
	Frontier     *AppendProof // set for SizeFull / SizeCompact
	InternalRoot hash.Digest  // set for SizeSimple
}

// GenerateSize builds a size proof for t in the requested mode.
func GenerateSize(t *merkletree.Tree, mode SizeProofMode) (*SizeProof, error) {
	if mode == SizeSimple {
		return &SizeProof{
			Mode:         SizeSimple,
			ElementCount: t.N(),
			InternalRoot: t.InternalRoot(),
		}, nil
	}
	ap, err := GenerateAppend(t)
	if err != nil {
		return nil, err
	}
	return &SizeProof{Mode: mode, ElementCount: t.N(), Frontier: ap}, nil
}

// VerifySize checks sp against claimedRoot.
func VerifySize(sp *SizeProof, claimedRoot hash.Digest) (bool, error) {
	if sp.Mode == SizeSimple {
		if sp.ElementCount == 0 {
			var zero hash.Digest
			return claimedRoot == zero, nil
		}
		return hash.BindCount(sp.ElementCount, sp.InternalRoot) == claimedRoot, nil
	}

	err := sp.Frontier.verifyOldRoot(claimedRoot)
	if err != nil {
		if errors.Is(err, merkletree.ErrRootMismatch) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
