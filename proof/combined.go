// SPDX-License-Identifier: Apache-2.0

package proof

import (
	"fmt"

	"github.com/kilnlabs/merkleaccum/hash"
	"github.com/kilnlabs/merkleaccum/merkletree"
)

// MinimumCombinedProofIndex returns M(N): the smallest leaf index a
// combined update+append proof may touch. N with its lowest set bit
// cleared isolates the leftmost boundary of the final, still-incomplete
// frontier chunk — the only region whose decommitments can double as both
// update and append material.
func MinimumCombinedProofIndex(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return n & (n - 1)
}

// CombinedProof authorizes simultaneously updating a set of leaves at or
// above MinimumCombinedProofIndex(N) and appending new leaves (component
// C6). Append is the standard frontier of N; UpdateProof is a multi-proof
// scoped to the aligned subtree [M, N) — the one frontier chunk an update
// is allowed to touch — with indices relative to M.
type CombinedProof struct {
	ElementCount uint64
	Append       *AppendProof
	UpdateProof  *Multiproof
}

// GenerateCombined builds a combined proof from the full leaf set and a set
// of update indices, all of which must be >= MinimumCombinedProofIndex(N).
func GenerateCombined(mode hash.Mode, leaves [][]byte, updateIndices []uint64) (*CombinedProof, error) {
	n := uint64(len(leaves))
	if err := checkAscending(updateIndices); err != nil {
		return nil, err
	}
	m := MinimumCombinedProofIndex(n)
	if updateIndices[0] < m {
		return nil, merkletree.ErrMinimumIndexViolation
	}

	t, err := merkletree.Build(mode, leaves)
	if err != nil {
		return nil, err
	}
	ap, err := GenerateAppend(t)
	if err != nil {
		return nil, err
	}

	subTree, err := merkletree.Build(mode, leaves[m:])
	if err != nil {
		return nil, err
	}
	relIndices := make([]uint64, len(updateIndices))
	for i, idx := range updateIndices {
		relIndices[i] = idx - m
	}
	mp, err := GenerateMulti(subTree, relIndices)
	if err != nil {
		return nil, err
	}

	return &CombinedProof{ElementCount: n, Append: ap, UpdateProof: mp}, nil
}

// ApplyCombined verifies cp against claimedOldRoot, then applies the
// updates (oldSubLeaves/newSubLeaves cover exactly the updated indices
// originally passed to GenerateCombined, in ascending order — not the
// full [M, N) range; cp.UpdateProof's own decommitments supply the rest)
// and the appends (appendLeaves, in order), returning the resulting root.
func ApplyCombined(cp *CombinedProof, minUpdateIndex uint64, oldSubLeaves, newSubLeaves [][]byte, appendLeaves [][]byte, claimedOldRoot hash.Digest) (hash.Digest, error) {
	n := cp.ElementCount
	if minUpdateIndex < MinimumCombinedProofIndex(n) {
		return hash.Digest{}, merkletree.ErrMinimumIndexViolation
	}
	if cp.Append.ElementCount != n {
		return hash.Digest{}, fmt.Errorf("%w: append proof element count does not match combined proof", merkletree.ErrMalformedProof)
	}
	if len(cp.Append.Decommitments) == 0 {
		return hash.Digest{}, fmt.Errorf("%w: combined proof requires a non-empty frontier", merkletree.ErrMalformedProof)
	}

	if err := cp.Append.verifyOldRoot(claimedOldRoot); err != nil {
		return hash.Digest{}, err
	}

	staleChunk := cp.Append.Decommitments[len(cp.Append.Decommitments)-1]
	oldChunk, err := FoldMulti(cp.UpdateProof, oldSubLeaves)
	if err != nil {
		return hash.Digest{}, err
	}
	if oldChunk != staleChunk {
		return hash.Digest{}, merkletree.ErrRootMismatch
	}

	freshChunk, err := FoldMulti(cp.UpdateProof, newSubLeaves)
	if err != nil {
		return hash.Digest{}, err
	}

	newDecommitments := make([]hash.Digest, len(cp.Append.Decommitments))
	copy(newDecommitments, cp.Append.Decommitments)
	newDecommitments[len(newDecommitments)-1] = freshChunk

	internal, err := foldAppend(cp.Append.Mode, n, newDecommitments, appendLeaves)
	if err != nil {
		return hash.Digest{}, err
	}
	newN := n + uint64(len(appendLeaves))
	return hash.BindCount(newN, internal), nil
}
