// SPDX-License-Identifier: Apache-2.0

package proof

import (
	"fmt"

	"github.com/kilnlabs/merkleaccum/hash"
	"github.com/kilnlabs/merkleaccum/merkletree"
)

// InferIndices recovers the leaf indices a Multiproof was generated
// against, given only the number of proved leaves (component C7). It
// mirrors the read/write cursor pattern of the verification automaton
// (package multi.go), but merges leaf-identity groups instead of hash
// values, reconstructing each leaf's index bit by bit as its group rejoins
// the tree. Only meaningful for Mode == hash.Ordered — sorted-hash proofs
// carry no positional information by construction.
func InferIndices(mp *Multiproof, numLeaves int) ([]uint64, error) {
	if mp.Mode != hash.Ordered {
		return nil, fmt.Errorf("proof: index inference requires an ordered-hash proof")
	}
	if err := mp.validate(); err != nil {
		return nil, err
	}
	m := numLeaves
	if m == 0 {
		return nil, fmt.Errorf("%w: no leaves", merkletree.ErrMalformedProof)
	}

	// groups[slot] holds the set of original (0-based, ascending) leaf
	// positions currently represented by buffer slot `slot`, placed
	// reversed to match foldMulti's leaf-image buffer.
	groups := make([][]int, m)
	for i := 0; i < m; i++ {
		groups[m-1-i] = []int{i}
	}
	indices := make([]uint64, m)
	bitsPushed := make([]int, m)

	read, write := 0, 0
	for s := 0; s < mp.HashCount; s++ {
		if mp.Skips[s] {
			for _, leaf := range groups[read] {
				bitsPushed[leaf]++
			}
			groups[write] = groups[read]
			read = (read + 1) % m
			write = (write + 1) % m
			continue
		}

		var rightGroup []int
		if mp.Flags[s] {
			rightGroup = groups[read]
			read = (read + 1) % m
		}
		leftGroup := groups[read]
		read = (read + 1) % m

		if mp.Flags[s] {
			// Both children are already-known hashes, which forces
			// orders[s] == true always (see multi.go's generation loop:
			// flags == (lKnown == rKnown), and relevant nodes only reach
			// this branch with both sides true) — so orders carries no
			// information here. The buffer's read order alone tells left
			// from right: the group read first always sits structurally
			// to the right of the one read second (the circular buffer
			// preserves original left-to-right adjacency as groups merge),
			// so the right-read group's bit is 1 and the left-read
			// group's bit is 0.
			for _, leaf := range rightGroup {
				indices[leaf] |= uint64(1) << uint(bitsPushed[leaf])
				bitsPushed[leaf]++
			}
			for _, leaf := range leftGroup {
				bitsPushed[leaf]++
			}
		} else {
			// Only the buffer-sourced side is a real leaf group; the
			// other operand is a decommitment with no identity to track.
			// orders[s] here does carry information: it is the recorded
			// lKnown from generation, so !orders[s] means the known side
			// was the tree-right child.
			setBit := !mp.Orders[s]
			for _, leaf := range leftGroup {
				if setBit {
					indices[leaf] |= uint64(1) << uint(bitsPushed[leaf])
				}
				bitsPushed[leaf]++
			}
		}

		merged := append(append([]int{}, leftGroup...), rightGroup...)
		groups[write] = merged
		write = (write + 1) % m
	}

	return indices, nil
}
