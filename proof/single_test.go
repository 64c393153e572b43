// SPDX-License-Identifier: Apache-2.0

package proof

import (
	"testing"

	"github.com/kilnlabs/merkleaccum/hash"
	"github.com/kilnlabs/merkleaccum/merkletree"
)

func leafBytes(seed byte, n int) [][]byte {
	leaves := make([][]byte, n)
	for i := range leaves {
		leaf := make([]byte, hash.Size)
		for j := range leaf {
			leaf[j] = seed + byte(i) + byte(j)
		}
		leaves[i] = leaf
	}
	return leaves
}

func TestSingleProofRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 8, 9, 12, 17} {
		leaves := leafBytes(0x01, n)
		tr, err := merkletree.Build(hash.Ordered, leaves)
		if err != nil {
			t.Fatalf("n=%d Build: %v", n, err)
		}
		for i := 0; i < n; i++ {
			p, err := Generate(tr, uint64(i))
			if err != nil {
				t.Fatalf("n=%d i=%d Generate: %v", n, i, err)
			}
			ok, err := Verify(p, leaves[i], tr.Root())
			if err != nil {
				t.Fatalf("n=%d i=%d Verify: %v", n, i, err)
			}
			if !ok {
				t.Fatalf("n=%d i=%d: proof did not verify", n, i)
			}
		}
	}
}

func TestSingleProofRejectsWrongLeaf(t *testing.T) {
	leaves := leafBytes(0x01, 5)
	tr, err := merkletree.Build(hash.Ordered, leaves)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p, err := Generate(tr, 2)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	ok, err := Verify(p, leaves[3], tr.Root())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("proof for index 2 verified against leaf 3's content")
	}
}

func TestSingleProofSortedModeRoundTrip(t *testing.T) {
	leaves := leafBytes(0x20, 7)
	tr, err := merkletree.Build(hash.Sorted, leaves)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 0; i < 7; i++ {
		p, err := Generate(tr, uint64(i))
		if err != nil {
			t.Fatalf("i=%d Generate: %v", i, err)
		}
		ok, err := Verify(p, leaves[i], tr.Root())
		if err != nil {
			t.Fatalf("i=%d Verify: %v", i, err)
		}
		if !ok {
			t.Fatalf("i=%d: sorted-mode proof did not verify", i)
		}
	}
}

func TestSingleProofApplyUpdate(t *testing.T) {
	leaves := leafBytes(0x01, 6)
	tr, err := merkletree.Build(hash.Ordered, leaves)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p, err := Generate(tr, 3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	updated := make([][]byte, len(leaves))
	copy(updated, leaves)
	updated[3] = leafBytes(0x99, 1)[0]

	newRoot, err := ApplyUpdate(p, leaves[3], updated[3], tr.Root())
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}

	wantTree, err := merkletree.Build(hash.Ordered, updated)
	if err != nil {
		t.Fatalf("Build (updated): %v", err)
	}
	if newRoot != wantTree.Root() {
		t.Fatalf("ApplyUpdate root = %x, want %x", newRoot, wantTree.Root())
	}
}

func TestSingleProofApplyUpdateRejectsStaleOldRoot(t *testing.T) {
	leaves := leafBytes(0x01, 6)
	tr, err := merkletree.Build(hash.Ordered, leaves)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p, err := Generate(tr, 3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var staleRoot hash.Digest
	_, err = ApplyUpdate(p, leaves[3], leafBytes(0x99, 1)[0], staleRoot)
	if err == nil {
		t.Fatalf("expected an error when the claimed old root is wrong")
	}
}

// TestSingleProofUnbalancedRightmostLeaf checks a 9-element unbalanced
// tree, proving the rightmost (index 8) leaf, which
// sits alone at the top of its own subtree — its single decommitment is
// the internal root of the complete 8-leaf left half.
func TestSingleProofUnbalancedRightmostLeaf(t *testing.T) {
	leaves := leafBytes(0x01, 9)
	tr, err := merkletree.Build(hash.Ordered, leaves)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	eightLeafTree, err := merkletree.Build(hash.Ordered, leaves[:8])
	if err != nil {
		t.Fatalf("Build (8-leaf): %v", err)
	}

	p, err := Generate(tr, 8)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(p.Decommitments) != 1 {
		t.Fatalf("expected exactly one decommitment for the rightmost leaf of a 9-element tree, got %d", len(p.Decommitments))
	}
	if p.Decommitments[0] != eightLeafTree.InternalRoot() {
		t.Fatalf("decommitment = %x, want the 8-leaf subtree's internal root %x", p.Decommitments[0], eightLeafTree.InternalRoot())
	}

	ok, err := Verify(p, leaves[8], tr.Root())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("rightmost-leaf proof did not verify")
	}
}
