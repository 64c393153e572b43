// SPDX-License-Identifier: Apache-2.0

package merkletree

import (
	"testing"

	"github.com/kilnlabs/merkleaccum/hash"
)

func leafBytes(seed byte, n int) [][]byte {
	leaves := make([][]byte, n)
	for i := range leaves {
		leaf := make([]byte, hash.Size)
		for j := range leaf {
			leaf[j] = seed + byte(i)
		}
		leaves[i] = leaf
	}
	return leaves
}

func TestBuildRejectsWrongLeafLength(t *testing.T) {
	_, err := Build(hash.Ordered, [][]byte{{1, 2, 3}})
	if err == nil {
		t.Fatalf("expected an error for a short leaf")
	}
}

func TestBuildEmptyTreeHasZeroRoot(t *testing.T) {
	tr, err := Build(hash.Ordered, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var zero hash.Digest
	if tr.Root() != zero {
		t.Fatalf("empty tree root = %x, want zero", tr.Root())
	}
}

func TestBuildSingleLeafPromotesToRoot(t *testing.T) {
	leaves := leafBytes(0xaa, 1)
	tr, err := Build(hash.Ordered, leaves)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tr.L() != 1 {
		t.Fatalf("L() = %d, want 1", tr.L())
	}
	want := hash.BindCount(1, hash.LeafImage(leaves[0]))
	if tr.Root() != want {
		t.Fatalf("root = %x, want %x", tr.Root(), want)
	}
}

func TestBuildBalancedFourLeaves(t *testing.T) {
	leaves := leafBytes(0x01, 4)
	tr, err := Build(hash.Ordered, leaves)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tr.L() != 4 {
		t.Fatalf("L() = %d, want 4", tr.L())
	}

	i0, i1, i2, i3 := hash.LeafImage(leaves[0]), hash.LeafImage(leaves[1]), hash.LeafImage(leaves[2]), hash.LeafImage(leaves[3])
	left := hash.Pair(hash.Ordered, i0, i1)
	right := hash.Pair(hash.Ordered, i2, i3)
	internal := hash.Pair(hash.Ordered, left, right)
	want := hash.BindCount(4, internal)

	if tr.Root() != want {
		t.Fatalf("root = %x, want %x", tr.Root(), want)
	}
}

func TestBuildUnbalancedPromotesOddLeafUnchanged(t *testing.T) {
	leaves := leafBytes(0x01, 3)
	tr, err := Build(hash.Ordered, leaves)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tr.L() != 4 {
		t.Fatalf("L() = %d, want 4", tr.L())
	}

	i0, i1, i2 := hash.LeafImage(leaves[0]), hash.LeafImage(leaves[1]), hash.LeafImage(leaves[2])
	left := hash.Pair(hash.Ordered, i0, i1)
	// node[3] has only a left child (leaf index 2); it promotes unchanged.
	internal := hash.Pair(hash.Ordered, left, i2)
	want := hash.BindCount(3, internal)

	if tr.Root() != want {
		t.Fatalf("root = %x, want %x", tr.Root(), want)
	}
}

func TestPresentMatchesBuiltTreeForEveryNode(t *testing.T) {
	for n := uint64(0); n <= 20; n++ {
		leaves := leafBytes(0x10, int(n))
		tr, err := Build(hash.Ordered, leaves)
		if err != nil {
			t.Fatalf("n=%d Build: %v", n, err)
		}
		l := tr.L()
		for i := uint64(1); i < 2*l; i++ {
			_, present := tr.Node(i)
			if got := Present(i, l, n); got != present {
				t.Errorf("n=%d i=%d: Present() = %v, want %v", n, i, got, present)
			}
		}
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		n    uint64
		want uint64
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {4, 4}, {5, 8}, {8, 8}, {9, 16}, {16, 16}, {17, 32},
	}
	for _, tt := range tests {
		if got := NextPowerOfTwo(tt.n); got != tt.want {
			t.Errorf("NextPowerOfTwo(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestLeafIndex(t *testing.T) {
	tr, err := Build(hash.Ordered, leafBytes(0x01, 5))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := tr.LeafIndex(0); got != tr.L() {
		t.Errorf("LeafIndex(0) = %d, want %d", got, tr.L())
	}
	if got := tr.LeafIndex(4); got != tr.L()+4 {
		t.Errorf("LeafIndex(4) = %d, want %d", got, tr.L()+4)
	}
}
