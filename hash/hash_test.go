// SPDX-License-Identifier: Apache-2.0

package hash

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func digestFromBytes(b []byte) Digest {
	var d Digest
	copy(d[:], b)
	return d
}

func TestPairOrderedMatchesRawConcat(t *testing.T) {
	a := digestFromBytes([]byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	b := digestFromBytes([]byte("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"))

	got := Pair(Ordered, a, b)
	want := digestFromBytes(crypto.Keccak256(append(append([]byte{}, a[:]...), b[:]...)))

	if got != want {
		t.Fatalf("Pair(Ordered) = %x, want %x", got, want)
	}

	// Ordered hashing is position-sensitive: swapping operands changes the result.
	swapped := Pair(Ordered, b, a)
	if swapped == got {
		t.Fatalf("Pair(Ordered, b, a) should differ from Pair(Ordered, a, b)")
	}
}

func TestPairSortedIsCommutative(t *testing.T) {
	a := digestFromBytes([]byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	b := digestFromBytes([]byte("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"))

	ab := Pair(Sorted, a, b)
	ba := Pair(Sorted, b, a)

	if ab != ba {
		t.Fatalf("Pair(Sorted) is not commutative: H(a,b)=%x H(b,a)=%x", ab, ba)
	}
}

func TestPairSortedEqualOperands(t *testing.T) {
	a := digestFromBytes([]byte("cccccccccccccccccccccccccccccccc"))
	got := Pair(Sorted, a, a)
	want := digestFromBytes(crypto.Keccak256(append(append([]byte{}, a[:]...), a[:]...)))
	if got != want {
		t.Fatalf("Pair(Sorted, a, a) = %x, want %x", got, want)
	}
}

func TestLeafImageUsesZeroDomainTag(t *testing.T) {
	leaf := []byte("some-32-byte-leaf-content-here!!")
	if len(leaf) != 32 {
		t.Fatalf("test fixture leaf must be 32 bytes, got %d", len(leaf))
	}

	got := LeafImage(leaf)
	var zero [32]byte
	want := digestFromBytes(crypto.Keccak256(append(append([]byte{}, zero[:]...), leaf...)))

	if got != want {
		t.Fatalf("LeafImage = %x, want %x", got, want)
	}
}

func TestBindCountDistinguishesLengths(t *testing.T) {
	var root Digest
	copy(root[:], []byte("rrrrrrrrrrrrrrrrrrrrrrrrrrrrrrrr"))

	r3 := BindCount(3, root)
	r4 := BindCount(4, root)
	if r3 == r4 {
		t.Fatalf("BindCount must distinguish element counts sharing the same internal root")
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{Ordered, "ordered"},
		{Sorted, "sorted"},
		{Mode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
