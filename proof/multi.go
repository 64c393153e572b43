// SPDX-License-Identifier: Apache-2.0

package proof

import (
	"fmt"

	"github.com/kilnlabs/merkleaccum/hash"
	"github.com/kilnlabs/merkleaccum/merkletree"
	"github.com/kilnlabs/merkleaccum/merkletree/bitstream"
)

// Multiproof is an existence proof for a set of leaf indices (component
// C4), driven by three parallel bit streams over the hash steps needed to
// fold every claimed leaf up to the root in one pass.
type Multiproof struct {
	Mode          hash.Mode
	ElementCount  uint64
	HashCount     int
	Flags         []bool
	Skips         []bool
	Orders        []bool // nil when Mode == hash.Sorted
	Decommitments []hash.Digest
}

// GenerateMulti builds a multi-proof for the strictly ascending index set
// indices. It walks the tree bottom-up once, tracking which flat indices
// are already derivable ("known") from the claimed leaves and which are
// ancestors of a claimed leaf ("relevant"): every relevant node emits one
// step, and every node with exactly one known child emits a decommitment
// for the other.
func GenerateMulti(t *merkletree.Tree, indices []uint64) (*Multiproof, error) {
	if err := checkAscending(indices); err != nil {
		return nil, err
	}
	n := t.N()
	for _, idx := range indices {
		if idx >= n {
			return nil, fmt.Errorf("proof: index %d out of range for %d elements", idx, n)
		}
	}

	l := t.L()
	known := make([]bool, 2*l)
	relevant := make([]bool, 2*l)
	for _, idx := range indices {
		leaf := t.LeafIndex(idx)
		known[leaf] = true
		relevant[leaf/2] = true
	}

	mp := &Multiproof{Mode: t.Mode(), ElementCount: n}

	for p := l - 1; p >= 1; p-- {
		left, right := 2*p, 2*p+1
		rightPresent := merkletree.Present(right, l, n)

		lKnown := known[left]
		rKnown := known[right]

		// A structurally absent right sibling can never supply a
		// decommitment; a naive l-XOR-r test would otherwise demand one
		// whenever lKnown is true (rKnown is always false there, since
		// nothing can ever mark an absent slot known).
		if rightPresent && lKnown != rKnown {
			other := left
			if lKnown {
				other = right
			}
			val, present := t.Node(other)
			if !present {
				return nil, fmt.Errorf("proof: internal error, decommitment target %d absent", other)
			}
			mp.Decommitments = append(mp.Decommitments, val)
		}

		if relevant[p] {
			mp.Flags = append(mp.Flags, lKnown == rKnown)
			mp.Skips = append(mp.Skips, !rightPresent)
			if t.Mode() == hash.Ordered {
				mp.Orders = append(mp.Orders, lKnown)
			}
			mp.HashCount++
			relevant[p/2] = true
		}

		known[p] = lKnown || rKnown
	}

	return mp, nil
}

// VerifyMulti checks that leaves, supplied in strictly ascending original
// index order, fold through mp to claimedRoot. It does not need the
// indices themselves — only their relative order.
func VerifyMulti(mp *Multiproof, leaves [][]byte, claimedRoot hash.Digest) (bool, error) {
	folded, err := foldMulti(mp, leaves)
	if err != nil {
		return false, err
	}
	return hash.BindCount(mp.ElementCount, folded) == claimedRoot, nil
}

// FoldMulti runs mp's automaton over leaves and returns the resulting
// internal root (before N is bound in). Package proof's combined-proof
// engine uses this directly, since it needs to fold a proof scoped to a
// subtree rather than a full, N-bound tree.
func FoldMulti(mp *Multiproof, leaves [][]byte) (hash.Digest, error) {
	return foldMulti(mp, leaves)
}

// ApplyUpdateMulti verifies that leaves fold to oldRoot through mp, then
// runs a second buffer seeded with newLeaves (the replacement values at the
// same ascending positions) in lockstep, consuming the same decommitments
// (shared, unchanged siblings), and returns the resulting new root.
func ApplyUpdateMulti(mp *Multiproof, leaves, newLeaves [][]byte, oldRoot hash.Digest) (hash.Digest, error) {
	ok, err := VerifyMulti(mp, leaves, oldRoot)
	if err != nil {
		return hash.Digest{}, err
	}
	if !ok {
		return hash.Digest{}, merkletree.ErrRootMismatch
	}
	newFolded, err := foldMulti(mp, newLeaves)
	if err != nil {
		return hash.Digest{}, err
	}
	return hash.BindCount(mp.ElementCount, newFolded), nil
}

// foldMulti runs the circular-buffer automaton over leaves (ascending
// original order) and returns the resulting internal root.
func foldMulti(mp *Multiproof, leaves [][]byte) (hash.Digest, error) {
	if err := mp.validate(); err != nil {
		return hash.Digest{}, err
	}
	m := len(leaves)
	if m == 0 {
		return hash.Digest{}, fmt.Errorf("%w: no leaves supplied", merkletree.ErrMalformedProof)
	}

	buf := make([]hash.Digest, m)
	for i, leaf := range leaves {
		// Placed reversed: rightmost (last ascending) index first.
		buf[m-1-i] = hash.LeafImage(leaf)
	}

	read, write, decomIdx := 0, 0, 0
	for s := 0; s < mp.HashCount; s++ {
		if mp.Skips[s] {
			buf[write] = buf[read]
			read = (read + 1) % m
			write = (write + 1) % m
			continue
		}

		var right hash.Digest
		if mp.Flags[s] {
			right = buf[read]
			read = (read + 1) % m
		} else {
			if decomIdx >= len(mp.Decommitments) {
				return hash.Digest{}, fmt.Errorf("%w: ran out of decommitments", merkletree.ErrMalformedProof)
			}
			right = mp.Decommitments[decomIdx]
			decomIdx++
		}
		left := buf[read]
		read = (read + 1) % m

		if mp.Mode == hash.Ordered && !mp.Orders[s] {
			left, right = right, left
		}
		buf[write] = hash.Pair(mp.Mode, left, right)
		write = (write + 1) % m
	}
	if decomIdx != len(mp.Decommitments) {
		return hash.Digest{}, fmt.Errorf("%w: unconsumed decommitments", merkletree.ErrMalformedProof)
	}

	idx := write
	if idx == 0 {
		idx = m
	}
	return buf[idx-1], nil
}

// validate checks the internal length invariants of a Multiproof.
func (mp *Multiproof) validate() error {
	if len(mp.Flags) != mp.HashCount || len(mp.Skips) != mp.HashCount {
		return fmt.Errorf("%w: stream length does not match hashCount", merkletree.ErrMalformedProof)
	}
	if mp.Mode == hash.Ordered && len(mp.Orders) != mp.HashCount {
		return fmt.Errorf("%w: orders stream missing for ordered hash", merkletree.ErrMalformedProof)
	}
	return nil
}

func checkAscending(indices []uint64) error {
	for i := 1; i < len(indices); i++ {
		if indices[i] <= indices[i-1] {
			return merkletree.ErrUnsortedIndices
		}
	}
	if len(indices) == 0 {
		return fmt.Errorf("%w: no indices supplied", merkletree.ErrMalformedProof)
	}
	return nil
}

// CompactMultiproof is the wire-friendly encoding of a Multiproof: flags,
// skips, and orders are each packed into a single 32-byte word carrying
// their own stop bit.
type CompactMultiproof struct {
	Mode          hash.Mode
	ElementCount  uint64
	Flags         bitstream.Word
	Skips         bitstream.Word
	Orders        bitstream.Word // zero value when Mode == hash.Sorted
	Decommitments []hash.Digest
}

// Compact packs mp into its wire-friendly form.
func (mp *Multiproof) Compact() (*CompactMultiproof, error) {
	flagsWord, err := bitstream.Pack(mp.Flags)
	if err != nil {
		return nil, err
	}
	skipsWord, err := bitstream.Pack(mp.Skips)
	if err != nil {
		return nil, err
	}
	var ordersWord bitstream.Word
	if mp.Mode == hash.Ordered {
		ordersWord, err = bitstream.Pack(mp.Orders)
		if err != nil {
			return nil, err
		}
	}
	return &CompactMultiproof{
		Mode:          mp.Mode,
		ElementCount:  mp.ElementCount,
		Flags:         flagsWord,
		Skips:         skipsWord,
		Orders:        ordersWord,
		Decommitments: mp.Decommitments,
	}, nil
}

// Expand unpacks a CompactMultiproof back into boolean-array form.
func (cmp *CompactMultiproof) Expand() (*Multiproof, error) {
	flags, hashCount, err := bitstream.Unpack(cmp.Flags)
	if err != nil {
		return nil, fmt.Errorf("proof: flags stream: %w", err)
	}
	skips, skipCount, err := bitstream.Unpack(cmp.Skips)
	if err != nil {
		return nil, fmt.Errorf("proof: skips stream: %w", err)
	}
	if skipCount != hashCount {
		return nil, fmt.Errorf("%w: flags/skips hashCount mismatch", merkletree.ErrMalformedProof)
	}

	mp := &Multiproof{
		Mode:          cmp.Mode,
		ElementCount:  cmp.ElementCount,
		HashCount:     hashCount,
		Flags:         flags,
		Skips:         skips,
		Decommitments: cmp.Decommitments,
	}
	if cmp.Mode == hash.Ordered {
		orders, orderCount, err := bitstream.Unpack(cmp.Orders)
		if err != nil {
			return nil, fmt.Errorf("proof: orders stream: %w", err)
		}
		if orderCount != hashCount {
			return nil, fmt.Errorf("%w: orders hashCount mismatch", merkletree.ErrMalformedProof)
		}
		mp.Orders = orders
	}
	return mp, nil
}
