// SPDX-License-Identifier: Apache-2.0

// Package contractverifier is a reference model of an on-chain verifier's
// external surface: four abstract entry points (verify, use, update,
// useAndUpdate) operating against a single stored root. It is not an
// EVM/Solidity artifact — the actual chain is out of this module's reach —
// it is an in-memory stand-in that a caller (or a test) can drive the same
// way a real contract would be driven, to exercise the wire format end to
// end.
package contractverifier

import (
	"fmt"

	"github.com/kilnlabs/merkleaccum/hash"
	"github.com/kilnlabs/merkleaccum/merkletree"
	"github.com/kilnlabs/merkleaccum/proof"
)

// DataUsedEvent mirrors the on-chain Data_Used(foldedRoot) event emitted by
// Use and UseAndUpdate.
type DataUsedEvent struct {
	FoldedRoot hash.Digest
}

// RootStore holds a single 32-byte stored root, the way an on-chain
// contract would hold one storage slot. The zero value stores nothing
// (a zero digest means empty).
type RootStore struct {
	mode hash.Mode
	root hash.Digest
}

// NewRootStore creates an empty store for the given hash mode. The mode is
// fixed for the store's lifetime, mirroring a contract deployed against one
// tree variant.
func NewRootStore(mode hash.Mode) *RootStore {
	return &RootStore{mode: mode}
}

// Root returns the currently stored root.
func (s *RootStore) Root() hash.Digest {
	return s.root
}

// Seed sets the stored root directly. Real contracts reach this state
// through their constructor or a prior Update; tests and the demo CLI use
// Seed to start from a tree built out of band.
func (s *RootStore) Seed(root hash.Digest) {
	s.root = root
}

// buildMultiproof assembles a proof.Multiproof from the flat argument list
// an on-chain entry point would actually receive. The length check uses OR:
// a naive AND (`flags.length != hashCount && skips.length != hashCount`)
// only rejects a malformed stream when BOTH lengths are wrong
// simultaneously, silently accepting one-sided corruption.
func buildMultiproof(mode hash.Mode, n uint64, hashCount int, flags, skips, orders []bool, decommitments []hash.Digest) (*proof.Multiproof, error) {
	if len(flags) != hashCount || len(skips) != hashCount {
		return nil, fmt.Errorf("%w: flags/skips length does not match hashCount", merkletree.ErrMalformedProof)
	}
	mp := &proof.Multiproof{
		Mode:          mode,
		ElementCount:  n,
		HashCount:     hashCount,
		Flags:         flags,
		Skips:         skips,
		Decommitments: decommitments,
	}
	if mode == hash.Ordered {
		if len(orders) != hashCount {
			return nil, fmt.Errorf("%w: orders length does not match hashCount", merkletree.ErrMalformedProof)
		}
		mp.Orders = orders
	}
	return mp, nil
}

// Verify is the pure check: it reports whether elements, folded through the
// supplied proof, reproduce the stored root. It never reverts and never
// mutates the store.
func (s *RootStore) Verify(n uint64, elements [][]byte, hashCount int, flags, skips, orders []bool, decommitments []hash.Digest) (bool, error) {
	mp, err := buildMultiproof(s.mode, n, hashCount, flags, skips, orders, decommitments)
	if err != nil {
		return false, err
	}
	return proof.VerifyMulti(mp, elements, s.root)
}

// Use checks the proof against the stored root and, on success, returns the
// Data_Used event carrying the folded elements. A bad proof "reverts" —
// returned as an error, since there is no transaction to roll back here.
func (s *RootStore) Use(n uint64, elements [][]byte, hashCount int, flags, skips, orders []bool, decommitments []hash.Digest) (DataUsedEvent, error) {
	mp, err := buildMultiproof(s.mode, n, hashCount, flags, skips, orders, decommitments)
	if err != nil {
		return DataUsedEvent{}, err
	}
	folded, err := proof.FoldMulti(mp, elements)
	if err != nil {
		return DataUsedEvent{}, err
	}
	if hash.BindCount(n, folded) != s.root {
		return DataUsedEvent{}, merkletree.ErrRootMismatch
	}
	return DataUsedEvent{FoldedRoot: folded}, nil
}

// Update checks the proof against the stored root, then writes the root
// that results from replacing elements with newElements at the same
// ascending positions. It reverts (returns an error, leaving the store
// untouched) on a bad proof.
func (s *RootStore) Update(n uint64, elements, newElements [][]byte, hashCount int, flags, skips, orders []bool, decommitments []hash.Digest) error {
	mp, err := buildMultiproof(s.mode, n, hashCount, flags, skips, orders, decommitments)
	if err != nil {
		return err
	}
	newRoot, err := proof.ApplyUpdateMulti(mp, elements, newElements, s.root)
	if err != nil {
		return err
	}
	s.root = newRoot
	return nil
}

// UseAndUpdate combines Use and Update: it emits the Data_Used event for
// the old elements, then rewrites each proved position with a
// hash-chained value, newElements[i] = H(newElements[i-1] or 0,
// elements[i]) — each position folds the previous chain link with the
// proved leaf it replaces, so the chain can only be reproduced by a caller
// who actually held the proof for every position in order.
func (s *RootStore) UseAndUpdate(n uint64, elements [][]byte, hashCount int, flags, skips, orders []bool, decommitments []hash.Digest) (DataUsedEvent, error) {
	mp, err := buildMultiproof(s.mode, n, hashCount, flags, skips, orders, decommitments)
	if err != nil {
		return DataUsedEvent{}, err
	}
	folded, err := proof.FoldMulti(mp, elements)
	if err != nil {
		return DataUsedEvent{}, err
	}
	if hash.BindCount(n, folded) != s.root {
		return DataUsedEvent{}, merkletree.ErrRootMismatch
	}

	var chain hash.Digest // zero, the "or 0" base case
	derived := make([][]byte, len(elements))
	for i, el := range elements {
		chain = hash.Pair(hash.Ordered, chain, hash.LeafImage(el))
		buf := make([]byte, hash.Size)
		copy(buf, chain[:])
		derived[i] = buf
	}

	newRoot, err := proof.ApplyUpdateMulti(mp, elements, derived, s.root)
	if err != nil {
		return DataUsedEvent{}, err
	}
	s.root = newRoot
	return DataUsedEvent{FoldedRoot: folded}, nil
}
