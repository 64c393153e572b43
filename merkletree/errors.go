// SPDX-License-Identifier: Apache-2.0

package merkletree

import "errors"

// Error kinds shared by every component in the accumulator (tree building,
// all proof families, and wire decoding). Every error is surfaced to the
// caller, there are no retries, and the bit-stream stop signal is data
// rather than an exception used for control flow.
var (
	// ErrMalformedProof covers a missing stop bit, a decommitment count
	// inconsistent with the flag counts, or mismatched input lengths.
	ErrMalformedProof = errors.New("merkletree: malformed proof")

	// ErrUnsortedIndices is returned when proof generation is called with
	// indices that are not strictly ascending.
	ErrUnsortedIndices = errors.New("merkletree: indices must be strictly ascending")

	// ErrRootMismatch is returned when verification arithmetic produces a
	// root that does not equal the claimed/stored root.
	ErrRootMismatch = errors.New("merkletree: computed root does not match claimed root")

	// ErrMinimumIndexViolation is returned when a combined proof's smallest
	// updated index is below minimumCombinedProofIndex(N).
	ErrMinimumIndexViolation = errors.New("merkletree: update index below minimum combined proof index")

	// ErrCapacityExceeded is returned when hashCount exceeds 255 in compact
	// mode, or when the element count would reach or exceed 2^32.
	ErrCapacityExceeded = errors.New("merkletree: capacity exceeded")
)
