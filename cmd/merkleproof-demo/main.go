// SPDX-License-Identifier: Apache-2.0

// Command merkleproof-demo walks through the accumulator's proof families
// against a small, fixed leaf set: build a tree, prove and verify a single
// element, prove and verify a multi-element set, append new elements, and
// drive the reference on-chain verifier model end to end.
package main

import (
	"fmt"
	"log"

	"github.com/kilnlabs/merkleaccum/contractverifier"
	"github.com/kilnlabs/merkleaccum/hash"
	"github.com/kilnlabs/merkleaccum/merkletree"
	"github.com/kilnlabs/merkleaccum/proof"
)

func main() {
	fmt.Println("Merkle Accumulator Demo")
	fmt.Println("=======================")

	leaves := make([][]byte, 12)
	for i := range leaves {
		leaves[i] = []byte(fmt.Sprintf("leaf-%02d", i))
	}

	tr, err := merkletree.Build(hash.Ordered, leaves)
	if err != nil {
		log.Fatal("failed to build tree:", err)
	}
	fmt.Printf("\n1. Tree: N=%d, root=%x\n", tr.N(), tr.Root())

	fmt.Println("\n2. Single proof:")
	sp, err := proof.Generate(tr, 8)
	if err != nil {
		log.Fatal("failed to generate single proof:", err)
	}
	ok, err := proof.Verify(sp, leaves[8], tr.Root())
	if err != nil {
		log.Fatal("failed to verify single proof:", err)
	}
	fmt.Printf("   index 8, %d decommitments, verifies: %v\n", len(sp.Decommitments), ok)

	fmt.Println("\n3. Multi-proof:")
	indices := []uint64{2, 3, 8, 11}
	mp, err := proof.GenerateMulti(tr, indices)
	if err != nil {
		log.Fatal("failed to generate multi-proof:", err)
	}
	provedLeaves := make([][]byte, len(indices))
	for i, idx := range indices {
		provedLeaves[i] = leaves[idx]
	}
	ok, err = proof.VerifyMulti(mp, provedLeaves, tr.Root())
	if err != nil {
		log.Fatal("failed to verify multi-proof:", err)
	}
	fmt.Printf("   indices %v, hashCount=%d, %d decommitments, verifies: %v\n", indices, mp.HashCount, len(mp.Decommitments), ok)

	recovered, err := proof.InferIndices(mp, len(indices))
	if err != nil {
		log.Fatal("failed to infer indices:", err)
	}
	fmt.Printf("   inferred indices: %v\n", recovered)

	fmt.Println("\n4. Append proof:")
	ap, err := proof.GenerateAppend(tr)
	if err != nil {
		log.Fatal("failed to generate append proof:", err)
	}
	newLeaves := [][]byte{[]byte("leaf-12"), []byte("leaf-13")}
	newRoot, err := proof.ApplyAppendMulti(ap, newLeaves, tr.Root())
	if err != nil {
		log.Fatal("failed to apply append proof:", err)
	}
	fmt.Printf("   appended %d leaves, new root=%x\n", len(newLeaves), newRoot)

	fmt.Println("\n5. Reference contract verifier:")
	store := contractverifier.NewRootStore(hash.Ordered)
	store.Seed(tr.Root())
	event, err := store.Use(tr.N(), provedLeaves, mp.HashCount, mp.Flags, mp.Skips, mp.Orders, mp.Decommitments)
	if err != nil {
		log.Fatal("failed to use stored root:", err)
	}
	fmt.Printf("   Data_Used(foldedRoot=%x)\n", event.FoldedRoot)
}
