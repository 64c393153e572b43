// SPDX-License-Identifier: Apache-2.0

package proof

import (
	"fmt"
	"math/bits"

	"github.com/kilnlabs/merkleaccum/hash"
	"github.com/kilnlabs/merkleaccum/merkletree"
)

// EncodeMultiWire serializes a compact multi-proof as an ordered sequence
// of 32-byte words: elementCount, flags, skips, orders (only for ordered
// hash), then the decommitments.
func EncodeMultiWire(cmp *CompactMultiproof) []byte {
	headerWords := 3
	if cmp.Mode == hash.Ordered {
		headerWords = 4
	}
	out := make([]byte, 0, hash.Size*(headerWords+len(cmp.Decommitments)))
	var nWord hash.Digest
	putUint64BE(nWord[:], cmp.ElementCount)
	out = append(out, nWord[:]...)
	out = append(out, cmp.Flags[:]...)
	out = append(out, cmp.Skips[:]...)
	if cmp.Mode == hash.Ordered {
		out = append(out, cmp.Orders[:]...)
	}
	for _, d := range cmp.Decommitments {
		out = append(out, d[:]...)
	}
	return out
}

// DecodeMultiWire parses the wire format EncodeMultiWire produces. mode
// must be known out of band (the wire format carries no mode tag).
func DecodeMultiWire(data []byte, mode hash.Mode) (*CompactMultiproof, error) {
	headerWords := 3
	if mode == hash.Ordered {
		headerWords = 4
	}
	headerLen := headerWords * hash.Size
	if len(data) < headerLen {
		return nil, fmt.Errorf("%w: wire data shorter than header", merkletree.ErrMalformedProof)
	}
	if (len(data)-headerLen)%hash.Size != 0 {
		return nil, fmt.Errorf("%w: trailing decommitment bytes do not align to %d", merkletree.ErrMalformedProof, hash.Size)
	}

	cmp := &CompactMultiproof{Mode: mode}
	cmp.ElementCount = getUint64BE(data[0:hash.Size])
	copy(cmp.Flags[:], data[hash.Size:2*hash.Size])
	copy(cmp.Skips[:], data[2*hash.Size:3*hash.Size])
	offset := 3 * hash.Size
	if mode == hash.Ordered {
		copy(cmp.Orders[:], data[offset:offset+hash.Size])
		offset += hash.Size
	}

	n := (len(data) - offset) / hash.Size
	cmp.Decommitments = make([]hash.Digest, n)
	for i := 0; i < n; i++ {
		copy(cmp.Decommitments[i][:], data[offset+i*hash.Size:offset+(i+1)*hash.Size])
	}
	return cmp, nil
}

// EncodeAppendWire serializes an append/size-full proof as
// [N] ‖ decommitment[0] ‖ … ‖ decommitment[k-1].
func EncodeAppendWire(ap *AppendProof) []byte {
	out := make([]byte, 0, hash.Size*(1+len(ap.Decommitments)))
	var nWord hash.Digest
	putUint64BE(nWord[:], ap.ElementCount)
	out = append(out, nWord[:]...)
	for _, d := range ap.Decommitments {
		out = append(out, d[:]...)
	}
	return out
}

// DecodeAppendWire parses the format EncodeAppendWire produces, checking
// that the decommitment count matches popcount(N).
func DecodeAppendWire(data []byte, mode hash.Mode) (*AppendProof, error) {
	if len(data) < hash.Size || len(data)%hash.Size != 0 {
		return nil, fmt.Errorf("%w: append wire data misaligned", merkletree.ErrMalformedProof)
	}
	n := getUint64BE(data[0:hash.Size])
	decs := decodeDigests(data[hash.Size:])
	if len(decs) != bits.OnesCount64(n) {
		return nil, fmt.Errorf("%w: decommitment count does not match popcount(N)", merkletree.ErrMalformedProof)
	}
	return &AppendProof{Mode: mode, ElementCount: n, Decommitments: decs}, nil
}

// EncodeSizeCompactWire serializes a size proof in compact mode: the
// frontier decommitments alone, with N omitted.
func EncodeSizeCompactWire(ap *AppendProof) []byte {
	out := make([]byte, 0, hash.Size*len(ap.Decommitments))
	for _, d := range ap.Decommitments {
		out = append(out, d[:]...)
	}
	return out
}

// DecodeSizeCompactWire parses EncodeSizeCompactWire's output; the caller
// must already know N (it is not present on the wire).
func DecodeSizeCompactWire(data []byte, n uint64, mode hash.Mode) (*AppendProof, error) {
	if len(data)%hash.Size != 0 {
		return nil, fmt.Errorf("%w: compact size wire data misaligned", merkletree.ErrMalformedProof)
	}
	decs := decodeDigests(data)
	if len(decs) != bits.OnesCount64(n) {
		return nil, fmt.Errorf("%w: decommitment count does not match popcount(N)", merkletree.ErrMalformedProof)
	}
	return &AppendProof{Mode: mode, ElementCount: n, Decommitments: decs}, nil
}

func decodeDigests(data []byte) []hash.Digest {
	n := len(data) / hash.Size
	out := make([]hash.Digest, n)
	for i := 0; i < n; i++ {
		copy(out[i][:], data[i*hash.Size:(i+1)*hash.Size])
	}
	return out
}

func putUint64BE(dst []byte, v uint64) {
	dst[24] = byte(v >> 56)
	dst[25] = byte(v >> 48)
	dst[26] = byte(v >> 40)
	dst[27] = byte(v >> 32)
	dst[28] = byte(v >> 24)
	dst[29] = byte(v >> 16)
	dst[30] = byte(v >> 8)
	dst[31] = byte(v)
}

func getUint64BE(src []byte) uint64 {
	return uint64(src[24])<<56 | uint64(src[25])<<48 | uint64(src[26])<<40 | uint64(src[27])<<32 |
		uint64(src[28])<<24 | uint64(src[29])<<16 | uint64(src[30])<<8 | uint64(src[31])
}
