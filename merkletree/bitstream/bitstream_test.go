// SPDX-License-Identifier: Apache-2.0

package bitstream

import "testing"

func TestPackUnpackRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		bits []bool
	}{
		{name: "empty", bits: nil},
		{name: "single true", bits: []bool{true}},
		{name: "single false", bits: []bool{false}},
		{name: "mixed", bits: []bool{true, false, true, true, false}},
		{name: "all false", bits: []bool{false, false, false, false, false, false, false, false}},
		{name: "max hash count", bits: make([]bool, MaxHashCount)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Pack(tt.bits)
			if err != nil {
				t.Fatalf("Pack: %v", err)
			}
			got, hashCount, err := Unpack(w)
			if err != nil {
				t.Fatalf("Unpack: %v", err)
			}
			if hashCount != len(tt.bits) {
				t.Fatalf("hashCount = %d, want %d", hashCount, len(tt.bits))
			}
			if len(got) != len(tt.bits) {
				t.Fatalf("got %d bits, want %d", len(got), len(tt.bits))
			}
			for i := range tt.bits {
				if got[i] != tt.bits[i] {
					t.Errorf("bit %d = %v, want %v", i, got[i], tt.bits[i])
				}
			}
		})
	}
}

func TestPackRejectsOversizedStream(t *testing.T) {
	_, err := Pack(make([]bool, MaxHashCount+1))
	if err == nil {
		t.Fatalf("expected an error for a stream exceeding MaxHashCount")
	}
}

func TestUnpackRejectsMissingStopBit(t *testing.T) {
	var w Word // all-zero: no stop bit anywhere
	_, _, err := Unpack(w)
	if err == nil {
		t.Fatalf("expected an error for a word with no stop bit")
	}
}

func TestPackStopBitPosition(t *testing.T) {
	w, err := Pack([]bool{true, true, false})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if !getBit(w, 3) {
		t.Fatalf("stop bit not set at position 3")
	}
	if getBit(w, 4) {
		t.Fatalf("no bit should be set above the stop bit")
	}
}
