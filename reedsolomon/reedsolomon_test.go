package reedsolomon

import (
	"testing"

	"github.com/ichingcode/iching/gf64"
)

func TestEncodeDecodeNoErrors(t *testing.T) {
	field := gf64.Shared()
	data := []int{1, 2, 3, 4, 5}
	k := 4

	enc := NewEncoder(field)
	encoded := enc.Encode(data, k)
	if len(encoded) != len(data)+k {
		t.Fatalf("len(encoded) = %d, want %d", len(encoded), len(data)+k)
	}

	dec := NewDecoder(field)
	corrected, numErrors, err := dec.Decode(encoded, k)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if numErrors != 0 {
		t.Errorf("numErrors = %d, want 0", numErrors)
	}
	for i, v := range data {
		if corrected[i] != v {
			t.Errorf("corrected[%d] = %d, want %d", i, corrected[i], v)
		}
	}
}

func TestEncodeZeroParityIsIdentity(t *testing.T) {
	field := gf64.Shared()
	data := []int{1, 2, 3}
	enc := NewEncoder(field)
	encoded := enc.Encode(data, 0)
	if len(encoded) != len(data) {
		t.Fatalf("len(encoded) = %d, want %d", len(encoded), len(data))
	}
	for i, v := range data {
		if encoded[i] != v {
			t.Errorf("encoded[%d] = %d, want %d", i, encoded[i], v)
		}
	}
}

func TestDecodeCorrectsWithinBudget(t *testing.T) {
	field := gf64.Shared()
	data := []int{10, 20, 30, 40, 50, 60}
	k := 6 // corrects up to 3 symbol errors

	enc := NewEncoder(field)
	encoded := enc.Encode(data, k)

	corrupted := make([]int, len(encoded))
	copy(corrupted, encoded)
	corrupted[0] = gf64.Add(corrupted[0], 0x2A)
	corrupted[3] = gf64.Add(corrupted[3], 0x11)
	corrupted[7] = gf64.Add(corrupted[7], 0x05)

	dec := NewDecoder(field)
	corrected, numErrors, err := dec.Decode(corrupted, k)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if numErrors != 3 {
		t.Errorf("numErrors = %d, want 3", numErrors)
	}
	for i := range encoded {
		if corrected[i] != encoded[i] {
			t.Errorf("corrected[%d] = %d, want %d", i, corrected[i], encoded[i])
		}
	}
}

func TestDecodeTooManyErrorsFailsOrStaysValid(t *testing.T) {
	field := gf64.Shared()
	data := []int{1, 2, 3, 4, 5, 6}
	k := 6

	enc := NewEncoder(field)
	encoded := enc.Encode(data, k)

	corrupted := make([]int, len(encoded))
	copy(corrupted, encoded)
	for _, idx := range []int{0, 1, 2, 3} {
		corrupted[idx] = gf64.Add(corrupted[idx], 0x3F)
	}

	dec := NewDecoder(field)
	corrected, _, err := dec.Decode(corrupted, k)
	if err == nil {
		// An occasional accidental decode to a genuine codeword is
		// permitted; verify it actually re-encodes to itself.
		reencoded := NewEncoder(field).Encode(corrected[:len(data)], k)
		for i := range reencoded {
			if reencoded[i] != corrected[i] {
				t.Fatalf("decode silently returned a non-codeword on overload")
			}
		}
	}
}
