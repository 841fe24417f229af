package bitutil

import "testing"

func TestSetGetUnset(t *testing.T) {
	bm := NewBitMatrixWithSize(40, 20)
	bm.Set(5, 3)
	bm.Set(39, 19)
	if !bm.Get(5, 3) || !bm.Get(39, 19) {
		t.Fatal("expected set bits to read back true")
	}
	bm.Unset(5, 3)
	if bm.Get(5, 3) {
		t.Fatal("expected unset bit to read back false")
	}
}

func TestSetRegion(t *testing.T) {
	bm := NewBitMatrixWithSize(10, 10)
	bm.SetRegion(2, 2, 3, 3)
	for y := 2; y < 5; y++ {
		for x := 2; x < 5; x++ {
			if !bm.Get(x, y) {
				t.Fatalf("expected (%d,%d) set", x, y)
			}
		}
	}
	if bm.Get(1, 1) || bm.Get(5, 5) {
		t.Fatal("region leaked outside bounds")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	bm := NewBitMatrixWithSize(8, 8)
	bm.Set(1, 1)
	clone := bm.Clone()
	clone.Set(2, 2)
	if bm.Get(2, 2) {
		t.Fatal("mutating clone affected original")
	}
	if !clone.Get(1, 1) {
		t.Fatal("clone lost original bit")
	}
}
