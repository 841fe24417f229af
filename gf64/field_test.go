package gf64

import "testing"

func TestExpLogInverse(t *testing.T) {
	f := New()
	for x := 1; x < Size; x++ {
		if got := f.Exp(f.logOf(t, x)); got != x {
			t.Errorf("exp(log(%d)) = %d, want %d", x, got, x)
		}
	}
}

func (f *Field) logOf(t *testing.T, x int) int {
	t.Helper()
	l, err := f.Log(x)
	if err != nil {
		t.Fatalf("Log(%d): %v", x, err)
	}
	return l
}

func TestAddXOR(t *testing.T) {
	for x := 0; x < Size; x++ {
		if Add(x, 0) != x {
			t.Errorf("Add(%d, 0) = %d, want %d", x, Add(x, 0), x)
		}
	}
}

func TestMulInverse(t *testing.T) {
	f := New()
	for x := 1; x < Size; x++ {
		inv, err := f.MulInverse(x)
		if err != nil {
			t.Fatalf("MulInverse(%d): %v", x, err)
		}
		if got := f.Multiply(x, inv); got != 1 {
			t.Errorf("Multiply(%d, inverse) = %d, want 1", x, got)
		}
	}
	if _, err := f.MulInverse(0); err != ErrZero {
		t.Errorf("MulInverse(0) error = %v, want ErrZero", err)
	}
}

func TestMultiplyAssociativeAndDistributive(t *testing.T) {
	f := New()
	for x := 0; x < Size; x += 7 {
		for y := 0; y < Size; y += 11 {
			for z := 0; z < Size; z += 13 {
				if f.Multiply(x, f.Multiply(y, z)) != f.Multiply(f.Multiply(x, y), z) {
					t.Fatalf("associativity fails for %d,%d,%d", x, y, z)
				}
				if f.Multiply(x, Add(y, z)) != Add(f.Multiply(x, y), f.Multiply(x, z)) {
					t.Fatalf("distributivity fails for %d,%d,%d", x, y, z)
				}
			}
		}
	}
}

func TestDivideZero(t *testing.T) {
	f := New()
	for y := 1; y < Size; y++ {
		got, err := f.Divide(0, y)
		if err != nil {
			t.Fatalf("Divide(0, %d): %v", y, err)
		}
		if got != 0 {
			t.Errorf("Divide(0, %d) = %d, want 0", y, got)
		}
	}
}
