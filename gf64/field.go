// Package gf64 implements arithmetic over the Galois field GF(2^6), the
// field of 64 elements used by the IChing code's Reed-Solomon layer.
package gf64

import "errors"

// ErrZero is returned when an operation (log, inverse) is attempted on the
// zero element, which has neither.
var ErrZero = errors.New("gf64: operation undefined for zero element")

// Size is the number of elements in the field.
const Size = 64

// Primitive is the primitive polynomial x^6 + x + 1, used to reduce powers
// of the generator alpha = 2 modulo the field.
const Primitive = 0x43

// Field holds the precomputed exponent/log tables for GF(2^6). The zero
// value is not usable; construct one with New.
type Field struct {
	expTable [Size]int
	logTable [Size]int
}

var shared = New()

// Shared returns the process-wide GF(2^6) field instance. Its tables are
// immutable after construction, so it is safe to share across concurrent
// callers.
func Shared() *Field { return shared }

// New builds the exp/log tables for GF(2^6) with primitive polynomial
// 0x43 and generator alpha = 2.
func New() *Field {
	f := &Field{}
	x := 1
	for i := 0; i < Size; i++ {
		f.expTable[i] = x
		x *= 2
		if x >= Size {
			x ^= Primitive
			x &= Size - 1
		}
	}
	for i := 0; i < Size-1; i++ {
		f.logTable[f.expTable[i]] = i
	}
	return f
}

// Add returns x XOR y, which is both addition and subtraction in GF(2^n).
func Add(x, y int) int { return x ^ y }

// Exp returns alpha^k, the k-th power of the field's generator. k is
// reduced modulo Size-1, the multiplicative order of the field.
func (f *Field) Exp(k int) int {
	k %= Size - 1
	if k < 0 {
		k += Size - 1
	}
	return f.expTable[k]
}

// Log returns the discrete log of x (base alpha). Panics via ErrZero
// semantics are avoided by returning an error for x == 0.
func (f *Field) Log(x int) (int, error) {
	if x == 0 {
		return 0, ErrZero
	}
	return f.logTable[x], nil
}

// Multiply returns x*y in the field.
func (f *Field) Multiply(x, y int) int {
	if x == 0 || y == 0 {
		return 0
	}
	return f.expTable[(f.logTable[x]+f.logTable[y])%(Size-1)]
}

// MulInverse returns the multiplicative inverse of x. x must be non-zero.
func (f *Field) MulInverse(x int) (int, error) {
	if x == 0 {
		return 0, ErrZero
	}
	return f.expTable[Size-1-f.logTable[x]], nil
}

// Divide returns x/y. y must be non-zero; Divide(0, y) is 0 for any
// non-zero y.
func (f *Field) Divide(x, y int) (int, error) {
	inv, err := f.MulInverse(y)
	if err != nil {
		return 0, err
	}
	return f.Multiply(x, inv), nil
}
