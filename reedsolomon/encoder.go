// Package reedsolomon implements the Reed-Solomon encoder and decoder used
// to append and correct parity symbols in an IChing code, over gf64's
// GF(2^6).
package reedsolomon

import "github.com/ichingcode/iching/gf64"

// Encoder appends Reed-Solomon parity symbols to a data array. It caches
// the generator polynomials it builds, since every call for a given parity
// count reuses the same generator.
type Encoder struct {
	field      *gf64.Field
	generators []*gf64.Poly
}

// NewEncoder creates an Encoder over field, with G0 = 1 already cached.
func NewEncoder(field *gf64.Field) *Encoder {
	return &Encoder{
		field:      field,
		generators: []*gf64.Poly{gf64.OnePoly(field)},
	}
}

// generator returns G_degree = G_{degree-1} * (x + alpha^{degree-1}),
// growing the cache as needed.
func (e *Encoder) generator(degree int) *gf64.Poly {
	if degree < len(e.generators) {
		return e.generators[degree]
	}
	last := e.generators[len(e.generators)-1]
	for d := len(e.generators); d <= degree; d++ {
		next := last.MultiplyPoly(gf64.NewPoly(e.field, []int{1, e.field.Exp(d - 1)}))
		e.generators = append(e.generators, next)
		last = next
	}
	return e.generators[degree]
}

// Encode returns data with k parity symbols appended, per spec.md §4.3:
// if k is 0, data is returned unchanged; otherwise data is zero-extended
// by k symbols, divided by the degree-k generator, and the remainder's
// coefficients become the parity tail.
func (e *Encoder) Encode(data []int, k int) []int {
	if k == 0 {
		return data
	}
	if len(data) == 0 {
		panic("reedsolomon: empty data")
	}

	padded := make([]int, len(data)+k)
	copy(padded, data)

	generator := e.generator(k)
	info := gf64.NewPoly(e.field, padded[:len(data)]).MultiplyByMonomial(k, 1)
	_, remainder, err := info.Divide(generator)
	if err != nil {
		panic("reedsolomon: " + err.Error())
	}

	coeffs := remainder.Coeffs()
	numZero := k - len(coeffs)
	for i := 0; i < numZero; i++ {
		padded[len(data)+i] = 0
	}
	copy(padded[len(data)+numZero:], coeffs)
	return padded
}
