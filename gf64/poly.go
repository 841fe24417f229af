package gf64

import "errors"

// ErrDivideByZero is returned by Divide when the divisor is the zero
// polynomial.
var ErrDivideByZero = errors.New("gf64: divide by zero polynomial")

// Poly is a polynomial over GF(2^6), stored MSB-first: Coeffs()[0] is the
// coefficient of the highest-degree term. Leading zeros are stripped
// except for the canonical zero polynomial, whose single coefficient is 0.
// Poly values are immutable once constructed.
type Poly struct {
	field  *Field
	coeffs []int
}

// NewPoly builds a polynomial from MSB-first coefficients, stripping
// leading zero coefficients.
func NewPoly(field *Field, coeffs []int) *Poly {
	if len(coeffs) == 0 {
		coeffs = []int{0}
	}
	if len(coeffs) > 1 && coeffs[0] == 0 {
		first := 1
		for first < len(coeffs) && coeffs[first] == 0 {
			first++
		}
		if first == len(coeffs) {
			coeffs = []int{0}
		} else {
			stripped := make([]int, len(coeffs)-first)
			copy(stripped, coeffs[first:])
			coeffs = stripped
		}
	}
	return &Poly{field: field, coeffs: coeffs}
}

// ZeroPoly returns the zero polynomial over field.
func ZeroPoly(field *Field) *Poly { return NewPoly(field, []int{0}) }

// OnePoly returns the constant polynomial 1 over field.
func OnePoly(field *Field) *Poly { return NewPoly(field, []int{1}) }

// BuildMonomial returns coefficient * x^degree.
func BuildMonomial(field *Field, degree, coefficient int) *Poly {
	if degree < 0 {
		panic("gf64: negative monomial degree")
	}
	if coefficient == 0 {
		return ZeroPoly(field)
	}
	coeffs := make([]int, degree+1)
	coeffs[0] = coefficient
	return NewPoly(field, coeffs)
}

// Field returns the field this polynomial is defined over.
func (p *Poly) Field() *Field { return p.field }

// Coeffs returns the MSB-first coefficient slice. Callers must not mutate
// the returned slice.
func (p *Poly) Coeffs() []int { return p.coeffs }

// Degree returns the polynomial's degree.
func (p *Poly) Degree() int { return len(p.coeffs) - 1 }

// IsZero reports whether this is the zero polynomial.
func (p *Poly) IsZero() bool { return p.coeffs[0] == 0 && len(p.coeffs) == 1 }

// Coefficient returns the coefficient of x^degree.
func (p *Poly) Coefficient(degree int) int {
	return p.coeffs[len(p.coeffs)-1-degree]
}

// Equals reports whether p and other have identical coefficients over the
// same field.
func (p *Poly) Equals(other *Poly) bool {
	if p.field != other.field || len(p.coeffs) != len(other.coeffs) {
		return false
	}
	for i, c := range p.coeffs {
		if other.coeffs[i] != c {
			return false
		}
	}
	return true
}

// EvaluateAt evaluates the polynomial at x using Horner's method.
func (p *Poly) EvaluateAt(x int) int {
	if x == 0 {
		return p.Coefficient(0)
	}
	result := p.coeffs[0]
	for i := 1; i < len(p.coeffs); i++ {
		result = Add(p.field.Multiply(x, result), p.coeffs[i])
	}
	return result
}

// Add returns p + other (equivalently p - other, since addition is XOR).
func (p *Poly) Add(other *Poly) *Poly {
	if p.IsZero() {
		return other
	}
	if other.IsZero() {
		return p
	}

	small, large := p.coeffs, other.coeffs
	if len(small) > len(large) {
		small, large = large, small
	}

	sum := make([]int, len(large))
	diff := len(large) - len(small)
	copy(sum, large[:diff])
	for i := diff; i < len(large); i++ {
		sum[i] = Add(small[i-diff], large[i])
	}
	return NewPoly(p.field, sum)
}

// MultiplyPoly multiplies p by other via O(n*m) convolution.
func (p *Poly) MultiplyPoly(other *Poly) *Poly {
	if p.IsZero() || other.IsZero() {
		return ZeroPoly(p.field)
	}
	product := make([]int, len(p.coeffs)+len(other.coeffs)-1)
	for i, a := range p.coeffs {
		if a == 0 {
			continue
		}
		for j, b := range other.coeffs {
			product[i+j] = Add(product[i+j], p.field.Multiply(a, b))
		}
	}
	return NewPoly(p.field, product)
}

// MultiplyScalar multiplies every coefficient by scalar.
func (p *Poly) MultiplyScalar(scalar int) *Poly {
	if scalar == 0 {
		return ZeroPoly(p.field)
	}
	if scalar == 1 {
		return p
	}
	product := make([]int, len(p.coeffs))
	for i, c := range p.coeffs {
		product[i] = p.field.Multiply(c, scalar)
	}
	return NewPoly(p.field, product)
}

// MultiplyByMonomial multiplies p by coefficient * x^degree.
func (p *Poly) MultiplyByMonomial(degree, coefficient int) *Poly {
	if degree < 0 {
		panic("gf64: negative monomial degree")
	}
	if coefficient == 0 {
		return ZeroPoly(p.field)
	}
	product := make([]int, len(p.coeffs)+degree)
	for i, c := range p.coeffs {
		product[i] = p.field.Multiply(c, coefficient)
	}
	return NewPoly(p.field, product)
}

// Divide performs extended synthetic division, returning the quotient and
// remainder such that p = quotient*divisor + remainder. divisor must be
// non-zero; the remainder has fewer coefficients than divisor.
func (p *Poly) Divide(divisor *Poly) (quotient, remainder *Poly, err error) {
	if divisor.IsZero() {
		return nil, nil, ErrDivideByZero
	}

	quotient = ZeroPoly(p.field)
	remainder = p

	leadInv, err := p.field.MulInverse(divisor.Coefficient(divisor.Degree()))
	if err != nil {
		return nil, nil, err
	}

	for remainder.Degree() >= divisor.Degree() && !remainder.IsZero() {
		degreeDiff := remainder.Degree() - divisor.Degree()
		scale := p.field.Multiply(remainder.Coefficient(remainder.Degree()), leadInv)
		term := divisor.MultiplyByMonomial(degreeDiff, scale)
		quotient = quotient.Add(BuildMonomial(p.field, degreeDiff, scale))
		remainder = remainder.Add(term)
	}
	return quotient, remainder, nil
}
