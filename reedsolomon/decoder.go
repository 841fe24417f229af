package reedsolomon

import (
	"errors"
	"fmt"

	"github.com/ichingcode/iching/gf64"
)

// ErrCorrectionFailed is the single domain error surfaced for every
// Reed-Solomon decoding failure (key-equation failure, root-count
// mismatch, or an out-of-range error location), per spec.md §4.4.
var ErrCorrectionFailed = errors.New("reedsolomon: correction failed")

// Decoder corrects errors in a received codeword.
type Decoder struct {
	field *gf64.Field
}

// NewDecoder creates a Decoder over field.
func NewDecoder(field *gf64.Field) *Decoder {
	return &Decoder{field: field}
}

// Decode corrects up to k/2 symbol errors in received (length n), using k
// parity symbols, and returns the corrected copy along with the number of
// errors found. received is not mutated. If no errors are detected,
// received is returned unchanged (but copied).
func (d *Decoder) Decode(received []int, k int) ([]int, int, error) {
	corrected := make([]int, len(received))
	copy(corrected, received)

	if k == 0 {
		return corrected, 0, nil
	}

	poly := gf64.NewPoly(d.field, corrected)

	// 1. Syndromes: S_i = C(alpha^i) for i in [0, k).
	syndromeCoeffs := make([]int, k)
	noError := true
	for i := 0; i < k; i++ {
		eval := poly.EvaluateAt(d.field.Exp(i))
		syndromeCoeffs[k-1-i] = eval
		if eval != 0 {
			noError = false
		}
	}
	if noError {
		return corrected, 0, nil
	}
	syndrome := gf64.NewPoly(d.field, syndromeCoeffs)

	// 2. Key equation via Extended Euclidean algorithm.
	sigma, omega, err := d.keyEquation(gf64.BuildMonomial(d.field, k, 1), syndrome, k)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrCorrectionFailed, "key-equation failed")
	}

	// 3. Roots of the error locator, by exhaustive search.
	locations, err := d.errorLocations(sigma)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrCorrectionFailed, "root count mismatch")
	}

	// 4. Forney magnitudes.
	magnitudes := d.errorMagnitudes(omega, locations)

	// 5. Apply corrections.
	for i, xi := range locations {
		log, err := d.field.Log(xi)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %s", ErrCorrectionFailed, "location out of range")
		}
		position := len(corrected) - 1 - log
		if position < 0 || position >= len(corrected) {
			return nil, 0, fmt.Errorf("%w: %s", ErrCorrectionFailed, "location out of range")
		}
		corrected[position] = gf64.Add(corrected[position], magnitudes[i])
	}
	return corrected, len(locations), nil
}

// keyEquation runs the Extended Euclidean algorithm on r2 = x^k and
// r1 = syndrome until deg(r1) < k/2, returning the normalized error
// locator sigma and error evaluator omega. It carries the parallel
// remainder sequence (rPrev, r) and auxiliary sequence (aPrev, a), with
// a0 = aPrevPrev + quotient*aPrev at each step.
func (d *Decoder) keyEquation(r2, r1 *gf64.Poly, k int) (sigma, omega *gf64.Poly, err error) {
	if r2.Degree() < r1.Degree() {
		r2, r1 = r1, r2
	}

	rPrev := r2
	r := r1
	aPrev := gf64.ZeroPoly(d.field)
	a := gf64.OnePoly(d.field)

	for 2*r.Degree() >= k {
		rPrevPrev := rPrev
		aPrevPrev := aPrev
		rPrev = r
		aPrev = a

		if rPrev.IsZero() {
			return nil, nil, errors.New("reedsolomon: remainder vanished")
		}
		r = rPrevPrev

		leadInv, invErr := d.field.MulInverse(rPrev.Coefficient(rPrev.Degree()))
		if invErr != nil {
			return nil, nil, invErr
		}
		quotient := gf64.ZeroPoly(d.field)
		for r.Degree() >= rPrev.Degree() && !r.IsZero() {
			degreeDiff := r.Degree() - rPrev.Degree()
			scale := d.field.Multiply(r.Coefficient(r.Degree()), leadInv)
			quotient = quotient.Add(gf64.BuildMonomial(d.field, degreeDiff, scale))
			r = r.Add(rPrev.MultiplyByMonomial(degreeDiff, scale))
		}

		a = quotient.MultiplyPoly(aPrev).Add(aPrevPrev)

		if r.Degree() >= rPrev.Degree() {
			return nil, nil, errors.New("reedsolomon: euclidean step did not reduce degree")
		}
	}

	c := a.Coefficient(0)
	if c == 0 {
		return nil, nil, errors.New("reedsolomon: degenerate normalization constant")
	}
	cInv, invErr := d.field.MulInverse(c)
	if invErr != nil {
		return nil, nil, invErr
	}
	sigma = a.MultiplyScalar(cInv)
	omega = r.MultiplyScalar(cInv)
	return sigma, omega, nil
}

// errorLocations exhaustively tests every non-zero field element beta for
// sigma(beta) == 0, returning X_i = beta^-1 for each root found. Fails if
// the number of roots does not equal deg(sigma).
func (d *Decoder) errorLocations(sigma *gf64.Poly) ([]int, error) {
	numErrors := sigma.Degree()
	if numErrors == 0 {
		return nil, nil
	}
	locations := make([]int, 0, numErrors)
	for beta := 1; beta < gf64.Size && len(locations) < numErrors; beta++ {
		if sigma.EvaluateAt(beta) == 0 {
			inv, err := d.field.MulInverse(beta)
			if err != nil {
				continue
			}
			locations = append(locations, inv)
		}
	}
	if len(locations) != numErrors {
		return nil, errors.New("reedsolomon: root count mismatch")
	}
	return locations, nil
}

// errorMagnitudes computes the Forney error magnitude for each error
// location: e_i = omega(xi_inv) * prod_{j != i} (1 + xi_inv*X_j)^-1, where
// xi_inv = X_i^-1.
func (d *Decoder) errorMagnitudes(omega *gf64.Poly, locations []int) []int {
	n := len(locations)
	magnitudes := make([]int, n)
	for i := 0; i < n; i++ {
		xiInv, err := d.field.MulInverse(locations[i])
		if err != nil {
			continue
		}
		denominator := 1
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			term := d.field.Multiply(locations[j], xiInv)
			denominator = d.field.Multiply(denominator, gf64.Add(1, term))
		}
		denomInv, err := d.field.MulInverse(denominator)
		if err != nil {
			continue
		}
		magnitudes[i] = d.field.Multiply(omega.EvaluateAt(xiInv), denomInv)
	}
	return magnitudes
}
