// Package transform builds the projective mapping between an arbitrary
// source quadrilateral and a canonical square, and uses it to rectify a
// binarized image into a square bit matrix, per spec.md §4.9. The
// closed-form construction follows *Digital Image Warping* §3.4.2, the
// same closed form the teacher's transform/perspective.go uses, but
// restructured around a generic 3x3 matrix rather than nine named
// fields, so the adjugate and product are linear algebra over indices
// instead of nine parallel hand-expanded terms.
package transform

// Homography is a 3x3 projective matrix in homogeneous coordinates.
// m[row][col]: row 0 produces x', row 1 produces y', row 2 produces the
// homogeneous denominator.
type Homography struct {
	m [3][3]float64
}

// BuildHomography computes the mapping that takes the source
// quadrilateral (s0..s3) onto the destination quadrilateral (d0..d3),
// both given in (TL, TR, BR, BL) order, as M = squareToDest *
// adj(squareToSource).
func BuildHomography(
	s0x, s0y, s1x, s1y, s2x, s2y, s3x, s3y float64,
	d0x, d0y, d1x, d1y, d2x, d2y, d3x, d3y float64,
) *Homography {
	sourceToSquare := squareToQuad(s0x, s0y, s1x, s1y, s2x, s2y, s3x, s3y).adjugate()
	squareToDest := squareToQuad(d0x, d0y, d1x, d1y, d2x, d2y, d3x, d3y)
	return squareToDest.times(sourceToSquare)
}

// Apply forward-maps (x, y) through the homography.
func (h *Homography) Apply(x, y float64) (float64, float64) {
	m := &h.m
	denom := m[2][0]*x + m[2][1]*y + m[2][2]
	return (m[0][0]*x + m[0][1]*y + m[0][2]) / denom, (m[1][0]*x + m[1][1]*y + m[1][2]) / denom
}

// ApplyAll forward-maps pairs of (x, y) coordinates in place; points must
// have even length: [x0, y0, x1, y1, ...].
func (h *Homography) ApplyAll(points []float64) {
	m := &h.m
	for i := 0; i+1 < len(points); i += 2 {
		x, y := points[i], points[i+1]
		denom := m[2][0]*x + m[2][1]*y + m[2][2]
		points[i] = (m[0][0]*x + m[0][1]*y + m[0][2]) / denom
		points[i+1] = (m[1][0]*x + m[1][1]*y + m[1][2]) / denom
	}
}

// squareToQuad computes the transform from the unit square to the
// quadrilateral (x0,y0)..(x3,y3): if the quadrilateral degenerates to a
// parallelogram (dx3 == dy3 == 0) the map is affine, otherwise it's the
// general dx3/dy3 closed form.
func squareToQuad(x0, y0, x1, y1, x2, y2, x3, y3 float64) *Homography {
	dx3 := x0 - x1 + x2 - x3
	dy3 := y0 - y1 + y2 - y3
	if dx3 == 0 && dy3 == 0 {
		return &Homography{m: [3][3]float64{
			{x1 - x0, x2 - x1, x0},
			{y1 - y0, y2 - y1, y0},
			{0, 0, 1},
		}}
	}
	dx1 := x1 - x2
	dx2 := x3 - x2
	dy1 := y1 - y2
	dy2 := y3 - y2
	denom := dx1*dy2 - dx2*dy1
	a13 := (dx3*dy2 - dx2*dy3) / denom
	a23 := (dx1*dy3 - dx3*dy1) / denom
	return &Homography{m: [3][3]float64{
		{x1 - x0 + a13*x1, x3 - x0 + a23*x3, x0},
		{y1 - y0 + a13*y1, y3 - y0 + a23*y3, y0},
		{a13, a23, 1},
	}}
}

// otherTwo returns the two indices in {0,1,2} other than k, in increasing
// order; used to pick the rows/columns left over when one is struck out
// of a 3x3 matrix for a minor.
func otherTwo(k int) (int, int) {
	switch k {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

// adjugate returns the transpose of the cofactor matrix: adjugate[i][j]
// is the signed 2x2 minor left after striking row j and column i from m.
func (h *Homography) adjugate() *Homography {
	m := &h.m
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r0, r1 := otherTwo(j)
			c0, c1 := otherTwo(i)
			minor := m[r0][c0]*m[r1][c1] - m[r0][c1]*m[r1][c0]
			if (i+j)%2 != 0 {
				minor = -minor
			}
			out[i][j] = minor
		}
	}
	return &Homography{m: out}
}

// times returns h * other as a standard 3x3 matrix product.
func (h *Homography) times(other *Homography) *Homography {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := 0.0
			for k := 0; k < 3; k++ {
				sum += h.m[i][k] * other.m[k][j]
			}
			out[i][j] = sum
		}
	}
	return &Homography{m: out}
}
