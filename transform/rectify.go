package transform

import (
	"errors"
	"math"

	"github.com/ichingcode/iching/bitutil"
)

// ErrOutOfBounds is returned when the homography maps a destination pixel
// outside the source image by more than a one-pixel nudge.
var ErrOutOfBounds = errors.New("rectified pixel maps outside source image")

// RectifyToSquare builds an N x N bit matrix by mapping every destination
// pixel through the inverse homography (source corners given TL, TR, BR,
// BL) back into src and nearest-neighbour sampling it, per spec.md §4.9's
// "Code transform": N = round((|TL-TR| + |TL-BL| ) / 2).
func RectifyToSquare(src *bitutil.BitMatrix, tlX, tlY, trX, trY, brX, brY, blX, blY float64) (*bitutil.BitMatrix, error) {
	n := int(math.Round((math.Hypot(tlX-trX, tlY-trY) + math.Hypot(tlX-blX, tlY-blY)) / 2))
	if n < 1 {
		return nil, ErrOutOfBounds
	}

	h := BuildHomography(
		0, 0, float64(n), 0, float64(n), float64(n), 0, float64(n),
		tlX, tlY, trX, trY, brX, brY, blX, blY,
	)

	dst := bitutil.NewBitMatrixWithSize(n, n)
	points := make([]float64, 2*n)
	for y := 0; y < n; y++ {
		fy := float64(y) + 0.5
		for x := 0; x < n; x++ {
			points[2*x] = float64(x) + 0.5
			points[2*x+1] = fy
		}
		h.ApplyAll(points)
		if err := nudgeInBounds(src, points); err != nil {
			return nil, err
		}
		for x := 0; x < n; x++ {
			sx := int(points[2*x])
			sy := int(points[2*x+1])
			if src.Get(sx, sy) {
				dst.Set(x, y)
			}
		}
	}
	return dst, nil
}

// nudgeInBounds clamps points that land exactly one pixel outside src's
// bounds back onto the border, and fails if any point lands further out.
func nudgeInBounds(src *bitutil.BitMatrix, points []float64) error {
	width, height := src.Width(), src.Height()
	for i := 0; i+1 < len(points); i += 2 {
		x, y := int(points[i]), int(points[i+1])
		if x < -1 || x > width || y < -1 || y > height {
			return ErrOutOfBounds
		}
		if x == -1 {
			points[i] = 0
		} else if x == width {
			points[i] = float64(width - 1)
		}
		if y == -1 {
			points[i+1] = 0
		} else if y == height {
			points[i+1] = float64(height - 1)
		}
	}
	return nil
}
