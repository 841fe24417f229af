// Package render draws an IChing code matrix into a bit image and converts
// that image to RGBA, per spec.md §4.6.
package render

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/ichingcode/iching/bitutil"
	"github.com/ichingcode/iching/code/encoder"
)

// Base drawing constants (unscaled units).
const (
	unit        = 2 // u
	bitsPerByte = 6 // B, bits per symbol
)

// SD is the symbol height/width, (2*B-1)*u.
const SD = (2*bitsPerByte - 1) * unit

// GD is the inter-symbol gap, 3u.
const GD = 3 * unit

// FD is the finder outer radius, SD/2.
const FD = SD / 2

// QZ is the quiet zone width, equal to SD.
const QZ = SD

// ErrResolutionTooSmall is returned when the requested resolution cannot
// fit even a single-pixel scale of the base drawing.
var ErrResolutionTooSmall = errors.New("Resolution is too small!")

// Options configures rendering. RoundEdges and Inverted are visual hints
// only: they never change the logical bit matrix.
type Options struct {
	RoundEdges bool
	Inverted   bool
}

// baseDim returns the unscaled drawing dimension for a code of side size.
func baseDim(size int) int {
	return size*SD + (size-1)*GD + 2*(2*FD+QZ)
}

// Render draws code into an R x R bit matrix at the requested resolution.
// It fails if the integer scale floor(R/base) would be less than 1.
func Render(code *encoder.Code, resolution int) (*bitutil.BitMatrix, error) {
	base := baseDim(code.Size)
	scale := resolution / base
	if scale < 1 {
		return nil, ErrResolutionTooSmall
	}
	padding := (resolution - base*scale) / 2

	bm := bitutil.NewBitMatrix(resolution)

	finderCenter := padding + (QZ+FD)*scale
	oppositeCenter := resolution - padding - (QZ+FD)*scale

	outer := FD * scale
	middle := (5 * FD * scale) / 7
	inner := (3 * FD * scale) / 7

	drawFinder(bm, finderCenter, finderCenter, outer, middle, inner)       // top-left
	drawFinder(bm, oppositeCenter, finderCenter, outer, middle, inner)     // top-right
	drawFinder(bm, finderCenter, oppositeCenter, outer, middle, inner)     // bottom-left
	drawAlignment(bm, oppositeCenter, oppositeCenter, middle, inner)       // bottom-right

	gridOrigin := padding + (QZ+2*FD)*scale
	cellStride := (SD + GD) * scale
	cellSize := SD * scale

	for row := 0; row < code.Size; row++ {
		for col := 0; col < code.Size; col++ {
			x0 := gridOrigin + col*cellStride
			y0 := gridOrigin + row*cellStride
			drawSymbol(bm, x0, y0, cellSize, scale, code.Data[row*code.Size+col])
		}
	}

	return bm, nil
}

// drawSymbol draws the six-bit glyph for value into the cellSize x
// cellSize region with top-left corner (x0, y0). bit b (MSB-first, b=0 is
// the top bar) is a black bar of height u, spanning the full cell width,
// at row offset 2*b*u scaled by scale; the gap rows between bars are left
// as background. A zero bit additionally clears a centred white
// rectangle of width 2u within its bar.
func drawSymbol(bm *bitutil.BitMatrix, x0, y0, cellSize, scale, value int) {
	barHeight := unit * scale
	clearWidth := 2 * unit * scale
	clearCenterX := x0 + (9*unit*scale)/2 // 4.5*u*scale from the left edge

	for b := 0; b < bitsPerByte; b++ {
		bit := (value >> (bitsPerByte - 1 - b)) & 1
		barY := y0 + 2*b*unit*scale
		bm.SetRegion(x0, barY, cellSize, barHeight)
		if bit == 0 {
			bm.UnsetRegion(clearCenterX-clearWidth/2, barY, clearWidth, barHeight)
		}
	}
}

// drawFinder draws a bullseye: black disk of radius inner, white annulus
// to radius middle, black annulus to radius outer.
func drawFinder(bm *bitutil.BitMatrix, cx, cy, outer, middle, inner int) {
	fillDisk(bm, cx, cy, outer, true)
	fillDisk(bm, cx, cy, middle, false)
	fillDisk(bm, cx, cy, inner, true)
}

// drawAlignment draws a single black ring between radius inner and middle.
func drawAlignment(bm *bitutil.BitMatrix, cx, cy, middle, inner int) {
	fillDisk(bm, cx, cy, middle, true)
	fillDisk(bm, cx, cy, inner, false)
}

// fillDisk fills a disk of the given radius centred at (cx, cy) using the
// midpoint circle algorithm, setting each scanline's span to value.
func fillDisk(bm *bitutil.BitMatrix, cx, cy, radius int, value bool) {
	if radius <= 0 {
		bm.SetTo(cx, cy, value)
		return
	}
	x, y := radius, 0
	d := 1 - radius
	for x >= y {
		fillSpan(bm, cx-x, cx+x, cy+y, value)
		fillSpan(bm, cx-x, cx+x, cy-y, value)
		fillSpan(bm, cx-y, cx+y, cy+x, value)
		fillSpan(bm, cx-y, cx+y, cy-x, value)
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

func fillSpan(bm *bitutil.BitMatrix, xFrom, xTo, y int, value bool) {
	if y < 0 || y >= bm.Height() {
		return
	}
	if xFrom < 0 {
		xFrom = 0
	}
	if xTo >= bm.Width() {
		xTo = bm.Width() - 1
	}
	if value {
		bm.SetRegion(xFrom, y, xTo-xFrom+1, 1)
	} else {
		bm.UnsetRegion(xFrom, y, xTo-xFrom+1, 1)
	}
}

// ToRGBA converts a rendered bit matrix to an RGBA image, black bits
// becoming (0,0,0,255) and white bits becoming (255,255,255,255). The
// final composition blit uses golang.org/x/image/draw rather than a
// per-pixel Set loop.
func ToRGBA(bm *bitutil.BitMatrix, opts Options) *image.RGBA {
	w, h := bm.Width(), bm.Height()
	gray := image.NewGray(image.Rect(0, 0, w, h))
	black, white := uint8(0), uint8(255)
	if opts.Inverted {
		black, white = white, black
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if bm.Get(x, y) {
				gray.SetGray(x, y, color.Gray{Y: black})
			} else {
				gray.SetGray(x, y, color.Gray{Y: white})
			}
		}
	}
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), gray, image.Point{}, draw.Src)
	return rgba
}
