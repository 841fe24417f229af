// Package extract walks a rectified bit matrix and reads out one 6-bit
// codeword per grid cell, per spec.md §4.10. There is no teacher
// equivalent for this stage (zxinggo's QR version decoder reads
// already-square, already-known-scale modules); it is grounded instead
// in the same run-length/state-machine idiom the teacher uses throughout
// qrcode/detector and reedsolomon, applied to the geometry spec.md §4.6
// defines for the renderer.
package extract

import (
	"errors"
	"math"

	"github.com/ichingcode/iching/bitutil"
	"github.com/ichingcode/iching/render"
)

// BitsPerSymbol is the number of bits a single grid cell encodes.
const BitsPerSymbol = 6

// VerticalBorderBlackThreshold is the black-pixel fraction a candidate
// vertical cell border must cross during refinement.
const VerticalBorderBlackThreshold = 0.25

// UnitDimThreshold (multiplied by the scaled unit u) is the minimum run
// length, in scanlines, for a ZERO/ONE run to be taken as a real bit
// rather than transitional noise.
const UnitDimThreshold = 0.5

// GapDimThreshold (multiplied by the scaled gap GD) is the minimum
// length of an INVALID run that is treated as a real inter-symbol gap
// rather than an ordinary inter-bit gap within a cell.
const GapDimThreshold = 1.5

// RadiusTolerance is the allowed fractional deviation of a finder-radius
// run's sub-run ratios from the canonical 3:2:2 split.
const RadiusTolerance = 0.2

// ErrScaleNotFound is returned when no finder-radius slice could be
// measured from any of the three visible finder centres.
var ErrScaleNotFound = errors.New("could not estimate local scale from finder centres")

// ErrDimensionMismatch is returned when the horizontal and vertical cell
// counts derived from the measured scale disagree, or when the derived
// count is less than one. Both counts come from the side of the square
// rectified matrix, so in practice only the second case occurs.
var ErrDimensionMismatch = errors.New("horizontal and vertical cell counts disagree")

// Result is the raw codeword array extracted from a rectified matrix.
type Result struct {
	Version int
	Size    int
	Data    []int
}

// Extract reads codewords from the rectified bit matrix bits, whose
// three visible finder centres sit exactly at its own corners (0,0),
// (n,0), (0,n) -- the invariant RectifyToSquare establishes.
func Extract(bits *bitutil.BitMatrix) (*Result, error) {
	n := bits.Width()
	u, err := estimateScale(bits, n)
	if err != nil {
		return nil, err
	}

	sd := float64(render.SD) * u
	gd := float64(render.GD) * u
	fd := float64(render.FD) * u

	cellsH := cellCount(float64(n), sd, gd)
	cellsV := cellCount(float64(n), sd, gd)
	if cellsH != cellsV || cellsH < 1 {
		return nil, ErrDimensionMismatch
	}
	size := cellsH

	data := make([]int, size*size)
	for col := 0; col < size; col++ {
		left := fd + float64(col)*(sd+gd)
		right := left + sd
		left, right = refineBorder(bits, left, right, n)

		for row := 0; row < size; row++ {
			top := fd + float64(row)*(sd+gd)
			bottom := top + sd
			data[row*size+col] = readSymbol(bits, left, right, top, bottom, u)
		}
	}

	return &Result{Version: data[0], Size: size, Data: data}, nil
}

func cellCount(n, sd, gd float64) int {
	return int(math.Round((n + gd - sd) / (gd + sd)))
}

// estimateScale scans outward from the three finder corners (top-left,
// top-right, bottom-left, which RectifyToSquare places at (0,0), (n,0)
// and (0,n)) and averages the accepted black-white-black radius slices.
func estimateScale(bits *bitutil.BitMatrix, n int) (float64, error) {
	type probe struct {
		cx, cy, dx, dy int
	}
	probes := []probe{
		{0, 0, 1, 0}, {0, 0, 0, 1}, {0, 0, 1, 1},
		{n - 1, 0, -1, 0}, {n - 1, 0, 0, 1}, {n - 1, 0, -1, 1},
		{0, n - 1, 1, 0}, {0, n - 1, 0, -1}, {0, n - 1, 1, -1},
	}

	var total float64
	var count int
	for _, p := range probes {
		if r, ok := measureRadius(bits, p.cx, p.cy, p.dx, p.dy); ok {
			total += r
			count++
		}
	}
	if count == 0 {
		return 0, ErrScaleNotFound
	}
	avgRadius := total / float64(count)
	return avgRadius / float64(render.FD), nil
}

// measureRadius walks from (cx,cy) in direction (dx,dy), classifying a
// black/white/black run triple and validating it against the canonical
// 3:2:2 inner/middle/outer ratio of the finder bullseye.
func measureRadius(bits *bitutil.BitMatrix, cx, cy, dx, dy int) (float64, bool) {
	width, height := bits.Width(), bits.Height()
	get := func(i int) (bool, bool) {
		x, y := cx+i*dx, cy+i*dy
		if x < 0 || x >= width || y < 0 || y >= height {
			return false, false
		}
		return bits.Get(x, y), true
	}

	var runs [3]int
	state := 0
	i := 0
	for state < 3 {
		black, ok := get(i)
		if !ok {
			return 0, false
		}
		wantBlack := state%2 == 0
		if black == wantBlack {
			runs[state]++
			i++
			continue
		}
		state++
	}
	total := float64(runs[0] + runs[1] + runs[2])
	if total == 0 {
		return 0, false
	}
	expected := [3]float64{3.0 / 7, 2.0 / 7, 2.0 / 7}
	for i, r := range runs {
		frac := float64(r) / total
		if math.Abs(frac-expected[i]) > RadiusTolerance {
			return 0, false
		}
	}
	// A diagonal step covers sqrt(2) pixels, so scale the step count by
	// the step length to get the radius in pixels.
	return total * math.Hypot(float64(dx), float64(dy)), true
}

// refineBorder walks a candidate left/right x-border outward (the left
// border leftward, the right border rightward; neither is moved inward)
// while the fraction of black pixels along the full-height vertical line
// at that x crosses VerticalBorderBlackThreshold, bounded to +/-(SD/2)
// of the estimate (spec.md §4.10).
func refineBorder(bits *bitutil.BitMatrix, left, right float64, n int) (float64, float64) {
	bound := (right - left) / 2
	refine := func(x float64, grow int) float64 {
		best := x
		for step := 1; float64(step) <= bound; step++ {
			candidate := x + float64(grow*step)
			ix := int(candidate)
			if ix < 0 || ix >= n {
				break
			}
			if verticalBlackFraction(bits, ix) < VerticalBorderBlackThreshold {
				break
			}
			best = candidate
		}
		return best
	}
	return refine(left, -1), refine(right, 1)
}

func verticalBlackFraction(bits *bitutil.BitMatrix, x int) float64 {
	if x < 0 || x >= bits.Width() {
		return 0
	}
	height := bits.Height()
	black := 0
	for y := 0; y < height; y++ {
		if bits.Get(x, y) {
			black++
		}
	}
	return float64(black) / float64(height)
}

type lineState int

const (
	invalid lineState = iota
	zero
	one
)

// classifyLine reads the black-pixel fraction across [left,right) at row
// y and, if that fraction is at least 0.5, further checks the fraction
// within the centred zero-clear rectangle to distinguish a ZERO bar
// (cleared, mostly white there) from a ONE bar (uncleared, mostly black).
func classifyLine(bits *bitutil.BitMatrix, left, right float64, y, u int) lineState {
	l, r := int(left), int(right)
	if r <= l {
		return invalid
	}
	black, total := 0, 0
	for x := l; x < r; x++ {
		total++
		if bits.Get(x, y) {
			black++
		}
	}
	if total == 0 || float64(black)/float64(total) < 0.5 {
		return invalid
	}

	centerX := left + 4.5*float64(u)
	cl, cr := int(centerX)-u, int(centerX)+u
	cblack, ctotal := 0, 0
	for x := cl; x < cr; x++ {
		if x < l || x >= r {
			continue
		}
		ctotal++
		if bits.Get(x, y) {
			cblack++
		}
	}
	if ctotal == 0 || float64(cblack)/float64(ctotal) < 0.9 {
		return zero
	}
	return one
}

// readSymbol scans scanlines top to bottom within [top,bottom), tracking
// state runs to recover six bits MSB-first, defaulting missing bits to 1.
func readSymbol(bits *bitutil.BitMatrix, left, right, top, bottom float64, u float64) int {
	mask := (1 << BitsPerSymbol) - 1
	bitsRead := 0
	// u is the drawing scale; classifyLine needs the renderer's unit in
	// pixels, SD/(2*BitsPerSymbol-1) base units times the scale.
	unit := int(u * float64(render.SD) / (2*BitsPerSymbol - 1))
	if unit < 1 {
		unit = 1
	}

	state := invalid
	runLen := 0
	flushRun := func() {
		if bitsRead >= BitsPerSymbol {
			return
		}
		switch {
		case state == zero && float64(runLen) > UnitDimThreshold*u:
			mask &^= 1 << (BitsPerSymbol - 1 - bitsRead)
			bitsRead++
		case state == one && float64(runLen) > UnitDimThreshold*u:
			bitsRead++
		}
	}

	gd := float64(render.GD) * u
	for y := int(top); y < int(bottom); y++ {
		s := classifyLine(bits, left, right, y, unit)
		if s == state {
			runLen++
			continue
		}
		if state == invalid && float64(runLen) > GapDimThreshold*gd {
			break
		}
		flushRun()
		state = s
		runLen = 1
	}
	flushRun()

	return mask
}
