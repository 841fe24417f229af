package render

import (
	"testing"

	"github.com/ichingcode/iching/bitutil"
	"github.com/ichingcode/iching/code/encoder"
)

func TestRenderProducesSquareMatrix(t *testing.T) {
	code, err := encoder.Encode("HELLO", 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	bm, err := Render(code, 500)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if bm.Width() != 500 || bm.Height() != 500 {
		t.Errorf("dims = %dx%d, want 500x500", bm.Width(), bm.Height())
	}
}

func TestRenderTooSmallResolution(t *testing.T) {
	code, err := encoder.Encode("HELLO", 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Render(code, 1); err != ErrResolutionTooSmall {
		t.Errorf("err = %v, want ErrResolutionTooSmall", err)
	}
}

func TestRenderFinderCentersAreBlack(t *testing.T) {
	code, err := encoder.Encode("HELLO", 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	bm, err := Render(code, 500)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	base := baseDim(code.Size)
	scale := 500 / base
	padding := (500 - base*scale) / 2
	center := padding + (QZ+FD)*scale

	if !bm.Get(center, center) {
		t.Error("top-left finder center is not black")
	}
	opposite := 500 - padding - (QZ+FD)*scale
	if !bm.Get(opposite, center) {
		t.Error("top-right finder center is not black")
	}
	if !bm.Get(center, opposite) {
		t.Error("bottom-left finder center is not black")
	}
	if bm.Get(opposite, opposite) {
		t.Error("alignment pattern center is black, want white")
	}
}

func TestRenderQuietZoneIsWhite(t *testing.T) {
	code, err := encoder.Encode("HELLO", 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	bm, err := Render(code, 500)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	base := baseDim(code.Size)
	scale := 500 / base
	padding := (500 - base*scale) / 2
	if bm.Get(padding, padding) {
		t.Error("quiet zone corner is black, want white")
	}
}

func TestDrawSymbolLeavesGapRowsBackground(t *testing.T) {
	bm := bitutil.NewBitMatrixWithSize(100, 100)
	scale := 3
	cellSize := SD * scale
	// value with two adjacent "1" bits (bits 0 and 1 both set) so the gap
	// between their bars is the only thing distinguishing them.
	drawSymbol(bm, 0, 0, cellSize, scale, 0x30)

	gapY := 0*unit*scale + unit*scale // row just after bar 0, before bar 1
	for x := 0; x < cellSize; x++ {
		if bm.Get(x, gapY) {
			t.Fatalf("gap row %d is black at x=%d, want background", gapY, x)
		}
	}
}

func TestToRGBADimensionsMatch(t *testing.T) {
	code, err := encoder.Encode("HI", 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	bm, err := Render(code, 200)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := ToRGBA(bm, Options{})
	b := img.Bounds()
	if b.Dx() != 200 || b.Dy() != 200 {
		t.Errorf("RGBA dims = %dx%d, want 200x200", b.Dx(), b.Dy())
	}
}
