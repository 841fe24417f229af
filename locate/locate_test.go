package locate

import (
	"math"
	"testing"

	"github.com/ichingcode/iching/code/encoder"
	"github.com/ichingcode/iching/render"
)

func TestLocateFindsFinderCenters(t *testing.T) {
	code, err := encoder.Encode("HELLO WORLD", 0.15)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	bm, err := render.Render(code, 600)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	patterns, err := Locate(bm)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}

	base := render.SD*code.Size + (code.Size-1)*render.GD + 2*(2*render.FD+render.QZ)
	scale := 600 / base
	padding := (600 - base*scale) / 2
	wantFinder := float64(padding + (render.QZ+render.FD)*scale)
	wantOpposite := float64(600 - padding - (render.QZ+render.FD)*scale)

	checkNear(t, "topLeft.X", patterns.TopLeft.X, wantFinder)
	checkNear(t, "topLeft.Y", patterns.TopLeft.Y, wantFinder)
	checkNear(t, "topRight.X", patterns.TopRight.X, wantOpposite)
	checkNear(t, "bottomLeft.Y", patterns.BottomLeft.Y, wantOpposite)
}

func TestLocateScoresFindersByFourDirectionError(t *testing.T) {
	code, err := encoder.Encode("HELLO WORLD", 0.15)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	bm, err := render.Render(code, 600)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	patterns, err := Locate(bm)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}

	for name, p := range map[string]*Pattern{
		"topLeft":    patterns.TopLeft,
		"topRight":   patterns.TopRight,
		"bottomLeft": patterns.BottomLeft,
	} {
		if math.IsNaN(p.Error) || math.IsInf(p.Error, 0) || p.Error < 0 {
			t.Errorf("%s.Error = %v, want a finite non-negative four-direction error", name, p.Error)
		}
		if p.Error > 1 {
			t.Errorf("%s.Error = %v, want a tight four-direction fit on a clean render", name, p.Error)
		}
	}
}

func checkNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 10 {
		t.Errorf("%s = %v, want near %v", name, got, want)
	}
}
