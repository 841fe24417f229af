package extract

import (
	"testing"

	"github.com/ichingcode/iching/code/encoder"
	"github.com/ichingcode/iching/locate"
	"github.com/ichingcode/iching/render"
	"github.com/ichingcode/iching/transform"
)

func TestExtractRoundTripsThroughLocateAndRectify(t *testing.T) {
	// Payloads chosen to span varied bit patterns across the alphabet
	// (A=0 all-zero, H=7 mixed low bits, high alphabet indices, numerics,
	// and adjacent-bar-heavy runs) so a bit-merging regression in either
	// the renderer or the extractor shows up as a data mismatch rather
	// than just a length/version mismatch.
	payloads := []struct {
		text    string
		ecLevel float64
	}{
		{"HELLO", 0},
		{"AAAA", 0},
		{"0123456789", 0},
		{"!@#$%^&*(){}[]", 0.15},
		{"VALIDPAYLOAD", 0.25},
	}

	for _, p := range payloads {
		t.Run(p.text, func(t *testing.T) {
			code, err := encoder.Encode(p.text, p.ecLevel)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			bm, err := render.Render(code, 900)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}

			patterns, err := locate.Locate(bm)
			if err != nil {
				t.Fatalf("Locate: %v", err)
			}

			rectified, err := transform.RectifyToSquare(bm,
				patterns.TopLeft.X, patterns.TopLeft.Y,
				patterns.TopRight.X, patterns.TopRight.Y,
				patterns.BottomRight.X, patterns.BottomRight.Y,
				patterns.BottomLeft.X, patterns.BottomLeft.Y,
			)
			if err != nil {
				t.Fatalf("RectifyToSquare: %v", err)
			}

			result, err := Extract(rectified)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}

			if result.Size != code.Size {
				t.Errorf("Size = %d, want %d", result.Size, code.Size)
			}
			if len(result.Data) != len(code.Data) {
				t.Fatalf("len(Data) = %d, want %d", len(result.Data), len(code.Data))
			}
			if result.Version != code.Data[0] {
				t.Errorf("Version = %d, want %d", result.Version, code.Data[0])
			}
			for i := range code.Data {
				if result.Data[i] != code.Data[i] {
					t.Errorf("Data[%d] = %d, want %d", i, result.Data[i], code.Data[i])
				}
			}
		})
	}
}
