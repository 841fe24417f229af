package binarize

import "testing"

func solidImage(width, height int, v byte) []byte {
	buf := make([]byte, 4*width*height)
	for i := 0; i < width*height; i++ {
		buf[4*i] = v
		buf[4*i+1] = v
		buf[4*i+2] = v
		buf[4*i+3] = 255
	}
	return buf
}

func TestBinarizeTooSmall(t *testing.T) {
	buf := solidImage(10, 10, 128)
	if _, err := Binarize(buf, 10, 10); err != ErrTooSmall {
		t.Errorf("err = %v, want ErrTooSmall", err)
	}
}

func TestLumaOfWhiteIsWhite(t *testing.T) {
	buf := solidImage(4, 4, 255)
	luma := Luma(buf, 4, 4)
	for _, l := range luma {
		if l != 255 {
			t.Errorf("luma = %d, want 255", l)
		}
	}
}

func TestBinarizeHalfBlackHalfWhite(t *testing.T) {
	const w, h = 200, 200
	buf := make([]byte, 4*w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			v := byte(255)
			if x < w/2 {
				v = 0
			}
			buf[4*i] = v
			buf[4*i+1] = v
			buf[4*i+2] = v
			buf[4*i+3] = 255
		}
	}
	matrix, err := Binarize(buf, w, h)
	if err != nil {
		t.Fatalf("Binarize: %v", err)
	}
	if !matrix.Get(10, 100) {
		t.Error("left half should binarize to black (set)")
	}
	if matrix.Get(w-10, 100) {
		t.Error("right half should binarize to white (unset)")
	}
}

func TestDownscaleShrinksToMaxDim(t *testing.T) {
	buf := solidImage(800, 400, 200)
	out, w, h := Downscale(buf, 800, 400, 200)
	if w != 200 || h != 100 {
		t.Errorf("dims = %dx%d, want 200x100", w, h)
	}
	if len(out) != 4*w*h {
		t.Errorf("len(out) = %d, want %d", len(out), 4*w*h)
	}
}

func TestDownscaleLeavesSmallImagesAlone(t *testing.T) {
	buf := solidImage(100, 50, 10)
	out, w, h := Downscale(buf, 100, 50, 200)
	if w != 100 || h != 50 {
		t.Errorf("dims = %dx%d, want 100x50", w, h)
	}
	if &out[0] != &buf[0] {
		t.Error("Downscale should return the same buffer when already within maxDim")
	}
}
