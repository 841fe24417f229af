package encoder

import (
	"math"
	"testing"
)

func TestEncodeHello(t *testing.T) {
	code, err := Encode("HELLO", 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if code.Size != 3 {
		t.Fatalf("Size = %d, want 3", code.Size)
	}
	if len(code.Data) != 9 {
		t.Fatalf("len(Data) = %d, want 9", len(code.Data))
	}
	if code.Data[0] != 1 || code.Data[1] != 5 {
		t.Fatalf("metadata = %v, want [1 5]", code.Data[:2])
	}
	want := []byte("HELLO")
	for i, c := range want {
		v := indexOf(t, c)
		if code.Data[Offset+i] != v {
			t.Errorf("Data[%d] = %d, want %d", Offset+i, code.Data[Offset+i], v)
		}
	}
	for i := Offset + len(want); i < len(code.Data); i++ {
		if code.Data[i] != 0 {
			t.Errorf("Data[%d] = %d, want 0 (no error correction requested)", i, code.Data[i])
		}
	}
}

func TestEncodeValidPayloadWithEC(t *testing.T) {
	code, err := Encode("VALIDPAYLOAD", 0.25)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if code.Size != 5 {
		t.Fatalf("Size = %d, want 5", code.Size)
	}
	if len(code.Data) != 25 {
		t.Fatalf("len(Data) = %d, want 25", len(code.Data))
	}
	if code.Data[0] != 1 || code.Data[1] != 12 {
		t.Fatalf("metadata = %v, want [1 12]", code.Data[:2])
	}
	// data[14] is the zero-pad slot; data[15:25] are the 10 parity symbols.
	if code.Data[14] != 0 {
		t.Errorf("Data[14] (zero pad) = %d, want 0", code.Data[14])
	}
}

func TestEncodeEmptyPayload(t *testing.T) {
	if _, err := Encode("", 0); err != ErrEmptyPayload {
		t.Errorf("err = %v, want ErrEmptyPayload", err)
	}
}

func TestEncodeInvalidECLevel(t *testing.T) {
	if _, err := Encode("HELLO", 1.5); err != ErrInvalidECLevel {
		t.Errorf("err = %v, want ErrInvalidECLevel", err)
	}
	if _, err := Encode("HELLO", -0.1); err != ErrInvalidECLevel {
		t.Errorf("err = %v, want ErrInvalidECLevel", err)
	}
}

func TestEncodeInvalidCharacter(t *testing.T) {
	if _, err := Encode("HELLO~WORLD", 0); err != ErrInvalidCharacter {
		t.Errorf("err = %v, want ErrInvalidCharacter", err)
	}
}

func TestEncodeTooBig(t *testing.T) {
	big := make([]byte, 4090)
	for i := range big {
		big[i] = 'A'
	}
	if _, err := Encode(string(big), 0.25); err != ErrTooBig {
		t.Errorf("err = %v, want ErrTooBig", err)
	}
}

func TestEncodeSizeIsSmallestSquare(t *testing.T) {
	for _, payload := range []string{"A", "AB", "ABCDEFGHIJ", "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"} {
		for _, ec := range []float64{0, 0.05, 0.15, 0.25} {
			code, err := Encode(payload, ec)
			if err != nil {
				continue
			}
			parity := int(math.Ceil(float64(len(payload))*ec)) * SymbolsPerError
			minSize := Offset + len(payload) + parity
			if code.Size*code.Size < minSize {
				t.Errorf("payload=%q ec=%v: size^2=%d < minSize=%d", payload, ec, code.Size*code.Size, minSize)
			}
			if (code.Size-1)*(code.Size-1) >= minSize {
				t.Errorf("payload=%q ec=%v: size=%d is not minimal", payload, ec, code.Size)
			}
		}
	}
}

func indexOf(t *testing.T, c byte) int {
	t.Helper()
	const table = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*(){}[]_+-=.,:;/?<>\" "
	for i := 0; i < len(table); i++ {
		if table[i] == c {
			return i
		}
	}
	t.Fatalf("character %q not in alphabet", c)
	return -1
}
