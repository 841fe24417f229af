// Package encoder implements the IChing content encoder: it maps a
// payload string onto a square GF(2^6) code matrix, per spec.md §4.5.
package encoder

import (
	"errors"
	"fmt"
	"math"

	"github.com/ichingcode/iching/alphabet"
	"github.com/ichingcode/iching/gf64"
	"github.com/ichingcode/iching/reedsolomon"
)

// Version is the only content-encoding version this codec emits.
const Version = 1

// MaxSize is the largest square side length a code may have.
const MaxSize = 64

// Offset is the number of metadata symbols (version, payload length) that
// precede the payload in the data array.
const Offset = 2

// SymbolsPerError is the number of extra parity symbols budgeted per
// corrected error (one to locate it, one to fix its magnitude).
const SymbolsPerError = 2

// EC level presets named in spec.md §4.5.
const (
	ECNone   = 0.0
	ECLow    = 0.05
	ECMedium = 0.15
	ECHigh   = 0.25
)

var (
	// ErrEmptyPayload is returned for an empty payload.
	ErrEmptyPayload = errors.New("Empty payload!")
	// ErrInvalidCharacter is returned when the payload contains a
	// character outside the alphabet.
	ErrInvalidCharacter = errors.New("Invalid character in payload!")
	// ErrInvalidECLevel is returned when ecLevel is outside [0, 1].
	ErrInvalidECLevel = errors.New("Error correction percentage must be a value between 0 - 1!")
	// ErrTooBig is returned when payload + parity would exceed MaxSize^2.
	ErrTooBig = errors.New("Payload and error correction level combination is too big!")
)

// Code is the encoded IChing code: a square, row-major matrix of GF(2^6)
// field elements.
type Code struct {
	Version int
	Size    int
	Data    []int
}

// Encode maps payload onto a code matrix at the given error-correction
// level (a fraction of the payload that may be corrected; canonical
// values are ECNone/ECLow/ECMedium/ECHigh, but any value in [0,1] is
// accepted).
func Encode(payload string, ecLevel float64) (*Code, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}
	if ecLevel < 0 || ecLevel > 1 {
		return nil, ErrInvalidECLevel
	}

	parity := int(math.Ceil(float64(len(payload))*ecLevel)) * SymbolsPerError

	minSize := Offset + len(payload) + parity
	if minSize > MaxSize*MaxSize {
		return nil, ErrTooBig
	}

	size := int(math.Ceil(math.Sqrt(float64(minSize))))
	for size*size < minSize {
		size++
	}
	total := size * size

	// Grow parity to absorb the slack between total and minSize, rounded
	// down to an even count since parity is always consumed two symbols
	// at a time. This always happens, even at ecLevel 0, because the
	// decoder recomputes parity from size/payload length alone and has
	// no way to know which slack was folded in and which was left as
	// padding.
	parity += (total - minSize) &^ 1

	dataLen := total - parity
	data := make([]int, dataLen)

	upper := alphabet.Upper(payload)
	data[0] = Version
	data[1] = len(payload)
	for i := 0; i < len(upper); i++ {
		v := alphabet.Encode(upper[i])
		if v == -1 {
			return nil, ErrInvalidCharacter
		}
		data[Offset+i] = v
	}
	// Remaining slots in data (explicit zero padding, plus the optional
	// extra slot from an odd (total - minSize)) are already zero.

	encoder := reedsolomon.NewEncoder(gf64.Shared())
	encoded := encoder.Encode(data, parity)

	return &Code{Version: Version, Size: size, Data: encoded}, nil
}

// String renders the code as a grid of two-digit hex values, for debug
// dumps, mirroring the teacher's QRCode.String() ASCII dump.
func (c *Code) String() string {
	s := ""
	for y := 0; y < c.Size; y++ {
		for x := 0; x < c.Size; x++ {
			s += fmt.Sprintf("%02x ", c.Data[y*c.Size+x])
		}
		s += "\n"
	}
	return s
}
