// Package decoder implements the IChing content decoder: it validates a
// raw codeword array, corrects it with Reed-Solomon, and maps the result
// back to a payload string, per spec.md §4.11.
package decoder

import (
	"errors"

	"github.com/ichingcode/iching/alphabet"
	"github.com/ichingcode/iching/code/encoder"
	"github.com/ichingcode/iching/gf64"
	"github.com/ichingcode/iching/reedsolomon"
)

var (
	// ErrSizeMismatch is returned when size*size does not equal len(data).
	ErrSizeMismatch = errors.New("code size does not match data length")
	// ErrVersionMismatch is returned when data[0] is not the supported version.
	ErrVersionMismatch = errors.New("unsupported code version")
	// ErrLengthOutOfRange is returned when the declared payload length is
	// not a plausible value for this data array.
	ErrLengthOutOfRange = errors.New("payload length out of range")
	// ErrCorrectionFailed is returned when Reed-Solomon correction fails.
	ErrCorrectionFailed = errors.New("error correction failed")
	// ErrMetadataCorrupted is returned when correction altered the
	// version/length metadata, which should never happen on a genuine code.
	ErrMetadataCorrupted = errors.New("metadata corrupted by error correction")
	// ErrInvalidCodeword is returned when a corrected codeword falls
	// outside the alphabet's range.
	ErrInvalidCodeword = errors.New("codeword outside alphabet range")
)

// Decode validates and decodes a raw codeword array of the given square
// size back into a payload string.
func Decode(data []int, size int) (string, error) {
	s, _, err := DecodeWithStats(data, size)
	return s, err
}

// DecodeWithStats behaves like Decode but also reports the number of
// Reed-Solomon symbol errors corrected, for callers (such as metrics
// instrumentation) that want that count.
func DecodeWithStats(data []int, size int) (string, int, error) {
	if size*size != len(data) {
		return "", 0, ErrSizeMismatch
	}
	if len(data) < encoder.Offset || data[0] != encoder.Version {
		return "", 0, ErrVersionMismatch
	}
	payloadLen := data[1]
	if payloadLen < 1 || payloadLen > len(data)-encoder.Offset {
		return "", 0, ErrLengthOutOfRange
	}

	parity := (len(data) - encoder.Offset - payloadLen) &^ 1

	corrected := data
	var errorsCorrected int
	if parity > 0 {
		var err error
		corrected, errorsCorrected, err = reedsolomon.NewDecoder(gf64.Shared()).Decode(data, parity)
		if err != nil {
			return "", 0, ErrCorrectionFailed
		}
	}

	if corrected[0] != encoder.Version || corrected[1] != payloadLen {
		return "", 0, ErrMetadataCorrupted
	}

	out := make([]byte, payloadLen)
	for i := 0; i < payloadLen; i++ {
		c, ok := alphabet.Decode(corrected[encoder.Offset+i])
		if !ok {
			return "", 0, ErrInvalidCodeword
		}
		out[i] = c
	}
	return string(out), errorsCorrected, nil
}
