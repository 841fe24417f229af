// Package iching is the public façade of the IChing 2-D barcode codec: it
// wires the encoder/render and binarize/locate/transform/extract/decoder
// pipelines together behind two entry points, Encode and Decode, mirroring
// the shape of the teacher's top-level barcode.go (Writer/Reader, Result,
// BinaryBitmap) without its multi-symbology dispatch.
package iching

import (
	"errors"
	"time"

	"github.com/ichingcode/iching/binarize"
	"github.com/ichingcode/iching/code/decoder"
	"github.com/ichingcode/iching/code/encoder"
	"github.com/ichingcode/iching/extract"
	"github.com/ichingcode/iching/locate"
	"github.com/ichingcode/iching/metrics"
	"github.com/ichingcode/iching/render"
	"github.com/ichingcode/iching/transform"
)

// DefaultResolution is the output image side length Encode uses when the
// caller leaves EncodeOptions.Resolution at zero.
const DefaultResolution = 1250

var (
	// ErrInvalidCode is returned when a bit matrix that made it through
	// locating and rectification still fails to decode to a well-formed
	// codeword array.
	ErrInvalidCode = errors.New("Invalid IChing code!")
	// ErrCouldntLocateFinderPatterns is returned when the locator cannot
	// find three finder candidates in the binarized image.
	ErrCouldntLocateFinderPatterns = errors.New("Couldn't Locate Finder Patterns!")
	// ErrNoValidFinderPatterns is returned when three finder candidates
	// were found but their geometry could not be resolved into a usable
	// orientation (e.g. a degenerate triangle).
	ErrNoValidFinderPatterns = errors.New("No valid finder patterns found!")
	// ErrMustBeSquare is returned when the extracted codeword array is not
	// a perfect square.
	ErrMustBeSquare = errors.New("IChing code must be a square!")
)

// ImageData is a raw RGBA image buffer, row-major, four bytes per pixel.
type ImageData struct {
	Width, Height int
	Data          []byte
}

// EncodeOptions configures Encode. The zero value selects ECNone error
// correction, DefaultResolution, and square corners on a non-inverted
// render, matching spec.md §6's documented defaults.
type EncodeOptions struct {
	// ECLevel is the fraction of the payload that may be corrected.
	// Canonical values are encoder.ECNone/ECLow/ECMedium/ECHigh, but any
	// value in [0,1] is accepted.
	ECLevel float64
	// Resolution is the output image side length in pixels. Zero selects
	// DefaultResolution.
	Resolution int
	// RoundEdges and Inverted are rendering hints only; see render.Options.
	RoundEdges bool
	Inverted   bool
}

// EncodedIChing is the result of a successful Encode call.
type EncodedIChing struct {
	Version   int
	Size      int
	Data      []int
	ImageData ImageData
}

// String renders a debug dump of the codeword grid, mirroring the
// teacher's QRCode.String() ASCII art.
func (e *EncodedIChing) String() string {
	c := &encoder.Code{Version: e.Version, Size: e.Size, Data: e.Data}
	return c.String()
}

// Encode maps payload onto an IChing code matrix and renders it to RGBA.
func Encode(payload string, opts EncodeOptions) (result *EncodedIChing, err error) {
	start := time.Now()
	defer func() { metrics.ObserveEncode(err == nil, time.Since(start).Seconds()) }()

	code, err := encoder.Encode(payload, opts.ECLevel)
	if err != nil {
		return nil, err
	}

	resolution := opts.Resolution
	if resolution == 0 {
		resolution = DefaultResolution
	}

	bm, err := render.Render(code, resolution)
	if err != nil {
		return nil, err
	}
	rgba := render.ToRGBA(bm, render.Options{RoundEdges: opts.RoundEdges, Inverted: opts.Inverted})

	return &EncodedIChing{
		Version: code.Version,
		Size:    code.Size,
		Data:    code.Data,
		ImageData: ImageData{
			Width:  resolution,
			Height: resolution,
			Data:   rgba.Pix,
		},
	}, nil
}

// DecodeOptions configures Decode.
type DecodeOptions struct {
	// Inverted, when true, subtracts the RGB channels from 255 before
	// binarization, for codes rendered with EncodeOptions.Inverted.
	Inverted bool
}

// Patterns is the located geometry a successful Decode reports alongside
// the payload, per spec.md §6.
type Patterns struct {
	TopLeft, TopRight, BottomLeft, BottomRight ResultPoint
	FinderAverageSize, AlignmentSize           float64
}

// ResultPoint is a located pattern centre, mirroring the teacher's
// internal.ResultPoint.
type ResultPoint struct {
	X, Y float64
}

// DecodedIChing is the result of a successful Decode call.
type DecodedIChing struct {
	Version  int
	Size     int
	Data     string
	Patterns Patterns
}

// String renders a debug one-line summary, mirroring the teacher's
// QRCode.String() style of ASCII dump.
func (d *DecodedIChing) String() string {
	return d.Data
}

// Decode binarizes img, locates the finder/alignment patterns, rectifies
// the code to a square, extracts codewords, and decodes them to a
// payload string.
func Decode(img ImageData, opts DecodeOptions) (result *DecodedIChing, err error) {
	start := time.Now()
	kind := ""
	defer func() { metrics.ObserveDecode(err == nil, kind, time.Since(start).Seconds()) }()

	pix := img.Data
	if opts.Inverted {
		pix = invertRGB(img.Data)
	}

	width, height := img.Width, img.Height
	if width > binarize.MaxCaptureDim || height > binarize.MaxCaptureDim {
		pix, width, height = binarize.Downscale(pix, width, height, binarize.MaxCaptureDim)
	}

	bits, err := binarize.Binarize(pix, width, height)
	if err != nil {
		kind = "locate"
		return nil, ErrCouldntLocateFinderPatterns
	}

	patterns, err := locate.Locate(bits)
	if err != nil {
		kind = "locate"
		return nil, ErrCouldntLocateFinderPatterns
	}
	if patterns.TopLeft == nil || patterns.TopRight == nil ||
		patterns.BottomLeft == nil || patterns.BottomRight == nil {
		kind = "locate"
		return nil, ErrNoValidFinderPatterns
	}

	rectified, rectifyErr := transform.RectifyToSquare(bits,
		patterns.TopLeft.X, patterns.TopLeft.Y,
		patterns.TopRight.X, patterns.TopRight.Y,
		patterns.BottomRight.X, patterns.BottomRight.Y,
		patterns.BottomLeft.X, patterns.BottomLeft.Y,
	)
	if rectifyErr != nil {
		kind = "rectify"
		return nil, ErrNoValidFinderPatterns
	}

	extracted, extractErr := extract.Extract(rectified)
	if errors.Is(extractErr, extract.ErrDimensionMismatch) {
		kind = "extract"
		return nil, ErrMustBeSquare
	}
	if extractErr != nil {
		kind = "extract"
		return nil, ErrInvalidCode
	}

	payload, corrected, decodeErr := decoder.DecodeWithStats(extracted.Data, extracted.Size)
	if decodeErr != nil {
		kind = "correct"
		return nil, ErrInvalidCode
	}
	metrics.ObserveCorrectedErrors(corrected)

	return &DecodedIChing{
		Version: extracted.Version,
		Size:    extracted.Size,
		Data:    payload,
		Patterns: Patterns{
			TopLeft:           ResultPoint{patterns.TopLeft.X, patterns.TopLeft.Y},
			TopRight:          ResultPoint{patterns.TopRight.X, patterns.TopRight.Y},
			BottomLeft:        ResultPoint{patterns.BottomLeft.X, patterns.BottomLeft.Y},
			BottomRight:       ResultPoint{patterns.BottomRight.X, patterns.BottomRight.Y},
			FinderAverageSize: patterns.FinderAverageSize,
			AlignmentSize:     patterns.AlignmentSize,
		},
	}, nil
}

// DecodeAuto tries a straight decode and, on "Couldn't Locate Finder
// Patterns!", retries once with colours inverted, per spec.md §7's
// sanctioned "try, then invert and re-try" wrapper.
func DecodeAuto(img ImageData) (*DecodedIChing, error) {
	result, err := Decode(img, DecodeOptions{})
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, ErrCouldntLocateFinderPatterns) {
		return nil, err
	}
	return Decode(img, DecodeOptions{Inverted: true})
}

func invertRGB(rgba []byte) []byte {
	out := make([]byte, len(rgba))
	for i := 0; i+3 < len(rgba); i += 4 {
		out[i] = 255 - rgba[i]
		out[i+1] = 255 - rgba[i+1]
		out[i+2] = 255 - rgba[i+2]
		out[i+3] = rgba[i+3]
	}
	return out
}
