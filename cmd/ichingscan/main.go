// Command ichingscan is a thin CLI demo wired to the iching façade only,
// analogous to the teacher's cmd/barcodescan/main.go but for a single
// symbology: it either renders a payload to a PNG or scans a PNG/JPEG/GIF
// file and prints the decoded payload.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ichingcode/iching"
	"github.com/ichingcode/iching/binarize"
	"github.com/ichingcode/iching/extract"
	"github.com/ichingcode/iching/locate"
	"github.com/ichingcode/iching/transform"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ichingscan encode -payload TEXT [-ec 0.15] [-out code.png] [-resolution 1250]\n")
		fmt.Fprintf(os.Stderr, "       ichingscan decode [-inverted] [-debug debug.png] <image-file>\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "encode":
		err = runEncode(os.Args[2:])
	case "decode":
		err = runDecode(os.Args[2:])
	default:
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ichingscan: %v\n", err)
		os.Exit(1)
	}
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	payload := fs.String("payload", "", "payload string to encode")
	ec := fs.Float64("ec", 0, "error correction level, in [0,1]")
	out := fs.String("out", "code.png", "output PNG path")
	resolution := fs.Int("resolution", iching.DefaultResolution, "output image side length in pixels")
	inverted := fs.Bool("inverted", false, "invert rendered colours (visual only)")
	fs.Parse(args)

	if *payload == "" {
		return fmt.Errorf("-payload is required")
	}

	encoded, err := iching.Encode(*payload, iching.EncodeOptions{
		ECLevel:    *ec,
		Resolution: *resolution,
		Inverted:   *inverted,
	})
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	fmt.Printf("version=%d size=%d\n", encoded.Version, encoded.Size)

	img := &image.RGBA{
		Pix:    encoded.ImageData.Data,
		Stride: 4 * encoded.ImageData.Width,
		Rect:   image.Rect(0, 0, encoded.ImageData.Width, encoded.ImageData.Height),
	}
	return writePNG(*out, img)
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	inverted := fs.Bool("inverted", false, "treat the image as colour-inverted before binarizing")
	debug := fs.String("debug", "", "optional path to dump a captioned debug PNG of the rectified code")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one image file argument")
	}
	path := fs.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	rgba := toRGBA(img)
	data := iching.ImageData{Width: rgba.Bounds().Dx(), Height: rgba.Bounds().Dy(), Data: rgba.Pix}

	decoded, err := iching.Decode(data, iching.DecodeOptions{Inverted: *inverted})
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	fmt.Printf("version=%d size=%d text=%q\n", decoded.Version, decoded.Size, decoded.Data)

	if *debug != "" {
		if err := writeDebugPNG(*debug, data, decoded.Data); err != nil {
			return fmt.Errorf("debug dump: %w", err)
		}
	}
	return nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// writeDebugPNG re-runs the binarize/locate/transform pipeline stages
// directly (bypassing the façade, which only returns the decoded string)
// to dump the rectified bit matrix with the decoded payload captioned
// underneath, for visual debugging only.
func writeDebugPNG(path string, data iching.ImageData, caption string) error {
	bits, err := binarize.Binarize(data.Data, data.Width, data.Height)
	if err != nil {
		return err
	}
	patterns, err := locate.Locate(bits)
	if err != nil {
		return err
	}
	rectified, err := transform.RectifyToSquare(bits,
		patterns.TopLeft.X, patterns.TopLeft.Y,
		patterns.TopRight.X, patterns.TopRight.Y,
		patterns.BottomRight.X, patterns.BottomRight.Y,
		patterns.BottomLeft.X, patterns.BottomLeft.Y,
	)
	if err != nil {
		return err
	}
	_, _ = extract.Extract(rectified) // validated already by the façade decode above

	n := rectified.Width()
	captionHeight := 20
	canvas := image.NewRGBA(image.Rect(0, 0, n, n+captionHeight))
	draw.Draw(canvas, image.Rect(0, 0, n, captionHeight+n), image.NewUniform(color.White), image.Point{}, draw.Src)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if rectified.Get(x, y) {
				canvas.Set(x, y, color.Black)
			} else {
				canvas.Set(x, y, color.White)
			}
		}
	}

	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, n+14),
	}
	d.DrawString(caption)

	return writePNG(path, canvas)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
