// Package imaging loads input raster files and prepares them for the
// conversion pipeline. Decoders are registered for PNG, JPEG, TGA and BMP;
// everything downstream works on NRGBA.
package imaging

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"

	"img2stitch/internal/errs"
)

// Load reads and decodes an image file into NRGBA.
func Load(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidInput, err, "read %s", path)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errs.Wrap(errs.InvalidInput, err, "decode %s", path)
	}

	return ToNRGBA(img), nil
}

// ToNRGBA converts any image to NRGBA format.
func ToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src.(type) {
	case *image.YCbCr, *image.Gray:
		// No alpha channel in the source — force opaque
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = 255
		}
	default:
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	}
	return dst
}

// pixelsPerMM is the working resolution of the pipeline raster: two pixels
// per millimeter, so one pixel spans 0.5 mm of canvas. The raster does not
// follow the configured density.
const pixelsPerMM = 2

// Fit scales img to the pixel grid matching a widthMM×heightMM canvas,
// preserving aspect ratio within the canvas. Returns img unchanged when it
// is already at or below the target size.
func Fit(img *image.NRGBA, widthMM, heightMM float64) *image.NRGBA {
	targetW := int(math.Round(widthMM * pixelsPerMM))
	targetH := int(math.Round(heightMM * pixelsPerMM))
	if targetW < 3 {
		targetW = 3
	}
	if targetH < 3 {
		targetH = 3
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= targetW && h <= targetH {
		return img
	}

	// Preserve aspect ratio within the canvas
	scale := math.Min(float64(targetW)/float64(w), float64(targetH)/float64(h))
	outW := int(math.Round(float64(w) * scale))
	outH := int(math.Round(float64(h) * scale))
	if outW < 3 {
		outW = 3
	}
	if outH < 3 {
		outH = 3
	}

	dst := image.NewNRGBA(image.Rect(0, 0, outW, outH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// Clone returns a deep copy of img.
func Clone(img *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(img.Bounds())
	copy(dst.Pix, img.Pix)
	return dst
}
