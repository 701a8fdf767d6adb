// Package render rasterizes a finished stitch pattern into a proof-sheet
// image: thread runs drawn as line segments on a white canvas, encoded as
// lossless WebP. The proof sheet is a one-shot artifact of a completed
// conversion, not a preview surface.
package render

import (
	"image"
	"image/color"
	"math"
	"os"

	"golang.org/x/image/draw"

	"github.com/HugoSmits86/nativewebp"

	"img2stitch/internal/errs"
	"img2stitch/internal/palette"
	"img2stitch/internal/stitch"
)

// supersample is the oversampling factor before the final downscale.
const supersample = 2

// ProofSheet draws pattern onto a size×size white canvas. Normal stitches
// connect to the previous position with a line in the run's thread color;
// jumps move the pen without drawing.
func ProofSheet(pattern *stitch.Pattern, size int) *image.NRGBA {
	renderSize := size * supersample
	img := image.NewNRGBA(image.Rect(0, 0, renderSize, renderSize))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	bounds := pattern.Bounds()
	span := math.Max(bounds.Width(), bounds.Height())
	if span < 0.001 {
		span = 0.001
	}
	margin := 8 * supersample
	scale := float64(renderSize-2*margin) / span

	toPx := func(s stitch.Stitch) (float64, float64) {
		return (s.X-bounds.MinX)*scale + float64(margin),
			(s.Y-bounds.MinY)*scale + float64(margin)
	}

	var haveCur bool
	var curX, curY float64
	for _, s := range pattern.Stitches {
		x, y := toPx(s)
		if s.Type == stitch.Normal && haveCur {
			drawLine(img, curX, curY, x, y, threadColor(s.Color))
		}
		curX, curY = x, y
		haveCur = true
	}

	if supersample > 1 {
		return downsample(img, size)
	}
	return img
}

// WriteWebP encodes img losslessly to path.
func WriteWebP(path string, img *image.NRGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.EncodingFailure, err, "create %s", path)
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return errs.Wrap(errs.EncodingFailure, err, "webp encode %s", path)
	}
	return nil
}

func threadColor(hex string) color.NRGBA {
	r, g, b, ok := palette.ParseHex(hex)
	if !ok {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// drawLine plots a DDA line between two pixel positions.
func drawLine(img *image.NRGBA, x0, y0, x1, y1 float64, c color.NRGBA) {
	steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(x0 + (x1-x0)*t))
		y := int(math.Round(y0 + (y1-y0)*t))
		if x < 0 || y < 0 || x >= img.Bounds().Dx() || y >= img.Bounds().Dy() {
			continue
		}
		o := img.PixOffset(x, y)
		img.Pix[o] = c.R
		img.Pix[o+1] = c.G
		img.Pix[o+2] = c.B
		img.Pix[o+3] = c.A
	}
}

// downsample scales the oversampled canvas down with CatmullRom filtering.
func downsample(img *image.NRGBA, targetSize int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, targetSize, targetSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
