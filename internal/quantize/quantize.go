// Package quantize maps every image pixel to the nearest machine-thread
// color from the fixed palette.
package quantize

import (
	"image"

	"img2stitch/internal/errs"
	"img2stitch/internal/palette"
	"img2stitch/internal/settings"
)

// ProcessImage replaces each pixel with its nearest palette color and
// returns the new image plus the hex colors used, in order of first
// appearance. Grayscale mode matches pixel luminance against the gray
// entries only.
func ProcessImage(img *image.NRGBA, mode settings.ColorMode) (*image.NRGBA, []string, error) {
	if img == nil {
		return nil, nil, errs.New(errs.InvalidInput, "nil image")
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, nil, errs.New(errs.InvalidInput, "empty image %dx%d", w, h)
	}
	if len(img.Pix) < w*h*4 {
		return nil, nil, errs.New(errs.InvalidInput, "short pixel buffer: %d bytes for %dx%d", len(img.Pix), w, h)
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	grayscale := mode == settings.Grayscale

	var used []string
	seen := make(map[int]bool, palette.Count(grayscale))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			r, g, bb, a := img.Pix[si], img.Pix[si+1], img.Pix[si+2], img.Pix[si+3]

			var t palette.Thread
			var idx int
			if grayscale {
				// BT.601 luminance, matched against the gray ramp
				yv := uint8(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bb))
				t, idx = palette.Nearest(yv, yv, yv, true)
			} else {
				t, idx = palette.Nearest(r, g, bb, false)
			}

			di := out.PixOffset(x, y)
			out.Pix[di] = t.R
			out.Pix[di+1] = t.G
			out.Pix[di+2] = t.B
			out.Pix[di+3] = a

			if !seen[idx] {
				seen[idx] = true
				used = append(used, t.Hex())
			}
		}
	}

	return out, used, nil
}
