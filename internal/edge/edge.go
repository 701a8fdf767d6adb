// Package edge runs Sobel edge detection with thresholding and
// non-maximum suppression, producing a binary edge map.
package edge

import (
	"image"
	"math"

	"img2stitch/internal/errs"
)

const (
	// maxEdgeRatio is the fraction of interior pixels that may be edges
	// before the input is considered noise rather than structure.
	maxEdgeRatio = 0.5
	// minEdgePixels is the smallest usable edge map after suppression.
	minEdgePixels = 100
)

// DetectEdges computes the Sobel gradient magnitude of img, keeps pixels
// above threshold, and thins the result with non-maximum suppression.
// The returned image is binary: 255 on edges, 0 elsewhere.
func DetectEdges(img *image.NRGBA, threshold int) (*image.NRGBA, error) {
	if img == nil {
		return nil, errs.New(errs.InvalidInput, "nil image")
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return nil, errs.New(errs.InvalidInput, "image %dx%d below 3x3 minimum", w, h)
	}

	// BT.601 grayscale plane
	gray := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			gray[y*w+x] = 0.299*float64(img.Pix[i]) + 0.587*float64(img.Pix[i+1]) + 0.114*float64(img.Pix[i+2])
		}
	}

	// Sobel magnitude over interior pixels
	mag := make([]float64, w*h)
	edgePixels := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -gray[(y-1)*w+x-1] + gray[(y-1)*w+x+1] +
				-2*gray[y*w+x-1] + 2*gray[y*w+x+1] +
				-gray[(y+1)*w+x-1] + gray[(y+1)*w+x+1]
			gy := -gray[(y-1)*w+x-1] - 2*gray[(y-1)*w+x] - gray[(y-1)*w+x+1] +
				gray[(y+1)*w+x-1] + 2*gray[(y+1)*w+x] + gray[(y+1)*w+x+1]
			m := math.Sqrt(gx*gx + gy*gy)
			if m > float64(threshold) {
				mag[y*w+x] = m
				edgePixels++
			}
		}
	}

	inner := (w - 2) * (h - 2)
	if edgePixels == 0 {
		return nil, errs.New(errs.InsufficientEdges, "no pixels above threshold %d", threshold)
	}
	if float64(edgePixels)/float64(inner) > maxEdgeRatio {
		return nil, errs.New(errs.TooManyEdges, "%d of %d interior pixels are edges", edgePixels, inner)
	}

	// Non-maximum suppression: keep an edge pixel only if its gradient
	// magnitude is not exceeded by any of its 8 neighbors.
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	remaining := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			m := mag[y*w+x]
			if m == 0 {
				continue
			}
			keep := true
			for dy := -1; dy <= 1 && keep; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					if mag[(y+dy)*w+x+dx] > m {
						keep = false
						break
					}
				}
			}
			if !keep {
				continue
			}
			i := out.PixOffset(x, y)
			out.Pix[i] = 255
			out.Pix[i+1] = 255
			out.Pix[i+2] = 255
			out.Pix[i+3] = 255
			remaining++
		}
	}

	if remaining < minEdgePixels {
		return nil, errs.New(errs.InsufficientEdges, "%d edge pixels after suppression, need %d", remaining, minEdgePixels)
	}

	// Opaque black background
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 255
	}

	return out, nil
}
