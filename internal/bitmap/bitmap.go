// Package bitmap normalizes a quantized image into a clean grayscale bitmap
// suitable for edge detection: histogram equalization, BT.709 grayscale
// conversion, then one of contrast repair, brightness repair, or median
// denoise depending on the measured tonal statistics.
package bitmap

import (
	"image"
	"math"
	"sort"

	"img2stitch/internal/errs"
)

// Thresholds for the post-grayscale repair decision.
const (
	lowContrastRange = 20  // max-min below this → gamma contrast stretch
	darkMeanLimit    = 20  // mean below this → brightness lift
	brightMeanLimit  = 235 // mean above this → brightness drop
	contrastGamma    = 1.2
)

// CreateBitmap runs the normalization sequence and returns a fresh
// grayscale NRGBA image. Images smaller than 3×3 are rejected.
func CreateBitmap(img *image.NRGBA) (*image.NRGBA, error) {
	if img == nil {
		return nil, errs.New(errs.InvalidInput, "nil image")
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return nil, errs.New(errs.InvalidInput, "image %dx%d below 3x3 minimum", w, h)
	}

	eq := equalize(img)
	gray := toGray(eq)

	min, max, mean := grayStats(gray)
	switch {
	case max-min < lowContrastRange:
		return enhanceContrast(gray, min, max), nil
	case mean < darkMeanLimit || mean > brightMeanLimit:
		return adjustBrightness(gray, mean), nil
	default:
		return medianFilter(gray), nil
	}
}

// equalize applies histogram equalization over channel-averaged intensity
// and remaps all three channels through the same CDF.
func equalize(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var hist [256]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			v := (int(img.Pix[i]) + int(img.Pix[i+1]) + int(img.Pix[i+2])) / 3
			hist[v]++
		}
	}

	var cdf [256]int
	sum := 0
	for v := 0; v < 256; v++ {
		sum += hist[v]
		cdf[v] = sum
	}

	cdfMin := 0
	for v := 0; v < 256; v++ {
		if cdf[v] > 0 {
			cdfMin = cdf[v]
			break
		}
	}

	total := w * h
	denom := float64(total - cdfMin)
	var lut [256]uint8
	for v := 0; v < 256; v++ {
		if denom <= 0 {
			lut[v] = uint8(v)
			continue
		}
		m := math.Round(float64(cdf[v]-cdfMin) / denom * 255)
		lut[v] = uint8(math.Max(0, math.Min(255, m)))
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			di := out.PixOffset(x, y)
			out.Pix[di] = lut[img.Pix[si]]
			out.Pix[di+1] = lut[img.Pix[si+1]]
			out.Pix[di+2] = lut[img.Pix[si+2]]
			out.Pix[di+3] = img.Pix[si+3]
		}
	}
	return out
}

// toGray converts to grayscale with BT.709 weights, preserving alpha.
func toGray(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			yv := uint8(0.2126*float64(img.Pix[i]) + 0.7152*float64(img.Pix[i+1]) + 0.0722*float64(img.Pix[i+2]))
			out.Pix[i] = yv
			out.Pix[i+1] = yv
			out.Pix[i+2] = yv
			out.Pix[i+3] = img.Pix[i+3]
		}
	}
	return out
}

func grayStats(img *image.NRGBA) (min, max int, mean float64) {
	min, max = 255, 0
	sum := 0
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		v := int(img.Pix[i])
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
		n++
	}
	if n > 0 {
		mean = float64(sum) / float64(n)
	}
	return min, max, mean
}

// enhanceContrast stretches the intensity range with gamma 1.2.
func enhanceContrast(img *image.NRGBA, min, max int) *image.NRGBA {
	rng := float64(max - min)
	if rng < 1 {
		rng = 1
	}
	var lut [256]uint8
	for v := 0; v < 256; v++ {
		norm := (float64(v) - float64(min)) / rng
		if norm < 0 {
			norm = 0
		} else if norm > 1 {
			norm = 1
		}
		lut[v] = uint8(math.Round(math.Pow(norm, 1/contrastGamma) * 255))
	}
	return applyLUT(img, lut)
}

// adjustBrightness scales intensity toward a mid-gray mean.
func adjustBrightness(img *image.NRGBA, mean float64) *image.NRGBA {
	if mean < 1 {
		mean = 1
	}
	factor := 128 / mean
	var lut [256]uint8
	for v := 0; v < 256; v++ {
		s := math.Round(float64(v) * factor)
		lut[v] = uint8(math.Max(0, math.Min(255, s)))
	}
	return applyLUT(img, lut)
}

func applyLUT(img *image.NRGBA, lut [256]uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for i := 0; i < len(img.Pix); i += 4 {
		v := lut[img.Pix[i]]
		out.Pix[i] = v
		out.Pix[i+1] = v
		out.Pix[i+2] = v
		out.Pix[i+3] = img.Pix[i+3]
	}
	return out
}

// medianFilter applies a 3×3 median with the window clamped at borders.
func medianFilter(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	window := make([]int, 0, 9)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			window = window[:0]
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := clampInt(x+dx, 0, w-1), clampInt(y+dy, 0, h-1)
					window = append(window, int(img.Pix[img.PixOffset(nx, ny)]))
				}
			}
			sort.Ints(window)
			v := uint8(window[len(window)/2])

			i := out.PixOffset(x, y)
			out.Pix[i] = v
			out.Pix[i+1] = v
			out.Pix[i+2] = v
			out.Pix[i+3] = img.Pix[img.PixOffset(x, y)+3]
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
