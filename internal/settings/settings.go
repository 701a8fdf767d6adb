// Package settings defines the user-facing processing parameters and the
// sanitizer that clamps them into machine-safe ranges.
package settings

import (
	"math"

	"img2stitch/internal/palette"
)

// ColorMode selects which part of the thread palette quantization uses.
type ColorMode int

const (
	Grayscale ColorMode = iota
	Color
)

func (m ColorMode) String() string {
	if m == Color {
		return "color"
	}
	return "grayscale"
}

// ParseColorMode maps a config/flag string to a ColorMode. Anything other
// than "color" is grayscale.
func ParseColorMode(s string) ColorMode {
	if s == "color" {
		return Color
	}
	return Grayscale
}

// Processing holds all conversion parameters.
type Processing struct {
	Width            float64 // target canvas width, mm
	Height           float64 // target canvas height, mm
	Density          float64 // stitches per mm²
	EdgeThreshold    int     // Sobel magnitude cutoff, 0-255
	FillAngle        float64 // degrees
	UseUnderlay      bool
	PullCompensation float64 // mm
	Color            string  // "#RRGGBB" outline/fill thread color
	ColorMode        ColorMode
}

// Default returns the parameter set used when nothing is configured.
func Default() Processing {
	return Processing{
		Width:         100,
		Height:        100,
		Density:       2,
		EdgeThreshold: 128,
		FillAngle:     0,
		UseUnderlay:   true,
		Color:         "#000000",
		ColorMode:     Grayscale,
	}
}

// Sanitize clamps p into valid ranges and returns the names of the fields
// that had to be adjusted. Sanitize is idempotent.
func Sanitize(p Processing) (Processing, []string) {
	var adjusted []string

	clamp := func(v *float64, lo, hi float64, name string) {
		switch {
		case math.IsNaN(*v), *v < lo:
			*v = lo
			adjusted = append(adjusted, name)
		case *v > hi:
			*v = hi
			adjusted = append(adjusted, name)
		}
	}

	clamp(&p.Width, 10, 1000, "width")
	clamp(&p.Height, 10, 1000, "height")
	clamp(&p.Density, 1, 5, "density")
	clamp(&p.PullCompensation, 0, 100, "pullCompensation")

	if p.EdgeThreshold < 64 {
		p.EdgeThreshold = 64
		adjusted = append(adjusted, "edgeThreshold")
	} else if p.EdgeThreshold > 192 {
		p.EdgeThreshold = 192
		adjusted = append(adjusted, "edgeThreshold")
	}

	if math.IsNaN(p.FillAngle) || math.IsInf(p.FillAngle, 0) {
		p.FillAngle = 0
		adjusted = append(adjusted, "fillAngle")
	} else if angle := normalizeAngle(p.FillAngle); angle != p.FillAngle {
		p.FillAngle = angle
		adjusted = append(adjusted, "fillAngle")
	}

	if !palette.ValidHex(p.Color) {
		p.Color = "#000000"
		adjusted = append(adjusted, "color")
	}

	if p.ColorMode != Grayscale && p.ColorMode != Color {
		p.ColorMode = Grayscale
		adjusted = append(adjusted, "colorMode")
	}

	return p, adjusted
}

// normalizeAngle folds an angle into [0, 360).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
