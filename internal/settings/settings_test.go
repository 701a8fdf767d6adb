package settings

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeClampsRanges(t *testing.T) {
	p := Processing{
		Width:            5000,
		Height:           1,
		Density:          0.2,
		EdgeThreshold:    10,
		FillAngle:        725,
		PullCompensation: -3,
		Color:            "#00FF00",
	}
	out, adjusted := Sanitize(p)

	assert.Equal(t, 1000.0, out.Width)
	assert.Equal(t, 10.0, out.Height)
	assert.Equal(t, 1.0, out.Density)
	assert.Equal(t, 64, out.EdgeThreshold)
	assert.Equal(t, 5.0, out.FillAngle)
	assert.Equal(t, 0.0, out.PullCompensation)
	assert.Equal(t, "#00FF00", out.Color)

	assert.ElementsMatch(t,
		[]string{"width", "height", "density", "edgeThreshold", "fillAngle", "pullCompensation"},
		adjusted)
}

func TestSanitizeRejectsBadColor(t *testing.T) {
	for _, bad := range []string{"", "red", "#12345", "#12345G"} {
		out, adjusted := Sanitize(Processing{Width: 100, Height: 100, Density: 2, EdgeThreshold: 128, Color: bad})
		assert.Equal(t, "#000000", out.Color, "input %q", bad)
		assert.Contains(t, adjusted, "color")
	}
}

func TestSanitizeNegativeAngle(t *testing.T) {
	out, _ := Sanitize(Processing{Width: 100, Height: 100, Density: 2, EdgeThreshold: 128, Color: "#000000", FillAngle: -45})
	assert.Equal(t, 315.0, out.FillAngle)
	assert.GreaterOrEqual(t, out.FillAngle, 0.0)
	assert.Less(t, out.FillAngle, 360.0)
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []Processing{
		{},
		{Width: -10, Height: 1e9, Density: math.NaN(), FillAngle: 9999, Color: "zzz"},
		Default(),
		{Width: 250, Height: 250, Density: 3.5, EdgeThreshold: 100, FillAngle: 359.9, Color: "#AbCdEf", PullCompensation: 2},
	}
	for _, in := range inputs {
		once, _ := Sanitize(in)
		twice, adjusted := Sanitize(once)
		assert.Equal(t, once, twice)
		assert.Empty(t, adjusted, "second pass should adjust nothing")
	}
}

func TestDefaultIsAlreadySane(t *testing.T) {
	out, adjusted := Sanitize(Default())
	require.Empty(t, adjusted)
	assert.Equal(t, Default(), out)
}

func TestParseColorMode(t *testing.T) {
	assert.Equal(t, Color, ParseColorMode("color"))
	assert.Equal(t, Grayscale, ParseColorMode("grayscale"))
	assert.Equal(t, Grayscale, ParseColorMode(""))
	assert.Equal(t, Grayscale, ParseColorMode("anything"))
}
