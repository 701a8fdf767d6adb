package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearestGrayscale(t *testing.T) {
	near, _ := Nearest(10, 10, 10, true)
	assert.Equal(t, "#000000", near.Hex(), "near-black maps to Black")

	near, _ = Nearest(250, 250, 250, true)
	assert.Equal(t, "#FFFFFF", near.Hex(), "near-white maps to White")

	near, _ = Nearest(0x80, 0x80, 0x80, true)
	assert.Equal(t, "Medium Gray", near.Name)
}

func TestNearestGrayscaleOnlyUsesGrayRamp(t *testing.T) {
	// Pure red in grayscale mode must still land on a gray entry
	_, idx := Nearest(255, 0, 0, true)
	assert.Less(t, idx, Count(true))
}

func TestNearestColorExactMatches(t *testing.T) {
	for i := 0; i < Count(false); i++ {
		want := At(i)
		got, idx := Nearest(want.R, want.G, want.B, false)
		assert.Equal(t, i, idx, "palette entry %s should match itself", want.Name)
		assert.Equal(t, want.Hex(), got.Hex())
	}
}

func TestDistanceZeroOnlyForIdenticalColors(t *testing.T) {
	assert.Zero(t, Distance(12, 34, 56, 12, 34, 56))
	assert.Greater(t, Distance(0, 0, 0, 255, 255, 255), 0.0)
}

func TestParseHex(t *testing.T) {
	r, g, b, ok := ParseHex("#FF8001")
	require.True(t, ok)
	assert.Equal(t, uint8(0xFF), r)
	assert.Equal(t, uint8(0x80), g)
	assert.Equal(t, uint8(0x01), b)

	for _, bad := range []string{"", "#FFF", "FF8001", "#GG0000", "#FF80011"} {
		_, _, _, ok := ParseHex(bad)
		assert.False(t, ok, "should reject %q", bad)
	}
}

func TestNearestHexFallsBackToBlack(t *testing.T) {
	assert.Equal(t, "Black", NearestHex("not-a-color").Name)
	assert.Equal(t, "Red", NearestHex("#FE0101").Name)
}

func TestPaletteShape(t *testing.T) {
	require.Equal(t, 11, Count(false))
	require.Equal(t, 5, Count(true))
	// The gray ramp leads the table
	for i := 0; i < Count(true); i++ {
		e := At(i)
		assert.True(t, e.R == e.G && e.G == e.B, "entry %d (%s) should be neutral", i, e.Name)
	}
}
