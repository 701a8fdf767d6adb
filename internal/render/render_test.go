package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"img2stitch/internal/stitch"
)

func linePattern() *stitch.Pattern {
	return &stitch.Pattern{
		Stitches: []stitch.Stitch{
			{X: 0, Y: 0, Type: stitch.Jump, Color: "#FF0000"},
			{X: 10, Y: 0, Type: stitch.Normal, Color: "#FF0000"},
			{X: 10, Y: 10, Type: stitch.Normal, Color: "#FF0000"},
		},
		Colors: []string{"#FF0000"},
		Width:  20,
		Height: 20,
	}
}

func TestProofSheetSizeAndInk(t *testing.T) {
	img := ProofSheet(linePattern(), 128)
	require.Equal(t, 128, img.Bounds().Dx())
	require.Equal(t, 128, img.Bounds().Dy())

	// The sheet must contain drawn pixels on the white background
	inked := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 || img.Pix[i+1] != 255 || img.Pix[i+2] != 255 {
			inked++
		}
	}
	assert.Greater(t, inked, 10)
}

func TestProofSheetJumpsDrawNothing(t *testing.T) {
	p := &stitch.Pattern{
		Stitches: []stitch.Stitch{
			{X: 0, Y: 0, Type: stitch.Jump, Color: "#000000"},
			{X: 10, Y: 10, Type: stitch.Jump, Color: "#000000"},
		},
		Colors: []string{"#000000"},
		Width:  20,
		Height: 20,
	}
	img := ProofSheet(p, 64)
	for i := 0; i < len(img.Pix); i += 4 {
		assert.Equal(t, uint8(255), img.Pix[i], "jump-only pattern leaves the canvas white")
	}
}

func TestWriteWebP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proof.webp")
	require.NoError(t, WriteWebP(path, ProofSheet(linePattern(), 64)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 12)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "WEBP", string(data[8:12]))
}
