package pipeline

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"img2stitch/internal/errs"
	"img2stitch/internal/settings"
)

// testImage draws a white square on black, large enough to yield clean
// contours.
func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			i := img.PixOffset(x, y)
			v := uint8(0)
			if x >= 20 && x < 80 && y >= 20 && y < 80 {
				v = 255
			}
			img.Pix[i] = v
			img.Pix[i+1] = v
			img.Pix[i+2] = v
			img.Pix[i+3] = 255
		}
	}
	return img
}

func TestConvertProducesPattern(t *testing.T) {
	p := New(Options{Settings: settings.Default(), Name: "square"})
	pattern, err := p.Convert(context.Background(), testImage())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(pattern.Stitches), 10)
	assert.NotEmpty(t, pattern.Colors)
	assert.Equal(t, 100.0, pattern.Width)
	assert.Equal(t, 100.0, pattern.Height)
	assert.Equal(t, "square", pattern.Metadata.Name)
	assert.Equal(t, "internal", pattern.Metadata.Format)
	assert.NotEmpty(t, pattern.Metadata.Date)

	require.NoError(t, pattern.Validate())

	// Every stitch lies within the design canvas (plus pull compensation)
	b := pattern.Bounds()
	assert.GreaterOrEqual(t, b.MinX, 0.0)
	assert.GreaterOrEqual(t, b.MinY, 0.0)
	assert.LessOrEqual(t, b.Width(), pattern.Width+1e-6)
	assert.LessOrEqual(t, b.Height(), pattern.Height+1e-6)
}

func TestConvertProgressStageOrder(t *testing.T) {
	type call struct {
		stage   string
		percent int
	}
	var calls []call
	p := New(Options{
		Settings: settings.Default(),
		OnProgress: func(stage string, percent int) {
			calls = append(calls, call{stage, percent})
		},
	})

	_, err := p.Convert(context.Background(), testImage())
	require.NoError(t, err)

	want := []call{
		{StageProcessing, 0}, {StageProcessing, 100},
		{StageBitmap, 0}, {StageBitmap, 100},
		{StageEdges, 0}, {StageEdges, 100},
		{StageContours, 0}, {StageContours, 100},
		{StageGenerating, 0}, {StageGenerating, 100},
		{StageOptimizing, 0}, {StageOptimizing, 100},
	}
	assert.Equal(t, want, calls)
}

func TestConvertRejectsMissingImage(t *testing.T) {
	p := New(Options{Settings: settings.Default()})

	_, err := p.Convert(context.Background(), nil)
	assert.True(t, errs.IsKind(err, errs.InvalidInput))

	_, err = p.Convert(context.Background(), image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	assert.True(t, errs.IsKind(err, errs.InvalidInput))
}

func TestConvertUniformImageFailsAtEdges(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 50, 50))
	for i := range img.Pix {
		img.Pix[i] = 180
	}

	p := New(Options{Settings: settings.Default()})
	_, err := p.Convert(context.Background(), img)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.InsufficientEdges))

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, StageEdges, e.Stage)
}

func TestConvertCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(Options{Settings: settings.Default()})
	_, err := p.Convert(ctx, testImage())
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.Cancelled))
}

func TestConvertSanitizesSettings(t *testing.T) {
	s := settings.Processing{
		Width:         5,
		Height:        5000,
		Density:       99,
		EdgeThreshold: 5,
		Color:         "nope",
	}
	p := New(Options{Settings: s})

	got := p.Settings()
	assert.Equal(t, 10.0, got.Width)
	assert.Equal(t, 1000.0, got.Height)
	assert.Equal(t, 5.0, got.Density)
	assert.Equal(t, 64, got.EdgeThreshold)
	assert.Equal(t, "#000000", got.Color)
	assert.NotEmpty(t, p.Adjusted())
}

func TestConvertColorsCoverStitches(t *testing.T) {
	s := settings.Default()
	s.Color = "#FF0000"
	p := New(Options{Settings: s})

	pattern, err := p.Convert(context.Background(), testImage())
	require.NoError(t, err)

	listed := map[string]bool{}
	for _, c := range pattern.Colors {
		listed[c] = true
	}
	for _, st := range pattern.Stitches {
		assert.True(t, listed[st.Color], "stitch color %s missing from pattern colors", st.Color)
	}
}
