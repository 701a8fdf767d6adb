package stitch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"img2stitch/internal/geom"
	"img2stitch/internal/settings"
)

// square returns a closed-ish square contour with the given corner span.
func square(x0, y0, side float64) []geom.Point {
	return []geom.Point{
		{X: x0, Y: y0},
		{X: x0 + side, Y: y0},
		{X: x0 + side, Y: y0 + side},
		{X: x0, Y: y0 + side},
	}
}

func plannerSettings() settings.Processing {
	s := settings.Default()
	s.UseUnderlay = false
	return s
}

func TestGenerateStartsWithJumpToFirstContourPoint(t *testing.T) {
	contours := [][]geom.Point{square(10, 10, 30)}
	out := Generate(contours, plannerSettings())
	require.NotEmpty(t, out)
	assert.Equal(t, Jump, out[0].Type)
	assert.Equal(t, 10.0, out[0].X)
	assert.Equal(t, 10.0, out[0].Y)
}

func TestGenerateEndsWithDuplicateJump(t *testing.T) {
	out := Generate([][]geom.Point{square(10, 10, 30)}, plannerSettings())
	require.GreaterOrEqual(t, len(out), 2)
	last := out[len(out)-1]
	prev := out[len(out)-2]
	assert.Equal(t, Jump, last.Type)
	assert.Equal(t, prev.X, last.X)
	assert.Equal(t, prev.Y, last.Y)
}

func TestGenerateEmptyContours(t *testing.T) {
	out := Generate(nil, plannerSettings())
	assert.Empty(t, out)
}

func TestGenerateFillAnglePeriodic(t *testing.T) {
	contours := [][]geom.Point{square(5, 5, 40)}

	a := plannerSettings()
	a.FillAngle = 30
	b := plannerSettings()
	b.FillAngle = 30 + 360

	pa := Generate(contours, a)
	pb := Generate(contours, b)
	require.Equal(t, len(pa), len(pb))
	for i := range pa {
		assert.InDelta(t, pa[i].X, pb[i].X, 1e-9)
		assert.InDelta(t, pa[i].Y, pb[i].Y, 1e-9)
		assert.Equal(t, pa[i].Type, pb[i].Type)
	}
}

func TestGeneratePullCompensationTranslates(t *testing.T) {
	contours := [][]geom.Point{square(10, 10, 20)}

	base := plannerSettings()
	shifted := plannerSettings()
	shifted.PullCompensation = 2

	pa := Generate(contours, base)
	pb := Generate(contours, shifted)
	require.Equal(t, len(pa), len(pb))
	for i := range pa {
		assert.InDelta(t, pa[i].X+2, pb[i].X, 1e-9)
		assert.InDelta(t, pa[i].Y+2, pb[i].Y, 1e-9)
	}
}

func TestGenerateUnderlayAddsStitches(t *testing.T) {
	contours := [][]geom.Point{square(10, 10, 40)}

	without := plannerSettings()
	with := plannerSettings()
	with.UseUnderlay = true

	assert.Greater(t, len(Generate(contours, with)), len(Generate(contours, without)))
}

func TestGenerateAllCoordinatesFinite(t *testing.T) {
	contours := [][]geom.Point{square(0, 0, 60), square(20, 20, 10)}
	s := plannerSettings()
	s.UseUnderlay = true
	s.FillAngle = 37
	for _, st := range Generate(contours, s) {
		require.True(t, st.Point().Finite(), "stitch at (%g, %g)", st.X, st.Y)
	}
}

func TestScanlineFillSpanStitchesInsideSquare(t *testing.T) {
	// A horizontal fill of an axis-aligned square keeps every penetration
	// within the square's x-range.
	contours := [][]geom.Point{square(10, 10, 30)}
	out := scanlineFill(contours, 0, 1, "#000000")
	require.NotEmpty(t, out)
	for _, st := range out {
		if st.Type != Normal {
			continue
		}
		assert.GreaterOrEqual(t, st.X, 10.0-1e-9)
		assert.LessOrEqual(t, st.X, 40.0+1e-9)
	}
}

func TestScanlineFillAlternatesDirection(t *testing.T) {
	contours := [][]geom.Point{square(0, 0, 50)}
	out := scanlineFill(contours, 0, 5, "#000000")

	// Collect the jump that opens each span and the normal that closes it;
	// successive spans must run in opposite x directions.
	type span struct{ startX, endX float64 }
	var spans []span
	for i, st := range out {
		if st.Type == Jump {
			end := -1
			for j := i + 1; j < len(out); j++ {
				if out[j].Type != Normal {
					break
				}
				end = j
			}
			if end > i {
				spans = append(spans, span{st.X, out[end].X})
			}
		}
	}
	require.Greater(t, len(spans), 2)
	for i := 1; i < len(spans); i++ {
		d0 := spans[i-1].endX - spans[i-1].startX
		d1 := spans[i].endX - spans[i].startX
		if math.Abs(d0) < 1e-9 || math.Abs(d1) < 1e-9 {
			continue
		}
		assert.Less(t, d0*d1, 0.0, "spans %d and %d should run opposite ways", i-1, i)
	}
}

func TestOutlineSkipsShortSegments(t *testing.T) {
	// Segment lengths below the spacing contribute no stitches
	c := []geom.Point{{X: 0, Y: 0}, {X: 0.1, Y: 0}, {X: 0.2, Y: 0}}
	out := outlineStitches([][]geom.Point{c}, 1.0, "#000000")
	require.Len(t, out, 1)
	assert.Equal(t, Jump, out[0].Type)
}

func TestOutlineInterpolatesAlongSegments(t *testing.T) {
	c := []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}
	out := outlineStitches([][]geom.Point{c}, 1.0, "#000000")
	// Jump + 10 interpolated penetrations ending exactly at the vertex
	require.Len(t, out, 11)
	assert.Equal(t, Jump, out[0].Type)
	last := out[len(out)-1]
	assert.Equal(t, Normal, last.Type)
	assert.InDelta(t, 10.0, last.X, 1e-9)
}
