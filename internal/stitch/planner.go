package stitch

import (
	"math"
	"sort"

	"img2stitch/internal/geom"
	"img2stitch/internal/settings"
)

const (
	// maxPlannedStitches caps the fill target independent of density.
	maxPlannedStitches = 15000
	// minSpacing is the tightest stitch spacing a machine can sew, mm.
	minSpacing = 0.3
)

// Generate plans the stitch sequence for a set of contours: an optional
// perpendicular underlay, the main angled scanline fill, outline runs along
// each contour, and a closing jump. Contour coordinates are millimeters.
func Generate(contours [][]geom.Point, s settings.Processing) []Stitch {
	area := s.Width * s.Height
	target := math.Ceil(area * s.Density)
	if target > maxPlannedStitches {
		target = maxPlannedStitches
	}
	baseSpacing := math.Sqrt(area / target)
	spacing := math.Max(minSpacing, baseSpacing/s.Density)

	color := s.Color
	var out []Stitch

	if len(contours) > 0 && len(contours[0]) > 0 {
		p := contours[0][0]
		out = append(out, Stitch{X: p.X, Y: p.Y, Type: Jump, Color: color})
	}

	if s.UseUnderlay {
		underAngle := math.Mod(s.FillAngle+90, 360)
		out = append(out, scanlineFill(contours, underAngle, spacing*2, color)...)
	}

	out = append(out, scanlineFill(contours, s.FillAngle, spacing, color)...)
	out = append(out, outlineStitches(contours, spacing, color)...)

	if n := len(out); n > 0 {
		last := out[n-1]
		out = append(out, Stitch{X: last.X, Y: last.Y, Type: Jump, Color: color})
	}

	if s.PullCompensation > 0 {
		for i := range out {
			out[i].X += s.PullCompensation
			out[i].Y += s.PullCompensation
		}
	}

	return out
}

// scanlineFill sweeps parallel lines at the given angle across the contour
// bounding box and stitches the spans between entry/exit intersections.
// Successive lines alternate direction so the needle travels boustrophedon.
func scanlineFill(contours [][]geom.Point, angleDeg, spacing float64, color string) []Stitch {
	bounds := geom.BoundsOf(contours)
	if bounds.Empty() {
		return nil
	}

	diagonal := bounds.Diagonal()
	if diagonal < spacing {
		return nil
	}
	center := bounds.Center()

	theta := angleDeg * math.Pi / 180
	dir := geom.Point{X: math.Cos(theta), Y: math.Sin(theta)}
	normal := geom.Point{X: -math.Sin(theta), Y: math.Cos(theta)}

	numLines := int(math.Ceil(diagonal / spacing))

	var out []Stitch
	for i := -numLines; i <= numLines; i++ {
		lineCenter := center.Add(normal.Scale(float64(i) * spacing))
		p1 := lineCenter.Sub(dir.Scale(diagonal))
		p2 := lineCenter.Add(dir.Scale(diagonal))

		hits := intersectContours(contours, p1, p2)
		if len(hits) < 2 || len(hits)%2 != 0 {
			continue
		}

		// Sort along the sweep direction, flipping on odd lines
		reverse := (i+numLines)%2 == 1
		sort.Slice(hits, func(a, b int) bool {
			ta := hits[a].Sub(center).Dot(dir)
			tb := hits[b].Sub(center).Dot(dir)
			if reverse {
				return ta > tb
			}
			return ta < tb
		})

		for k := 0; k+1 < len(hits); k += 2 {
			start, end := hits[k], hits[k+1]
			out = append(out, Stitch{X: start.X, Y: start.Y, Type: Jump, Color: color})
			length := start.Dist(end)
			n := int(math.Ceil(length / spacing))
			if n < 1 {
				n = 1
			}
			for j := 1; j <= n; j++ {
				p := geom.Lerp(start, end, float64(j)/float64(n))
				out = append(out, Stitch{X: p.X, Y: p.Y, Type: Normal, Color: color})
			}
		}
	}
	return out
}

// intersectContours collects every crossing between the scanline p1→p2 and
// the contour edges. Contours with three or more vertices are treated as
// closed polygons.
func intersectContours(contours [][]geom.Point, p1, p2 geom.Point) []geom.Point {
	var hits []geom.Point
	for _, c := range contours {
		if len(c) < 2 {
			continue
		}
		n := len(c)
		edges := n - 1
		if n >= 3 {
			edges = n // include the closing edge
		}
		for j := 0; j < edges; j++ {
			a := c[j]
			b := c[(j+1)%n]
			if p, ok := geom.SegmentIntersection(p1, p2, a, b); ok {
				hits = append(hits, p)
			}
		}
	}
	return hits
}

// outlineStitches runs the needle along each contour, interpolating
// equally-spaced penetrations per segment. Segments shorter than the
// spacing are skipped.
func outlineStitches(contours [][]geom.Point, spacing float64, color string) []Stitch {
	var out []Stitch
	for _, c := range contours {
		if len(c) < 2 {
			continue
		}
		out = append(out, Stitch{X: c[0].X, Y: c[0].Y, Type: Jump, Color: color})
		for j := 0; j+1 < len(c); j++ {
			a, b := c[j], c[j+1]
			length := a.Dist(b)
			if length < spacing {
				continue
			}
			n := int(math.Ceil(length / spacing))
			for k := 1; k <= n; k++ {
				p := geom.Lerp(a, b, float64(k)/float64(n))
				out = append(out, Stitch{X: p.X, Y: p.Y, Type: Normal, Color: color})
			}
		}
	}
	return out
}
