// Package stitch holds the stitch pattern model and the planning and
// optimization passes that turn traced contours into an ordered stitch
// sequence.
package stitch

import (
	"img2stitch/internal/errs"
	"img2stitch/internal/geom"
)

// Type classifies a machine stitch record.
type Type int

const (
	Normal Type = iota // needle penetrates at the destination
	Jump               // needle lifts and travels without stitching
	Trim               // cut the thread tail
	Stop               // pause for a color change
	End                // terminate the file
)

func (t Type) String() string {
	switch t {
	case Normal:
		return "normal"
	case Jump:
		return "jump"
	case Trim:
		return "trim"
	case Stop:
		return "stop"
	case End:
		return "end"
	}
	return "unknown"
}

// Stitch is one needle position with its type and thread color.
type Stitch struct {
	X, Y  float64 // millimeters
	Type  Type
	Color string // "#RRGGBB"
}

// Point returns the stitch position.
func (s Stitch) Point() geom.Point { return geom.Point{X: s.X, Y: s.Y} }

// Metadata describes a finished pattern.
type Metadata struct {
	Name   string
	Date   string // ISO 8601
	Format string
}

// Pattern is a complete, immutable stitch pattern. Width and Height are the
// design dimensions in millimeters.
type Pattern struct {
	Stitches []Stitch
	Colors   []string // distinct colors, order of first appearance
	Width    float64
	Height   float64
	Metadata Metadata
}

// Bounds returns the AABB over all stitch positions.
func (p *Pattern) Bounds() geom.Rect {
	r := geom.EmptyRect()
	for _, s := range p.Stitches {
		r = r.Extend(s.Point())
	}
	return r
}

// Validate checks the structural invariants every pattern must satisfy
// before serialization: non-empty, finite coordinates, positive dimensions,
// and every stitch color listed in Colors.
func (p *Pattern) Validate() error {
	if p == nil || len(p.Stitches) == 0 {
		return errs.New(errs.InvalidInput, "empty pattern")
	}
	if !(p.Width > 0) || !(p.Height > 0) {
		return errs.New(errs.InvalidInput, "non-positive dimensions %gx%g", p.Width, p.Height)
	}
	listed := make(map[string]bool, len(p.Colors))
	for _, c := range p.Colors {
		listed[c] = true
	}
	for i, s := range p.Stitches {
		if !s.Point().Finite() {
			return errs.New(errs.InvalidCoordinates, "stitch %d at (%g, %g)", i, s.X, s.Y)
		}
		if s.Color != "" && !listed[s.Color] {
			return errs.New(errs.InvalidInput, "stitch %d uses unlisted color %s", i, s.Color)
		}
	}
	return nil
}
