package stitch

import (
	"img2stitch/internal/errs"
)

// duplicateEps is the distance below which two consecutive penetrations
// count as the same point, mm.
const duplicateEps = 1e-6

// Optimize drops consecutive duplicate penetrations, collapses runs of
// jumps to a single jump at the final destination, and rejects non-finite
// coordinates. The first and last positions of the sequence are preserved.
func Optimize(in []Stitch) ([]Stitch, error) {
	for i, s := range in {
		if !s.Point().Finite() {
			return nil, errs.New(errs.InvalidCoordinates, "stitch %d at (%g, %g)", i, s.X, s.Y)
		}
	}
	if len(in) == 0 {
		return nil, nil
	}

	out := make([]Stitch, 0, len(in))
	out = append(out, in[0])

	for _, s := range in[1:] {
		prev := &out[len(out)-1]

		if s.Type == Normal && prev.Type == Normal &&
			s.Point().Dist(prev.Point()) < duplicateEps {
			continue
		}

		// Collapse jump runs to the final destination, but never rewrite
		// the opening stitch: the run's start position must survive.
		if s.Type == Jump && prev.Type == Jump && len(out) > 1 {
			*prev = s
			continue
		}

		out = append(out, s)
	}

	return out, nil
}
