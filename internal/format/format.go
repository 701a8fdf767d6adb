// Package format serializes stitch patterns into machine embroidery file
// formats. The dispatcher validates the pattern, snaps colors to the thread
// palette, enforces per-format ceilings, and hands off to the format
// writer. All writers share the contract write(pattern) → bytes.
package format

import (
	"math"

	"img2stitch/internal/errs"
	"img2stitch/internal/palette"
	"img2stitch/internal/stitch"
)

// Format identifies a target embroidery file format.
type Format string

const (
	DST Format = "dst"
	PES Format = "pes"
	JEF Format = "jef"
	EXP Format = "exp"
	VP3 Format = "vp3"
	HUS Format = "hus"
	PAT Format = "pat"
	QCC Format = "qcc"
)

// limits are the per-format machine ceilings.
type limits struct {
	maxStitches  int
	maxColors    int
	maxDimension float64 // mm
}

var formatLimits = map[Format]limits{
	DST: {999999, 1, 400},
	PES: {100000, 99, 260},
	JEF: {65535, 99, 260},
	EXP: {999999, 1, 400},
	VP3: {100000, 99, 260},
	HUS: {100000, 99, 260},
	PAT: {999999, 1, 400},
	QCC: {999999, 1, 400},
}

var writers = map[Format]func(*stitch.Pattern) ([]byte, error){
	DST: writeDST,
	PES: writePES,
	JEF: writeJEF,
	EXP: writeEXP,
	VP3: writeVP3,
	HUS: writeHUS,
	PAT: writePAT,
	QCC: writeQCC,
}

// All lists the supported formats.
func All() []Format {
	return []Format{DST, PES, JEF, EXP, VP3, HUS, PAT, QCC}
}

// Parse maps a format name to a Format.
func Parse(s string) (Format, error) {
	f := Format(s)
	if _, ok := formatLimits[f]; !ok {
		return "", errs.New(errs.InvalidInput, "unknown format %q", s)
	}
	return f, nil
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string { return "." + string(f) }

// Convert serializes pattern into format f.
func Convert(pattern *stitch.Pattern, f Format) ([]byte, error) {
	lim, ok := formatLimits[f]
	if !ok {
		return nil, errs.New(errs.InvalidInput, "unknown format %q", f)
	}
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	if len(pattern.Colors) == 0 {
		return nil, errs.New(errs.InvalidInput, "pattern has no colors")
	}

	snapped := snapToPalette(pattern)

	if len(snapped.Stitches) > lim.maxStitches {
		return nil, errs.New(errs.FormatLimit, "%s: %d stitches exceeds %d", f, len(snapped.Stitches), lim.maxStitches)
	}
	if len(snapped.Colors) > lim.maxColors {
		return nil, errs.New(errs.FormatLimit, "%s: %d colors exceeds %d", f, len(snapped.Colors), lim.maxColors)
	}
	if snapped.Width > lim.maxDimension || snapped.Height > lim.maxDimension {
		return nil, errs.New(errs.FormatLimit, "%s: %gx%g mm exceeds %g mm", f, snapped.Width, snapped.Height, lim.maxDimension)
	}

	return writers[f](snapped)
}

// snapToPalette replaces every stitch color by its nearest thread palette
// entry and rebuilds the color list from the stitches themselves, in order
// of first use. The pattern-level list may carry extra colors from
// quantization; machines only thread what the stitches reference.
func snapToPalette(p *stitch.Pattern) *stitch.Pattern {
	snap := make(map[string]string)

	stitches := make([]stitch.Stitch, len(p.Stitches))
	var colors []string
	seen := make(map[string]bool)
	for i, s := range p.Stitches {
		mapped, ok := snap[s.Color]
		if !ok {
			mapped = palette.NearestHex(s.Color).Hex()
			snap[s.Color] = mapped
		}
		stitches[i] = s
		stitches[i].Color = mapped
		if !seen[mapped] {
			seen[mapped] = true
			colors = append(colors, mapped)
		}
	}

	return &stitch.Pattern{
		Stitches: stitches,
		Colors:   colors,
		Width:    p.Width,
		Height:   p.Height,
		Metadata: p.Metadata,
	}
}

// unitsPerMM converts millimeters to machine units (0.1 mm).
const unitsPerMM = 10

// machineStitch is a stitch in non-negative integer 0.1 mm units.
type machineStitch struct {
	X, Y  int
	Type  stitch.Type
	Color string
}

// machinePattern is a pattern converted to machine coordinates: origin at
// the bounding-box minimum, integer 0.1 mm units.
type machinePattern struct {
	Stitches      []machineStitch
	Colors        []string
	Width, Height int // 0.1 mm
}

// toMachine normalizes pattern coordinates to machine space.
func toMachine(p *stitch.Pattern) machinePattern {
	bounds := p.Bounds()
	out := machinePattern{
		Stitches: make([]machineStitch, len(p.Stitches)),
		Colors:   p.Colors,
		Width:    int(math.Round(p.Width * unitsPerMM)),
		Height:   int(math.Round(p.Height * unitsPerMM)),
	}
	for i, s := range p.Stitches {
		out.Stitches[i] = machineStitch{
			X:     int(math.Round((s.X - bounds.MinX) * unitsPerMM)),
			Y:     int(math.Round((s.Y - bounds.MinY) * unitsPerMM)),
			Type:  s.Type,
			Color: s.Color,
		}
	}
	return out
}

// extents returns the coordinate maxima of a machine pattern. Minima are
// zero by construction.
func (m machinePattern) extents() (maxX, maxY int) {
	for _, s := range m.Stitches {
		if s.X > maxX {
			maxX = s.X
		}
		if s.Y > maxY {
			maxY = s.Y
		}
	}
	return maxX, maxY
}

// colorIndex returns the position of c in the pattern color list.
func (m machinePattern) colorIndex(c string) int {
	for i, v := range m.Colors {
		if v == c {
			return i
		}
	}
	return 0
}
