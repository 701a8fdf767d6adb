package format

import (
	"bytes"
	"fmt"

	"img2stitch/internal/stitch"
)

// writePAT serializes a pattern as a Gammill quilting PAT file: a
// plain-text command stream with rapid moves for jumps and feed moves for
// stitches, coordinates in millimeters.
func writePAT(p *stitch.Pattern) ([]byte, error) {
	bounds := p.Bounds()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%\r\n")
	fmt.Fprintf(&buf, "O1000 (%s)\r\n", p.Metadata.Name)

	n := 1
	for _, s := range p.Stitches {
		x := s.X - bounds.MinX
		y := s.Y - bounds.MinY
		switch s.Type {
		case stitch.Jump, stitch.Trim, stitch.Stop:
			fmt.Fprintf(&buf, "N%d G00 X%.3f Y%.3f\r\n", n, x, y)
		case stitch.End:
			// terminator written after the loop
			continue
		default:
			fmt.Fprintf(&buf, "N%d G01 X%.3f Y%.3f\r\n", n, x, y)
		}
		n++
	}

	fmt.Fprintf(&buf, "N%d M02\r\n", n)
	fmt.Fprintf(&buf, "%%\r\n")
	return buf.Bytes(), nil
}
