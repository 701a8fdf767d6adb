package format

import (
	"bytes"
	"fmt"

	"img2stitch/internal/stitch"
)

// writeQCC serializes a pattern as a QCC quilting file: a text header
// block with counts and extents, then one record per stitch with an
// up/down flag, coordinates in machine units.
func writeQCC(p *stitch.Pattern) ([]byte, error) {
	m := toMachine(p)
	maxX, maxY := m.extents()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "QDATA\r\n")
	fmt.Fprintf(&buf, "NAME,%s\r\n", p.Metadata.Name)
	fmt.Fprintf(&buf, "POINTS,%d\r\n", len(m.Stitches))
	fmt.Fprintf(&buf, "EXTENTS,0,0,%d,%d\r\n", maxX, maxY)

	for _, s := range m.Stitches {
		flag := 1 // needle down
		if s.Type != stitch.Normal {
			flag = 0
		}
		fmt.Fprintf(&buf, "%d,%d,%d\r\n", s.X, s.Y, flag)
	}

	fmt.Fprintf(&buf, "END\r\n")
	return buf.Bytes(), nil
}
