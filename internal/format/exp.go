package format

import (
	"bytes"
	"math"

	"img2stitch/internal/stitch"
)

// expMaxDelta is the largest movement one EXP record can carry, 0.1 mm.
const expMaxDelta = 127

// writeEXP serializes a pattern as a Melco EXP file: bare 2-byte signed
// deltas for normal stitches, 0x80-escaped records for jumps, color
// changes, and trims.
func writeEXP(p *stitch.Pattern) ([]byte, error) {
	m := toMachine(p)

	var buf bytes.Buffer
	curX, curY := 0, 0
	prevColor := ""

	for _, s := range m.Stitches {
		if prevColor != "" && s.Color != prevColor {
			buf.Write([]byte{0x80, 0x01, 0x00, 0x00})
		}
		prevColor = s.Color

		dx := s.X - curX
		dy := s.Y - curY

		segs := splitDelta(dx, dy, expMaxDelta)
		for i, seg := range segs {
			t := s.Type
			if len(segs) > 1 && i < len(segs)-1 {
				t = stitch.Jump
			}
			switch t {
			case stitch.Jump:
				buf.Write([]byte{0x80, 0x04, expByte(seg[0]), expByte(seg[1])})
			case stitch.Trim:
				buf.Write([]byte{0x80, 0x02, 0x00, 0x00})
				buf.Write([]byte{0x80, 0x04, expByte(seg[0]), expByte(seg[1])})
			case stitch.Stop:
				buf.Write([]byte{0x80, 0x01, expByte(seg[0]), expByte(seg[1])})
			case stitch.End:
				// terminator written after the loop
			default:
				buf.Write([]byte{expByte(seg[0]), expByte(seg[1])})
			}
		}

		curX, curY = s.X, s.Y
	}

	buf.Write([]byte{0x80, 0x80})
	return buf.Bytes(), nil
}

// expByte encodes a signed delta as a two's-complement byte.
func expByte(v int) byte {
	return byte(int8(clampInt(v, -expMaxDelta, expMaxDelta)))
}

// splitDelta decomposes (dx, dy) into segments no larger than limit on
// either axis, each carrying its incremental share so the rounded sum is
// exact.
func splitDelta(dx, dy, limit int) [][2]int {
	steps := maxInt(
		int(math.Ceil(float64(abs(dx))/float64(limit))),
		int(math.Ceil(float64(abs(dy))/float64(limit))),
	)
	if steps < 1 {
		steps = 1
	}
	segs := make([][2]int, steps)
	for i := 0; i < steps; i++ {
		segs[i] = [2]int{stepDelta(dx, i, steps), stepDelta(dy, i, steps)}
	}
	return segs
}
