package format

import (
	"bytes"
	"encoding/binary"
	"time"

	"img2stitch/internal/stitch"
)

// JEF constants.
const (
	jefMaxDelta = 127
	// jefHoopLarge selects the 200x280 mm hoop, the largest standard
	// Janome hoop.
	jefHoopLarge = 2
)

// writeJEF serializes a pattern as a Janome JEF file: little-endian header
// with a stitch-data offset, thread table, then signed-byte deltas with
// escape sequences for color change, jump, and end.
func writeJEF(p *stitch.Pattern) ([]byte, error) {
	m := toMachine(p)
	maxX, maxY := m.extents()

	body := jefBody(m)

	colors := len(m.Colors)
	headerLen := 36 + 4*8 + 4*colors

	var buf bytes.Buffer
	u32 := func(v int) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		buf.Write(b[:])
	}

	u32(headerLen) // offset to stitch data
	u32(1)         // format version

	date := time.Now().Format("20060102150405")
	buf.WriteString(date)
	buf.Write([]byte{0x00, 0x00})

	u32(colors)
	u32(countJEFStitches(body))
	u32(jefHoopLarge)

	// Design extents relative to hoop center, 0.1 mm
	u32(maxX / 2)
	u32(maxY / 2)
	u32(maxX / 2)
	u32(maxY / 2)
	// Hoop margins, unused
	u32(0)
	u32(0)
	u32(0)
	u32(0)

	// Thread table: 1-based position of each color in the color list
	for _, c := range m.Colors {
		u32(m.colorIndex(c) + 1)
	}

	buf.Write(body)
	return buf.Bytes(), nil
}

// jefBody renders the stitch records.
func jefBody(m machinePattern) []byte {
	var buf bytes.Buffer
	curX, curY := 0, 0
	prevColor := ""

	for _, s := range m.Stitches {
		if prevColor != "" && s.Color != prevColor {
			buf.Write([]byte{0x80, 0x01})
		}
		prevColor = s.Color

		dx := s.X - curX
		dy := s.Y - curY

		segs := splitDelta(dx, dy, jefMaxDelta)
		for i, seg := range segs {
			jump := s.Type == stitch.Jump || s.Type == stitch.Trim ||
				(len(segs) > 1 && i < len(segs)-1)
			if jump {
				buf.Write([]byte{0x80, 0x02})
			}
			buf.WriteByte(byte(int8(seg[0])))
			buf.WriteByte(byte(int8(-seg[1]))) // JEF y axis points up
		}

		curX, curY = s.X, s.Y
	}

	buf.Write([]byte{0x80, 0x10})
	return buf.Bytes()
}

// countJEFStitches counts movement records in an encoded body.
func countJEFStitches(body []byte) int {
	n := 0
	for i := 0; i < len(body); {
		if body[i] == 0x80 {
			i += 2
			continue
		}
		i += 2
		n++
	}
	return n
}
