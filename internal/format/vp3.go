package format

import (
	"bytes"
	"encoding/binary"

	"img2stitch/internal/stitch"
)

// VP3 constants.
const (
	vp3Magic    = "%vsm%"
	vp3Producer = "img2stitch"
	vp3MaxDelta = 127
)

// writeVP3 serializes a pattern as a Pfaff VP3 file: magic, UTF-16BE
// producer string, design extents in 0.01 mm, then one stitch block of
// signed-byte deltas with long-form escapes.
func writeVP3(p *stitch.Pattern) ([]byte, error) {
	m := toMachine(p)
	maxX, maxY := m.extents()

	var buf bytes.Buffer
	buf.WriteString(vp3Magic)
	buf.WriteByte(0x00)

	writeVP3String(&buf, vp3Producer)

	// Extents centered on the design, 0.01 mm units
	i32 := func(v int) {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(int32(v)))
		buf.Write(b[:])
	}
	i32(maxX * 10 / 2)
	i32(maxY * 10 / 2)
	i32(-maxX * 10 / 2)
	i32(-maxY * 10 / 2)

	var cnt [4]byte
	binary.BigEndian.PutUint32(cnt[:], uint32(len(m.Stitches)))
	buf.Write(cnt[:])
	buf.WriteByte(byte(len(m.Colors)))

	curX, curY := 0, 0
	prevColor := ""
	for _, s := range m.Stitches {
		if prevColor != "" && s.Color != prevColor {
			buf.Write([]byte{0x80, 0x01, byte(m.colorIndex(s.Color))})
		}
		prevColor = s.Color

		dx := s.X - curX
		dy := s.Y - curY

		segs := splitDelta(dx, dy, vp3MaxDelta)
		for i, seg := range segs {
			if s.Type == stitch.Jump || s.Type == stitch.Trim ||
				(len(segs) > 1 && i < len(segs)-1) {
				// Long-form escape: explicit 16-bit deltas
				buf.Write([]byte{0x80, 0x02})
				var b [2]byte
				binary.BigEndian.PutUint16(b[:], uint16(int16(seg[0])))
				buf.Write(b[:])
				binary.BigEndian.PutUint16(b[:], uint16(int16(seg[1])))
				buf.Write(b[:])
				continue
			}
			buf.WriteByte(byte(int8(seg[0])))
			buf.WriteByte(byte(int8(seg[1])))
		}

		curX, curY = s.X, s.Y
	}

	buf.Write([]byte{0x80, 0x03})
	return buf.Bytes(), nil
}

// writeVP3String writes a length-prefixed UTF-16BE string.
func writeVP3String(buf *bytes.Buffer, s string) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(len(s)*2))
	buf.Write(b[:])
	for _, r := range s {
		binary.BigEndian.PutUint16(b[:], uint16(r))
		buf.Write(b[:])
	}
}
