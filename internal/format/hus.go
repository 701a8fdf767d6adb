package format

import (
	"bytes"
	"encoding/binary"

	"img2stitch/internal/stitch"
)

// HUS constants.
const (
	husMagic    = 0x005BAF5B
	husMaxDelta = 127
)

// Stitch attribute bytes in the HUS attribute section.
const (
	husAttrNormal      = 0x00
	husAttrJump        = 0x01
	husAttrColorChange = 0x02
	husAttrTrim        = 0x04
	husAttrEnd         = 0x10
)

// writeHUS serializes a pattern as a Husqvarna/Viking HUS file: fixed
// header with section offsets, color table, then attribute, X-delta, and
// Y-delta sections. Sections are stored unpacked; the archive compression
// of factory files is not reproduced.
func writeHUS(p *stitch.Pattern) ([]byte, error) {
	m := toMachine(p)
	maxX, maxY := m.extents()

	attrs, xs, ys := husSections(m)

	var buf bytes.Buffer
	u32 := func(v int) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		buf.Write(b[:])
	}
	i16 := func(v int) {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(int16(v)))
		buf.Write(b[:])
	}

	u32(husMagic)
	u32(len(attrs))
	u32(len(m.Colors))

	// Extents relative to design center, 0.1 mm
	i16(maxX / 2)
	i16(maxY / 2)
	i16(-maxX / 2)
	i16(-maxY / 2)

	headerLen := 4*3 + 2*4 + 4*3 + 2*len(m.Colors)
	attrOffset := headerLen
	xOffset := attrOffset + len(attrs)
	yOffset := xOffset + len(xs)

	u32(attrOffset)
	u32(xOffset)
	u32(yOffset)

	for _, c := range m.Colors {
		i16(m.colorIndex(c))
	}

	buf.Write(attrs)
	buf.Write(xs)
	buf.Write(ys)
	return buf.Bytes(), nil
}

// husSections encodes the three parallel stitch sections.
func husSections(m machinePattern) (attrs, xs, ys []byte) {
	var ab, xb, yb bytes.Buffer
	curX, curY := 0, 0
	prevColor := ""

	emit := func(attr byte, dx, dy int) {
		ab.WriteByte(attr)
		xb.WriteByte(byte(int8(dx)))
		yb.WriteByte(byte(int8(-dy))) // HUS y axis points up
	}

	for _, s := range m.Stitches {
		if prevColor != "" && s.Color != prevColor {
			emit(husAttrColorChange, 0, 0)
		}
		prevColor = s.Color

		dx := s.X - curX
		dy := s.Y - curY

		segs := splitDelta(dx, dy, husMaxDelta)
		for i, seg := range segs {
			attr := byte(husAttrNormal)
			switch {
			case len(segs) > 1 && i < len(segs)-1:
				attr = husAttrJump
			case s.Type == stitch.Jump:
				attr = husAttrJump
			case s.Type == stitch.Trim:
				attr = husAttrTrim
			case s.Type == stitch.Stop:
				attr = husAttrColorChange
			}
			emit(attr, seg[0], seg[1])
		}

		curX, curY = s.X, s.Y
	}

	emit(husAttrEnd, 0, 0)
	return ab.Bytes(), xb.Bytes(), yb.Bytes()
}
