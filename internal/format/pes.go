package format

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"img2stitch/internal/stitch"
)

// PES/PEC constants.
const (
	pesSignature  = "#PES0001"
	pecShortRange = 63  // deltas in [-64, 63] encode as one 7-bit byte
	pecLongRange  = 511 // 12-bit long form ceiling before splitting
)

// writePES serializes a pattern as a Brother PES v1 file: the PES
// signature, a pointer to the PEC block, an empty PES design section, and
// the PEC block carrying the label, thread list, and stitch data.
func writePES(p *stitch.Pattern) ([]byte, error) {
	m := toMachine(p)

	pec := pecBlock(p.Metadata.Name, m)

	var buf bytes.Buffer
	buf.WriteString(pesSignature)

	// Pointer to the PEC block: signature + pointer + design section
	design := pesDesignSection()
	var ptr [4]byte
	binary.LittleEndian.PutUint32(ptr[:], uint32(len(pesSignature)+4+len(design)))
	buf.Write(ptr[:])
	buf.Write(design)
	buf.Write(pec)

	return buf.Bytes(), nil
}

// pesDesignSection renders the minimal v1 design section: no CEmbOne
// geometry, scope terminator only.
func pesDesignSection() []byte {
	var buf bytes.Buffer
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], 0x0001)
	buf.Write(b[:]) // scale to fit
	binary.LittleEndian.PutUint16(b[:], 0xFFFF)
	buf.Write(b[:]) // no PES design blocks
	binary.LittleEndian.PutUint16(b[:], 0x0000)
	buf.Write(b[:])
	return buf.Bytes()
}

// pecBlock renders the PEC section.
func pecBlock(name string, m machinePattern) []byte {
	var buf bytes.Buffer

	label := name
	if len(label) > 16 {
		label = label[:16]
	}
	buf.WriteString(fmt.Sprintf("LA:%-16s\r", label))
	for i := 0; i < 11; i++ {
		buf.WriteByte(0x20)
	}
	buf.WriteByte(0xFF)
	buf.WriteByte(0x00)
	// Thumbnail dimensions (bytes, lines)
	buf.WriteByte(0x06)
	buf.WriteByte(0x26)
	for i := 0; i < 12; i++ {
		buf.WriteByte(0x20)
	}

	// Thread list: count-1 then the 1-based color-list position per thread
	buf.WriteByte(byte(len(m.Colors) - 1))
	for _, c := range m.Colors {
		buf.WriteByte(byte(m.colorIndex(c) + 1))
	}
	for i := len(m.Colors) + 1; i <= 463; i++ {
		buf.WriteByte(0x20)
	}

	body := pecStitches(m)

	// Graphics pointer: body length, 3-byte little-endian, then extents
	gp := len(body) + 20
	buf.WriteByte(0x00)
	buf.WriteByte(0x00)
	buf.WriteByte(byte(gp & 0xFF))
	buf.WriteByte(byte((gp >> 8) & 0xFF))
	buf.WriteByte(byte((gp >> 16) & 0xFF))
	buf.WriteByte(0x31)
	buf.WriteByte(0xFF)
	buf.WriteByte(0xF0)

	maxX, maxY := m.extents()
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(maxX))
	buf.Write(b[:])
	binary.LittleEndian.PutUint16(b[:], uint16(maxY))
	buf.Write(b[:])
	binary.LittleEndian.PutUint16(b[:], 0x01E0)
	buf.Write(b[:])
	binary.LittleEndian.PutUint16(b[:], 0x01B0)
	buf.Write(b[:])

	buf.Write(body)
	return buf.Bytes()
}

// pecStitches encodes the stitch list: 7-bit short deltas, 12-bit long
// deltas with jump/trim flags, 0xFE 0xB0 color changes, 0xFF terminator.
func pecStitches(m machinePattern) []byte {
	var buf bytes.Buffer
	curX, curY := 0, 0
	prevColor := ""
	changes := 0

	for _, s := range m.Stitches {
		if prevColor != "" && s.Color != prevColor {
			buf.Write([]byte{0xFE, 0xB0, byte(2 - changes%2)})
			changes++
		}
		prevColor = s.Color

		dx := s.X - curX
		dy := s.Y - curY

		segs := splitDelta(dx, dy, pecLongRange)
		for i, seg := range segs {
			jump := s.Type == stitch.Jump || s.Type == stitch.Trim ||
				(len(segs) > 1 && i < len(segs)-1)
			writePECDelta(&buf, seg[0], jump)
			writePECDelta(&buf, seg[1], jump)
		}

		curX, curY = s.X, s.Y
	}

	buf.WriteByte(0xFF)
	return buf.Bytes()
}

// writePECDelta encodes one axis delta. Short form is a single byte with
// the value in 7 bits; long form sets the high bit, carries flags, and
// spans 12 bits over two bytes.
func writePECDelta(buf *bytes.Buffer, v int, jump bool) {
	if !jump && v >= -64 && v <= pecShortRange {
		buf.WriteByte(byte(v & 0x7F))
		return
	}
	v = clampInt(v, -2048, 2047)
	hi := byte(0x80 | ((v >> 8) & 0x0F))
	if jump {
		hi |= 0x10
	}
	buf.WriteByte(hi)
	buf.WriteByte(byte(v & 0xFF))
}
