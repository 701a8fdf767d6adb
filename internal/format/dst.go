package format

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"img2stitch/internal/errs"
	"img2stitch/internal/stitch"
)

// Tajima DST constants.
const (
	dstHeaderSize  = 512
	dstMaxStitch   = 121 // largest delta one record can carry, 0.1 mm
	dstMaxJump     = 121
	dstMaxStitches = 999999
	dstMaxDim      = 400 // mm
	dstLabel       = "Design Studio"
)

// writeDST serializes a pattern as a Tajima DST file: a 512-byte ASCII
// header followed by 3-byte delta records. Movements larger than one
// record can carry are decomposed into jump chains.
func writeDST(p *stitch.Pattern) ([]byte, error) {
	if len(p.Stitches) == 0 {
		return nil, errs.New(errs.InvalidInput, "dst: empty pattern")
	}
	if len(p.Stitches) > dstMaxStitches {
		return nil, errs.New(errs.FormatLimit, "dst: %d stitches exceeds %d", len(p.Stitches), dstMaxStitches)
	}
	for i, s := range p.Stitches {
		if !s.Point().Finite() {
			return nil, errs.New(errs.InvalidCoordinates, "dst: stitch %d at (%g, %g)", i, s.X, s.Y)
		}
	}
	if !(p.Width > 0) || !(p.Height > 0) {
		return nil, errs.New(errs.FormatLimit, "dst: missing dimensions")
	}
	if p.Width > dstMaxDim || p.Height > dstMaxDim {
		return nil, errs.New(errs.FormatLimit, "dst: %gx%g mm exceeds %d mm", p.Width, p.Height, dstMaxDim)
	}

	m := toMachine(p)

	var body bytes.Buffer
	records := 0

	emit := func(dx, dy int, t stitch.Type) {
		body.Write(encodeDSTRecord(dx, dy, t))
		records++
	}

	// Leading frame record
	emit(0, 0, stitch.Jump)

	curX, curY := 0, 0
	for _, s := range m.Stitches {
		dx := s.X - curX
		dy := s.Y - curY

		if abs(dx) > dstMaxStitch || abs(dy) > dstMaxStitch {
			// Decompose into equal jump segments
			steps := maxInt(
				int(math.Ceil(float64(abs(dx))/dstMaxJump)),
				int(math.Ceil(float64(abs(dy))/dstMaxJump)),
			)
			for i := 0; i < steps; i++ {
				sx := stepDelta(dx, i, steps)
				sy := stepDelta(dy, i, steps)
				emit(sx, sy, stitch.Jump)
			}
		} else {
			emit(dx, dy, s.Type)
		}

		curX, curY = s.X, s.Y
	}

	header, err := dstHeader(m, records)
	if err != nil {
		return nil, err
	}

	// Trailing frame record
	emit(0, 0, stitch.End)

	out := make([]byte, 0, dstHeaderSize+body.Len())
	out = append(out, header...)
	out = append(out, body.Bytes()...)
	return out, nil
}

// stepDelta is the i-th increment when splitting delta d into steps equal
// segments whose rounded sum is exactly d.
func stepDelta(d, i, steps int) int {
	return int(math.Round(float64(d)*float64(i+1)/float64(steps))) -
		int(math.Round(float64(d)*float64(i)/float64(steps)))
}

// encodeDSTRecord packs one (dx, dy, type) movement into 3 bytes: low
// nibbles of |dy| and |dx| in the first two bytes, both high nibbles OR'd
// into the third along with sign and type bits.
func encodeDSTRecord(dx, dy int, t stitch.Type) []byte {
	dx = clampInt(dx, -dstMaxStitch, dstMaxStitch)
	dy = clampInt(dy, -dstMaxStitch, dstMaxStitch)

	x := abs(dx)
	y := abs(dy)

	b0 := byte(y & 0x0F)
	b1 := byte(x & 0x0F)
	b2 := byte(((y & 0xF0) >> 4) | ((x & 0xF0) >> 4))

	if dx < 0 {
		b2 |= 0x20
	}
	if dy < 0 {
		b2 |= 0x40
	}

	switch t {
	case stitch.Normal:
		b2 |= 0x03
	case stitch.Jump, stitch.Trim:
		b2 |= 0x83
	case stitch.Stop:
		b2 |= 0xC3
	case stitch.End:
		b2 |= 0xF3
	}

	return []byte{b0, b1, b2}
}

// dstHeader renders the 512-byte ASCII header: CRLF-terminated key lines,
// zero-padded to size. records counts body records excluding the End frame.
func dstHeader(m machinePattern, records int) ([]byte, error) {
	maxX, maxY := m.extents()

	lines := []string{
		"LA:" + dstLabel,
		fmt.Sprintf("ST:%d", records),
		"CO:1",
		fmt.Sprintf("+X:%d", maxX),
		"-X:0",
		fmt.Sprintf("+Y:%d", maxY),
		"-Y:0",
		"AX:+0",
		"AY:+0",
		"MX:+0",
		"MY:+0",
		"PD:******",
	}

	text := strings.Join(lines, "\r\n") + "\r\n"
	if len(text) > dstHeaderSize {
		return nil, errs.New(errs.FormatLimit, "dst: header %d bytes exceeds %d", len(text), dstHeaderSize)
	}

	header := make([]byte, dstHeaderSize)
	copy(header, text)
	return header, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
