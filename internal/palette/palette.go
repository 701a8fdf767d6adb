// Package palette holds the fixed machine-thread color table and the
// perceptual distance metric used to match image colors against it.
package palette

import (
	"fmt"
	"math"
	"regexp"
)

// Thread is one machine thread color.
type Thread struct {
	Name    string
	R, G, B uint8
}

// Hex returns the color as "#RRGGBB".
func (t Thread) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", t.R, t.G, t.B)
}

// grayscaleCount is the number of leading palette entries usable in
// grayscale mode.
const grayscaleCount = 5

// threads is the full machine palette. Order matters: grayscale mode uses
// the first grayscaleCount entries, and distance ties break on index.
var threads = [...]Thread{
	{"Black", 0x00, 0x00, 0x00},
	{"Dark Gray", 0x40, 0x40, 0x40},
	{"Medium Gray", 0x80, 0x80, 0x80},
	{"Light Gray", 0xC0, 0xC0, 0xC0},
	{"White", 0xFF, 0xFF, 0xFF},
	{"Red", 0xFF, 0x00, 0x00},
	{"Green", 0x00, 0xFF, 0x00},
	{"Blue", 0x00, 0x00, 0xFF},
	{"Yellow", 0xFF, 0xFF, 0x00},
	{"Cyan", 0x00, 0xFF, 0xFF},
	{"Magenta", 0xFF, 0x00, 0xFF},
}

// Count returns the palette size for the given mode.
func Count(grayscale bool) int {
	if grayscale {
		return grayscaleCount
	}
	return len(threads)
}

// At returns palette entry i.
func At(i int) Thread { return threads[i] }

// Distance is a CIE94-flavored color difference between two RGB triples.
// The chroma term omits the green channel; that matches the machine
// vendor's published matcher and is kept for output parity.
func Distance(r1, g1, b1, r2, g2, b2 uint8) float64 {
	fr1, fg1, fb1 := float64(r1), float64(g1), float64(b1)
	fr2, fg2, fb2 := float64(r2), float64(g2), float64(b2)

	l1 := 0.2126*fr1 + 0.7152*fg1 + 0.0722*fb1
	l2 := 0.2126*fr2 + 0.7152*fg2 + 0.0722*fb2
	dl := l1 - l2

	c1 := math.Sqrt(fr1*fr1 + fb1*fb1)
	c2 := math.Sqrt(fr2*fr2 + fb2*fb2)
	dc := c1 - c2

	da := fr1 - fr2
	db := fb1 - fb2
	dh := math.Sqrt(math.Max(0, da*da+db*db-dc*dc))

	sc := 1 + 0.045*c1
	sh := 1 + 0.015*c1

	return math.Sqrt(dl*dl + (dc/sc)*(dc/sc) + (dh/sh)*(dh/sh))
}

// Nearest finds the palette entry closest to (r, g, b). In grayscale mode
// only the gray entries are considered. Ties resolve to the lower index.
func Nearest(r, g, b uint8, grayscale bool) (Thread, int) {
	n := Count(grayscale)
	best := 0
	bestDist := math.Inf(1)
	for i := 0; i < n; i++ {
		t := threads[i]
		d := Distance(r, g, b, t.R, t.G, t.B)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return threads[best], best
}

// NearestHex snaps a "#RRGGBB" string to the nearest full-palette entry.
// Unparseable strings snap to Black.
func NearestHex(hex string) Thread {
	r, g, b, ok := ParseHex(hex)
	if !ok {
		return threads[0]
	}
	t, _ := Nearest(r, g, b, false)
	return t
}

var hexRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidHex reports whether s is a "#RRGGBB" color.
func ValidHex(s string) bool { return hexRe.MatchString(s) }

// ParseHex decodes a "#RRGGBB" string.
func ParseHex(s string) (r, g, b uint8, ok bool) {
	if !ValidHex(s) {
		return 0, 0, 0, false
	}
	var rv, gv, bv int
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &rv, &gv, &bv); err != nil {
		return 0, 0, 0, false
	}
	return uint8(rv), uint8(gv), uint8(bv), true
}
