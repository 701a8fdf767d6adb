package geom

import "math"

// Point is a 2D coordinate in millimeters (value type, stack-allocated).
type Point struct {
	X, Y float64
}

func (a Point) Add(b Point) Point {
	return Point{a.X + b.X, a.Y + b.Y}
}

func (a Point) Sub(b Point) Point {
	return Point{a.X - b.X, a.Y - b.Y}
}

func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Y * s}
}

func (a Point) Dot(b Point) float64 {
	return a.X*b.X + a.Y*b.Y
}

func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

func (a Point) Dist(b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Lerp returns the point at parameter t on the segment a→b.
func Lerp(a, b Point, t float64) Point {
	return Point{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyRect is the identity for Rect.Extend.
func EmptyRect() Rect {
	return Rect{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
}

func (r Rect) Extend(p Point) Rect {
	if p.X < r.MinX {
		r.MinX = p.X
	}
	if p.Y < r.MinY {
		r.MinY = p.Y
	}
	if p.X > r.MaxX {
		r.MaxX = p.X
	}
	if p.Y > r.MaxY {
		r.MaxY = p.Y
	}
	return r
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

func (r Rect) Center() Point {
	return Point{(r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2}
}

// Diagonal is the length of the box diagonal.
func (r Rect) Diagonal() float64 {
	return math.Hypot(r.Width(), r.Height())
}

// Empty reports whether the box contains no points.
func (r Rect) Empty() bool {
	return r.MinX > r.MaxX || r.MinY > r.MaxY
}

// BoundsOf returns the AABB of all points in all polylines.
func BoundsOf(polylines [][]Point) Rect {
	r := EmptyRect()
	for _, line := range polylines {
		for _, p := range line {
			r = r.Extend(p)
		}
	}
	return r
}

// SegmentIntersection computes the intersection of segments p1→p2 and p3→p4.
// Returns the intersection point and true when the segments cross within
// both parameter ranges [0,1].
func SegmentIntersection(p1, p2, p3, p4 Point) (Point, bool) {
	d1 := p2.Sub(p1)
	d2 := p4.Sub(p3)
	denom := d2.Y*d1.X - d2.X*d1.Y
	if math.Abs(denom) < 1e-12 {
		return Point{}, false
	}
	ua := (d2.X*(p1.Y-p3.Y) - d2.Y*(p1.X-p3.X)) / denom
	ub := (d1.X*(p1.Y-p3.Y) - d1.Y*(p1.X-p3.X)) / denom
	if ua < 0 || ua > 1 || ub < 0 || ub > 1 {
		return Point{}, false
	}
	return Point{p1.X + ua*d1.X, p1.Y + ua*d1.Y}, true
}
