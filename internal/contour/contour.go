// Package contour extracts ordered polyline contours from a binary edge
// image by chain-following connected edge pixels.
package contour

import (
	"image"

	"img2stitch/internal/geom"
)

// minContourLen drops fragments too short to stitch.
const minContourLen = 3

// neighbors is the Moore neighborhood in clockwise order starting east.
var neighbors = [8][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// TraceContours walks the white pixels of an edge image and returns ordered
// point chains. A chain ends at a pixel with no unvisited edge neighbor, so
// a branching component yields several chains. Pixels are consumed by a
// visitation set, so each pixel is traced exactly once. The result is
// empty when no contours are found; the caller decides whether that is an
// error.
func TraceContours(img *image.NRGBA) [][]geom.Point {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	visited := make([]bool, w*h)
	isEdge := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return img.Pix[img.PixOffset(b.Min.X+x, b.Min.Y+y)] > 127
	}

	var contours [][]geom.Point
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !isEdge(x, y) || visited[y*w+x] {
				continue
			}
			chain := trace(x, y, w, h, isEdge, visited)
			if len(chain) >= minContourLen {
				contours = append(contours, chain)
			}
		}
	}
	return contours
}

// trace follows a chain of connected edge pixels from the start pixel. The
// neighbor search begins at the previous direction and turns clockwise, so
// the chain continues straight when it can.
func trace(sx, sy, w, h int, isEdge func(int, int) bool, visited []bool) []geom.Point {
	chain := []geom.Point{{X: float64(sx), Y: float64(sy)}}
	visited[sy*w+sx] = true

	x, y := sx, sy
	dir := 0
	for {
		next := -1
		// Search the Moore neighborhood starting from the incoming
		// direction so the walk continues forward when possible.
		for i := 0; i < 8; i++ {
			d := (dir + i) % 8
			nx, ny := x+neighbors[d][0], y+neighbors[d][1]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			if isEdge(nx, ny) && !visited[ny*w+nx] {
				next = d
				break
			}
		}
		if next < 0 {
			break
		}
		x += neighbors[next][0]
		y += neighbors[next][1]
		dir = next
		visited[y*w+x] = true
		chain = append(chain, geom.Point{X: float64(x), Y: float64(y)})
	}
	return chain
}
