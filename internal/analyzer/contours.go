package analyzer

import (
	"image"
	"math"
)

// Contour is a connected component of the edge map together with its
// traced outer boundary.
type Contour struct {
	Bounds   image.Rectangle
	Boundary []image.Point
}

// Area returns the area enclosed by the traced boundary polygon, via
// the shoelace formula, in pixels². Thin or ragged components enclose
// little area no matter how far their bounding box stretches.
func (c Contour) Area() int {
	n := len(c.Boundary)
	if n < 3 {
		return 0
	}
	sum := 0
	for i, p := range c.Boundary {
		q := c.Boundary[(i+1)%n]
		sum += p.X*q.Y - q.X*p.Y
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}

// AspectRatio returns the bounding-box width/height ratio.
func (c Contour) AspectRatio() float64 {
	h := c.Bounds.Dy()
	if h == 0 {
		return 0
	}
	return float64(c.Bounds.Dx()) / float64(h)
}

// Vertices estimates the number of polygon vertices of the boundary
// using Douglas-Peucker simplification with a tolerance proportional to
// the boundary length. Shapes with four or more vertices are treated as
// rectangular candidates by the classifier.
func (c Contour) Vertices() int {
	if len(c.Boundary) < 3 {
		return len(c.Boundary)
	}
	epsilon := 0.02 * float64(len(c.Boundary))
	simplified := simplifyPolyline(c.Boundary, epsilon)
	return len(simplified)
}

// dilate thickens the edge map with a square structuring element of the
// given radius, reconnecting outlines that edge thinning split apart at
// corners.
func dilate(edges *image.Gray, radius int) *image.Gray {
	bounds := edges.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y <= 128 {
				continue
			}
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= width || ny < 0 || ny >= height {
						continue
					}
					out.Pix[ny*out.Stride+nx] = 255
				}
			}
		}
	}
	return out
}

// findContours extracts the external contours of a binary edge image
// using flood fill over 8-connected components.
func findContours(edges *image.Gray) []Contour {
	bounds := edges.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	visited := make([]bool, width*height)
	set := func(x, y int) bool {
		return edges.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y > 128
	}

	var contours []Contour
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visited[y*width+x] || !set(x, y) {
				continue
			}
			rect := floodFill(set, visited, width, height, x, y)
			boundary := traceBoundary(set, width, height, image.Point{X: x, Y: y})
			contours = append(contours, Contour{
				Bounds:   rect.Add(bounds.Min),
				Boundary: boundary,
			})
		}
	}
	return contours
}

// floodFill marks one connected component and returns its bounding box.
func floodFill(set func(x, y int) bool, visited []bool, width, height, startX, startY int) image.Rectangle {
	minX, minY := startX, startY
	maxX, maxY := startX, startY

	stack := []image.Point{{X: startX, Y: startY}}
	visited[startY*width+startX] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				if visited[ny*width+nx] || !set(nx, ny) {
					continue
				}
				visited[ny*width+nx] = true
				stack = append(stack, image.Point{X: nx, Y: ny})
			}
		}
	}

	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// mooreOffsets is the clockwise 8-neighborhood used for boundary tracing,
// starting from the western neighbor.
var mooreOffsets = [8]image.Point{
	{X: -1, Y: 0},
	{X: -1, Y: -1},
	{X: 0, Y: -1},
	{X: 1, Y: -1},
	{X: 1, Y: 0},
	{X: 1, Y: 1},
	{X: 0, Y: 1},
	{X: -1, Y: 1},
}

// traceBoundary walks the outer boundary of the component containing
// start (which must be its topmost-leftmost pixel) using Moore neighbor
// tracing. Returns the boundary as an ordered closed polyline.
func traceBoundary(set func(x, y int) bool, width, height int, start image.Point) []image.Point {
	inside := func(p image.Point) bool {
		return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height && set(p.X, p.Y)
	}

	boundary := []image.Point{start}
	cur := start
	// Entered the start pixel from the west.
	backtrack := 0

	// A single-pixel component has no neighbors to walk.
	maxSteps := 4 * (width + height) * 4
	for steps := 0; steps < maxSteps; steps++ {
		found := false
		dir := backtrack
		for i := 0; i < 8; i++ {
			d := (dir + i) % 8
			next := cur.Add(mooreOffsets[d])
			if inside(next) {
				// Re-enter the scan from the neighbor preceding the hit,
				// relative to the new current pixel.
				backtrack = (d + 6) % 8
				cur = next
				found = true
				break
			}
		}
		if !found {
			break // isolated pixel
		}
		if cur == start {
			break
		}
		boundary = append(boundary, cur)
	}
	return boundary
}

// simplifyPolyline runs Douglas-Peucker simplification over an ordered
// polyline, keeping points that deviate more than epsilon from the chord.
func simplifyPolyline(points []image.Point, epsilon float64) []image.Point {
	if len(points) < 3 {
		return points
	}

	maxDist := 0.0
	index := 0
	first, last := points[0], points[len(points)-1]
	for i := 1; i < len(points)-1; i++ {
		d := perpendicularDistance(points[i], first, last)
		if d > maxDist {
			maxDist = d
			index = i
		}
	}

	if maxDist <= epsilon {
		return []image.Point{first, last}
	}

	left := simplifyPolyline(points[:index+1], epsilon)
	right := simplifyPolyline(points[index:], epsilon)
	return append(left[:len(left)-1], right...)
}

// perpendicularDistance is the distance from p to the line through a and b.
func perpendicularDistance(p, a, b image.Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	norm := dx*dx + dy*dy
	if norm == 0 {
		ddx := float64(p.X - a.X)
		ddy := float64(p.Y - a.Y)
		return math.Sqrt(ddx*ddx + ddy*ddy)
	}
	num := math.Abs(dx*float64(p.Y-a.Y) - dy*float64(p.X-a.X))
	return num / math.Sqrt(norm)
}
