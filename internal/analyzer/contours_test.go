package analyzer

import (
	"image"
	"image/color"
	"testing"
)

func edgeMap(width, height int, on ...image.Point) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for _, p := range on {
		img.Pix[p.Y*img.Stride+p.X] = 255
	}
	return img
}

func hollowSquare(width, height, x, y, side int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := 0; i < side; i++ {
		img.Pix[y*img.Stride+x+i] = 255          // top
		img.Pix[(y+side-1)*img.Stride+x+i] = 255 // bottom
		img.Pix[(y+i)*img.Stride+x] = 255        // left
		img.Pix[(y+i)*img.Stride+x+side-1] = 255 // right
	}
	return img
}

func TestFindContoursEmpty(t *testing.T) {
	if got := findContours(edgeMap(50, 50)); len(got) != 0 {
		t.Errorf("expected no contours on an empty map, got %d", len(got))
	}
}

func TestFindContoursSquare(t *testing.T) {
	contours := findContours(hollowSquare(100, 100, 10, 20, 40))
	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}

	c := contours[0]
	want := image.Rect(10, 20, 50, 60)
	if c.Bounds != want {
		t.Errorf("bounds = %v, want %v", c.Bounds, want)
	}
	// Shoelace area of the outer boundary polygon, 39x39 between the
	// corner pixel centers.
	if c.Area() != 1521 {
		t.Errorf("area = %d, want 1521", c.Area())
	}
	if c.AspectRatio() != 1.0 {
		t.Errorf("aspect = %f, want 1.0", c.AspectRatio())
	}
	if v := c.Vertices(); v < 4 {
		t.Errorf("square should approximate to >= 4 vertices, got %d", v)
	}
}

func TestFindContoursSeparatesComponents(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 120, 60))
	a := hollowSquare(120, 60, 5, 5, 20)
	b := hollowSquare(120, 60, 60, 10, 30)
	for i := range img.Pix {
		if a.Pix[i] > 0 || b.Pix[i] > 0 {
			img.Pix[i] = 255
		}
	}

	contours := findContours(img)
	if len(contours) != 2 {
		t.Fatalf("expected 2 contours, got %d", len(contours))
	}
}

func TestLineIsNotRectangular(t *testing.T) {
	// A straight stroke must not be mistaken for a box.
	img := image.NewGray(image.Rect(0, 0, 100, 50))
	for x := 10; x < 90; x++ {
		img.Pix[25*img.Stride+x] = 255
	}

	contours := findContours(img)
	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	if v := contours[0].Vertices(); v >= 4 {
		t.Errorf("straight line approximated to %d vertices", v)
	}
	if a := contours[0].Area(); a > 50 {
		t.Errorf("straight line encloses area %d", a)
	}
}

func TestDilateBridgesCornerGaps(t *testing.T) {
	// Four box sides with 3px gaps at every corner, the shape edge
	// thinning leaves behind.
	img := image.NewGray(image.Rect(0, 0, 60, 60))
	for i := 13; i <= 46; i++ {
		img.Pix[10*img.Stride+i] = 255 // top
		img.Pix[49*img.Stride+i] = 255 // bottom
		img.Pix[i*img.Stride+10] = 255 // left
		img.Pix[i*img.Stride+49] = 255 // right
	}

	if got := len(findContours(img)); got != 4 {
		t.Fatalf("expected 4 disconnected strips, got %d", got)
	}

	contours := findContours(dilate(img, 2))
	if len(contours) != 1 {
		t.Fatalf("expected 1 contour after dilation, got %d", len(contours))
	}
	if v := contours[0].Vertices(); v < 4 {
		t.Errorf("bridged outline approximated to %d vertices", v)
	}
	if a := contours[0].Area(); a < 1000 {
		t.Errorf("bridged outline encloses area %d", a)
	}
}

func TestTraceBoundaryIsolatedPixel(t *testing.T) {
	img := edgeMap(10, 10, image.Point{X: 4, Y: 4})
	contours := findContours(img)
	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	if len(contours[0].Boundary) != 1 {
		t.Errorf("isolated pixel boundary length = %d, want 1", len(contours[0].Boundary))
	}
}

func TestLineDensity(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	for x := 10; x < 50; x++ { // 40 px horizontal run
		img.Pix[30*img.Stride+x] = 255
	}
	for y := 20; y < 35; y++ { // 15 px vertical run, below the kernel
		img.Pix[y*img.Stride+70] = 255
	}

	if got := lineDensity(img, 25, true); got != 40.0/10000 {
		t.Errorf("horizontal density = %f, want %f", got, 40.0/10000)
	}
	if got := lineDensity(img, 25, false); got != 0 {
		t.Errorf("vertical density = %f, want 0", got)
	}
	if got := lineDensity(img, 10, false); got != 15.0/10000 {
		t.Errorf("vertical density with short kernel = %f, want %f", got, 15.0/10000)
	}
}

func TestEdgeDensity(t *testing.T) {
	img := edgeMap(10, 10,
		image.Point{X: 0, Y: 0},
		image.Point{X: 5, Y: 5},
		image.Point{X: 9, Y: 9},
	)
	if got := edgeDensity(img); got != 0.03 {
		t.Errorf("edge density = %f, want 0.03", got)
	}
}

func TestIntensityStats(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range img.Pix {
		if i%2 == 0 {
			img.Pix[i] = 200
		} else {
			img.Pix[i] = 100
		}
	}

	mean, stddev := intensityStats(img)
	if mean != 150 {
		t.Errorf("mean = %f, want 150", mean)
	}
	if stddev != 50 {
		t.Errorf("stddev = %f, want 50", stddev)
	}
}

func TestPaletteSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			// Two flat colors, split down the middle.
			c := color.RGBA{R: 255, A: 255}
			if x >= 32 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}

	if got := paletteSize(img, 1000); got != 2 {
		t.Errorf("palette size = %d, want 2", got)
	}

	// Counting stops just past the limit.
	grad := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			grad.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: uint8((x + y) % 256), A: 255})
		}
	}
	if got := paletteSize(grad, 10); got != 11 {
		t.Errorf("palette size = %d, want limit+1", got)
	}
}

func TestCannyFindsStepEdge(t *testing.T) {
	// Left half black, right half white: one vertical edge.
	img := image.NewGray(image.Rect(0, 0, 60, 40))
	for y := 0; y < 40; y++ {
		for x := 30; x < 60; x++ {
			img.Pix[y*img.Stride+x] = 255
		}
	}

	edges := cannyEdges(img, 30, 100)
	if d := edgeDensity(edges); d == 0 {
		t.Error("expected edge pixels along the step")
	}

	// Edge pixels must cluster near the step column.
	bounds := edges.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if edges.GrayAt(x, y).Y > 128 && (x < 25 || x > 35) {
				t.Fatalf("spurious edge pixel at (%d,%d)", x, y)
			}
		}
	}
}

func TestCannyUniformImage(t *testing.T) {
	img := solidGray(60, 40, 77)
	edges := cannyEdges(img, 30, 100)
	if d := edgeDensity(edges); d != 0 {
		t.Errorf("uniform image produced edge density %f", d)
	}
}
