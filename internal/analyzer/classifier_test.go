package analyzer

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
)

func solidGray(width, height int, value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	return img
}

// drawRectOutline draws a black rectangle outline with the given stroke
// thickness onto a grayscale image.
func drawRectOutline(img *image.Gray, x, y, w, h, stroke int) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			onBorder := dx < stroke || dx >= w-stroke || dy < stroke || dy >= h-stroke
			if onBorder {
				img.SetGray(x+dx, y+dy, color.Gray{Y: 0})
			}
		}
	}
}

// rectangleGrid builds a white canvas with a grid of black rectangle
// outlines, the classic shape of an architecture diagram.
func rectangleGrid(width, height int) *image.Gray {
	img := solidGray(width, height, 255)
	const boxW, boxH, stroke = 90, 70, 3
	for y := 20; y+boxH < height; y += boxH + 40 {
		for x := 20; x+boxW < width; x += boxW + 40 {
			drawRectOutline(img, x, y, boxW, boxH, stroke)
		}
	}
	return img
}

// binaryNoise fills an image with seeded 50/50 black-or-white pixels.
func binaryNoise(width, height int, seed int64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	r := rand.New(rand.NewSource(seed))
	for i := range img.Pix {
		if r.Intn(2) == 1 {
			img.Pix[i] = 255
		}
	}
	return img
}

func allVariants(t *testing.T) map[string]*Classifier {
	t.Helper()
	return map[string]*Classifier{
		"basic":  NewClassifier(BasicThresholds()),
		"scored": NewClassifier(ScoredThresholds()),
		"strict": NewClassifier(StrictThresholds()),
	}
}

func TestSizeGateIsAbsolute(t *testing.T) {
	// Rich content below the minimum dimensions must never pass.
	img := rectangleGrid(180, 120)
	for name, c := range allVariants(t) {
		v, err := c.Classify(img, nil)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if v.Accept {
			t.Errorf("%s: accepted an image below the size gate", name)
		}
		if v.Score != 0 {
			t.Errorf("%s: size gate must short-circuit, got score %d", name, v.Score)
		}
	}
}

func TestSizeGateMaximum(t *testing.T) {
	img := solidGray(2200, 600, 255)
	c := NewClassifier(ScoredThresholds())
	v, err := c.Classify(img, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Accept || v.Score != 0 {
		t.Errorf("oversized image must be rejected before scoring, got %+v", v)
	}
}

func TestSolidColorRejected(t *testing.T) {
	img := solidGray(800, 600, 128)
	for name, c := range allVariants(t) {
		v, err := c.Classify(img, img)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if v.Accept {
			t.Errorf("%s: accepted a solid-color image (score %d)", name, v.Score)
		}
		if v.StdDev > 1 {
			t.Errorf("%s: solid color should have ~0 stddev, got %.2f", name, v.StdDev)
		}
	}
}

func TestRectangleGridAccepted(t *testing.T) {
	img := rectangleGrid(800, 600)
	for _, name := range []string{"scored", "strict"} {
		c := allVariants(t)[name]
		v, err := c.Classify(img, img)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if !v.Accept {
			t.Errorf("%s: rejected a rectangle-grid diagram: %+v", name, v)
		}
		if v.RectCount == 0 {
			t.Errorf("%s: expected rectangular contours, got none", name)
		}
	}
}

func TestNoiseRejected(t *testing.T) {
	img := binaryNoise(800, 600, 42)
	for _, name := range []string{"scored", "strict"} {
		c := allVariants(t)[name]
		v, err := c.Classify(img, nil)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if v.Accept {
			t.Errorf("%s: accepted high-frequency noise: %+v", name, v)
		}
		// Ragged noise components enclose almost no area and must not
		// register as rectangles.
		if v.RectCount > c.Thresholds.RectCountMin {
			t.Errorf("%s: noise produced %d rectangular contours", name, v.RectCount)
		}
	}
}

func TestColoredNoiseRejected(t *testing.T) {
	gray := binaryNoise(800, 600, 7)

	r := rand.New(rand.NewSource(8))
	col := image.NewRGBA(image.Rect(0, 0, 800, 600))
	for i := 0; i < len(col.Pix); i += 4 {
		col.Pix[i] = uint8(r.Intn(256))
		col.Pix[i+1] = uint8(r.Intn(256))
		col.Pix[i+2] = uint8(r.Intn(256))
		col.Pix[i+3] = 255
	}

	c := NewClassifier(ScoredThresholds())
	v, err := c.Classify(gray, col)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.PaletteSize <= c.Thresholds.PaletteMax {
		t.Errorf("random colors produced palette size %d", v.PaletteSize)
	}
	if v.RectCount > c.Thresholds.RectCountMin {
		t.Errorf("noise produced %d rectangular contours", v.RectCount)
	}
	if v.Accept {
		t.Errorf("accepted colored noise: %+v", v)
	}
}

func TestDeterministic(t *testing.T) {
	img := rectangleGrid(800, 600)
	c := NewClassifier(StrictThresholds())

	first, err := c.Classify(img, img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Classify(img, img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("verdicts differ for identical input:\n%+v\n%+v", first, second)
	}
}

func TestDegenerateInputs(t *testing.T) {
	c := NewClassifier(ScoredThresholds())

	if _, err := c.Classify(nil, nil); err == nil {
		t.Error("expected error for nil input")
	}
	if c.IsDiagram(nil, nil) {
		t.Error("IsDiagram must fail closed for nil input")
	}

	// Tiny and extreme grids must return a decision, not panic.
	for _, img := range []*image.Gray{
		solidGray(1, 1, 0),
		solidGray(1, 5000, 255),
		solidGray(5000, 1, 255),
	} {
		v, err := c.Classify(img, nil)
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", img.Bounds(), err)
		}
		if v.Accept {
			t.Errorf("degenerate grid accepted: %v", img.Bounds())
		}
	}
}

func TestClassifierVariants(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"basic", false},
		{"scored", false},
		{"", false}, // default
		{"strict", false},
		{"ocr", true},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			c, err := ForVariant(tt.variant)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if c == nil {
				t.Error("expected classifier, got nil")
			}
		})
	}
}
