package analyzer

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// intensityStats computes the mean and standard deviation of the
// grayscale intensities.
func intensityStats(gray *image.Gray) (mean, stddev float64) {
	bounds := gray.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0, 0
	}

	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := gray.Pix[gray.PixOffset(bounds.Min.X, y):]
		for x := 0; x < bounds.Dx(); x++ {
			sum += float64(row[x])
		}
	}
	mean = sum / float64(total)

	var sqSum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := gray.Pix[gray.PixOffset(bounds.Min.X, y):]
		for x := 0; x < bounds.Dx(); x++ {
			d := float64(row[x]) - mean
			sqSum += d * d
		}
	}
	return mean, math.Sqrt(sqSum / float64(total))
}

// paletteSize counts distinct colors in the image, quantized to the
// 8-bit HSV space. Counting stops once the count exceeds limit, since
// the classifier only compares against a maximum; the returned value is
// then limit+1. A limit of 0 counts exhaustively.
func paletteSize(img image.Image, limit int) int {
	bounds := img.Bounds()
	seen := make(map[uint32]struct{})

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			c := colorful.Color{
				R: float64(r>>8) / 255.0,
				G: float64(g>>8) / 255.0,
				B: float64(b>>8) / 255.0,
			}
			h, s, v := c.Hsv()
			// OpenCV-style 8-bit HSV buckets: H in [0,180), S and V in [0,256).
			key := uint32(h/2)<<16 | uint32(s*255)<<8 | uint32(v*255)
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				if limit > 0 && len(seen) > limit {
					return len(seen)
				}
			}
		}
	}
	return len(seen)
}
