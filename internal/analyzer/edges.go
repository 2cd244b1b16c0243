package analyzer

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
)

// blurRadius is the Gaussian smoothing radius applied before gradient
// computation. Roughly equivalent to a 5x5 kernel with sigma ~1.4.
const blurRadius = 1.4

// ToGrayscale converts an image to 8-bit grayscale using the standard
// luminance weights.
func ToGrayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// cannyEdges runs hysteresis edge detection over a grayscale image:
// Gaussian blur, Sobel gradients, non-maximum suppression, then a
// low/high double threshold. The result is a binary image with edge
// pixels set to 255.
func cannyEdges(gray *image.Gray, low, high float64) *image.Gray {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	// Normalize sub-images so pixel offsets below start at the origin.
	if bounds.Min.X != 0 || bounds.Min.Y != 0 {
		norm := image.NewGray(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				norm.SetGray(x, y, gray.GrayAt(x+bounds.Min.X, y+bounds.Min.Y))
			}
		}
		gray = norm
	}

	smoothed := blur.Gaussian(gray, blurRadius)

	// Sobel kernels
	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	pix := func(x, y int) float64 {
		x = clampInt(x, 0, width-1)
		y = clampInt(y, 0, height-1)
		// blur.Gaussian returns RGBA; the channels are equal for gray input.
		return float64(smoothed.Pix[y*smoothed.Stride+x*4])
	}

	magnitude := make([]float64, width*height)
	direction := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := pix(x+kx, y+ky)
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y*width+x] = math.Sqrt(gx*gx + gy*gy)
			direction[y*width+x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression thins ridges to single-pixel width.
	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			angle := direction[y*width+x]
			mag := magnitude[y*width+x]

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1 = magnitude[y*width+x-1]
				n2 = magnitude[y*width+x+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1 = magnitude[(y-1)*width+x+1]
				n2 = magnitude[(y+1)*width+x-1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1 = magnitude[(y-1)*width+x]
				n2 = magnitude[(y+1)*width+x]
			default:
				n1 = magnitude[(y-1)*width+x-1]
				n2 = magnitude[(y+1)*width+x+1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[y*width+x] = mag
			}
		}
	}

	// Double threshold with hysteresis: strong edges survive, weak edges
	// survive only next to a strong one.
	edges := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed[y*width+x]
			if val >= high {
				edges.SetGray(x, y, color.Gray{Y: 255})
			} else if val >= low {
				for ky := -1; ky <= 1; ky++ {
					for kx := -1; kx <= 1; kx++ {
						py := clampInt(y+ky, 0, height-1)
						px := clampInt(x+kx, 0, width-1)
						if suppressed[py*width+px] >= high {
							edges.SetGray(x, y, color.Gray{Y: 255})
						}
					}
				}
			}
		}
	}

	return edges
}

// edgeDensity is the fraction of pixels marked as edges.
func edgeDensity(edges *image.Gray) float64 {
	bounds := edges.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}
	count := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := edges.Pix[edges.PixOffset(bounds.Min.X, y):]
		for x := 0; x < bounds.Dx(); x++ {
			if row[x] > 0 {
				count++
			}
		}
	}
	return float64(count) / float64(total)
}

func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
