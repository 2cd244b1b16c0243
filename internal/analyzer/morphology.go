package analyzer

import "image"

// lineDensity applies morphological opening to the edge map with a thin
// structuring element of the given length (1×N when horizontal, N×1
// otherwise) and returns the fraction of surviving pixels. Only runs of
// edge pixels at least as long as the element survive, which isolates
// ruled lines from text and texture.
func lineDensity(edges *image.Gray, length int, horizontal bool) float64 {
	bounds := edges.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 || length <= 0 {
		return 0
	}

	set := func(x, y int) bool {
		return edges.GrayAt(x+bounds.Min.X, y+bounds.Min.Y).Y > 128
	}

	// Opening with a 1-pixel-thick line element reduces to run-length
	// filtering: erosion removes runs shorter than the element and
	// dilation restores the survivors to their original extent.
	count := 0
	if horizontal {
		for y := 0; y < height; y++ {
			run := 0
			for x := 0; x <= width; x++ {
				if x < width && set(x, y) {
					run++
					continue
				}
				if run >= length {
					count += run
				}
				run = 0
			}
		}
	} else {
		for x := 0; x < width; x++ {
			run := 0
			for y := 0; y <= height; y++ {
				if y < height && set(x, y) {
					run++
					continue
				}
				if run >= length {
					count += run
				}
				run = 0
			}
		}
	}

	return float64(count) / float64(width*height)
}
