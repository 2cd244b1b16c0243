package analyzer

import (
	"errors"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
)

// ErrUnclassifiable marks input the classifier cannot score: nil or
// degenerate images, or a processing fault. Callers that go through
// IsDiagram never see it; the verdict collapses to a reject.
var ErrUnclassifiable = errors.New("unclassifiable image")

// Thresholds holds every tunable constant of the diagram heuristic.
// The zero value of an optional field disables the corresponding signal.
type Thresholds struct {
	// Size gate, checked first and absolute.
	MinWidth  int `yaml:"min_width"`
	MinHeight int `yaml:"min_height"`
	MaxWidth  int `yaml:"max_width"`  // 0 = unbounded
	MaxHeight int `yaml:"max_height"` // 0 = unbounded

	// Edge detection and edge-density band.
	CannyLow        float64 `yaml:"canny_low"`
	CannyHigh       float64 `yaml:"canny_high"`
	EdgeDensityLow  float64 `yaml:"edge_density_low"`
	EdgeDensityHigh float64 `yaml:"edge_density_high"`
	EdgeScore       int     `yaml:"edge_score"`

	// Geometric structure. A contour is rectangular when its enclosed
	// area exceeds ContourAreaMin, its polygon approximation has at
	// least four vertices and, when RectAspectMin is set, its aspect
	// ratio lies in [RectAspectMin, RectAspectMax] with area above
	// RectAreaMin.
	ContourAreaMin    int     `yaml:"contour_area_min"`
	RectAreaMin       int     `yaml:"rect_area_min"`
	RectAspectMin     float64 `yaml:"rect_aspect_min"`
	RectAspectMax     float64 `yaml:"rect_aspect_max"`
	RectCountMin      int     `yaml:"rect_count_min"`
	RectScore         int     `yaml:"rect_score"`
	LargeRectArea     int     `yaml:"large_rect_area"`
	LargeRectCountMin int     `yaml:"large_rect_count_min"`
	LargeRectScore    int     `yaml:"large_rect_score"`

	// Ruled-line structure via morphological opening.
	LineKernelLen  int     `yaml:"line_kernel_len"` // 0 disables
	LineDensityMin float64 `yaml:"line_density_min"`
	LineScore      int     `yaml:"line_score"`

	// Color palette.
	PaletteMax   int `yaml:"palette_max"` // 0 disables
	PaletteScore int `yaml:"palette_score"`

	// Brightness and contrast. With JointContrast the standard
	// deviation and mean-band conditions must hold together and award
	// StdDevScore once; otherwise they score independently.
	StdDevMin     float64 `yaml:"stddev_min"`
	StdDevScore   int     `yaml:"stddev_score"`
	MeanLow       float64 `yaml:"mean_low"`
	MeanHigh      float64 `yaml:"mean_high"`
	MeanScore     int     `yaml:"mean_score"`
	JointContrast bool    `yaml:"joint_contrast"`

	// Aspect-ratio bonus.
	AspectMin   float64 `yaml:"aspect_min"` // 0 disables
	AspectMax   float64 `yaml:"aspect_max"`
	AspectScore int     `yaml:"aspect_score"`

	// Size bonus for large, likely-important figures.
	SizeBonusWidth  int `yaml:"size_bonus_width"` // 0 disables
	SizeBonusHeight int `yaml:"size_bonus_height"`
	SizeScore       int `yaml:"size_score"`

	// Accumulated score needed to accept.
	PassScore int `yaml:"pass_score"`
}

// BasicThresholds mirrors the loosest filter: any single strong signal
// (edge-density band, or contrast paired with a mid-range brightness)
// is enough to accept.
func BasicThresholds() Thresholds {
	return Thresholds{
		MinWidth:        300,
		MinHeight:       200,
		CannyLow:        50,
		CannyHigh:       150,
		EdgeDensityLow:  0.02,
		EdgeDensityHigh: 0.30,
		EdgeScore:       6,
		StdDevMin:       30,
		StdDevScore:     6,
		MeanLow:         50,
		MeanHigh:        200,
		JointContrast:   true,
		PassScore:       6,
	}
}

// ScoredThresholds mirrors the technical-diagram filter: independent
// signals accumulate points on a ~12-point scale.
func ScoredThresholds() Thresholds {
	return Thresholds{
		MinWidth:        250,
		MinHeight:       200,
		MaxWidth:        2000,
		MaxHeight:       2000,
		CannyLow:        30,
		CannyHigh:       100,
		EdgeDensityLow:  0.01,
		EdgeDensityHigh: 0.25,
		EdgeScore:       3,
		ContourAreaMin:  100,
		RectCountMin:    2,
		RectScore:       3,
		StdDevMin:       25,
		StdDevScore:     2,
		MeanLow:         40,
		MeanHigh:        220,
		MeanScore:       1,
		PaletteMax:      1000,
		PaletteScore:    2,
		AspectMin:       0.5,
		AspectMax:       3.0,
		AspectScore:     1,
		PassScore:       6,
	}
}

// StrictThresholds mirrors the architectural-diagram filter: the same
// scored pipeline plus rectangle aspect constraints, large-component
// counting, ruled-line probing and a size bonus, on a ~15-point scale.
func StrictThresholds() Thresholds {
	return Thresholds{
		MinWidth:          400,
		MinHeight:         250,
		MaxWidth:          2000,
		MaxHeight:         2000,
		CannyLow:          30,
		CannyHigh:         100,
		EdgeDensityLow:    0.02,
		EdgeDensityHigh:   0.20,
		EdgeScore:         3,
		ContourAreaMin:    50,
		RectAreaMin:       200,
		RectAspectMin:     0.3,
		RectAspectMax:     3.0,
		RectCountMin:      3,
		RectScore:         3,
		LargeRectArea:     1000,
		LargeRectCountMin: 1,
		LargeRectScore:    2,
		LineKernelLen:     25,
		LineDensityMin:    0.001,
		LineScore:         2,
		PaletteMax:        800,
		PaletteScore:      2,
		StdDevMin:         30,
		StdDevScore:       2,
		MeanLow:           50,
		MeanHigh:          200,
		JointContrast:     true,
		SizeBonusWidth:    600,
		SizeBonusHeight:   400,
		SizeScore:         1,
		PassScore:         8,
	}
}

// Verdict is the score breakdown of a single classification.
type Verdict struct {
	Accept bool
	Score  int

	EdgeDensity    float64
	RectCount      int
	LargeRectCount int
	HLineDensity   float64
	VLineDensity   float64
	PaletteSize    int
	Mean           float64
	StdDev         float64
}

// Classifier decides whether a raster image looks like a technical
// diagram. It is a pure function over its input pixels: stateless,
// deterministic and safe for concurrent use.
type Classifier struct {
	Thresholds Thresholds
	Log        logrus.FieldLogger
}

// NewClassifier returns a classifier with the given thresholds.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{Thresholds: t, Log: logrus.StandardLogger()}
}

// Classify scores a grayscale raster, optionally paired with the color
// raster it was decoded from. The color image only feeds the palette
// signal; passing nil skips it.
func (c *Classifier) Classify(gray *image.Gray, col image.Image) (Verdict, error) {
	var v Verdict
	if gray == nil {
		return v, fmt.Errorf("%w: nil grayscale input", ErrUnclassifiable)
	}

	t := c.Thresholds
	width := gray.Bounds().Dx()
	height := gray.Bounds().Dy()
	if width <= 0 || height <= 0 {
		return v, fmt.Errorf("%w: zero-area image", ErrUnclassifiable)
	}

	// The size gate is absolute and checked before any pixel work.
	if width < t.MinWidth || height < t.MinHeight {
		return v, nil
	}
	if (t.MaxWidth > 0 && width > t.MaxWidth) || (t.MaxHeight > 0 && height > t.MaxHeight) {
		return v, nil
	}

	edges := cannyEdges(gray, t.CannyLow, t.CannyHigh)
	v.EdgeDensity = edgeDensity(edges)
	if v.EdgeDensity > t.EdgeDensityLow && v.EdgeDensity < t.EdgeDensityHigh {
		v.Score += t.EdgeScore
	}

	if t.RectScore > 0 || t.LargeRectScore > 0 {
		v.RectCount, v.LargeRectCount = c.countRectangles(edges)
		if v.RectCount > t.RectCountMin {
			v.Score += t.RectScore
		}
		if t.LargeRectScore > 0 && v.LargeRectCount > t.LargeRectCountMin {
			v.Score += t.LargeRectScore
		}
	}

	if t.LineKernelLen > 0 {
		v.HLineDensity = lineDensity(edges, t.LineKernelLen, true)
		v.VLineDensity = lineDensity(edges, t.LineKernelLen, false)
		if v.HLineDensity > t.LineDensityMin || v.VLineDensity > t.LineDensityMin {
			v.Score += t.LineScore
		}
	}

	if t.PaletteMax > 0 && col != nil {
		v.PaletteSize = paletteSize(col, t.PaletteMax)
		if v.PaletteSize < t.PaletteMax {
			v.Score += t.PaletteScore
		}
	}

	v.Mean, v.StdDev = intensityStats(gray)
	if t.JointContrast {
		if v.StdDev > t.StdDevMin && v.Mean > t.MeanLow && v.Mean < t.MeanHigh {
			v.Score += t.StdDevScore
		}
	} else {
		if v.StdDev > t.StdDevMin {
			v.Score += t.StdDevScore
		}
		if v.Mean > t.MeanLow && v.Mean < t.MeanHigh {
			v.Score += t.MeanScore
		}
	}

	if t.AspectMin > 0 {
		aspect := float64(width) / float64(height)
		if aspect > t.AspectMin && aspect < t.AspectMax {
			v.Score += t.AspectScore
		}
	}

	if t.SizeBonusWidth > 0 && width > t.SizeBonusWidth && height > t.SizeBonusHeight {
		v.Score += t.SizeScore
	}

	v.Accept = v.Score >= t.PassScore
	return v, nil
}

// countRectangles extracts external contours from the edge map and
// counts the rectangular ones, plus those large enough to look like
// major components. The map is dilated first: non-maximum suppression
// leaves small gaps at outline corners that would otherwise break every
// box into per-side strips.
func (c *Classifier) countRectangles(edges *image.Gray) (rects, largeRects int) {
	t := c.Thresholds
	for _, contour := range findContours(dilate(edges, 2)) {
		area := contour.Area()
		if area <= t.ContourAreaMin {
			continue
		}
		if contour.Vertices() < 4 {
			continue
		}
		if t.RectAspectMin > 0 {
			aspect := contour.AspectRatio()
			if aspect <= t.RectAspectMin || aspect >= t.RectAspectMax {
				continue
			}
			if area <= t.RectAreaMin {
				continue
			}
		}
		rects++
		if t.LargeRectArea > 0 && area > t.LargeRectArea {
			largeRects++
		}
	}
	return rects, largeRects
}

// IsDiagram is the fail-closed boundary around Classify: any error or
// panic during scoring is logged and converted into a reject, so a
// malformed candidate can never break a batch run.
func (c *Classifier) IsDiagram(gray *image.Gray, col image.Image) (accept bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger().WithField("panic", r).Warn("classification fault, rejecting image")
			accept = false
		}
	}()

	v, err := c.Classify(gray, col)
	if err != nil {
		c.logger().WithError(err).Warn("unclassifiable image, rejecting")
		return false
	}
	return v.Accept
}

func (c *Classifier) logger() logrus.FieldLogger {
	if c.Log != nil {
		return c.Log
	}
	return logrus.StandardLogger()
}
