package config

type Config struct {
	InputDir   string
	OutputDir  string
	ReportPath string
	JobPath    string
	Variant    string
	Workers    int
	DPI        int

	// Page window scanned per paper (1-based, inclusive). Figures are
	// concentrated in the front matter, so the window defaults small.
	PageStart int
	PageEnd   int

	// Pre-gate applied before classification; anything smaller is an
	// icon or decoration and never reaches the classifier.
	MinExtractWidth  int
	MinExtractHeight int

	// Render whole pages when a paper has no extractable embedded images.
	RenderFallback bool

	// Report extras.
	Thumbnails     bool
	ThumbnailWidth int
	QRCodes        bool

	// Remove stale PNGs from the output directory before a run.
	ClearOutput bool

	BuildVersion string
}
