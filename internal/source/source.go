package source

// Source yields candidate figure images from one paper.
type Source interface {
	PageCount() int
	// Extract pulls candidate images for the given 1-based pages into
	// tmpDir and returns them in page order.
	Extract(pages []int, tmpDir string) ([]Candidate, error)
	Close() error
}
