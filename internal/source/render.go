package source

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
)

// RenderSource rasterizes whole PDF pages at a fixed DPI. It is the
// fallback for scanned or vector-only papers whose figures are not
// stored as embedded images.
type RenderSource struct {
	doc  *fitz.Document
	path string
	dpi  int
}

// NewRenderSource opens a PDF for page rendering.
func NewRenderSource(path string, dpi int) (*RenderSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &RenderSource{doc: doc, path: path, dpi: dpi}, nil
}

func (s *RenderSource) PageCount() int {
	return s.doc.NumPage()
}

// Extract renders each selected page to a PNG in tmpDir. Pages that
// fail to render are skipped; a page is never fatal for the paper.
func (s *RenderSource) Extract(pages []int, tmpDir string) ([]Candidate, error) {
	var candidates []Candidate
	for _, page := range pages {
		if page < 1 || page > s.doc.NumPage() {
			continue
		}

		// MuPDF handles are not safe to share, open a fresh one per page.
		workerDoc, err := fitz.New(s.path)
		if err != nil {
			return candidates, err
		}
		img, err := workerDoc.ImageDPI(page-1, float64(s.dpi))
		workerDoc.Close()
		if err != nil {
			continue
		}

		path := filepath.Join(tmpDir, fmt.Sprintf("page_%03d.png", page))
		f, err := os.Create(path)
		if err != nil {
			return candidates, err
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			os.Remove(path)
			continue
		}
		if err := f.Close(); err != nil {
			return candidates, err
		}

		candidates = append(candidates, Candidate{Path: path, Page: page})
	}
	return candidates, nil
}

func (s *RenderSource) Close() error {
	return s.doc.Close()
}
