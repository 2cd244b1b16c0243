package source

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// EmbeddedSource extracts the images embedded in a PDF's page resources.
// This is the primary source: research papers carry their figures as
// embedded rasters, so pulling them out preserves the original
// resolution without rasterizing whole pages.
type EmbeddedSource struct {
	path      string
	pageCount int
	conf      *model.Configuration
}

// NewEmbeddedSource opens a PDF for embedded-image extraction.
func NewEmbeddedSource(path string) (*EmbeddedSource, error) {
	count, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("page count of %s: %w", path, err)
	}
	return &EmbeddedSource{
		path:      path,
		pageCount: count,
		conf:      model.NewDefaultConfiguration(),
	}, nil
}

func (s *EmbeddedSource) PageCount() int {
	return s.pageCount
}

// pagePattern matches the page marker pdfcpu puts into extracted image
// file names, e.g. "paper_page_3_Im1.png".
var pagePattern = regexp.MustCompile(`_page_(\d+)_`)

// Extract writes the embedded images of the selected pages into tmpDir
// and returns one candidate per image file, sorted by page.
func (s *EmbeddedSource) Extract(pages []int, tmpDir string) ([]Candidate, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	selection := make([]string, len(pages))
	for i, p := range pages {
		selection[i] = strconv.Itoa(p)
	}

	if err := api.ExtractImagesFile(s.path, tmpDir, selection, s.conf); err != nil {
		return nil, fmt.Errorf("extract images from %s: %w", s.path, err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		page := pageFromName(entry.Name())
		if page == 0 {
			continue
		}
		candidates = append(candidates, Candidate{
			Path: filepath.Join(tmpDir, entry.Name()),
			Page: page,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Page != candidates[j].Page {
			return candidates[i].Page < candidates[j].Page
		}
		return candidates[i].Path < candidates[j].Path
	})
	return candidates, nil
}

func (s *EmbeddedSource) Close() error {
	return nil
}

// pageFromName parses the 1-based page number out of an extracted image
// file name, returning 0 when no marker is present.
func pageFromName(name string) int {
	m := pagePattern.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	page, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return page
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
