package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/cephas/figextract/internal/extractor"
)

// writeThumbnail resizes a figure down to the report thumbnail width,
// preserving aspect ratio, and saves it under the assets directory.
func (w *Writer) writeThumbnail(fig extractor.Figure) (string, error) {
	if err := os.MkdirAll(w.AssetsDir, 0755); err != nil {
		return "", err
	}

	img, err := imaging.Open(fig.Path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", fig.Path, err)
	}

	width := w.ThumbnailWidth
	if width <= 0 || img.Bounds().Dx() <= width {
		width = img.Bounds().Dx()
	}
	thumb := imaging.Resize(img, width, 0, imaging.Lanczos)

	ext := filepath.Ext(fig.Filename)
	name := strings.TrimSuffix(fig.Filename, ext) + "_thumb.png"
	path := filepath.Join(w.AssetsDir, name)
	if err := imaging.Save(thumb, path); err != nil {
		return "", fmt.Errorf("save thumbnail %s: %w", path, err)
	}
	return path, nil
}

// writeQR encodes the paper's DOI/landing URL into a QR code PNG for
// the printed appendix. Papers with no configured link are skipped.
func (w *Writer) writeQR(paper string) (string, error) {
	url, ok := w.Links[paper]
	if !ok || url == "" {
		return "", nil
	}

	if err := os.MkdirAll(w.AssetsDir, 0755); err != nil {
		return "", err
	}

	name := strings.ReplaceAll(strings.ToLower(paper), " ", "_") + "_qr.png"
	path := filepath.Join(w.AssetsDir, name)
	if err := qrcode.WriteFile(url, qrcode.Medium, 256, path); err != nil {
		return "", fmt.Errorf("encode QR for %s: %w", paper, err)
	}
	return path, nil
}
