package source

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"

	_ "golang.org/x/image/bmp"  // pdfcpu emits BMP for some filters
	_ "golang.org/x/image/tiff" // pdfcpu emits TIFF for CMYK images
)

// Candidate is a figure image pulled out of a paper, parked in a
// temporary file until the classifier decides its fate. The caller owns
// the file: accepted candidates get renamed into place, rejected ones
// are deleted.
type Candidate struct {
	Path string
	Page int // 1-based page number within the source paper
}

// Dimensions reads the image header without decoding pixel data.
func (c Candidate) Dimensions() (width, height int, err error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode header of %s: %w", c.Path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Decode reads and decodes the full candidate image.
func (c Candidate) Decode() (image.Image, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.Path, err)
	}
	return img, nil
}

// Discard removes the candidate's backing file.
func (c Candidate) Discard() error {
	return os.Remove(c.Path)
}
