// Package report renders the literature-review figure report: accepted
// figures grouped into thesis sections, with source attribution and
// ready-to-paste LaTeX snippets.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cephas/figextract/internal/extractor"
	"github.com/cephas/figextract/internal/naming"
)

// section routes figures to a literature-review section by file-name
// keywords. Rules are checked in order; the last section is the
// catch-all.
type section struct {
	Title    string
	Keywords []string
}

var sections = []section{
	{"Section 2.1: RESTful APIs and Real-time Communication", []string{"api", "microservices", "restful"}},
	{"Section 2.2: CityGML and 3D Urban Modeling", []string{"citygml", "cityxml", "3d_city"}},
	{"Section 2.3: Cesium and 3D Tiles Ecosystem", []string{"cesium", "3dtiles", "rendering"}},
	{"Section 2.4: WebXR and Augmented Reality Applications", []string{"hololens", "ar", "3d_web_maps"}},
	{"Section 2.5: Unreal Engine and C++/Blueprint Development", []string{"unreal", "ue4", "blueprint"}},
	{"Section 2.6: Integration Challenges and Performance Optimization", nil},
}

// Writer renders the Markdown report and its optional side assets.
type Writer struct {
	Thumbnails     bool
	ThumbnailWidth int
	QRCodes        bool
	// Links maps paper names (without extension) to the DOI/landing
	// URL encoded into QR codes.
	Links map[string]string
	// AssetsDir receives thumbnails and QR codes.
	AssetsDir string
	Log       *logrus.Logger

	now func() time.Time
}

// NewWriter returns a report writer with the given assets directory.
func NewWriter(assetsDir string, log *logrus.Logger) *Writer {
	return &Writer{
		ThumbnailWidth: 320,
		AssetsDir:      assetsDir,
		Log:            log,
		now:            time.Now,
	}
}

// Write renders the report for the accepted figures to path.
func (w *Writer) Write(figures []extractor.Figure, path string) error {
	bySection := make(map[string][]extractor.Figure)
	for _, fig := range figures {
		title := sectionFor(fig.Filename)
		bySection[title] = append(bySection[title], fig)
	}

	reportDir := filepath.Dir(path)

	var b strings.Builder
	b.WriteString("# Literature Review Figure Extraction Report\n\n")
	fmt.Fprintf(&b, "**Date:** %s\n", w.now().Format("2006-01-02"))
	fmt.Fprintf(&b, "**Total Images Extracted:** %d\n\n", len(figures))

	for _, sec := range sections {
		figs := bySection[sec.Title]
		if len(figs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", sec.Title)
		for _, fig := range figs {
			w.writeFigure(&b, fig, reportDir)
		}
	}

	writeUsage(&b)

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

func (w *Writer) writeFigure(b *strings.Builder, fig extractor.Figure, reportDir string) {
	fmt.Fprintf(b, "### %s\n", fig.Filename)
	fmt.Fprintf(b, "- **Source Paper:** %s\n", fig.SourcePaper)
	fmt.Fprintf(b, "- **Page:** %d\n", fig.Page)
	fmt.Fprintf(b, "- **Dimensions:** %dx%d\n", fig.Width, fig.Height)
	fmt.Fprintf(b, "- **File Path:** `%s`\n", fig.Path)
	fmt.Fprintf(b, "- **Description:** %s\n", describe(fig))
	fmt.Fprintf(b, "- **LaTeX Citation:** `\\cite{%s}`\n", naming.CiteKey(fig.SourcePaper))

	if w.Thumbnails {
		if thumb, err := w.writeThumbnail(fig); err != nil {
			w.Log.WithError(err).WithField("figure", fig.Filename).Warn("thumbnail failed")
		} else if rel, err := filepath.Rel(reportDir, thumb); err == nil {
			fmt.Fprintf(b, "\n![%s](%s)\n", fig.Filename, filepath.ToSlash(rel))
		}
	}

	if w.QRCodes {
		if qr, err := w.writeQR(fig.SourcePaper); err != nil {
			w.Log.WithError(err).WithField("paper", fig.SourcePaper).Debug("no QR code")
		} else if qr != "" {
			if rel, err := filepath.Rel(reportDir, qr); err == nil {
				fmt.Fprintf(b, "- **Source QR:** `%s`\n", filepath.ToSlash(rel))
			}
		}
	}

	b.WriteString("\n")
}

// describe infers a caption-ready description from the name pattern.
func describe(fig extractor.Figure) string {
	name := fig.Filename
	switch {
	case strings.Contains(name, "architecture"):
		return "System architecture diagram showing component relationships and data flow"
	case strings.Contains(name, "schema"):
		return "Data schema or UML model showing structural relationships"
	case strings.Contains(name, "pipeline"):
		return "Processing pipeline or workflow diagram"
	case strings.Contains(name, "framework"):
		return "Technical framework or system overview"
	default:
		return fmt.Sprintf("Technical diagram related to %s", fig.Category)
	}
}

func sectionFor(filename string) string {
	name := strings.ToLower(filename)
	for _, sec := range sections {
		if sec.Keywords == nil {
			return sec.Title
		}
		for _, kw := range sec.Keywords {
			if strings.Contains(name, kw) {
				return sec.Title
			}
		}
	}
	return sections[len(sections)-1].Title
}

func writeUsage(b *strings.Builder) {
	b.WriteString("## Usage Instructions\n\n")
	b.WriteString("1. **File Location:** All extracted images are saved next to this report\n")
	b.WriteString("2. **LaTeX Integration:** Use `\\includegraphics{png/filename.png}` in your document\n")
	b.WriteString("3. **Citation:** Remember to cite the source papers using the provided citation keys\n")
	b.WriteString("4. **Figure Captions:** Adapt the descriptions above for your figure captions\n\n")
	b.WriteString("## Example LaTeX Code\n")
	b.WriteString("```latex\n")
	b.WriteString("\\begin{figure}[htbp]\n")
	b.WriteString("    \\centering\n")
	b.WriteString("    \\includegraphics[width=0.8\\textwidth]{png/example_filename.png}\n")
	b.WriteString("    \\caption{Caption text here \\cite{source_paper_key}}\n")
	b.WriteString("    \\label{fig:example_label}\n")
	b.WriteString("\\end{figure}\n")
	b.WriteString("```\n")
}
