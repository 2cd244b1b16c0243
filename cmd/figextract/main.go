package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cephas/figextract/internal/analyzer"
	"github.com/cephas/figextract/internal/config"
	"github.com/cephas/figextract/internal/extractor"
	"github.com/cephas/figextract/internal/report"
	"github.com/cephas/figextract/internal/system"
)

var buildVersion = "dev"

func main() {
	system.InitResourceLimits()

	inputPtr := flag.String("input", "input/papers", "Root directory holding the category subdirectories of PDFs")
	outputPtr := flag.String("output", "output/png", "Directory for accepted figure images")
	reportPtr := flag.String("report", "output/literature_review_figures_report.md", "Path of the Markdown report")
	jobPtr := flag.String("job", "", "YAML job file (categories, priority papers, threshold overrides)")
	variantPtr := flag.String("variant", "", "Classifier preset: basic, scored, strict (default: scored or the job file's setting)")
	pageStartPtr := flag.Int("page-start", 1, "First page scanned per paper (1-based)")
	pageEndPtr := flag.Int("page-end", 15, "Last page scanned per paper (0 = all)")
	minWidthPtr := flag.Int("min-width", 200, "Minimum candidate width before classification")
	minHeightPtr := flag.Int("min-height", 150, "Minimum candidate height before classification")
	maxImagesPtr := flag.Int("max-images", 0, "Override the per-paper image budget for all papers (0 = use job budgets)")
	workersPtr := flag.Int("workers", 0, "Concurrent papers (0 = auto from CPU and memory)")
	dpiPtr := flag.Int("dpi", 150, "DPI for rendered-page fallback")
	renderPtr := flag.Bool("render-fallback", true, "Render whole pages when a paper has no embedded images")
	thumbsPtr := flag.Bool("thumbs", false, "Write report thumbnails")
	thumbWidthPtr := flag.Int("thumb-width", 320, "Thumbnail width in pixels")
	qrPtr := flag.Bool("qr", false, "Write QR codes for papers with configured links")
	clearPtr := flag.Bool("clear", false, "Remove stale PNGs from the output directory first")
	verbosePtr := flag.Bool("verbose", false, "Debug logging")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbosePtr {
		log.SetLevel(logrus.DebugLevel)
	}

	job := config.DefaultJob()
	if *jobPtr != "" {
		var err error
		job, err = config.ReadJob(*jobPtr)
		if err != nil {
			log.WithError(err).Fatal("could not read job file")
		}
	}
	if *maxImagesPtr > 0 {
		job.PriorityImages = *maxImagesPtr
		job.ExtraImages = *maxImagesPtr
	}

	variant := *variantPtr
	if variant == "" {
		variant = job.Variant
	}
	cls, err := analyzer.ForVariant(variant)
	if err != nil {
		log.WithError(err).Fatal("bad classifier variant")
	}
	if job.Thresholds != nil {
		cls = analyzer.NewClassifier(*job.Thresholds)
	}

	workers := *workersPtr
	if workers <= 0 {
		workers = system.Workers()
	}

	cfg := &config.Config{
		InputDir:         *inputPtr,
		OutputDir:        *outputPtr,
		ReportPath:       *reportPtr,
		JobPath:          *jobPtr,
		Variant:          variant,
		Workers:          workers,
		DPI:              *dpiPtr,
		PageStart:        *pageStartPtr,
		PageEnd:          *pageEndPtr,
		MinExtractWidth:  *minWidthPtr,
		MinExtractHeight: *minHeightPtr,
		RenderFallback:   *renderPtr,
		Thumbnails:       *thumbsPtr,
		ThumbnailWidth:   *thumbWidthPtr,
		QRCodes:          *qrPtr,
		ClearOutput:      *clearPtr,
		BuildVersion:     buildVersion,
	}

	for _, dir := range []string{cfg.OutputDir, filepath.Dir(cfg.ReportPath)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.WithError(err).WithField("dir", dir).Fatal("could not create directory")
		}
	}
	if cfg.ClearOutput {
		clearOutput(cfg.OutputDir, log)
	}

	log.WithFields(logrus.Fields{
		"input":   cfg.InputDir,
		"variant": variant,
		"workers": workers,
		"build":   buildVersion,
	}).Info("starting figure extraction")

	start := time.Now()
	ext := extractor.New(cfg, job, cls, log)
	figures, err := ext.Run(context.Background())
	if err != nil {
		log.WithError(err).Fatal("extraction failed")
	}

	w := report.NewWriter(filepath.Join(filepath.Dir(cfg.ReportPath), "assets"), log)
	w.Thumbnails = cfg.Thumbnails
	w.ThumbnailWidth = cfg.ThumbnailWidth
	w.QRCodes = cfg.QRCodes
	w.Links = paperLinks(job.Links)
	if err := w.Write(figures, cfg.ReportPath); err != nil {
		log.WithError(err).Fatal("report generation failed")
	}

	log.WithFields(logrus.Fields{
		"figures": len(figures),
		"report":  cfg.ReportPath,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("extraction complete")

	for _, fig := range figures {
		fmt.Printf("  %s - %s (page %d)\n", fig.Filename, fig.SourcePaper, fig.Page)
	}
}

// clearOutput removes leftover PNGs from a previous run so stale
// figures never leak into the new report.
func clearOutput(dir string, log *logrus.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".png") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			log.WithError(err).Warn("could not remove stale figure")
		}
	}
}

// paperLinks re-keys the job's link map by paper stem, matching the
// SourcePaper field of extracted figures.
func paperLinks(links map[string]string) map[string]string {
	out := make(map[string]string, len(links))
	for name, url := range links {
		out[strings.TrimSuffix(name, ".pdf")] = url
	}
	return out
}
