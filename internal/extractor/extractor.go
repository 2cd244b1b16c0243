// Package extractor walks the configured paper corpus, pulls candidate
// figure images out of each PDF and keeps the ones the classifier
// accepts under a descriptive name.
package extractor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cephas/figextract/internal/analyzer"
	"github.com/cephas/figextract/internal/config"
	"github.com/cephas/figextract/internal/naming"
	"github.com/cephas/figextract/internal/source"
	"github.com/cephas/figextract/internal/system"
)

// Figure is one accepted figure image: a flat record consumed by the
// report writer.
type Figure struct {
	Filename    string
	SourcePaper string // paper file name without the .pdf extension
	Page        int
	Category    string
	Width       int
	Height      int
	Path        string
}

// Extractor runs one extraction batch.
type Extractor struct {
	Config     *config.Config
	Job        *config.Job
	Classifier *analyzer.Classifier
	Namer      *naming.Namer
	Log        *logrus.Logger

	// Guards name resolution and the move into the output directory,
	// which must be atomic across concurrent papers.
	nameMu sync.Mutex
}

// New wires an extractor from its collaborators.
func New(cfg *config.Config, job *config.Job, cls *analyzer.Classifier, log *logrus.Logger) *Extractor {
	namer := naming.New()
	if len(job.NamingRules) > 0 {
		namer.TitleRules = append(append([]naming.Rule{}, job.NamingRules...), namer.TitleRules...)
	}
	cls.Log = log
	return &Extractor{
		Config:     cfg,
		Job:        job,
		Classifier: cls,
		Namer:      namer,
		Log:        log,
	}
}

// paperTask is one PDF to process with its per-paper image budget.
type paperTask struct {
	path      string
	category  string
	maxImages int
}

// Run processes every category of the job and returns the accepted
// figures in a stable category/paper/page order. A failing paper is
// logged and skipped; only context cancellation aborts the batch.
func (e *Extractor) Run(ctx context.Context) ([]Figure, error) {
	tasks := e.collectTasks()
	if len(tasks) == 0 {
		e.Log.Warn("no papers found in any category directory")
		return nil, nil
	}

	workers := e.Config.Workers
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	var figures []Figure

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, task := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			figs, err := e.processPaper(ctx, task)
			if err != nil {
				// Malformed papers abort the current document only.
				e.Log.WithError(err).WithField("paper", filepath.Base(task.path)).
					Warn("skipping paper")
				return nil
			}
			mu.Lock()
			figures = append(figures, figs...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortFigures(figures)
	return figures, nil
}

// collectTasks lists the papers per category: priority papers first
// with the larger budget, then up to ExtraPapers others.
func (e *Extractor) collectTasks() []paperTask {
	priority := make(map[string]bool, len(e.Job.PriorityPapers))
	for _, name := range e.Job.PriorityPapers {
		priority[name] = true
	}

	var tasks []paperTask
	for _, cat := range e.Job.Categories {
		dir := filepath.Join(e.Config.InputDir, cat.Dir)
		paths, err := system.FindPDFs(dir)
		if err != nil {
			e.Log.WithError(err).WithField("category", cat.Name).Warn("no papers for category")
			continue
		}

		var others []string
		for _, path := range paths {
			if priority[filepath.Base(path)] {
				tasks = append(tasks, paperTask{
					path:      path,
					category:  cat.Name,
					maxImages: e.Job.PriorityImages,
				})
			} else {
				others = append(others, path)
			}
		}

		if e.Job.ExtraPapers > 0 && len(others) > e.Job.ExtraPapers {
			others = others[:e.Job.ExtraPapers]
		}
		for _, path := range others {
			tasks = append(tasks, paperTask{
				path:      path,
				category:  cat.Name,
				maxImages: e.Job.ExtraImages,
			})
		}
	}
	return tasks
}

// processPaper extracts candidates from one PDF and classifies them
// until the paper's image budget is spent.
func (e *Extractor) processPaper(ctx context.Context, task paperTask) ([]Figure, error) {
	log := e.Log.WithField("paper", filepath.Base(task.path))

	tmpDir, err := os.MkdirTemp("", "figextract_")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	src, err := source.NewEmbeddedSource(task.path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	candidates, err := e.candidatesFrom(src, tmpDir)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 && e.Config.RenderFallback {
		log.Debug("no embedded images, rendering pages instead")
		rsrc, err := source.NewRenderSource(task.path, e.Config.DPI)
		if err != nil {
			return nil, err
		}
		defer rsrc.Close()
		candidates, err = e.candidatesFrom(rsrc, tmpDir)
		if err != nil {
			return nil, err
		}
	}

	stem := strings.TrimSuffix(filepath.Base(task.path), filepath.Ext(task.path))

	var figures []Figure
	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return figures, err
		}
		if len(figures) >= task.maxImages {
			break
		}

		width, height, err := cand.Dimensions()
		if err != nil {
			log.WithError(err).Debug("unreadable candidate, discarding")
			continue
		}
		if width < e.Config.MinExtractWidth || height < e.Config.MinExtractHeight {
			continue
		}

		img, err := cand.Decode()
		if err != nil {
			log.WithError(err).Debug("undecodable candidate, discarding")
			continue
		}

		if !e.Classifier.IsDiagram(analyzer.ToGrayscale(img), img) {
			continue
		}

		name, dest, err := e.placeFigure(cand, stem, task.category, len(figures))
		if err != nil {
			return figures, err
		}

		figures = append(figures, Figure{
			Filename:    name,
			SourcePaper: stem,
			Page:        cand.Page,
			Category:    task.category,
			Width:       width,
			Height:      height,
			Path:        dest,
		})
		log.WithFields(logrus.Fields{
			"figure": name,
			"page":   cand.Page,
			"size":   fmt.Sprintf("%dx%d", width, height),
		}).Info("figure accepted")
	}

	return figures, nil
}

// placeFigure names an accepted candidate and moves it into the output
// directory. Both steps happen under one lock, so two papers resolving
// the same base name cannot both claim it before either file lands.
func (e *Extractor) placeFigure(cand source.Candidate, stem, category string, index int) (name, dest string, err error) {
	e.nameMu.Lock()
	defer e.nameMu.Unlock()

	name = e.Namer.Descriptive(stem, category, cand.Page, index)
	name = e.Namer.Unique(e.Config.OutputDir, name)
	dest = filepath.Join(e.Config.OutputDir, name)
	if err := moveFile(cand.Path, dest); err != nil {
		return "", "", err
	}
	return name, dest, nil
}

// candidatesFrom pulls the candidates of the configured page window out
// of any source.
func (e *Extractor) candidatesFrom(src source.Source, tmpDir string) ([]source.Candidate, error) {
	return src.Extract(e.pageWindow(src.PageCount()), tmpDir)
}

// pageWindow clips the configured page range to the paper's length.
func (e *Extractor) pageWindow(pageCount int) []int {
	start := e.Config.PageStart
	if start < 1 {
		start = 1
	}
	end := e.Config.PageEnd
	if end <= 0 || end > pageCount {
		end = pageCount
	}

	var pages []int
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

func sortFigures(figures []Figure) {
	sort.Slice(figures, func(i, j int) bool {
		a, b := figures[i], figures[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.SourcePaper != b.SourcePaper {
			return a.SourcePaper < b.SourcePaper
		}
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		return a.Filename < b.Filename
	})
}

// moveFile renames src to dest, falling back to copy+remove when the
// temp dir lives on another filesystem.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
