package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cephas/figextract/internal/analyzer"
	"github.com/cephas/figextract/internal/naming"
)

// Job describes one extraction batch: which category directories to
// walk, which papers to favor, and optional classifier overrides.
type Job struct {
	Version    string     `yaml:"version"`
	Categories []Category `yaml:"categories"`

	// PriorityPapers are processed first in every category and get the
	// larger per-paper image budget.
	PriorityPapers []string `yaml:"priority_papers"`

	// Per-paper image budgets and the cap on non-priority papers taken
	// from each category.
	PriorityImages int `yaml:"priority_images"`
	ExtraImages    int `yaml:"extra_images"`
	ExtraPapers    int `yaml:"extra_papers"`

	// Classifier variant ("basic", "scored", "strict") and optional
	// full threshold override.
	Variant    string               `yaml:"variant,omitempty"`
	Thresholds *analyzer.Thresholds `yaml:"thresholds,omitempty"`

	// Extra naming rules applied before the built-in ones.
	NamingRules []naming.Rule `yaml:"naming_rules,omitempty"`

	// Links maps paper file names to the DOI/landing URL encoded into
	// the per-paper QR codes.
	Links map[string]string `yaml:"links,omitempty"`
}

// Category pairs a literature-review topic with the directory its
// papers live in.
type Category struct {
	Name string `yaml:"name"`
	Dir  string `yaml:"dir"`
}

// DefaultJob returns the thesis corpus layout the tool was built for.
func DefaultJob() *Job {
	return &Job{
		Version: "1.0",
		Categories: []Category{
			{Name: "CityGML Schema Design", Dir: "citygml_schema_design/pdfs"},
			{Name: "Cesium Rendering", Dir: "cesium_rendering/pdfs"},
			{Name: "RESTful APIs", Dir: "restful_apis/pdfs"},
			{Name: "HoloLens AR", Dir: "hololens_ar/pdfs"},
		},
		PriorityPapers: []string{
			"A Prototype Architecture for Interactive 3D Maps on the Web.pdf",
			"Data structuring & interoperability options for optimising 3D city modelling.pdf",
			"Development of a microservices-based cloud platform for real-time satellite data capture and analysi.pdf",
			"Real-time GIS Programming and Geocomputation.pdf",
			"Geospatial information processing technologies.pdf",
		},
		PriorityImages: 2,
		ExtraImages:    1,
		ExtraPapers:    3,
	}
}

// ReadJob loads a job description from a YAML file.
func ReadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	job := DefaultJob()
	if err := yaml.Unmarshal(data, job); err != nil {
		return nil, fmt.Errorf("parse job file %s: %w", path, err)
	}

	if job.Thresholds != nil {
		// A partial thresholds block overlays the selected variant's
		// preset field by field rather than starting from zeros.
		base, err := analyzer.VariantThresholds(job.Variant)
		if err != nil {
			return nil, fmt.Errorf("parse job file %s: %w", path, err)
		}
		*job.Thresholds = base
		if err := yaml.Unmarshal(data, job); err != nil {
			return nil, fmt.Errorf("parse job file %s: %w", path, err)
		}
	}

	if job.PriorityImages <= 0 {
		job.PriorityImages = 2
	}
	if job.ExtraImages <= 0 {
		job.ExtraImages = 1
	}
	return job, nil
}

// WriteJob saves a job description to a YAML file.
func WriteJob(job *Job, path string) error {
	data, err := yaml.Marshal(job)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
