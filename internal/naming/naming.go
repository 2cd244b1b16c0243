// Package naming turns paper titles and categories into descriptive
// figure file names, so a thesis author can tell at a glance what each
// extracted image shows.
package naming

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Rule maps title keywords to a descriptive base name. Every keyword
// must appear in the lowercased paper title for the rule to fire.
type Rule struct {
	Keywords []string `yaml:"keywords"`
	Base     string   `yaml:"base"`
}

// Namer generates figure file names from paper metadata. The zero
// value is unusable; construct with New.
type Namer struct {
	TitleRules []Rule
	// CategoryBases supplies a per-category fallback base when no
	// title rule matches; the figure index is appended.
	CategoryBases map[string]string
}

// New returns a namer with the default rule set for the thesis corpus.
func New() *Namer {
	return &Namer{
		TitleRules: []Rule{
			{Keywords: []string{"prototype", "3d maps"}, Base: "3d_web_maps_architecture"},
			{Keywords: []string{"data structuring", "3d city"}, Base: "cityxml_data_structuring_schema"},
			{Keywords: []string{"microservices", "satellite"}, Base: "microservices_satellite_api_architecture"},
			{Keywords: []string{"real-time gis"}, Base: "realtime_gis_processing_workflow"},
			{Keywords: []string{"geospatial", "processing"}, Base: "geospatial_processing_framework"},
		},
		CategoryBases: map[string]string{
			"CityGML Schema Design": "citygml_schema_model",
			"Cesium Rendering":      "cesium_3dtiles_pipeline",
			"RESTful APIs":          "restful_api_architecture",
			"HoloLens AR":           "hololens_ar_framework",
		},
	}
}

// Descriptive builds a PNG file name for the index-th accepted figure
// (0-based) of a paper. Title rules win over category bases; when
// neither matches, a short content hash keeps the name unique.
func (n *Namer) Descriptive(paperTitle, category string, page, index int) string {
	title := strings.ToLower(paperTitle)

	for _, rule := range n.TitleRules {
		if matchesAll(title, rule.Keywords) {
			return rule.Base + ".png"
		}
	}

	if base, ok := n.CategoryBases[category]; ok {
		return fmt.Sprintf("%s_%d.png", base, index+1)
	}

	sum := md5.Sum([]byte(fmt.Sprintf("%s_%d_%d", paperTitle, page, index)))
	return fmt.Sprintf("technical_diagram_%x.png", sum[:4])
}

// Unique resolves collisions against files already present in dir by
// appending a numeric suffix before the extension.
func (n *Namer) Unique(dir, name string) string {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, counter, ext)
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
	}
}

// CiteKey derives a LaTeX citation key from a paper title the way the
// report references sources.
func CiteKey(paperTitle string) string {
	key := strings.TrimSuffix(paperTitle, ".pdf")
	key = strings.ReplaceAll(key, " ", "_")
	return strings.ToLower(key)
}

func matchesAll(s string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(s, kw) {
			return false
		}
	}
	return true
}
