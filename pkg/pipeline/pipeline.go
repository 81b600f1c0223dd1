// Package pipeline runs the load → build → render pipeline.
//
// This package implements the complete release-to-artifact flow shared by the
// CLI and the HTTP API. Centralizing it keeps caching and option handling
// identical across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read the RF2 snapshot release from disk
//  2. Build: derive the region taxonomy for the selected subhierarchy
//  3. Render: produce output artifacts (JSON document, DOT, SVG, PNG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    ReleaseDir: "/data/SnomedCT_Release",
//	    SubrootID:  rf2.RootConceptID,
//	    Formats:    []string{"json", "svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ontoview/ontoview/pkg/cache"
	"github.com/ontoview/ontoview/pkg/export"
	"github.com/ontoview/ontoview/pkg/rf2"
	"github.com/ontoview/ontoview/pkg/taxonomy"
)

// Format constants for output artifacts.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load and build options
	ReleaseDir string `json:"release_dir"`
	SubrootID  int64  `json:"subroot_id,omitempty"` // defaults to the release root concept
	Inferred   bool   `json:"inferred,omitempty"`   // use the inferred view instead of the stated one
	Refresh    bool   `json:"refresh,omitempty"`    // bypass the build cache

	// Render options
	Formats        []string `json:"formats,omitempty"`
	ByArea         bool     `json:"by_area,omitempty"`
	MaxLabelLength int      `json:"max_label_length,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Release is the loaded RF2 snapshot.
	Release *rf2.Release

	// Taxonomy is the derived region taxonomy. Nil when the build stage was
	// served entirely from cache.
	Taxonomy *taxonomy.RegionTaxonomy

	// Document is the exported taxonomy, including its build ID.
	Document export.Document

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ConceptCount int
	AreaCount    int
	RegionCount  int
	LoadTime     time.Duration
	BuildTime    time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // whether the taxonomy document came from cache
	RenderHit bool // whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults. This
// method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.ReleaseDir == "" {
		return fmt.Errorf("release_dir is required")
	}
	if o.SubrootID == 0 {
		o.SubrootID = rf2.RootConceptID
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ValidateForRender checks and defaults only the fields the render stage
// uses, so a taxonomy document loaded from disk can be rendered without a
// release directory.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// TaxonomyKeyOpts returns cache key options for the build stage.
func (o *Options) TaxonomyKeyOpts() cache.TaxonomyKeyOpts {
	return cache.TaxonomyKeyOpts{
		SubrootID: o.SubrootID,
		Stated:    !o.Inferred,
	}
}

// RenderKeyOpts returns cache key options for one rendered format.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format:         format,
		ByArea:         o.ByArea,
		MaxLabelLength: o.MaxLabelLength,
	}
}
