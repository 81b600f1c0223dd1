package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ontoview/ontoview/pkg/cache"
	"github.com/ontoview/ontoview/pkg/export"
	"github.com/ontoview/ontoview/pkg/hierarchy"
	"github.com/ontoview/ontoview/pkg/observability"
	"github.com/ontoview/ontoview/pkg/rf2"
	"github.com/ontoview/ontoview/pkg/taxonomy"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stages 1+2: load and build. A build cache hit skips the release load
	// entirely, so both stages hide behind one call.
	buildStart := time.Now()
	doc, tax, release, buildHit, err := r.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Document = doc
	result.Taxonomy = tax
	result.Release = release
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.ConceptCount = doc.ConceptCount
	result.Stats.AreaCount = len(doc.Areas)
	result.Stats.RegionCount = len(doc.Regions)
	result.CacheInfo.BuildHit = buildHit

	r.Logger.Info("built taxonomy",
		"concepts", doc.ConceptCount,
		"areas", len(doc.Areas),
		"regions", len(doc.Regions),
		"cached", buildHit,
		"duration", result.Stats.BuildTime)

	// Stage 3: render.
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the release without building anything. Used by commands that
// only inspect the release.
func (r *Runner) Load(ctx context.Context, opts Options) (*rf2.Release, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	return rf2.NewLoader(opts.Logger).Load(opts.ReleaseDir)
}

// BuildWithCacheInfo derives the taxonomy document with caching. On a cache
// hit the release is never loaded and the returned release and taxonomy are
// nil; on a miss all three are populated.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, opts Options) (export.Document, *taxonomy.RegionTaxonomy, *rf2.Release, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return export.Document{}, nil, nil, false, err
	}
	r.applyLogger(&opts)

	start := time.Now()
	observability.Pipeline().OnBuildStart(ctx, opts.ReleaseDir, opts.SubrootID)
	doc, tax, release, hit, err := r.build(ctx, opts)
	observability.Pipeline().OnBuildComplete(ctx, opts.ReleaseDir, len(doc.Regions), time.Since(start), err)
	return doc, tax, release, hit, err
}

func (r *Runner) build(ctx context.Context, opts Options) (export.Document, *taxonomy.RegionTaxonomy, *rf2.Release, bool, error) {
	paths, err := rf2.SnapshotFiles(opts.ReleaseDir)
	if err != nil {
		return export.Document{}, nil, nil, false, err
	}
	releaseHash, err := cache.HashFiles(paths...)
	if err != nil {
		return export.Document{}, nil, nil, false, err
	}
	cacheKey := r.Keyer.TaxonomyKey(releaseHash, opts.TaxonomyKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			doc, err := export.Read(bytes.NewReader(data))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "taxonomy")
				return doc, nil, nil, true, nil
			}
			// Undecodable entry falls through to a rebuild.
		}
	}
	observability.Cache().OnCacheMiss(ctx, "taxonomy")

	release, err := rf2.NewLoader(opts.Logger).Load(opts.ReleaseDir)
	if err != nil {
		return export.Document{}, nil, nil, false, err
	}

	tax, err := r.buildTaxonomy(release, opts)
	if err != nil {
		return export.Document{}, nil, nil, false, err
	}

	doc, err := export.FromTaxonomy(tax, release.ConceptName)
	if err != nil {
		return export.Document{}, nil, nil, false, err
	}
	doc.BuildID = uuid.NewString()
	doc.Release = release.Info().Name
	doc.SubrootID = opts.SubrootID
	doc.BuiltAt = time.Now().UTC()

	if data, err := export.Marshal(doc); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLTaxonomy)
		observability.Cache().OnCacheSet(ctx, "taxonomy", len(data))
	}

	return doc, tax, release, false, nil
}

// Build is a convenience wrapper that discards the cache hit info.
func (r *Runner) Build(ctx context.Context, opts Options) (export.Document, error) {
	doc, _, _, _, err := r.BuildWithCacheInfo(ctx, opts)
	return doc, err
}

func (r *Runner) buildTaxonomy(release *rf2.Release, opts Options) (*taxonomy.RegionTaxonomy, error) {
	var (
		sub *hierarchy.Hierarchy
		sig taxonomy.SignatureFunc
		err error
	)
	if opts.Inferred {
		sub, err = release.Subhierarchy(opts.SubrootID)
		sig = release.InferredSignature
	} else {
		sub, err = release.StatedSubhierarchy(opts.SubrootID)
		sig = release.DefiningSignature
	}
	if err != nil {
		return nil, err
	}
	return taxonomy.BuildRegionTaxonomy(sub, sig)
}

// RenderWithCacheInfo renders the requested formats with per-format caching
// and reports whether every artifact came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc export.Document, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, allCached, err := r.render(ctx, doc, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, allCached, err
}

func (r *Runner) render(ctx context.Context, doc export.Document, opts Options) (map[string][]byte, bool, error) {
	docData, err := export.Marshal(doc)
	if err != nil {
		return nil, false, fmt.Errorf("serialize taxonomy for cache key: %w", err)
	}
	docHash := cache.Hash(docData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	var dot string

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.RenderKey(docHash, opts.RenderKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "render")
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "render")
		allCached = false

		if dot == "" && format != FormatJSON {
			dot = export.ToDOT(doc, export.DotOptions{ByArea: opts.ByArea, MaxLabelLength: opts.MaxLabelLength})
		}

		var data []byte
		switch format {
		case FormatJSON:
			data = docData
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = export.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = export.RenderPNG(ctx, dot)
		}
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}

	return artifacts, allCached, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, doc export.Document, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, doc, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
