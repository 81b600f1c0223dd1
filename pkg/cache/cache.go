// Package cache provides byte-level caching for taxonomy builds and rendered
// artifacts.
//
// Building a taxonomy from a full terminology release takes minutes of
// parsing and partitioning; rendering a large region hierarchy through
// Graphviz is not cheap either. Both results are deterministic functions of
// their inputs, so they are cached under content-derived keys:
//
//   - FileCache for CLI usage (entries under the user cache directory)
//   - RedisCache for shared multi-instance deployments
//   - NullCache to disable caching
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry kind. Taxonomy documents are keyed by the
// release content hash and never go stale, so they keep a long TTL; rendered
// artifacts are cheap to redo and expire sooner.
const (
	TTLTaxonomy = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the interface all cache backends implement. Implementations must
// be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TaxonomyKeyOpts captures every input that changes a taxonomy build result.
type TaxonomyKeyOpts struct {
	SubrootID int64 // concept the analyzed subhierarchy is rooted at
	Stated    bool  // stated vs inferred relationship view
}

// RenderKeyOpts captures every input that changes a rendered artifact.
type RenderKeyOpts struct {
	Format         string // "dot", "svg", "png"
	ByArea         bool
	MaxLabelLength int
}

// Keyer derives cache keys. Implementations must produce equal keys exactly
// when the cached computation would produce equal results.
type Keyer interface {
	// TaxonomyKey keys a taxonomy build by the release content hash and the
	// build options.
	TaxonomyKey(releaseHash string, opts TaxonomyKeyOpts) string

	// RenderKey keys a rendered artifact by the document hash and the
	// render options.
	RenderKey(docHash string, opts RenderKeyOpts) string
}

// DefaultKeyer hashes the inputs into namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// TaxonomyKey implements Keyer.
func (k *DefaultKeyer) TaxonomyKey(releaseHash string, opts TaxonomyKeyOpts) string {
	return hashKey("taxonomy", releaseHash, opts.SubrootID, opts.Stated)
}

// RenderKey implements Keyer.
func (k *DefaultKeyer) RenderKey(docHash string, opts RenderKeyOpts) string {
	return hashKey("render", docHash, opts.Format, opts.ByArea, opts.MaxLabelLength)
}

// ScopedKeyer wraps a Keyer with a prefix, isolating cache namespaces when
// several releases or tenants share one backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
// A nil inner keyer falls back to the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// TaxonomyKey implements Keyer.
func (k *ScopedKeyer) TaxonomyKey(releaseHash string, opts TaxonomyKeyOpts) string {
	return k.prefix + k.inner.TaxonomyKey(releaseHash, opts)
}

// RenderKey implements Keyer.
func (k *ScopedKeyer) RenderKey(docHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(docHash, opts)
}
