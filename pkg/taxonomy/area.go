package taxonomy

import (
	"fmt"
	"slices"

	"github.com/ontoview/ontoview/pkg/hierarchy"
)

// Area groups all regions that share an identical signature, regardless of
// where they sit in the concept hierarchy. Areas partition the concept set:
// every concept belongs to exactly one region and therefore exactly one area.
type Area struct {
	regions  []*Region
	sig      Signature
	concepts []int64 // sorted union of the member regions' concepts
}

// Regions returns the member regions. The slice is a read-only view.
func (a *Area) Regions() []*Region { return a.regions }

// Signature returns the signature shared by every member region.
// It may be empty ("no shared relationships").
func (a *Area) Signature() Signature { return a.sig }

// Concepts returns the union of the member regions' concept IDs in ascending
// order. The slice is a read-only view.
func (a *Area) Concepts() []int64 { return a.concepts }

// Size returns the number of concepts in the area.
func (a *Area) Size() int { return len(a.concepts) }

// Name renders the area's signature for display, "∅" when empty.
func (a *Area) Name() string { return a.sig.String() }

// AreaTaxonomy is the coarsest abstraction structure: the set of areas, the
// designated root area, and a concept→area index. It is immutable after
// construction.
type AreaTaxonomy struct {
	areas         []*Area
	rootArea      *Area
	areaByConcept map[int64]*Area
}

// BuildAreaTaxonomy partitions h into regions, groups them into areas, and
// designates the area containing h's root. fn supplies each concept's
// relationship signature and is evaluated exactly once per concept.
//
// The hierarchy must be single-rooted ([hierarchy.ErrAmbiguousRoot]
// otherwise) and acyclic ([hierarchy.ErrCycleDetected] otherwise).
func BuildAreaTaxonomy(h *hierarchy.Hierarchy, fn SignatureFunc) (*AreaTaxonomy, error) {
	return BuildAreaTaxonomyWithIndex(h, BuildSignatureIndex(h, fn))
}

// BuildAreaTaxonomyWithIndex is BuildAreaTaxonomy with a prebuilt signature
// index, for callers that already hold one (e.g. to share it across several
// taxonomy builds). Every node of h must have an entry;
// ErrMissingSignature otherwise.
func BuildAreaTaxonomyWithIndex(h *hierarchy.Hierarchy, sigs map[int64]Signature) (*AreaTaxonomy, error) {
	regions, err := buildRegions(h, sigs)
	if err != nil {
		return nil, err
	}
	return buildAreaTaxonomy(h, regions)
}

func buildAreaTaxonomy(h *hierarchy.Hierarchy, regions []*Region) (*AreaTaxonomy, error) {
	root, err := h.Root()
	if err != nil {
		return nil, err
	}

	// Group regions by signature, preserving first-seen order so the area
	// list is deterministic (regions arrive in topological root order).
	byKey := make(map[string]*Area)
	var areas []*Area
	for _, region := range regions {
		key := region.Signature().Key()
		area, ok := byKey[key]
		if !ok {
			area = &Area{sig: region.Signature()}
			byKey[key] = area
			areas = append(areas, area)
		}
		area.regions = append(area.regions, region)
		area.concepts = append(area.concepts, region.Concepts()...)
	}
	for _, area := range areas {
		slices.Sort(area.concepts) // regions are disjoint, no duplicates
	}

	index := make(map[int64]*Area, h.Size())
	for _, area := range areas {
		for _, id := range area.concepts {
			index[id] = area
		}
	}

	rootArea, ok := index[root]
	if !ok {
		return nil, fmt.Errorf("%w: no area contains root concept %d", ErrInvariantViolation, root)
	}

	return &AreaTaxonomy{
		areas:         areas,
		rootArea:      rootArea,
		areaByConcept: index,
	}, nil
}

// Areas returns all areas. The first area is always the root area.
func (t *AreaTaxonomy) Areas() []*Area { return t.areas }

// RootArea returns the area whose concept set contains the hierarchy's root.
func (t *AreaTaxonomy) RootArea() *Area { return t.rootArea }

// AreaFor returns the area owning the concept, or ErrNotFound when the
// concept is not part of this taxonomy.
func (t *AreaTaxonomy) AreaFor(conceptID int64) (*Area, error) {
	area, ok := t.areaByConcept[conceptID]
	if !ok {
		return nil, fmt.Errorf("%w: concept %d", ErrNotFound, conceptID)
	}
	return area, nil
}

// ConceptCount returns the total number of concepts across all areas.
func (t *AreaTaxonomy) ConceptCount() int { return len(t.areaByConcept) }

// RelationshipTypes returns the union of all area signatures in sorted order:
// every relationship label that distinguishes at least one area.
func (t *AreaTaxonomy) RelationshipTypes() []string {
	seen := make(map[string]struct{})
	for _, area := range t.areas {
		for _, label := range area.sig.labels {
			seen[label] = struct{}{}
		}
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	return labels
}
