package taxonomy

import (
	"fmt"

	"github.com/ontoview/ontoview/pkg/hierarchy"
)

// RegionTaxonomy (partial-area taxonomy) is the finer abstraction structure:
// an AreaTaxonomy plus a hierarchy over the regions themselves. The region
// hierarchy is the Hasse diagram of the strict signature-subset order
// restricted to the signatures actually realized by some region, so:
//
//   - every region except the root has at least one parent (unless its
//     signature is a minimal element shared with no subset),
//   - a child's signature is a strict superset of each parent's signature,
//   - no edge is transitively implied by another path.
type RegionTaxonomy struct {
	areaTax         *AreaTaxonomy
	regions         []*Region
	regionHier      *hierarchy.Hierarchy // nodes are indices into regions
	indexOf         map[*Region]int64
	rootRegion      *Region
	regionByConcept map[int64]*Region
	areaOf          map[*Region]*Area
}

// BuildRegionTaxonomy builds the full abstraction network for h: the area
// taxonomy plus the region hierarchy. fn supplies each concept's relationship
// signature and is evaluated exactly once per concept.
func BuildRegionTaxonomy(h *hierarchy.Hierarchy, fn SignatureFunc) (*RegionTaxonomy, error) {
	return BuildRegionTaxonomyWithIndex(h, BuildSignatureIndex(h, fn))
}

// BuildRegionTaxonomyWithIndex is BuildRegionTaxonomy with a prebuilt
// signature index. Every node of h must have an entry; ErrMissingSignature
// otherwise.
func BuildRegionTaxonomyWithIndex(h *hierarchy.Hierarchy, sigs map[int64]Signature) (*RegionTaxonomy, error) {
	regions, err := buildRegions(h, sigs)
	if err != nil {
		return nil, err
	}
	areaTax, err := buildAreaTaxonomy(h, regions)
	if err != nil {
		return nil, err
	}

	root, err := h.Root()
	if err != nil {
		return nil, err
	}

	indexOf := make(map[*Region]int64, len(regions))
	regionByConcept := make(map[int64]*Region, h.Size())
	areaOf := make(map[*Region]*Area, len(regions))
	var rootRegion *Region
	for i, region := range regions {
		indexOf[region] = int64(i)
		for _, id := range region.Concepts() {
			regionByConcept[id] = region
		}
		if region.Contains(root) {
			rootRegion = region
		}
	}
	if rootRegion == nil {
		return nil, fmt.Errorf("%w: no region contains root concept %d", ErrInvariantViolation, root)
	}
	for _, area := range areaTax.areas {
		for _, region := range area.regions {
			areaOf[region] = area
		}
	}

	regionHier := buildRegionHierarchy(areaTax.areas, regions, indexOf, rootRegion)

	return &RegionTaxonomy{
		areaTax:         areaTax,
		regions:         regions,
		regionHier:      regionHier,
		indexOf:         indexOf,
		rootRegion:      rootRegion,
		regionByConcept: regionByConcept,
		areaOf:          areaOf,
	}, nil
}

// buildRegionHierarchy derives the Hasse diagram of the signature-subset
// order. All regions in one area share a signature and therefore the same
// candidate parents, so dominance is resolved once per area rather than once
// per region.
func buildRegionHierarchy(areas []*Area, regions []*Region, indexOf map[*Region]int64, rootRegion *Region) *hierarchy.Hierarchy {
	rh := hierarchy.NewWithCapacity(len(regions))
	for _, region := range regions {
		rh.AddNode(indexOf[region])
	}

	// Candidate parents of an area: every other area with a strictly smaller
	// signature. Immediate parents: candidates not dominated by a more
	// specific candidate.
	immediates := make(map[*Area][]*Area, len(areas))
	for _, area := range areas {
		var candidates []*Area
		for _, other := range areas {
			if other != area && other.sig.StrictSubset(area.sig) {
				candidates = append(candidates, other)
			}
		}
		for _, cand := range candidates {
			dominated := false
			for _, other := range candidates {
				if other != cand && cand.sig.StrictSubset(other.sig) {
					dominated = true
					break
				}
			}
			if !dominated {
				immediates[area] = append(immediates[area], cand)
			}
		}
	}

	for _, area := range areas {
		for _, region := range area.regions {
			if region == rootRegion {
				continue
			}
			for _, parentArea := range immediates[area] {
				for _, parent := range parentArea.regions {
					_ = rh.AddEdge(indexOf[region], indexOf[parent]) // nodes added above
				}
			}
		}
	}
	return rh
}

// AreaTaxonomy returns the embedded area taxonomy.
func (t *RegionTaxonomy) AreaTaxonomy() *AreaTaxonomy { return t.areaTax }

// Regions returns all regions. The first region is always the root region.
func (t *RegionTaxonomy) Regions() []*Region { return t.regions }

// RootRegion returns the region whose concept set contains the hierarchy's
// root.
func (t *RegionTaxonomy) RootRegion() *Region { return t.rootRegion }

// RegionFor returns the region owning the concept, or ErrNotFound when the
// concept is not part of this taxonomy.
func (t *RegionTaxonomy) RegionFor(conceptID int64) (*Region, error) {
	region, ok := t.regionByConcept[conceptID]
	if !ok {
		return nil, fmt.Errorf("%w: concept %d", ErrNotFound, conceptID)
	}
	return region, nil
}

// AreaForRegion returns the area the region belongs to, or ErrNotFound when
// the region is not part of this taxonomy.
func (t *RegionTaxonomy) AreaForRegion(region *Region) (*Area, error) {
	area, ok := t.areaOf[region]
	if !ok {
		return nil, fmt.Errorf("%w: region rooted at %d", ErrNotFound, region.Root())
	}
	return area, nil
}

// ParentRegions returns the region's immediate parents in the region
// hierarchy: the regions whose signatures are the maximal strict subsets of
// the region's own signature. Returns ErrNotFound for a region that is not
// part of this taxonomy.
func (t *RegionTaxonomy) ParentRegions(region *Region) ([]*Region, error) {
	idx, ok := t.indexOf[region]
	if !ok {
		return nil, fmt.Errorf("%w: region rooted at %d", ErrNotFound, region.Root())
	}
	return t.resolve(t.regionHier.Parents(idx)), nil
}

// ChildRegions returns the regions whose immediate parent set includes this
// region. Returns ErrNotFound for a region that is not part of this taxonomy.
func (t *RegionTaxonomy) ChildRegions(region *Region) ([]*Region, error) {
	idx, ok := t.indexOf[region]
	if !ok {
		return nil, fmt.Errorf("%w: region rooted at %d", ErrNotFound, region.Root())
	}
	return t.resolve(t.regionHier.Children(idx)), nil
}

func (t *RegionTaxonomy) resolve(indices []int64) []*Region {
	out := make([]*Region, len(indices))
	for i, idx := range indices {
		out[i] = t.regions[idx]
	}
	return out
}
