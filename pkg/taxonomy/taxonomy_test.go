package taxonomy

import (
	"errors"
	"slices"
	"testing"

	"github.com/ontoview/ontoview/pkg/hierarchy"
)

// fixture builds a hierarchy from child→parent edges and a signature function
// from a label map. Nodes absent from the map get an empty signature.
func fixture(t *testing.T, edges [][2]int64, labels map[int64][]string) (*hierarchy.Hierarchy, SignatureFunc) {
	t.Helper()
	h := hierarchy.New()
	for _, e := range edges {
		h.AddNode(e[0])
		h.AddNode(e[1])
	}
	for _, e := range edges {
		if err := h.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%d, %d): %v", e[0], e[1], err)
		}
	}
	return h, func(id int64) []string { return labels[id] }
}

// checkPartition asserts the core invariants of any built taxonomy:
// completeness (every concept in exactly one region and one area), signature
// homogeneity, area purity, and root containment.
func checkPartition(t *testing.T, h *hierarchy.Hierarchy, tax *RegionTaxonomy, fn SignatureFunc) {
	t.Helper()

	seenRegion := make(map[int64]int)
	for _, region := range tax.Regions() {
		for _, id := range region.Concepts() {
			seenRegion[id]++
			if sig := NewSignature(fn(id)...); !sig.Equal(region.Signature()) {
				t.Errorf("concept %d has signature %v, region has %v", id, sig, region.Signature())
			}
		}
	}
	seenArea := make(map[int64]int)
	for _, area := range tax.AreaTaxonomy().Areas() {
		for _, region := range area.Regions() {
			if !region.Signature().Equal(area.Signature()) {
				t.Errorf("region rooted at %d has signature %v in area %v", region.Root(), region.Signature(), area.Signature())
			}
		}
		for _, id := range area.Concepts() {
			seenArea[id]++
		}
	}
	for _, id := range h.Nodes() {
		if seenRegion[id] != 1 {
			t.Errorf("concept %d belongs to %d regions, want exactly 1", id, seenRegion[id])
		}
		if seenArea[id] != 1 {
			t.Errorf("concept %d belongs to %d areas, want exactly 1", id, seenArea[id])
		}
	}

	root, err := h.Root()
	if err != nil {
		t.Fatalf("Root: %v", err)
	}
	if !tax.RootRegion().Contains(root) {
		t.Errorf("root region does not contain hierarchy root %d", root)
	}
	if !slices.Contains(tax.AreaTaxonomy().RootArea().Concepts(), root) {
		t.Errorf("root area does not contain hierarchy root %d", root)
	}

	checkRegionHierarchy(t, tax)
}

// checkRegionHierarchy asserts strict-subset monotonicity of every edge and
// that no direct edge is transitively implied by a two-step path.
func checkRegionHierarchy(t *testing.T, tax *RegionTaxonomy) {
	t.Helper()
	for _, region := range tax.Regions() {
		parents, err := tax.ParentRegions(region)
		if err != nil {
			t.Fatalf("ParentRegions: %v", err)
		}
		for _, parent := range parents {
			if !parent.Signature().StrictSubset(region.Signature()) {
				t.Errorf("edge %v → %v is not strictly monotonic", region.Signature(), parent.Signature())
			}
			grand, err := tax.ParentRegions(parent)
			if err != nil {
				t.Fatalf("ParentRegions: %v", err)
			}
			for _, g := range grand {
				if slices.Contains(parents, g) {
					t.Errorf("redundant edge: %v → %v also reachable via %v", region.Signature(), g.Signature(), parent.Signature())
				}
			}
		}
	}
}

// regionByRoot finds the region rooted at the given concept.
func regionByRoot(t *testing.T, tax *RegionTaxonomy, root int64) *Region {
	t.Helper()
	for _, region := range tax.Regions() {
		if region.Root() == root {
			return region
		}
	}
	t.Fatalf("no region rooted at %d", root)
	return nil
}

// Diamond: root 1 → a 2, b 3 → leaf 4. The leaf's signature extends a's and
// b's, so every node forms its own region and the leaf region has both the
// a-region and the b-region as immediate parents.
func TestScenarioDiamond(t *testing.T) {
	h, fn := fixture(t,
		[][2]int64{{2, 1}, {3, 1}, {4, 2}, {4, 3}},
		map[int64][]string{2: {"X"}, 3: {"X"}, 4: {"X", "Y"}},
	)

	tax, err := BuildRegionTaxonomy(h, fn)
	if err != nil {
		t.Fatalf("BuildRegionTaxonomy: %v", err)
	}
	checkPartition(t, h, tax, fn)

	if got := len(tax.Regions()); got != 4 {
		t.Fatalf("regions = %d, want 4", got)
	}
	for _, region := range tax.Regions() {
		if region.Size() != 1 {
			t.Errorf("region rooted at %d has %d concepts, want 1", region.Root(), region.Size())
		}
	}

	areas := tax.AreaTaxonomy().Areas()
	if got := len(areas); got != 3 {
		t.Fatalf("areas = %d, want 3", got)
	}
	xArea, err := tax.AreaTaxonomy().AreaFor(2)
	if err != nil {
		t.Fatalf("AreaFor(2): %v", err)
	}
	if got := len(xArea.Regions()); got != 2 {
		t.Errorf("{X} area has %d regions, want 2 (a and b)", got)
	}

	leaf := regionByRoot(t, tax, 4)
	parents, err := tax.ParentRegions(leaf)
	if err != nil {
		t.Fatalf("ParentRegions: %v", err)
	}
	roots := make([]int64, len(parents))
	for i, p := range parents {
		roots[i] = p.Root()
	}
	slices.Sort(roots)
	if !slices.Equal(roots, []int64{2, 3}) {
		t.Errorf("leaf region parents rooted at %v, want [2 3]", roots)
	}

	if got := tax.AreaTaxonomy().RelationshipTypes(); !slices.Equal(got, []string{"X", "Y"}) {
		t.Errorf("RelationshipTypes = %v, want [X Y]", got)
	}
}

// A node with two signature-matching parents in distinct regions must be
// claimed by exactly one of them - never duplicated, never orphaned.
func TestScenarioContestedParents(t *testing.T) {
	h, fn := fixture(t,
		[][2]int64{{2, 1}, {3, 1}, {4, 2}, {4, 3}},
		map[int64][]string{2: {"X"}, 3: {"X"}, 4: {"X"}},
	)

	tax, err := BuildRegionTaxonomy(h, fn)
	if err != nil {
		t.Fatalf("BuildRegionTaxonomy: %v", err)
	}
	checkPartition(t, h, tax, fn)

	owner, err := tax.RegionFor(4)
	if err != nil {
		t.Fatalf("RegionFor(4): %v", err)
	}
	if owner.Root() != 2 && owner.Root() != 3 {
		t.Errorf("concept 4 claimed by region rooted at %d, want 2 or 3", owner.Root())
	}
	count := 0
	for _, region := range tax.Regions() {
		if region.Contains(4) {
			count++
		}
	}
	if count != 1 {
		t.Errorf("concept 4 appears in %d regions, want 1", count)
	}
}

// A uniform-signature chain collapses into a single region rooted at the top.
func TestScenarioUniformChain(t *testing.T) {
	h, fn := fixture(t,
		[][2]int64{{2, 1}, {3, 2}},
		map[int64][]string{1: {"X"}, 2: {"X"}, 3: {"X"}},
	)

	tax, err := BuildRegionTaxonomy(h, fn)
	if err != nil {
		t.Fatalf("BuildRegionTaxonomy: %v", err)
	}
	checkPartition(t, h, tax, fn)

	if got := len(tax.Regions()); got != 1 {
		t.Fatalf("regions = %d, want 1", got)
	}
	region := tax.Regions()[0]
	if region.Root() != 1 {
		t.Errorf("region root = %d, want 1", region.Root())
	}
	if got := region.Concepts(); !slices.Equal(got, []int64{1, 2, 3}) {
		t.Errorf("region concepts = %v, want [1 2 3]", got)
	}
}

// Mixed parents: a node with one matching and one non-matching parent is not
// a region root and follows the matching parent's region.
func TestMixedParentsNotARoot(t *testing.T) {
	// 1 → 2 {X}, 1 → 3 {Y}; 4 {X} has parents 2 (matching) and 3 (not).
	h, fn := fixture(t,
		[][2]int64{{2, 1}, {3, 1}, {4, 2}, {4, 3}},
		map[int64][]string{2: {"X"}, 3: {"Y"}, 4: {"X"}},
	)

	tax, err := BuildRegionTaxonomy(h, fn)
	if err != nil {
		t.Fatalf("BuildRegionTaxonomy: %v", err)
	}
	checkPartition(t, h, tax, fn)

	owner, err := tax.RegionFor(4)
	if err != nil {
		t.Fatalf("RegionFor(4): %v", err)
	}
	if owner.Root() != 2 {
		t.Errorf("concept 4 in region rooted at %d, want 2", owner.Root())
	}
	if owner.Size() != 2 {
		t.Errorf("region rooted at 2 has %d concepts, want 2", owner.Size())
	}
}

// A larger fixture exercising multi-parent nodes, an area with several
// regions, and a three-level signature lattice.
func TestLargerTaxonomy(t *testing.T) {
	edges := [][2]int64{
		{10, 1}, {11, 1}, {12, 1},
		{20, 10}, {21, 10}, {22, 11}, {23, 12},
		{30, 20}, {30, 21}, {31, 22}, {32, 23}, {32, 22},
		{40, 30}, {40, 31},
	}
	labels := map[int64][]string{
		10: {"site"}, 11: {"site"}, 12: {"morph"},
		20: {"site"}, 21: {"site"}, 22: {"site", "morph"}, 23: {"morph"},
		30: {"site"}, 31: {"site", "morph"}, 32: {"site", "morph"},
		40: {"site", "morph", "laterality"},
	}
	h, fn := fixture(t, edges, labels)

	tax, err := BuildRegionTaxonomy(h, fn)
	if err != nil {
		t.Fatalf("BuildRegionTaxonomy: %v", err)
	}
	checkPartition(t, h, tax, fn)

	// {site,morph} sits under {site} and {morph}, never directly under ∅.
	deep := regionByRoot(t, tax, 40)
	parents, err := tax.ParentRegions(deep)
	if err != nil {
		t.Fatalf("ParentRegions: %v", err)
	}
	if len(parents) == 0 {
		t.Fatal("deepest region has no parents")
	}
	for _, p := range parents {
		if !p.Signature().Equal(NewSignature("site", "morph")) {
			t.Errorf("deepest region parent signature = %v, want {morph, site}", p.Signature())
		}
	}
}

// Rebuilding from identical input must reproduce the identical partition.
func TestIdempotence(t *testing.T) {
	edges := [][2]int64{
		{10, 1}, {11, 1}, {20, 10}, {20, 11}, {21, 10}, {30, 20}, {30, 21},
	}
	labels := map[int64][]string{
		10: {"a"}, 11: {"a"}, 20: {"a"}, 21: {"a", "b"}, 30: {"a", "b"},
	}
	h, fn := fixture(t, edges, labels)

	first, err := BuildRegionTaxonomy(h, fn)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := BuildRegionTaxonomy(h, fn)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}

	if len(first.Regions()) != len(second.Regions()) {
		t.Fatalf("region counts differ: %d vs %d", len(first.Regions()), len(second.Regions()))
	}
	for i, fr := range first.Regions() {
		sr := second.Regions()[i]
		if fr.Root() != sr.Root() {
			t.Errorf("region %d root: %d vs %d", i, fr.Root(), sr.Root())
		}
		if !fr.Signature().Equal(sr.Signature()) {
			t.Errorf("region %d signature: %v vs %v", i, fr.Signature(), sr.Signature())
		}
		if !slices.Equal(fr.Concepts(), sr.Concepts()) {
			t.Errorf("region %d concepts: %v vs %v", i, fr.Concepts(), sr.Concepts())
		}
	}
}

func TestBuildErrors(t *testing.T) {
	t.Run("MissingSignature", func(t *testing.T) {
		h, _ := fixture(t, [][2]int64{{2, 1}}, nil)
		// Index deliberately misses concept 2.
		sigs := map[int64]Signature{1: NewSignature()}
		if _, err := BuildRegionTaxonomyWithIndex(h, sigs); !errors.Is(err, ErrMissingSignature) {
			t.Errorf("err = %v, want ErrMissingSignature", err)
		}
	})

	t.Run("Cycle", func(t *testing.T) {
		h, fn := fixture(t, [][2]int64{{2, 1}, {1, 2}}, nil)
		if _, err := BuildRegionTaxonomy(h, fn); !errors.Is(err, hierarchy.ErrCycleDetected) {
			t.Errorf("err = %v, want ErrCycleDetected", err)
		}
	})

	t.Run("MultiRooted", func(t *testing.T) {
		h, fn := fixture(t, [][2]int64{{3, 1}, {3, 2}}, nil)
		if _, err := BuildRegionTaxonomy(h, fn); !errors.Is(err, hierarchy.ErrAmbiguousRoot) {
			t.Errorf("err = %v, want ErrAmbiguousRoot", err)
		}
	})
}

func TestFacadeLookups(t *testing.T) {
	h, fn := fixture(t,
		[][2]int64{{2, 1}, {3, 2}},
		map[int64][]string{2: {"X"}, 3: {"X"}},
	)
	tax, err := BuildRegionTaxonomy(h, fn)
	if err != nil {
		t.Fatalf("BuildRegionTaxonomy: %v", err)
	}

	if _, err := tax.RegionFor(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("RegionFor(99) = %v, want ErrNotFound", err)
	}
	if _, err := tax.AreaTaxonomy().AreaFor(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("AreaFor(99) = %v, want ErrNotFound", err)
	}

	foreign := &Region{hier: hierarchy.New(), sig: NewSignature("Z")}
	if _, err := tax.AreaForRegion(foreign); !errors.Is(err, ErrNotFound) {
		t.Errorf("AreaForRegion(foreign) = %v, want ErrNotFound", err)
	}
	if _, err := tax.ParentRegions(foreign); !errors.Is(err, ErrNotFound) {
		t.Errorf("ParentRegions(foreign) = %v, want ErrNotFound", err)
	}

	region, err := tax.RegionFor(3)
	if err != nil {
		t.Fatalf("RegionFor(3): %v", err)
	}
	area, err := tax.AreaForRegion(region)
	if err != nil {
		t.Fatalf("AreaForRegion: %v", err)
	}
	if !area.Signature().Equal(NewSignature("X")) {
		t.Errorf("area signature = %v, want {X}", area.Signature())
	}

	children, err := tax.ChildRegions(tax.RootRegion())
	if err != nil {
		t.Fatalf("ChildRegions: %v", err)
	}
	if len(children) != 1 || children[0] != region {
		t.Errorf("root region children = %v, want the {X} region", children)
	}
}
