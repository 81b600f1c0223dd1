package export

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ontoview/ontoview/pkg/hierarchy"
	"github.com/ontoview/ontoview/pkg/taxonomy"
)

// diamondTaxonomy builds the 4-concept diamond: root 1 (∅), 2 and 3 ({X}),
// leaf 4 ({X,Y}). Four regions, three areas, leaf region with two parents.
func diamondTaxonomy(t *testing.T) *taxonomy.RegionTaxonomy {
	t.Helper()
	h := hierarchy.New()
	for id := int64(1); id <= 4; id++ {
		h.AddNode(id)
	}
	for _, e := range [][2]int64{{2, 1}, {3, 1}, {4, 2}, {4, 3}} {
		if err := h.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	labels := map[int64][]string{2: {"X"}, 3: {"X"}, 4: {"X", "Y"}}
	tax, err := taxonomy.BuildRegionTaxonomy(h, func(id int64) []string { return labels[id] })
	if err != nil {
		t.Fatalf("BuildRegionTaxonomy: %v", err)
	}
	return tax
}

func TestFromTaxonomy(t *testing.T) {
	doc, err := FromTaxonomy(diamondTaxonomy(t), func(id int64) string {
		return map[int64]string{1: "root", 2: "a", 3: "b", 4: "leaf"}[id]
	})
	if err != nil {
		t.Fatalf("FromTaxonomy: %v", err)
	}

	if len(doc.Regions) != 4 {
		t.Fatalf("regions = %d, want 4", len(doc.Regions))
	}
	if len(doc.Areas) != 3 {
		t.Fatalf("areas = %d, want 3", len(doc.Areas))
	}
	if doc.ConceptCount != 4 {
		t.Errorf("ConceptCount = %d, want 4", doc.ConceptCount)
	}

	// The root region and root area come first by construction.
	if doc.RootRegionID != 0 || doc.RootAreaID != 0 {
		t.Errorf("root ids = (%d, %d), want (0, 0)", doc.RootRegionID, doc.RootAreaID)
	}
	if doc.Regions[0].Root != 1 || doc.Regions[0].RootName != "root" {
		t.Errorf("root region = %+v", doc.Regions[0])
	}

	// Regions 2 and 3 share the {X} area.
	var xArea *Area
	for i := range doc.Areas {
		if slices.Equal(doc.Areas[i].Signature, []string{"X"}) {
			xArea = &doc.Areas[i]
		}
	}
	if xArea == nil {
		t.Fatal("no {X} area")
	}
	if len(xArea.RegionIDs) != 2 {
		t.Errorf("{X} area regions = %v, want 2", xArea.RegionIDs)
	}
	if xArea.ConceptCount != 2 {
		t.Errorf("{X} area concepts = %d, want 2", xArea.ConceptCount)
	}

	// Every edge is strictly monotonic in signature size.
	for _, e := range doc.Edges {
		child, parent := doc.Regions[e.Child], doc.Regions[e.Parent]
		if len(parent.Signature) >= len(child.Signature) {
			t.Errorf("edge %v: parent signature %v not smaller than child %v", e, parent.Signature, child.Signature)
		}
	}

	// The leaf region has both {X} regions as parents.
	var leafID int
	for _, r := range doc.Regions {
		if r.Root == 4 {
			leafID = r.ID
		}
	}
	parents := 0
	for _, e := range doc.Edges {
		if e.Child == leafID {
			parents++
		}
	}
	if parents != 2 {
		t.Errorf("leaf region has %d parents, want 2", parents)
	}
}

func TestRoundTrip(t *testing.T) {
	doc, err := FromTaxonomy(diamondTaxonomy(t), nil)
	if err != nil {
		t.Fatalf("FromTaxonomy: %v", err)
	}

	first, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("marshaling twice produced different bytes")
	}

	path := filepath.Join(t.TempDir(), "taxonomy.json")
	if err := WriteFile(doc, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	again, err := Marshal(back)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, again) {
		t.Error("round trip changed the document")
	}
}

func TestToDOT(t *testing.T) {
	doc, err := FromTaxonomy(diamondTaxonomy(t), nil)
	if err != nil {
		t.Fatalf("FromTaxonomy: %v", err)
	}

	t.Run("Regions", func(t *testing.T) {
		dot := ToDOT(doc, DotOptions{})
		for i := range doc.Regions {
			if !strings.Contains(dot, "r"+string(rune('0'+i))) {
				t.Errorf("DOT missing node r%d", i)
			}
		}
		if !strings.Contains(dot, "lightgoldenrod") {
			t.Error("DOT does not highlight the root region")
		}
		if got := strings.Count(dot, "->"); got != len(doc.Edges) {
			t.Errorf("DOT has %d edges, want %d", got, len(doc.Edges))
		}
	})

	t.Run("ByArea", func(t *testing.T) {
		dot := ToDOT(doc, DotOptions{ByArea: true})
		// Both leaf-region parents live in the same {X} area: the two
		// region edges collapse into one area edge.
		if got := strings.Count(dot, "->"); got != 2 {
			t.Errorf("area DOT has %d edges, want 2", got)
		}
		if !strings.Contains(dot, "∅") {
			t.Error("area DOT missing empty-signature label")
		}
	})

	t.Run("Truncation", func(t *testing.T) {
		dot := ToDOT(doc, DotOptions{MaxLabelLength: 1})
		if !strings.Contains(dot, "…") {
			t.Error("long labels were not truncated")
		}
	})
}
