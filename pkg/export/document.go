// Package export serializes built taxonomies.
//
// A [Document] is the canonical serialization of a region taxonomy: areas,
// regions, and the region-hierarchy edges, flattened to integer indices. It
// is the format shared by the CLI artifacts, the HTTP API, and the Mongo
// store, and it is deterministic - exporting the same taxonomy twice yields
// byte-identical JSON.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/ontoview/ontoview/pkg/taxonomy"
)

// Document is a fully exported region taxonomy.
type Document struct {
	BuildID      string    `json:"build_id,omitempty" bson:"build_id,omitempty"`
	Release      string    `json:"release,omitempty" bson:"release,omitempty"`
	SubrootID    int64     `json:"subroot_id,omitempty" bson:"subroot_id,omitempty"`
	BuiltAt      time.Time `json:"built_at,omitzero" bson:"built_at,omitempty"`
	ConceptCount int       `json:"concept_count" bson:"concept_count"`
	RootAreaID   int       `json:"root_area_id" bson:"root_area_id"`
	RootRegionID int       `json:"root_region_id" bson:"root_region_id"`
	Areas        []Area    `json:"areas" bson:"areas"`
	Regions      []Region  `json:"regions" bson:"regions"`
	Edges        []Edge    `json:"edges" bson:"edges"`
}

// Area is an exported area. IDs are indices into Document.Areas.
type Area struct {
	ID           int      `json:"id" bson:"id"`
	Signature    []string `json:"signature" bson:"signature"`
	RegionIDs    []int    `json:"region_ids" bson:"region_ids"`
	ConceptCount int      `json:"concept_count" bson:"concept_count"`
}

// Region is an exported region. IDs are indices into Document.Regions.
type Region struct {
	ID        int      `json:"id" bson:"id"`
	AreaID    int      `json:"area_id" bson:"area_id"`
	Root      int64    `json:"root" bson:"root"`
	RootName  string   `json:"root_name,omitempty" bson:"root_name,omitempty"`
	Signature []string `json:"signature" bson:"signature"`
	Concepts  []int64  `json:"concepts" bson:"concepts"`
}

// Edge is a region-hierarchy edge: the child's signature strictly extends the
// parent's.
type Edge struct {
	Child  int `json:"child" bson:"child"`
	Parent int `json:"parent" bson:"parent"`
}

// NameFunc resolves display names for concept IDs (e.g.
// [rf2.Release.ConceptName]). A nil NameFunc leaves names empty.
type NameFunc func(conceptID int64) string

// FromTaxonomy flattens a built taxonomy into a Document. Areas and regions
// keep the taxonomy's deterministic ordering (root structures first); edges
// are sorted by (child, parent).
func FromTaxonomy(tax *taxonomy.RegionTaxonomy, name NameFunc) (Document, error) {
	regions := tax.Regions()
	areas := tax.AreaTaxonomy().Areas()

	regionID := make(map[*taxonomy.Region]int, len(regions))
	for i, r := range regions {
		regionID[r] = i
	}
	areaID := make(map[*taxonomy.Area]int, len(areas))
	for i, a := range areas {
		areaID[a] = i
	}

	doc := Document{
		ConceptCount: tax.AreaTaxonomy().ConceptCount(),
		RootRegionID: regionID[tax.RootRegion()],
		RootAreaID:   areaID[tax.AreaTaxonomy().RootArea()],
		Areas:        make([]Area, len(areas)),
		Regions:      make([]Region, len(regions)),
	}

	for i, a := range areas {
		ids := make([]int, len(a.Regions()))
		for j, r := range a.Regions() {
			ids[j] = regionID[r]
		}
		slices.Sort(ids)
		doc.Areas[i] = Area{
			ID:           i,
			Signature:    a.Signature().Labels(),
			RegionIDs:    ids,
			ConceptCount: a.Size(),
		}
	}

	for i, r := range regions {
		area, err := tax.AreaForRegion(r)
		if err != nil {
			return Document{}, fmt.Errorf("export region %d: %w", i, err)
		}
		out := Region{
			ID:        i,
			AreaID:    areaID[area],
			Root:      r.Root(),
			Signature: r.Signature().Labels(),
			Concepts:  r.Concepts(),
		}
		if name != nil {
			out.RootName = name(r.Root())
		}
		doc.Regions[i] = out

		parents, err := tax.ParentRegions(r)
		if err != nil {
			return Document{}, fmt.Errorf("export region %d: %w", i, err)
		}
		for _, p := range parents {
			doc.Edges = append(doc.Edges, Edge{Child: i, Parent: regionID[p]})
		}
	}

	slices.SortFunc(doc.Edges, func(a, b Edge) int {
		if a.Child != b.Child {
			return a.Child - b.Child
		}
		return a.Parent - b.Parent
	})
	return doc, nil
}

// Marshal encodes the document as indented JSON.
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes the document as indented JSON to w.
func Write(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode taxonomy: %w", err)
	}
	return nil
}

// WriteFile writes the document to a JSON file with 0644 permissions.
func WriteFile(doc Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(doc, f)
}

// Read decodes a document from r.
func Read(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode taxonomy: %w", err)
	}
	return doc, nil
}

// ReadFile reads a document from a JSON file.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
