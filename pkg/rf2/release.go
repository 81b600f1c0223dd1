// Package rf2 loads SNOMED CT RF2 snapshot releases.
//
// An RF2 snapshot is a directory of tab-separated files describing concepts,
// descriptions, and relationships. The loader reads the active rows, splits
// IS-A relationships (which form the concept hierarchy) from attribute
// relationships (which form each concept's relationship signature), and
// produces an immutable [Release] ready for taxonomy derivation.
//
// Only the Snapshot Terminology layout is supported; Full and Delta releases
// carry history this tool has no use for.
package rf2

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/ontoview/ontoview/pkg/hierarchy"
)

// Well-known SNOMED CT identifiers used while interpreting RF2 rows.
const (
	// RootConceptID is "SNOMED CT Concept", the root of every release.
	RootConceptID int64 = 138875005

	// isATypeID marks hierarchy (IS A) relationships.
	isATypeID int64 = 116680003

	// fsnTypeID marks fully-specified-name descriptions.
	fsnTypeID int64 = 900000000000003001

	// statedCharacteristicID and inferredCharacteristicID mark defining
	// relationships in the stated and inferred relationship files.
	statedCharacteristicID   int64 = 900000000000010007
	inferredCharacteristicID int64 = 900000000000011006

	// primitiveStatusID is the definition status of primitive concepts.
	primitiveStatusID int64 = 900000000000074008
)

// Concept is a single active concept of the release.
type Concept struct {
	ID        int64
	Name      string // fully specified name, empty if no FSN row was present
	Primitive bool
}

// AttributeRelationship is a non-IS-A relationship row: the source concept is
// related to Destination via the relationship type Type.
type AttributeRelationship struct {
	TypeID        int64
	DestinationID int64
	Group         int
	Defining      bool // characteristic type matched the file's defining ID
}

// ReleaseInfo identifies a loaded release.
type ReleaseInfo struct {
	Directory string
	Name      string
}

// Release is an immutable, fully loaded RF2 snapshot: the concept table, the
// stated and inferred IS-A hierarchies, and the attribute relationships per
// concept. Safe for concurrent reads.
type Release struct {
	info       ReleaseInfo
	concepts   map[int64]*Concept
	hier       *hierarchy.Hierarchy // inferred IS-A edges
	statedHier *hierarchy.Hierarchy // stated IS-A edges
	rels       map[int64][]AttributeRelationship
	statedRels map[int64][]AttributeRelationship
}

// Info returns the release identity.
func (r *Release) Info() ReleaseInfo { return r.info }

// Concept returns the concept with the given ID, or false if the release has
// no active concept with that ID.
func (r *Release) Concept(id int64) (*Concept, bool) {
	c, ok := r.concepts[id]
	return c, ok
}

// ConceptCount returns the number of active concepts.
func (r *Release) ConceptCount() int { return len(r.concepts) }

// ConceptName returns the concept's fully specified name, falling back to the
// decimal ID when the concept or its FSN is unknown.
func (r *Release) ConceptName(id int64) string {
	if c, ok := r.concepts[id]; ok && c.Name != "" {
		return c.Name
	}
	return strconv.FormatInt(id, 10)
}

// Hierarchy returns the inferred IS-A hierarchy over all active concepts.
// The returned hierarchy is shared and must not be mutated.
func (r *Release) Hierarchy() *hierarchy.Hierarchy { return r.hier }

// StatedHierarchy returns the stated IS-A hierarchy.
// The returned hierarchy is shared and must not be mutated.
func (r *Release) StatedHierarchy() *hierarchy.Hierarchy { return r.statedHier }

// Relationships returns the concept's inferred attribute relationships.
func (r *Release) Relationships(id int64) []AttributeRelationship { return r.rels[id] }

// StatedRelationships returns the concept's stated attribute relationships.
func (r *Release) StatedRelationships(id int64) []AttributeRelationship { return r.statedRels[id] }

// DefiningSignature returns the relationship-type names of the concept's
// defining stated attribute relationships. This is the signature function fed
// into taxonomy construction; it is pure and stable for a loaded release.
func (r *Release) DefiningSignature(id int64) []string {
	return r.signature(r.statedRels[id])
}

// InferredSignature is DefiningSignature over the inferred relationship file.
func (r *Release) InferredSignature(id int64) []string {
	return r.signature(r.rels[id])
}

func (r *Release) signature(rels []AttributeRelationship) []string {
	var labels []string
	for _, rel := range rels {
		if rel.Defining {
			labels = append(labels, r.ConceptName(rel.TypeID))
		}
	}
	slices.Sort(labels)
	return slices.Compact(labels)
}

// StatedSubhierarchy returns the induced stated hierarchy rooted at the given
// concept: the concept plus all of its stated descendants. Returns an error
// when the concept is not part of the release.
func (r *Release) StatedSubhierarchy(rootID int64) (*hierarchy.Hierarchy, error) {
	return subhierarchy(r.statedHier, rootID)
}

// Subhierarchy is StatedSubhierarchy over the inferred hierarchy.
func (r *Release) Subhierarchy(rootID int64) (*hierarchy.Hierarchy, error) {
	return subhierarchy(r.hier, rootID)
}

func subhierarchy(h *hierarchy.Hierarchy, rootID int64) (*hierarchy.Hierarchy, error) {
	if !h.Contains(rootID) {
		return nil, fmt.Errorf("concept %d: %w", rootID, hierarchy.ErrUnknownNode)
	}
	set := make(map[int64]struct{})
	set[rootID] = struct{}{}
	for _, id := range h.Descendants(rootID) {
		set[id] = struct{}{}
	}
	return h.InducedSubgraph(set), nil
}
