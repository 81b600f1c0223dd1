package taxonomy

import (
	"fmt"

	"github.com/ontoview/ontoview/pkg/hierarchy"
)

// Region (partial area) is a set of hierarchy-connected concepts that all
// share one relationship signature, together with the induced sub-hierarchy
// over those concepts. Its root is a concept none of whose parents share the
// region's signature.
type Region struct {
	hier *hierarchy.Hierarchy
	sig  Signature
	root int64
}

// Root returns the region's root concept ID.
func (r *Region) Root() int64 { return r.root }

// Signature returns the signature shared by every concept in the region.
func (r *Region) Signature() Signature { return r.sig }

// Hierarchy returns the induced sub-hierarchy over the region's concepts.
// The returned hierarchy is shared and must not be mutated.
func (r *Region) Hierarchy() *hierarchy.Hierarchy { return r.hier }

// Concepts returns the region's concept IDs in ascending order.
func (r *Region) Concepts() []int64 { return r.hier.Nodes() }

// Contains reports whether the concept belongs to this region.
func (r *Region) Contains(conceptID int64) bool { return r.hier.Contains(conceptID) }

// Size returns the number of concepts in the region.
func (r *Region) Size() int { return r.hier.Size() }

// buildRegions partitions h into regions: it detects region roots, assigns
// every concept to exactly one root via a topological sweep, and induces each
// region's sub-hierarchy.
//
// The sweep processes region roots in the hierarchy's deterministic
// topological order (ascending-ID tie-break), so rebuilding from the same
// input yields the same partition. When a concept has two signature-matching
// parents that are both unprocessed at visit time, the claim is deferred; the
// first region (in sweep order) to reach the concept uncontested wins.
func buildRegions(h *hierarchy.Hierarchy, sigs map[int64]Signature) ([]*Region, error) {
	order, err := h.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	for _, id := range order {
		if _, ok := sigs[id]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrMissingSignature, id)
		}
	}

	// Step A: a concept is a region root iff it has no parent sharing its
	// signature. Mixed parents (some matching, some not) do not make a root.
	isRoot := make(map[int64]struct{}, len(order))
	for _, id := range order {
		if isRegionRoot(h, sigs, id) {
			isRoot[id] = struct{}{}
		}
	}

	// Step B: topological assignment sweep.
	assignment := make(map[int64]int64, len(order)) // concept -> region root
	processed := make(map[int64]struct{}, len(order))

	type frame struct{ node, via int64 }
	for _, root := range order {
		if _, ok := isRoot[root]; !ok {
			continue
		}
		rootSig := sigs[root]
		assignment[root] = root

		stack := []frame{{node: root, via: root}}
		for len(stack) > 0 {
			cur := stack[len(stack)-1].node
			stack = stack[:len(stack)-1]
			if _, done := processed[cur]; done {
				continue
			}
			processed[cur] = struct{}{}

			for _, child := range h.Children(cur) {
				if _, childRoot := isRoot[child]; childRoot {
					continue
				}
				if _, done := processed[child]; done {
					continue
				}
				if !sigs[child].Equal(rootSig) {
					continue
				}
				// Defer when another matching parent is still unprocessed:
				// that parent's region gets a chance to claim the child.
				if hasContestingParent(h, sigs, processed, child, cur, rootSig) {
					continue
				}
				assignment[child] = root
				stack = append(stack, frame{node: child, via: cur})
			}
		}
	}

	// Every concept must have been claimed; a gap here means the sweep
	// invariant broke.
	for _, id := range order {
		if _, ok := assignment[id]; !ok {
			return nil, fmt.Errorf("%w: concept %d assigned to no region", ErrInvariantViolation, id)
		}
	}

	// Step C: induce each region's sub-hierarchy. Regions are ordered by
	// their root's topological rank, so the region containing the global
	// root always comes first.
	members := make(map[int64]map[int64]struct{}, len(isRoot))
	for concept, root := range assignment {
		set, ok := members[root]
		if !ok {
			set = make(map[int64]struct{})
			members[root] = set
		}
		set[concept] = struct{}{}
	}

	regions := make([]*Region, 0, len(isRoot))
	for _, root := range order {
		set, ok := members[root]
		if !ok {
			continue
		}
		regions = append(regions, &Region{
			hier: h.InducedSubgraph(set),
			sig:  sigs[root],
			root: root,
		})
	}
	return regions, nil
}

func isRegionRoot(h *hierarchy.Hierarchy, sigs map[int64]Signature, id int64) bool {
	sig := sigs[id]
	for _, parent := range h.Parents(id) {
		if sigs[parent].Equal(sig) {
			return false
		}
	}
	return true
}

// hasContestingParent reports whether child has a parent other than via that
// is unprocessed and carries the region's signature.
func hasContestingParent(h *hierarchy.Hierarchy, sigs map[int64]Signature, processed map[int64]struct{}, child, via int64, rootSig Signature) bool {
	for _, parent := range h.Parents(child) {
		if parent == via {
			continue
		}
		if _, done := processed[parent]; done {
			continue
		}
		if sigs[parent].Equal(rootSig) {
			return true
		}
	}
	return false
}
