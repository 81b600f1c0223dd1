// Package taxonomy derives abstraction networks from concept hierarchies.
//
// Given a [hierarchy.Hierarchy] of concepts and a function yielding each
// concept's relationship signature (the set of relationship-type names on its
// defining relationships), the package partitions the hierarchy into
// progressively coarser structures:
//
//   - Region (partial area): a maximal set of hierarchy-connected concepts
//     sharing one signature, rooted at a concept none of whose parents share
//     that signature.
//   - Area: all regions with an identical signature, regardless of
//     connectivity. Areas partition the full concept set.
//   - Region hierarchy: the Hasse diagram of the strict signature-subset
//     order over the regions, rooted at the region containing the
//     hierarchy's root concept.
//
// The build is a single-threaded batch computation. Everything it produces is
// immutable afterwards and safe for concurrent reads.
//
// # Usage
//
//	tax, err := taxonomy.BuildRegionTaxonomy(hier, release.DefiningSignature)
//	if err != nil {
//	    return err
//	}
//	area, _ := tax.AreaFor(conceptID)
//	fmt.Println(area.Name(), len(tax.Regions()))
package taxonomy

import "errors"

var (
	// ErrMissingSignature is returned during construction when the signature
	// function did not cover a node of the hierarchy. The build is aborted -
	// a partial taxonomy is never returned.
	ErrMissingSignature = errors.New("no signature for concept")

	// ErrInvariantViolation is returned when a built structure breaks an
	// internal invariant, e.g. no area contains the hierarchy root. This
	// indicates a partitioning bug and should be unreachable.
	ErrInvariantViolation = errors.New("taxonomy invariant violated")

	// ErrNotFound is returned by facade lookups for concepts or regions that
	// are not part of the taxonomy. Callers can treat it as "no further
	// refinement available".
	ErrNotFound = errors.New("not found")
)
