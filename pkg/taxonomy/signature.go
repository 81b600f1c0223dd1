package taxonomy

import (
	"slices"
	"strings"

	"github.com/ontoview/ontoview/pkg/hierarchy"
)

// Signature is an immutable set of relationship-type labels. Signatures are
// the sole grouping criterion for regions and areas: equality is set
// equality, and the region hierarchy is ordered by strict subset inclusion.
type Signature struct {
	labels []string // sorted, deduplicated
}

// NewSignature creates a signature from the given labels.
// Duplicates are removed and ordering is normalized, so two signatures built
// from the same label set in any order compare equal.
func NewSignature(labels ...string) Signature {
	if len(labels) == 0 {
		return Signature{}
	}
	sorted := slices.Clone(labels)
	slices.Sort(sorted)
	return Signature{labels: slices.Compact(sorted)}
}

// Labels returns a copy of the labels in sorted order.
func (s Signature) Labels() []string { return slices.Clone(s.labels) }

// Len returns the number of labels.
func (s Signature) Len() int { return len(s.labels) }

// Empty reports whether the signature has no labels ("no shared
// relationships").
func (s Signature) Empty() bool { return len(s.labels) == 0 }

// Contains reports whether the signature includes the label.
func (s Signature) Contains(label string) bool {
	_, ok := slices.BinarySearch(s.labels, label)
	return ok
}

// Equal reports set equality with o.
func (s Signature) Equal(o Signature) bool {
	return slices.Equal(s.labels, o.labels)
}

// Subset reports whether every label of s is also in o (s ⊆ o).
// An empty signature is a subset of everything, including itself.
func (s Signature) Subset(o Signature) bool {
	if len(s.labels) > len(o.labels) {
		return false
	}
	i := 0
	for _, label := range s.labels {
		for i < len(o.labels) && o.labels[i] < label {
			i++
		}
		if i >= len(o.labels) || o.labels[i] != label {
			return false
		}
		i++
	}
	return true
}

// StrictSubset reports whether s ⊊ o.
func (s Signature) StrictSubset(o Signature) bool {
	return len(s.labels) < len(o.labels) && s.Subset(o)
}

// Key returns a canonical string for use as a map key. Signatures are equal
// iff their keys are equal. The key is opaque - use String for display.
func (s Signature) Key() string {
	return strings.Join(s.labels, "\x1f")
}

// String renders the signature for display: labels joined by ", ", or "∅"
// for the empty signature.
func (s Signature) String() string {
	if len(s.labels) == 0 {
		return "∅"
	}
	return strings.Join(s.labels, ", ")
}

// SignatureFunc yields the relationship signature of a concept. It must be
// pure and referentially stable within one build: the same concept always
// yields an equal label set.
type SignatureFunc func(conceptID int64) []string

// BuildSignatureIndex evaluates fn exactly once per node of h and returns the
// resulting concept→signature map, pre-sized to the node count.
//
// All taxonomy construction goes through an index like this one: downstream
// phases compare signatures hundreds of thousands of times, and recomputing
// them per comparison turns the build quadratic.
func BuildSignatureIndex(h *hierarchy.Hierarchy, fn SignatureFunc) map[int64]Signature {
	index := make(map[int64]Signature, h.Size())
	for _, id := range h.Nodes() {
		index[id] = NewSignature(fn(id)...)
	}
	return index
}
