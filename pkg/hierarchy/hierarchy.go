// Package hierarchy provides a multi-rooted directed acyclic graph container
// for concept hierarchies.
//
// A Hierarchy stores child→parent edges over int64 node identifiers. Nodes may
// have zero, one, or many parents - terminologies such as SNOMED CT are DAGs,
// not trees. The container supports the traversals needed by abstraction
// network derivation: parent/child lookup, root and leaf enumeration,
// deterministic topological ordering, ancestor/descendant closure, and
// induced-subgraph extraction.
//
// All query methods are read-only and safe for concurrent use once
// construction (AddNode/AddEdge) has finished.
package hierarchy

import (
	"errors"
	"slices"
)

var (
	// ErrUnknownNode is returned by [Hierarchy.AddEdge] when either endpoint
	// has not been added to the hierarchy.
	ErrUnknownNode = errors.New("unknown node")

	// ErrCycleDetected is returned by [Hierarchy.TopologicalOrder] and
	// [Hierarchy.Validate] when the edge set contains a directed cycle.
	ErrCycleDetected = errors.New("hierarchy contains a cycle")

	// ErrNoRoot is returned by [Hierarchy.Root] when no node is parentless.
	// A non-empty acyclic hierarchy always has at least one root, so this
	// indicates an empty or malformed instance.
	ErrNoRoot = errors.New("hierarchy has no root")

	// ErrAmbiguousRoot is returned by [Hierarchy.Root] when more than one
	// root exists and a single root is contractually required. Use
	// [Hierarchy.Roots] for multi-rooted instances.
	ErrAmbiguousRoot = errors.New("hierarchy has multiple roots")
)

// Hierarchy is a DAG over int64 node IDs with child→parent edge semantics.
//
// The zero value is not usable - use New. Hierarchy is not safe for
// concurrent mutation; freeze it (stop calling AddNode/AddEdge) before
// sharing across goroutines.
type Hierarchy struct {
	nodes    map[int64]struct{}
	parents  map[int64][]int64 // child -> parent IDs, insertion order
	children map[int64][]int64 // parent -> child IDs, insertion order
	edgeSet  map[[2]int64]struct{}
}

// New creates an empty hierarchy.
func New() *Hierarchy {
	return &Hierarchy{
		nodes:    make(map[int64]struct{}),
		parents:  make(map[int64][]int64),
		children: make(map[int64][]int64),
		edgeSet:  make(map[[2]int64]struct{}),
	}
}

// NewWithCapacity creates an empty hierarchy with pre-sized node tables.
// Use this when the node count is known in advance (e.g. loading a full
// terminology release) to avoid rehash storms.
func NewWithCapacity(n int) *Hierarchy {
	return &Hierarchy{
		nodes:    make(map[int64]struct{}, n),
		parents:  make(map[int64][]int64, n),
		children: make(map[int64][]int64, n),
		edgeSet:  make(map[[2]int64]struct{}, n),
	}
}

// AddNode adds a node to the hierarchy. Adding an existing node is a no-op.
func (h *Hierarchy) AddNode(id int64) {
	h.nodes[id] = struct{}{}
}

// AddEdge records that child has the given parent. Both endpoints must have
// been added with AddNode; otherwise ErrUnknownNode is returned. Duplicate
// edges are ignored.
//
// AddEdge does not check for cycles - call Validate or TopologicalOrder
// after construction.
func (h *Hierarchy) AddEdge(child, parent int64) error {
	if _, ok := h.nodes[child]; !ok {
		return ErrUnknownNode
	}
	if _, ok := h.nodes[parent]; !ok {
		return ErrUnknownNode
	}
	key := [2]int64{child, parent}
	if _, dup := h.edgeSet[key]; dup {
		return nil
	}
	h.edgeSet[key] = struct{}{}
	h.parents[child] = append(h.parents[child], parent)
	h.children[parent] = append(h.children[parent], child)
	return nil
}

// Contains reports whether the node is part of the hierarchy.
func (h *Hierarchy) Contains(id int64) bool {
	_, ok := h.nodes[id]
	return ok
}

// Size returns the number of nodes.
func (h *Hierarchy) Size() int { return len(h.nodes) }

// EdgeCount returns the number of distinct child→parent edges.
func (h *Hierarchy) EdgeCount() int { return len(h.edgeSet) }

// Nodes returns all node IDs in ascending order.
// Sorting keeps every derived traversal deterministic across runs.
func (h *Hierarchy) Nodes() []int64 {
	ids := make([]int64, 0, len(h.nodes))
	for id := range h.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Parents returns the parent IDs of the node in insertion order.
// The returned slice is a read-only view - do not modify it.
// Returns nil for a parentless or unknown node.
func (h *Hierarchy) Parents(id int64) []int64 { return h.parents[id] }

// Children returns the child IDs of the node in insertion order.
// The returned slice is a read-only view - do not modify it.
// Returns nil for a childless or unknown node.
func (h *Hierarchy) Children(id int64) []int64 { return h.children[id] }

// Roots returns all parentless nodes in ascending order.
func (h *Hierarchy) Roots() []int64 {
	var roots []int64
	for id := range h.nodes {
		if len(h.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	slices.Sort(roots)
	return roots
}

// Root returns the single root of the hierarchy.
// Returns ErrNoRoot for an empty (or cyclic, hence rootless) hierarchy and
// ErrAmbiguousRoot when more than one root exists.
func (h *Hierarchy) Root() (int64, error) {
	roots := h.Roots()
	switch len(roots) {
	case 0:
		return 0, ErrNoRoot
	case 1:
		return roots[0], nil
	default:
		return 0, ErrAmbiguousRoot
	}
}

// Leaves returns all childless nodes in ascending order.
func (h *Hierarchy) Leaves() []int64 {
	var leaves []int64
	for id := range h.nodes {
		if len(h.children[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	slices.Sort(leaves)
	return leaves
}

// TopologicalOrder returns the node IDs in an order where every parent
// precedes all of its children. The order is deterministic: nodes that become
// ready in the same wave of Kahn's algorithm are emitted in ascending ID
// order.
//
// Returns ErrCycleDetected if the hierarchy contains a directed cycle.
func (h *Hierarchy) TopologicalOrder() ([]int64, error) {
	remaining := make(map[int64]int, len(h.nodes))
	var wave []int64
	for id := range h.nodes {
		deg := len(h.parents[id])
		remaining[id] = deg
		if deg == 0 {
			wave = append(wave, id)
		}
	}
	slices.Sort(wave)

	order := make([]int64, 0, len(h.nodes))
	for len(wave) > 0 {
		var next []int64
		for _, id := range wave {
			order = append(order, id)
			for _, child := range h.children[id] {
				remaining[child]--
				if remaining[child] == 0 {
					next = append(next, child)
				}
			}
		}
		slices.Sort(next)
		wave = next
	}

	if len(order) != len(h.nodes) {
		return nil, ErrCycleDetected
	}
	return order, nil
}

// InducedSubgraph returns a new hierarchy restricted to the given node set.
// Edges are kept only when both endpoints are in the set. Nodes in the set
// that are not part of this hierarchy are ignored.
func (h *Hierarchy) InducedSubgraph(nodeSet map[int64]struct{}) *Hierarchy {
	sub := NewWithCapacity(len(nodeSet))
	for id := range nodeSet {
		if h.Contains(id) {
			sub.AddNode(id)
		}
	}
	for id := range sub.nodes {
		for _, parent := range h.parents[id] {
			if sub.Contains(parent) {
				_ = sub.AddEdge(id, parent) // endpoints verified above
			}
		}
	}
	return sub
}

// Descendants returns all nodes reachable from id via child edges, excluding
// id itself, in ascending order. Returns nil for an unknown node.
func (h *Hierarchy) Descendants(id int64) []int64 {
	if !h.Contains(id) {
		return nil
	}
	return h.closure(id, h.children)
}

// Ancestors returns all nodes reachable from id via parent edges, excluding
// id itself, in ascending order. Returns nil for an unknown node.
func (h *Hierarchy) Ancestors(id int64) []int64 {
	if !h.Contains(id) {
		return nil
	}
	return h.closure(id, h.parents)
}

func (h *Hierarchy) closure(start int64, adj map[int64][]int64) []int64 {
	seen := map[int64]struct{}{start: {}}
	queue := []int64{start}
	var result []int64
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, next := range adj[curr] {
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			result = append(result, next)
			queue = append(queue, next)
		}
	}
	slices.Sort(result)
	return result
}

// Depths computes the longest-path depth of every node: roots are at depth 0
// and each node sits one below its deepest parent. Returns ErrCycleDetected
// for cyclic input.
func (h *Hierarchy) Depths() (map[int64]int, error) {
	order, err := h.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	depths := make(map[int64]int, len(order))
	for _, id := range order {
		depth := 0
		for _, parent := range h.parents[id] {
			if d := depths[parent] + 1; d > depth {
				depth = d
			}
		}
		depths[id] = depth
	}
	return depths, nil
}

// Validate checks structural integrity and returns nil if the hierarchy is a
// valid DAG. Returns ErrCycleDetected if a directed cycle exists.
//
// Cycle detection runs in O(N+E) time using depth-first search with
// white/gray/black coloring.
func (h *Hierarchy) Validate() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[int64]int, len(h.nodes))
	var hasCycle bool

	var dfs func(id int64)
	dfs = func(id int64) {
		color[id] = gray
		for _, child := range h.children[id] {
			switch color[child] {
			case white:
				dfs(child)
				if hasCycle {
					return
				}
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, id := range h.Nodes() {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrCycleDetected
			}
		}
	}
	return nil
}
