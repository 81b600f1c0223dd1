// Package pkg provides the core libraries for Ontoview taxonomy derivation.
//
// # Overview
//
// Ontoview derives abstraction networks from description-logic concept
// hierarchies such as SNOMED CT: it partitions a subhierarchy into regions
// of concepts sharing the same relationship signature, groups the regions
// into areas, and arranges them into a browsable meta-hierarchy. The pkg
// directory is organized into five main areas:
//
//  1. [hierarchy] - Concept hierarchy graph (ancestry, subhierarchies)
//  2. [taxonomy] - Region taxonomy derivation (regions, areas, region DAG)
//  3. [rf2] - RF2 snapshot release loading
//  4. [export] - Serialization and rendering (JSON, DOT, SVG, PNG)
//  5. [pipeline] - Orchestration (load → build → render) with caching
//
// # Architecture
//
// The typical data flow through Ontoview:
//
//	RF2 Snapshot Release
//	         ↓
//	    [rf2] package (load concepts, relationships, descriptions)
//	         ↓
//	    [hierarchy] package (IS-A graph + subhierarchy extraction)
//	         ↓
//	    [taxonomy] package (regions → areas → region hierarchy)
//	         ↓
//	    [export] package (JSON document, DOT, SVG, PNG)
//
// # Quick Start
//
// Build a region taxonomy and render it:
//
//	import (
//	    "context"
//	    "github.com/ontoview/ontoview/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(context.Background(), pipeline.Options{
//	    ReleaseDir: "SnomedCT_Release/Snapshot/Terminology",
//	    Formats:    []string{pipeline.FormatJSON, pipeline.FormatSVG},
//	})
//
// # Main Packages
//
// [hierarchy] - Directed acyclic concept graph with memoized descendant and
// ancestor traversal, topological ordering, and rooted subhierarchy
// extraction.
//
// [taxonomy] - The derivation algorithms: relationship signatures, region
// partitioning by signature-homogeneous connectivity, area grouping, and the
// region meta-hierarchy computed by strict signature containment with
// transitive reduction.
//
// [rf2] - Streaming tab-separated loaders for RF2 snapshot concept,
// description, relationship, and stated-relationship files.
//
// [export] - The taxonomy document format plus Graphviz rendering of the
// region hierarchy, grouped by area when requested.
//
// ## Infrastructure
//
// [pipeline] - Complete derivation pipeline (load → build → render) used by
// the CLI and the API server. Caches built documents and rendered artifacts.
//
// [cache] - Cache interface with file, Redis, and null implementations, plus
// deterministic cache key derivation from release fingerprints.
//
// [store] - Persistent build storage with MongoDB and in-memory backends.
//
// [observability] - Optional hooks for instrumenting pipeline builds,
// renders, and cache traffic.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/taxonomy/...     # Specific package
//
// [hierarchy]: https://pkg.go.dev/github.com/ontoview/ontoview/pkg/hierarchy
// [taxonomy]: https://pkg.go.dev/github.com/ontoview/ontoview/pkg/taxonomy
// [rf2]: https://pkg.go.dev/github.com/ontoview/ontoview/pkg/rf2
// [export]: https://pkg.go.dev/github.com/ontoview/ontoview/pkg/export
// [pipeline]: https://pkg.go.dev/github.com/ontoview/ontoview/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/ontoview/ontoview/pkg/cache
// [store]: https://pkg.go.dev/github.com/ontoview/ontoview/pkg/store
// [observability]: https://pkg.go.dev/github.com/ontoview/ontoview/pkg/observability
package pkg
