// Package store persists exported taxonomy documents.
//
// A Store keeps one record per build, identified by the build's UUID. The
// Mongo-backed implementation serves shared deployments where the HTTP API
// and the CLI operate on the same set of builds.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ontoview/ontoview/pkg/export"
)

// ErrBuildNotFound is returned when no build exists for the given ID.
var ErrBuildNotFound = errors.New("build not found")

// BuildSummary is the listing view of a stored build. It carries everything
// needed to pick a build without loading the full document.
type BuildSummary struct {
	BuildID      string    `json:"build_id" bson:"build_id"`
	Release      string    `json:"release,omitempty" bson:"release,omitempty"`
	SubrootID    int64     `json:"subroot_id,omitempty" bson:"subroot_id,omitempty"`
	BuiltAt      time.Time `json:"built_at,omitzero" bson:"built_at,omitempty"`
	ConceptCount int       `json:"concept_count" bson:"concept_count"`
	AreaCount    int       `json:"area_count" bson:"area_count"`
	RegionCount  int       `json:"region_count" bson:"region_count"`
}

// Store is the interface taxonomy stores implement.
type Store interface {
	// Save persists a document, replacing any build with the same ID.
	Save(ctx context.Context, doc export.Document) error

	// Load retrieves a build by ID. Returns ErrBuildNotFound if absent.
	Load(ctx context.Context, buildID string) (export.Document, error)

	// List returns summaries of all stored builds, newest first.
	List(ctx context.Context) ([]BuildSummary, error)

	// Delete removes a build. Returns ErrBuildNotFound if absent.
	Delete(ctx context.Context, buildID string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

func summarize(doc export.Document) BuildSummary {
	return BuildSummary{
		BuildID:      doc.BuildID,
		Release:      doc.Release,
		SubrootID:    doc.SubrootID,
		BuiltAt:      doc.BuiltAt,
		ConceptCount: doc.ConceptCount,
		AreaCount:    len(doc.Areas),
		RegionCount:  len(doc.Regions),
	}
}
