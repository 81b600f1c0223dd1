package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/ontoview/ontoview/pkg/export"
)

// MemoryStore keeps builds in memory. Used by the HTTP server when no
// MongoDB is configured, and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	builds map[string]export.Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{builds: make(map[string]export.Document)}
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, doc export.Document) error {
	if doc.BuildID == "" {
		return fmt.Errorf("document has no build id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builds[doc.BuildID] = doc
	return nil
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context, buildID string) (export.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.builds[buildID]
	if !ok {
		return export.Document{}, fmt.Errorf("build %s: %w", buildID, ErrBuildNotFound)
	}
	return doc, nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context) ([]BuildSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]BuildSummary, 0, len(s.builds))
	for _, doc := range s.builds {
		summaries = append(summaries, summarize(doc))
	}
	slices.SortFunc(summaries, func(a, b BuildSummary) int {
		if c := b.BuiltAt.Compare(a.BuiltAt); c != 0 {
			return c
		}
		return strings.Compare(a.BuildID, b.BuildID)
	})
	return summaries, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, buildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.builds[buildID]; !ok {
		return fmt.Errorf("build %s: %w", buildID, ErrBuildNotFound)
	}
	delete(s.builds, buildID)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
