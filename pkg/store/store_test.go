package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ontoview/ontoview/pkg/export"
)

func doc(id string, builtAt time.Time) export.Document {
	return export.Document{
		BuildID:      id,
		Release:      "SnomedCT_Test_20260801",
		BuiltAt:      builtAt,
		ConceptCount: 4,
		Areas:        []export.Area{{ID: 0}, {ID: 1}},
		Regions:      []export.Region{{ID: 0}, {ID: 1}, {ID: 2}},
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("SaveRequiresID", func(t *testing.T) {
		if err := s.Save(ctx, export.Document{}); err == nil {
			t.Error("Save without build id succeeded")
		}
	})

	t.Run("SaveLoad", func(t *testing.T) {
		if err := s.Save(ctx, doc("a", now)); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got, err := s.Load(ctx, "a")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.BuildID != "a" || got.ConceptCount != 4 {
			t.Errorf("Load = %+v", got)
		}
	})

	t.Run("LoadMissing", func(t *testing.T) {
		if _, err := s.Load(ctx, "nope"); !errors.Is(err, ErrBuildNotFound) {
			t.Errorf("Load(missing) = %v, want ErrBuildNotFound", err)
		}
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		if err := s.Save(ctx, doc("b", now.Add(time.Hour))); err != nil {
			t.Fatalf("Save: %v", err)
		}
		summaries, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(summaries) != 2 || summaries[0].BuildID != "b" {
			t.Fatalf("List = %+v, want b first", summaries)
		}
		if summaries[0].AreaCount != 2 || summaries[0].RegionCount != 3 {
			t.Errorf("summary counts = %+v", summaries[0])
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := s.Delete(ctx, "a"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := s.Delete(ctx, "a"); !errors.Is(err, ErrBuildNotFound) {
			t.Errorf("Delete(missing) = %v, want ErrBuildNotFound", err)
		}
	})
}
