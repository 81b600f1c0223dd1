package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ontoview/ontoview/pkg/cache"
	"github.com/ontoview/ontoview/pkg/rf2"
)

// writeRelease writes a miniature snapshot: root ← finding ← site-only ←
// site+morph, with finding-site and morphology attribute rows.
func writeRelease(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	write("sct2_Concept_Snapshot_INT_20250101.txt",
		"id\teffectiveTime\tactive\tmoduleId\tdefinitionStatusId\n"+
			"138875005\t20250101\t1\t900000000000207008\t900000000000074008\n"+
			"363698007\t20250101\t1\t900000000000207008\t900000000000074008\n"+
			"116676008\t20250101\t1\t900000000000207008\t900000000000074008\n"+
			"200\t20250101\t1\t900000000000207008\t900000000000074008\n"+
			"101\t20250101\t1\t900000000000207008\t900000000000074008\n"+
			"102\t20250101\t1\t900000000000207008\t900000000000073002\n"+
			"103\t20250101\t1\t900000000000207008\t900000000000073002\n")

	write("sct2_Description_Snapshot-en_INT_20250101.txt",
		"id\teffectiveTime\tactive\tmoduleId\tconceptId\tlanguageCode\ttypeId\tterm\tcaseSignificanceId\n"+
			"1\t20250101\t1\t900000000000207008\t363698007\ten\t900000000000003001\tFinding site (attribute)\t900000000000448009\n"+
			"2\t20250101\t1\t900000000000207008\t116676008\ten\t900000000000003001\tAssociated morphology (attribute)\t900000000000448009\n"+
			"3\t20250101\t1\t900000000000207008\t101\ten\t900000000000003001\tClinical finding (finding)\t900000000000448009\n")

	write("sct2_StatedRelationship_Snapshot_INT_20250101.txt",
		"id\teffectiveTime\tactive\tmoduleId\tsourceId\tdestinationId\trelationshipGroup\ttypeId\tcharacteristicTypeId\tmodifierId\n"+
			"10\t20250101\t1\t900000000000207008\t101\t138875005\t0\t116680003\t900000000000010007\t900000000000451002\n"+
			"11\t20250101\t1\t900000000000207008\t102\t101\t0\t116680003\t900000000000010007\t900000000000451002\n"+
			"12\t20250101\t1\t900000000000207008\t103\t102\t0\t116680003\t900000000000010007\t900000000000451002\n"+
			"13\t20250101\t1\t900000000000207008\t102\t200\t1\t363698007\t900000000000010007\t900000000000451002\n"+
			"14\t20250101\t1\t900000000000207008\t103\t200\t1\t363698007\t900000000000010007\t900000000000451002\n"+
			"15\t20250101\t1\t900000000000207008\t103\t200\t1\t116676008\t900000000000010007\t900000000000451002\n")

	write("sct2_Relationship_Snapshot_INT_20250101.txt",
		"id\teffectiveTime\tactive\tmoduleId\tsourceId\tdestinationId\trelationshipGroup\ttypeId\tcharacteristicTypeId\tmodifierId\n"+
			"20\t20250101\t1\t900000000000207008\t101\t138875005\t0\t116680003\t900000000000011006\t900000000000451002\n"+
			"21\t20250101\t1\t900000000000207008\t102\t101\t0\t116680003\t900000000000011006\t900000000000451002\n"+
			"22\t20250101\t1\t900000000000207008\t103\t102\t0\t116680003\t900000000000011006\t900000000000451002\n"+
			"23\t20250101\t1\t900000000000207008\t102\t200\t1\t363698007\t900000000000011006\t900000000000451002\n")

	return dir
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	dir := writeRelease(t)

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	opts := Options{
		ReleaseDir: dir,
		Formats:    []string{FormatJSON, FormatDOT},
	}

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	t.Run("Stats", func(t *testing.T) {
		// Subhierarchy of the root concept: root, finding, site-only,
		// site+morph. Signatures split them into three regions, one per
		// distinct signature (root and finding share the empty one).
		if result.Stats.ConceptCount != 4 {
			t.Errorf("ConceptCount = %d, want 4", result.Stats.ConceptCount)
		}
		if result.Stats.RegionCount != 3 || result.Stats.AreaCount != 3 {
			t.Errorf("regions/areas = %d/%d, want 3/3",
				result.Stats.RegionCount, result.Stats.AreaCount)
		}
		if result.CacheInfo.BuildHit {
			t.Error("first run reported a build cache hit")
		}
	})

	t.Run("Document", func(t *testing.T) {
		doc := result.Document
		if doc.BuildID == "" {
			t.Error("document has no build id")
		}
		if doc.SubrootID != rf2.RootConceptID {
			t.Errorf("SubrootID = %d, want root concept", doc.SubrootID)
		}
		if len(doc.Edges) != 2 {
			t.Errorf("edges = %v, want 2 (chain of signature extensions)", doc.Edges)
		}
	})

	t.Run("Artifacts", func(t *testing.T) {
		if _, ok := result.Artifacts[FormatJSON]; !ok {
			t.Error("json artifact missing")
		}
		dot := string(result.Artifacts[FormatDOT])
		if !strings.Contains(dot, "digraph taxonomy") {
			t.Errorf("dot artifact = %q", dot)
		}
		if !strings.Contains(dot, "Finding site (attribute)") {
			t.Error("dot artifact missing signature label")
		}
	})

	t.Run("CachedRerun", func(t *testing.T) {
		again, err := runner.Execute(ctx, opts)
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if !again.CacheInfo.BuildHit || !again.CacheInfo.RenderHit {
			t.Errorf("CacheInfo = %+v, want both hits", again.CacheInfo)
		}
		if again.Document.BuildID != result.Document.BuildID {
			t.Error("cache hit changed the build id")
		}
		if again.Release != nil || again.Taxonomy != nil {
			t.Error("cache hit still loaded the release")
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		refreshed, err := runner.Execute(ctx, Options{
			ReleaseDir: dir,
			Formats:    []string{FormatJSON},
			Refresh:    true,
		})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if refreshed.CacheInfo.BuildHit {
			t.Error("refresh run reported a build cache hit")
		}
		if refreshed.Taxonomy == nil {
			t.Error("refresh run returned no taxonomy")
		}
	})
}

func TestExecuteSubroot(t *testing.T) {
	dir := writeRelease(t)
	runner := NewRunner(nil, nil, nil)

	result, err := runner.Execute(context.Background(), Options{
		ReleaseDir: dir,
		SubrootID:  101,
		Formats:    []string{FormatJSON},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Stats.ConceptCount != 3 {
		t.Errorf("ConceptCount = %d, want 3", result.Stats.ConceptCount)
	}
	if got := result.Document.Regions[0].Root; got != 101 {
		t.Errorf("root region root = %d, want 101", got)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"MissingReleaseDir", Options{}},
		{"BadFormat", Options{ReleaseDir: "x", Formats: []string{"gif"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("validation succeeded, want error")
			}
		})
	}
}
