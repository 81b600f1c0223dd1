package rf2

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ontoview/ontoview/pkg/hierarchy"
)

// ErrMissingFile is returned by [Loader.Load] when a required snapshot file
// (concepts or relationships) cannot be found in the release directory.
var ErrMissingFile = errors.New("release file not found")

// RF2 snapshot filename prefixes.
const (
	conceptFilePrefix     = "sct2_Concept_"
	descriptionFilePrefix = "sct2_Description_"
	relationshipPrefix    = "sct2_Relationship_"
	statedRelPrefix       = "sct2_StatedRelationship_"
)

// Loader reads RF2 snapshot directories into [Release] values.
type Loader struct {
	Logger *log.Logger
}

// NewLoader creates a loader. A nil logger falls back to log.Default().
func NewLoader(logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{Logger: logger}
}

// Load reads the snapshot files in dir and assembles a Release.
//
// The concept and relationship files are required. The description file is
// optional (concept names fall back to decimal IDs) and the stated
// relationship file is optional (the stated hierarchy and signatures fall
// back to the inferred ones).
func (l *Loader) Load(dir string) (*Release, error) {
	conceptPath, err := findFile(dir, conceptFilePrefix)
	if err != nil {
		return nil, err
	}
	relPath, err := findFile(dir, relationshipPrefix)
	if err != nil {
		return nil, err
	}
	descPath, _ := findFile(dir, descriptionFilePrefix)
	statedPath, _ := findFile(dir, statedRelPrefix)

	concepts, err := l.loadConcepts(conceptPath)
	if err != nil {
		return nil, err
	}
	l.Logger.Info("loaded concepts", "count", len(concepts))

	if descPath != "" {
		named, err := l.loadDescriptions(descPath, concepts)
		if err != nil {
			return nil, err
		}
		l.Logger.Info("loaded descriptions", "named", named)
	}

	hier, rels, err := l.loadRelationships(relPath, concepts, inferredCharacteristicID)
	if err != nil {
		return nil, err
	}
	l.Logger.Info("loaded relationships", "edges", hier.EdgeCount(), "attributed", len(rels))

	statedHier, statedRels := hier, rels
	if statedPath != "" {
		statedHier, statedRels, err = l.loadRelationships(statedPath, concepts, statedCharacteristicID)
		if err != nil {
			return nil, err
		}
		l.Logger.Info("loaded stated relationships", "edges", statedHier.EdgeCount(), "attributed", len(statedRels))
	}

	return &Release{
		info:       ReleaseInfo{Directory: dir, Name: filepath.Base(dir)},
		concepts:   concepts,
		hier:       hier,
		statedHier: statedHier,
		rels:       rels,
		statedRels: statedRels,
	}, nil
}

// SnapshotFiles returns the snapshot file paths Load would read, in a stable
// order, for fingerprinting a release directory. Absent optional files are
// omitted; absent required files are an error.
func SnapshotFiles(dir string) ([]string, error) {
	conceptPath, err := findFile(dir, conceptFilePrefix)
	if err != nil {
		return nil, err
	}
	relPath, err := findFile(dir, relationshipPrefix)
	if err != nil {
		return nil, err
	}
	paths := []string{conceptPath, relPath}
	if descPath, err := findFile(dir, descriptionFilePrefix); err == nil {
		paths = append(paths, descPath)
	}
	if statedPath, err := findFile(dir, statedRelPrefix); err == nil {
		paths = append(paths, statedPath)
	}
	return paths, nil
}

// findFile locates the single file in dir whose name starts with prefix.
func findFile(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read release dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: %s*.txt in %s", ErrMissingFile, prefix, dir)
}

// eachRow streams path as tab-separated rows, skipping the header line and
// blank lines. Relationship files run to millions of rows, so rows are
// handed to fn without accumulating the file in memory.
func eachRow(path string, fn func(fields []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := fn(strings.Split(line, "\t")); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}
	return nil
}

// Concept file columns: id, effectiveTime, active, moduleId, definitionStatusId.
func (l *Loader) loadConcepts(path string) (map[int64]*Concept, error) {
	concepts := make(map[int64]*Concept)
	err := eachRow(path, func(fields []string) error {
		if len(fields) < 5 {
			return fmt.Errorf("concept row has %d columns, want 5", len(fields))
		}
		if fields[2] != "1" { // inactive concepts are not loaded
			return nil
		}
		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return fmt.Errorf("concept id %q: %w", fields[0], err)
		}
		status, _ := strconv.ParseInt(fields[4], 10, 64)
		concepts[id] = &Concept{ID: id, Primitive: status == primitiveStatusID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return concepts, nil
}

// Description file columns: id, effectiveTime, active, moduleId, conceptId,
// languageCode, typeId, term, caseSignificanceId. Only active FSN rows for
// known concepts are used.
func (l *Loader) loadDescriptions(path string, concepts map[int64]*Concept) (int, error) {
	named := 0
	err := eachRow(path, func(fields []string) error {
		if len(fields) < 8 {
			return fmt.Errorf("description row has %d columns, want 8", len(fields))
		}
		if fields[2] != "1" {
			return nil
		}
		typeID, _ := strconv.ParseInt(fields[6], 10, 64)
		if typeID != fsnTypeID {
			return nil
		}
		conceptID, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return fmt.Errorf("description conceptId %q: %w", fields[4], err)
		}
		if c, ok := concepts[conceptID]; ok {
			c.Name = fields[7]
			named++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return named, nil
}

// Relationship file columns: id, effectiveTime, active, moduleId, sourceId,
// destinationId, relationshipGroup, typeId, characteristicTypeId, modifierId.
// IS-A rows become hierarchy edges; everything else becomes an attribute
// relationship on the source concept. Rows referencing unknown concepts are
// skipped, matching how inactive concepts are dropped at load time.
func (l *Loader) loadRelationships(path string, concepts map[int64]*Concept, definingID int64) (*hierarchy.Hierarchy, map[int64][]AttributeRelationship, error) {
	h := hierarchy.NewWithCapacity(len(concepts))
	for id := range concepts {
		h.AddNode(id)
	}
	rels := make(map[int64][]AttributeRelationship, len(concepts))

	err := eachRow(path, func(fields []string) error {
		if len(fields) < 9 {
			return fmt.Errorf("relationship row has %d columns, want 9", len(fields))
		}
		if fields[2] != "1" {
			return nil
		}
		sourceID, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return fmt.Errorf("relationship sourceId %q: %w", fields[4], err)
		}
		destID, err := strconv.ParseInt(fields[5], 10, 64)
		if err != nil {
			return fmt.Errorf("relationship destinationId %q: %w", fields[5], err)
		}
		typeID, err := strconv.ParseInt(fields[7], 10, 64)
		if err != nil {
			return fmt.Errorf("relationship typeId %q: %w", fields[7], err)
		}

		if typeID == isATypeID {
			if h.Contains(sourceID) && h.Contains(destID) {
				return h.AddEdge(sourceID, destID)
			}
			return nil
		}

		_, typeKnown := concepts[typeID]
		_, destKnown := concepts[destID]
		if !typeKnown || !destKnown {
			return nil
		}
		group, _ := strconv.Atoi(fields[6])
		characteristic, _ := strconv.ParseInt(fields[8], 10, 64)
		rels[sourceID] = append(rels[sourceID], AttributeRelationship{
			TypeID:        typeID,
			DestinationID: destID,
			Group:         group,
			Defining:      characteristic == definingID,
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return h, rels, nil
}
