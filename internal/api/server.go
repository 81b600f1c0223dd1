// Package api serves a built taxonomy over HTTP.
//
// The server answers read-only queries against one exported taxonomy
// document. The document is immutable after construction, so handlers need
// no locking.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ontoview/ontoview/pkg/export"
	"github.com/ontoview/ontoview/pkg/taxonomy"
)

// Server answers queries against a single taxonomy document.
type Server struct {
	doc    export.Document
	logger *log.Logger

	regionOfConcept map[int64]int // concept ID → region index
	parentsOf       map[int][]int // region index → parent region indices
	childrenOf      map[int][]int // region index → child region indices
}

// NewServer indexes the document for lookups. A nil logger falls back to
// log.Default().
func NewServer(doc export.Document, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		doc:             doc,
		logger:          logger,
		regionOfConcept: make(map[int64]int),
		parentsOf:       make(map[int][]int, len(doc.Regions)),
		childrenOf:      make(map[int][]int, len(doc.Regions)),
	}
	for _, r := range doc.Regions {
		for _, id := range r.Concepts {
			s.regionOfConcept[id] = r.ID
		}
	}
	for _, e := range doc.Edges {
		s.parentsOf[e.Child] = append(s.parentsOf[e.Child], e.Parent)
		s.childrenOf[e.Parent] = append(s.childrenOf[e.Parent], e.Child)
	}
	return s
}

// Router builds the HTTP route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/taxonomy", s.handleTaxonomy)
		api.Get("/areas", s.handleAreas)
		api.Get("/areas/{areaID}", s.handleArea)
		api.Get("/areas/{areaID}/regions", s.handleAreaRegions)
		api.Get("/regions/{regionID}", s.handleRegion)
		api.Get("/concepts/{conceptID}", s.handleConcept)
		api.Get("/relationship-types", s.handleRelationshipTypes)
	})
	return r
}

// taxonomySummary is the response for GET /taxonomy.
type taxonomySummary struct {
	BuildID      string `json:"build_id,omitempty"`
	Release      string `json:"release,omitempty"`
	SubrootID    int64  `json:"subroot_id,omitempty"`
	ConceptCount int    `json:"concept_count"`
	AreaCount    int    `json:"area_count"`
	RegionCount  int    `json:"region_count"`
	RootAreaID   int    `json:"root_area_id"`
	RootRegionID int    `json:"root_region_id"`
}

// regionDetail is the response for GET /regions/{id}.
type regionDetail struct {
	export.Region
	ParentIDs []int `json:"parent_ids"`
	ChildIDs  []int `json:"child_ids"`
}

// conceptDetail is the response for GET /concepts/{id}.
type conceptDetail struct {
	ConceptID int64    `json:"concept_id"`
	RegionID  int      `json:"region_id"`
	AreaID    int      `json:"area_id"`
	Signature []string `json:"signature"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, taxonomySummary{
		BuildID:      s.doc.BuildID,
		Release:      s.doc.Release,
		SubrootID:    s.doc.SubrootID,
		ConceptCount: s.doc.ConceptCount,
		AreaCount:    len(s.doc.Areas),
		RegionCount:  len(s.doc.Regions),
		RootAreaID:   s.doc.RootAreaID,
		RootRegionID: s.doc.RootRegionID,
	})
}

func (s *Server) handleAreas(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.doc.Areas)
}

func (s *Server) handleArea(w http.ResponseWriter, r *http.Request) {
	area, err := s.areaParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, area)
}

func (s *Server) handleAreaRegions(w http.ResponseWriter, r *http.Request) {
	area, err := s.areaParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	regions := make([]export.Region, len(area.RegionIDs))
	for i, id := range area.RegionIDs {
		regions[i] = s.doc.Regions[id]
	}
	s.writeJSON(w, http.StatusOK, regions)
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "regionID", len(s.doc.Regions))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, regionDetail{
		Region:    s.doc.Regions[id],
		ParentIDs: sortedOrEmpty(s.parentsOf[id]),
		ChildIDs:  sortedOrEmpty(s.childrenOf[id]),
	})
}

func (s *Server) handleConcept(w http.ResponseWriter, r *http.Request) {
	conceptID, err := strconv.ParseInt(chi.URLParam(r, "conceptID"), 10, 64)
	if err != nil {
		s.writeError(w, taxonomy.ErrNotFound)
		return
	}
	regionID, ok := s.regionOfConcept[conceptID]
	if !ok {
		s.writeError(w, taxonomy.ErrNotFound)
		return
	}
	region := s.doc.Regions[regionID]
	s.writeJSON(w, http.StatusOK, conceptDetail{
		ConceptID: conceptID,
		RegionID:  regionID,
		AreaID:    region.AreaID,
		Signature: region.Signature,
	})
}

func (s *Server) handleRelationshipTypes(w http.ResponseWriter, r *http.Request) {
	var types []string
	for _, a := range s.doc.Areas {
		types = append(types, a.Signature...)
	}
	slices.Sort(types)
	s.writeJSON(w, http.StatusOK, slices.Compact(types))
}

func (s *Server) areaParam(r *http.Request) (export.Area, error) {
	id, err := intParam(r, "areaID", len(s.doc.Areas))
	if err != nil {
		return export.Area{}, err
	}
	return s.doc.Areas[id], nil
}

func intParam(r *http.Request, name string, limit int) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id < 0 || id >= limit {
		return 0, taxonomy.ErrNotFound
	}
	return id, nil
}

func sortedOrEmpty(ids []int) []int {
	if len(ids) == 0 {
		return []int{}
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, taxonomy.ErrNotFound) {
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path)
	})
}
