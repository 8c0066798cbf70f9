package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/career-guidance/internal/types"
)

// CareerListResponse is the body of GET /v1/careers
type CareerListResponse struct {
	Careers []types.Career `json:"careers"`
	Count   int            `json:"count"`
}

// handleListCareers lists the catalog in catalog order, optionally narrowed by
// ?category= (case-insensitive) and ?search= (name or description).
func (s *Server) handleListCareers(w http.ResponseWriter, r *http.Request) {
	filter := types.CareerFilter{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
	}

	careers, err := s.store.ListCareers(r.Context(), filter)
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	if careers == nil {
		careers = []types.Career{}
	}
	s.jsonResponse(w, http.StatusOK, CareerListResponse{Careers: careers, Count: len(careers)})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	s.jsonResponse(w, http.StatusOK, map[string][]string{"categories": categories})
}

func (s *Server) handleGetCareer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid career ID")
		return
	}

	career, err := s.store.GetCareer(r.Context(), id)
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	if career == nil {
		s.errorResponse(w, http.StatusNotFound, "career not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, career)
}

// handleGetCareerByName looks a career up by its exact stored name. The name
// is a query parameter so it never conflicts with /v1/careers/{id}.
func (s *Server) handleGetCareerByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		s.errorResponse(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	career, err := s.store.GetCareerByName(r.Context(), name)
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	if career == nil {
		s.errorResponse(w, http.StatusNotFound, "career not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, career)
}
