package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/career-guidance/internal/types"
)

// handleRecommendations returns the user's recommendation, computing one when
// none is cached. ?refresh=true forces a recomputation.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	refresh := false
	if v := r.URL.Query().Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "refresh must be a boolean")
			return
		}
		refresh = b
	}

	var (
		rec *types.Recommendation
		err error
	)
	if refresh {
		rec, err = s.guidance.Refresh(r.Context(), userID)
	} else {
		rec, err = s.guidance.Recommendations(r.Context(), userID)
	}
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handleSkillGap(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req types.SkillGapRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	report, err := s.guidance.SkillGap(r.Context(), userID, req.CareerName)
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req types.ChatRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := s.guidance.Chat(r.Context(), userID, &req)
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}
