package server

import (
	"net/http"

	"github.com/jonathan/career-guidance/internal/types"
)

// handleGetMe returns the authenticated user's account and profile
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	user, err := s.userService.Me(r.Context(), userID)
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}

// handleUpdateProfile replaces education, skills and interests. The cached
// recommendation for the user is dropped.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req types.UpdateProfileRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := s.guidance.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		s.domainError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	s.authHandler.UpdatePasswordWithUserID(w, r, userID)
}
