package api

import (
	"net/http"

	"github.com/bookdueapp/bookdue-server/internal/http/response"
)

// handleGetPace returns the user's reading velocity in page-equivalents/day.
func (s *Server) handleGetPace(w http.ResponseWriter, r *http.Request) {
	pace, err := s.paceService.GetUserPace(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, pace, s.logger)
}

// handleGetListeningPace returns the user's listening velocity in minutes/day.
func (s *Server) handleGetListeningPace(w http.ResponseWriter, r *http.Request) {
	pace, err := s.paceService.GetUserListeningPace(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, pace, s.logger)
}
