package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookdueapp/bookdue-server/internal/http/response"
	"github.com/bookdueapp/bookdue-server/internal/service"
)

// handleCreateDeadline creates a new reading deadline.
func (s *Server) handleCreateDeadline(w http.ResponseWriter, r *http.Request) {
	var req service.CreateDeadlineRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	deadline, err := s.deadlineService.Create(r.Context(), getUserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, deadline, s.logger)
}

// handleListDeadlines returns the user's deadlines with pace classifications,
// sorted by due date.
func (s *Server) handleListDeadlines(w http.ResponseWriter, r *http.Request) {
	deadlines, err := s.deadlineService.List(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, deadlines, s.logger)
}

// handleGetDeadline returns a single deadline.
func (s *Server) handleGetDeadline(w http.ResponseWriter, r *http.Request) {
	deadline, err := s.deadlineService.Get(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, deadline, s.logger)
}

// handleUpdateDeadline applies a partial update to a deadline.
func (s *Server) handleUpdateDeadline(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateDeadlineRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	deadline, err := s.deadlineService.Update(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, deadline, s.logger)
}

// handleDeleteDeadline deletes a deadline and its progress history.
func (s *Server) handleDeleteDeadline(w http.ResponseWriter, r *http.Request) {
	if err := s.deadlineService.Delete(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleAddProgress appends a progress snapshot to a deadline.
func (s *Server) handleAddProgress(w http.ResponseWriter, r *http.Request) {
	var req service.AddProgressRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	deadline, err := s.deadlineService.AddProgress(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, deadline, s.logger)
}

// handleDeadlineStatus returns the pace classification for one deadline.
func (s *Server) handleDeadlineStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.deadlineService.Status(r.Context(), getUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, status, s.logger)
}
