package api

import (
	"net/http"

	"github.com/bookdueapp/bookdue-server/internal/domain"
	"github.com/bookdueapp/bookdue-server/internal/http/response"
)

// handleGetStreaks returns the user's current and longest reading streaks.
func (s *Server) handleGetStreaks(w http.ResponseWriter, r *http.Request) {
	streaks, err := s.achievementService.Streaks(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, streaks, s.logger)
}

// handleListAchievements returns the full catalog with the user's progress
// and unlock timestamps.
func (s *Server) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := s.achievementService.Progress(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, achievements, s.logger)
}

// handleCheckAchievements evaluates the catalog and persists any new
// unlocks. Idempotent: achievements already unlocked are not returned again.
func (s *Server) handleCheckAchievements(w http.ResponseWriter, r *http.Request) {
	unlocked, err := s.achievementService.CheckAndUnlock(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if unlocked == nil {
		unlocked = []*domain.AchievementUnlock{}
	}
	response.Success(w, unlocked, s.logger)
}
