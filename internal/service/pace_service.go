package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookdueapp/bookdue-server/internal/domain"
	"github.com/bookdueapp/bookdue-server/internal/pace"
	"github.com/bookdueapp/bookdue-server/internal/store"
)

// PaceService exposes the pace engine over a user's stored deadlines.
type PaceService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewPaceService creates a new pace service.
func NewPaceService(s *store.Store, logger *slog.Logger) *PaceService {
	return &PaceService{
		store:  s,
		logger: logger,
	}
}

// PaceResponse pairs a pace summary with its display rendering.
type PaceResponse struct {
	pace.UserPaceData
	Display string `json:"display"`
}

// ListeningPaceResponse is the listening-side equivalent.
type ListeningPaceResponse struct {
	pace.UserListeningPaceData
	Display string `json:"display"`
}

// GetUserPace computes the user's reading velocity in page-equivalents/day.
func (s *PaceService) GetUserPace(ctx context.Context, userID string) (*PaceResponse, error) {
	deadlines, err := s.store.GetUserDeadlines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list deadlines: %w", err)
	}

	data := pace.CalculateUserPace(derefDeadlines(deadlines))
	return &PaceResponse{
		UserPaceData: data,
		Display:      pace.FormatPace(data.AveragePace, domain.FormatPhysical),
	}, nil
}

// GetUserListeningPace computes the user's listening velocity in minutes/day.
func (s *PaceService) GetUserListeningPace(ctx context.Context, userID string) (*ListeningPaceResponse, error) {
	deadlines, err := s.store.GetUserDeadlines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list deadlines: %w", err)
	}

	data := pace.CalculateUserListeningPace(derefDeadlines(deadlines))
	return &ListeningPaceResponse{
		UserListeningPaceData: data,
		Display:               pace.FormatPace(data.AveragePace, domain.FormatAudio),
	}, nil
}
