package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookdueapp/bookdue-server/internal/domain"
	apperrors "github.com/bookdueapp/bookdue-server/internal/errors"
	"github.com/bookdueapp/bookdue-server/internal/id"
	"github.com/bookdueapp/bookdue-server/internal/pace"
	"github.com/bookdueapp/bookdue-server/internal/store"
	"github.com/bookdueapp/bookdue-server/internal/validation"
)

// DeadlineService manages reading deadlines and their progress snapshots.
type DeadlineService struct {
	store    *store.Store
	validate *validation.Validator
	logger   *slog.Logger
	now      func() time.Time
}

// NewDeadlineService creates a new deadline service.
func NewDeadlineService(s *store.Store, validate *validation.Validator, logger *slog.Logger) *DeadlineService {
	return &DeadlineService{
		store:    s,
		validate: validate,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock overrides the service clock. Test hook.
func (s *DeadlineService) SetClock(now func() time.Time) {
	s.now = now
}

// CreateDeadlineRequest contains the data for a new deadline.
type CreateDeadlineRequest struct {
	BookTitle     string    `json:"book_title" validate:"required,max=512"`
	Author        *string   `json:"author,omitempty" validate:"omitempty,max=256"`
	Format        string    `json:"format" validate:"required,bookformat"`
	Source        string    `json:"source" validate:"required,booksource"`
	Flexibility   string    `json:"flexibility" validate:"omitempty,oneof=flexible strict"`
	TotalQuantity int       `json:"total_quantity" validate:"required,gt=0"`
	DeadlineDate  time.Time `json:"deadline_date" validate:"required"`
}

// UpdateDeadlineRequest contains the updatable fields of a deadline.
// Nil fields are left unchanged.
type UpdateDeadlineRequest struct {
	BookTitle     *string    `json:"book_title,omitempty" validate:"omitempty,max=512"`
	Author        *string    `json:"author,omitempty" validate:"omitempty,max=256"`
	Source        *string    `json:"source,omitempty" validate:"omitempty,booksource"`
	Flexibility   *string    `json:"flexibility,omitempty" validate:"omitempty,oneof=flexible strict"`
	TotalQuantity *int       `json:"total_quantity,omitempty" validate:"omitempty,gt=0"`
	DeadlineDate  *time.Time `json:"deadline_date,omitempty"`
}

// AddProgressRequest records a new cumulative progress value.
type AddProgressRequest struct {
	CurrentProgress int `json:"current_progress" validate:"gte=0"`
	// CreatedAt is the client-recorded timestamp (RFC 3339). The server
	// clock is used when empty.
	CreatedAt string `json:"created_at,omitempty"`
}

// DeadlineWithStatus pairs a deadline with its computed pace classification.
type DeadlineWithStatus struct {
	Deadline     *domain.Deadline     `json:"deadline"`
	Status       pace.PaceBasedStatus `json:"status"`
	DaysLeft     int                  `json:"days_left"`
	RequiredPace float64              `json:"required_pace"`
}

// Create validates and persists a new deadline for the user.
func (s *DeadlineService) Create(ctx context.Context, userID string, req CreateDeadlineRequest) (*domain.Deadline, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}

	deadlineID, err := id.Generate("dl")
	if err != nil {
		return nil, fmt.Errorf("generate deadline ID: %w", err)
	}

	flexibility := domain.Flexibility(req.Flexibility)
	if !flexibility.Valid() {
		flexibility = domain.FlexibilityFlexible
	}

	now := s.now().UTC()
	deadline := &domain.Deadline{
		ID:            deadlineID,
		UserID:        userID,
		BookTitle:     req.BookTitle,
		Author:        req.Author,
		Format:        domain.Format(req.Format),
		Source:        req.Source,
		Flexibility:   flexibility,
		TotalQuantity: req.TotalQuantity,
		DeadlineDate:  req.DeadlineDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateDeadline(ctx, deadline); err != nil {
		return nil, fmt.Errorf("create deadline: %w", err)
	}

	s.logger.Info("deadline created",
		"deadline_id", deadlineID,
		"user_id", userID,
		"format", deadline.Format,
	)

	return deadline, nil
}

// Get returns one of the user's deadlines.
func (s *DeadlineService) Get(ctx context.Context, userID, deadlineID string) (*domain.Deadline, error) {
	return s.getOwned(ctx, userID, deadlineID)
}

// Update applies a partial update to one of the user's deadlines.
func (s *DeadlineService) Update(ctx context.Context, userID, deadlineID string, req UpdateDeadlineRequest) (*domain.Deadline, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}

	deadline, err := s.getOwned(ctx, userID, deadlineID)
	if err != nil {
		return nil, err
	}

	if req.BookTitle != nil {
		deadline.BookTitle = *req.BookTitle
	}
	if req.Author != nil {
		deadline.Author = req.Author
	}
	if req.Source != nil {
		deadline.Source = *req.Source
	}
	if req.Flexibility != nil {
		deadline.Flexibility = domain.Flexibility(*req.Flexibility)
	}
	if req.TotalQuantity != nil {
		deadline.TotalQuantity = *req.TotalQuantity
	}
	if req.DeadlineDate != nil {
		deadline.DeadlineDate = *req.DeadlineDate
	}
	deadline.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateDeadline(ctx, deadline); err != nil {
		return nil, fmt.Errorf("update deadline: %w", err)
	}

	return deadline, nil
}

// Delete removes one of the user's deadlines. The store cascades the search
// index entry.
func (s *DeadlineService) Delete(ctx context.Context, userID, deadlineID string) error {
	if _, err := s.getOwned(ctx, userID, deadlineID); err != nil {
		return err
	}

	if err := s.store.DeleteDeadline(ctx, deadlineID); err != nil {
		return fmt.Errorf("delete deadline: %w", err)
	}

	s.logger.Info("deadline deleted", "deadline_id", deadlineID, "user_id", userID)
	return nil
}

// AddProgress appends an immutable snapshot to the deadline. Snapshots are
// never rewritten; corrections arrive as new snapshots with lower values.
func (s *DeadlineService) AddProgress(ctx context.Context, userID, deadlineID string, req AddProgressRequest) (*domain.Deadline, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}

	deadline, err := s.getOwned(ctx, userID, deadlineID)
	if err != nil {
		return nil, err
	}

	snapID, err := id.Generate("snap")
	if err != nil {
		return nil, fmt.Errorf("generate snapshot ID: %w", err)
	}

	createdAt := req.CreatedAt
	if createdAt == "" {
		createdAt = s.now().UTC().Format(time.RFC3339)
	} else if _, err := time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, apperrors.Validation("created_at must be a valid RFC 3339 timestamp")
	}

	deadline.Progress = append(deadline.Progress, domain.ProgressSnapshot{
		ID:              snapID,
		CurrentProgress: req.CurrentProgress,
		CreatedAt:       createdAt,
	})
	deadline.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateDeadline(ctx, deadline); err != nil {
		return nil, fmt.Errorf("update deadline: %w", err)
	}

	return deadline, nil
}

// List returns the user's deadlines sorted by due date, each with its pace
// classification. The pace engine runs once per call, not once per deadline.
func (s *DeadlineService) List(ctx context.Context, userID string) ([]DeadlineWithStatus, error) {
	deadlines, err := s.store.GetUserDeadlines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list deadlines: %w", err)
	}

	values := derefDeadlines(deadlines)
	userPace := pace.CalculateUserPace(values)
	now := s.now()

	result := make([]DeadlineWithStatus, 0, len(deadlines))
	for _, d := range deadlines {
		result = append(result, s.classify(d, userPace, now))
	}
	return result, nil
}

// Status computes the pace classification and display message for a single
// deadline.
func (s *DeadlineService) Status(ctx context.Context, userID, deadlineID string) (*DeadlineWithStatus, error) {
	deadline, err := s.getOwned(ctx, userID, deadlineID)
	if err != nil {
		return nil, err
	}

	// Pace is a property of the user, so the whole dataset feeds it even
	// when classifying one deadline.
	deadlines, err := s.store.GetUserDeadlines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list deadlines: %w", err)
	}

	userPace := pace.CalculateUserPace(derefDeadlines(deadlines))
	status := s.classify(deadline, userPace, s.now())
	return &status, nil
}

// classify runs the status chain for one deadline against the user's pace.
func (s *DeadlineService) classify(d *domain.Deadline, userPace pace.UserPaceData, now time.Time) DeadlineWithStatus {
	daysLeft := d.DaysLeft(now)
	required := pace.RequiredPace(d.TotalQuantity, d.LatestProgress(), daysLeft, d.Format)
	status := pace.StatusFor(userPace.AveragePace, required, daysLeft, d.ProgressPercentage())
	status.Message = pace.StatusMessage(status, userPace, required, d.Format)

	return DeadlineWithStatus{
		Deadline:     d,
		Status:       status,
		DaysLeft:     daysLeft,
		RequiredPace: required,
	}
}

// getOwned fetches a deadline and enforces ownership.
func (s *DeadlineService) getOwned(ctx context.Context, userID, deadlineID string) (*domain.Deadline, error) {
	deadline, err := s.store.GetDeadline(ctx, deadlineID)
	if err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("deadline not found")
		}
		return nil, fmt.Errorf("get deadline: %w", err)
	}
	if deadline.UserID != userID {
		return nil, apperrors.Forbidden("deadline belongs to another user")
	}
	return deadline, nil
}

// derefDeadlines converts store results into the value slice the pure
// engines take.
func derefDeadlines(deadlines []*domain.Deadline) []domain.Deadline {
	values := make([]domain.Deadline, 0, len(deadlines))
	for _, d := range deadlines {
		values = append(values, *d)
	}
	return values
}
