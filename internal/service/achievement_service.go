package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookdueapp/bookdue-server/internal/domain"
	apperrors "github.com/bookdueapp/bookdue-server/internal/errors"
	"github.com/bookdueapp/bookdue-server/internal/store"
	"github.com/bookdueapp/bookdue-server/internal/streaks"
)

// AchievementService evaluates the achievement catalog for users and
// persists unlocks. Evaluation is pure; only unlock records touch stable
// storage.
type AchievementService struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewAchievementService creates a new achievement service.
func NewAchievementService(s *store.Store, logger *slog.Logger) *AchievementService {
	return &AchievementService{
		store:  s,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the service clock. Test hook.
func (s *AchievementService) SetClock(now func() time.Time) {
	s.now = now
}

// AchievementStatus combines a catalog entry with the user's progress and
// unlock record, if any.
type AchievementStatus struct {
	Achievement domain.Achievement         `json:"achievement"`
	Progress    domain.AchievementProgress `json:"progress"`
	UnlockedAt  *time.Time                 `json:"unlocked_at,omitempty"`
}

// Streaks computes the user's current and longest reading streaks.
func (s *AchievementService) Streaks(ctx context.Context, userID string) (*streaks.Result, error) {
	evaluator, err := s.evaluator(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := evaluator.Streaks()
	return &result, nil
}

// Progress evaluates the whole catalog for a user, attaching stored unlock
// timestamps where present.
func (s *AchievementService) Progress(ctx context.Context, userID string) ([]AchievementStatus, error) {
	evaluator, err := s.evaluator(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlocks, err := s.store.GetUserUnlocks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	unlockedAt := make(map[string]time.Time, len(unlocks))
	for _, u := range unlocks {
		unlockedAt[u.AchievementID] = u.UnlockedAt
	}

	statuses := make([]AchievementStatus, 0, len(streaks.Catalog))
	for _, achievement := range streaks.Catalog {
		status := AchievementStatus{
			Achievement: achievement,
			Progress:    evaluator.Progress(achievement),
		}
		if at, ok := unlockedAt[achievement.ID]; ok {
			t := at
			status.UnlockedAt = &t
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// CheckAndUnlock evaluates the catalog and persists a record for every newly
// achieved achievement. Unlocks are write-once, so re-checking is a no-op
// and the endpoint stays idempotent.
func (s *AchievementService) CheckAndUnlock(ctx context.Context, userID string) ([]*domain.AchievementUnlock, error) {
	evaluator, err := s.evaluator(ctx, userID)
	if err != nil {
		return nil, err
	}

	var unlocked []*domain.AchievementUnlock
	now := s.now().UTC()

	for _, achievement := range streaks.Catalog {
		progress := evaluator.Progress(achievement)
		if !progress.Achieved {
			continue
		}

		unlock := &domain.AchievementUnlock{
			UserID:        userID,
			AchievementID: achievement.ID,
			UnlockedAt:    now,
			Current:       progress.Current,
			Max:           progress.Max,
			Percentage:    progress.Percentage,
		}

		if err := s.store.CreateUnlock(ctx, unlock); err != nil {
			if apperrors.Is(err, store.ErrAlreadyExists) {
				continue // Unlocked on an earlier check
			}
			return nil, fmt.Errorf("create unlock %s: %w", achievement.ID, err)
		}

		s.logger.Info("achievement unlocked",
			"user_id", userID,
			"achievement_id", achievement.ID,
		)
		unlocked = append(unlocked, unlock)
	}

	return unlocked, nil
}

func (s *AchievementService) evaluator(ctx context.Context, userID string) (*streaks.Evaluator, error) {
	deadlines, err := s.store.GetUserDeadlines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list deadlines: %w", err)
	}
	return streaks.NewEvaluator(derefDeadlines(deadlines), userID, s.now()), nil
}
