package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/bookdueapp/bookdue-server/internal/domain"
)

// CreateUnlock persists an achievement unlock.
// Returns ErrAlreadyExists if the achievement is already unlocked for this user.
func (s *Store) CreateUnlock(ctx context.Context, unlock *domain.AchievementUnlock) error {
	id := domain.UnlockID(unlock.UserID, unlock.AchievementID)
	if err := s.Unlocks.Create(ctx, id, unlock); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return fmt.Errorf("unlock %s: %w", id, ErrAlreadyExists)
		}
		return fmt.Errorf("creating unlock %s: %w", id, err)
	}
	return nil
}

// GetUnlock retrieves a single unlock for a user and achievement.
// Returns ErrNotFound if the achievement is not unlocked.
func (s *Store) GetUnlock(ctx context.Context, userID, achievementID string) (*domain.AchievementUnlock, error) {
	unlock, err := s.Unlocks.Get(ctx, domain.UnlockID(userID, achievementID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting unlock for user %s achievement %s: %w", userID, achievementID, err)
	}
	return unlock, nil
}

// GetUserUnlocks returns all achievement unlocks for a user, most recent first.
func (s *Store) GetUserUnlocks(ctx context.Context, userID string) ([]*domain.AchievementUnlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unlocks, err := scanIndexPrefix(ctx, s, s.Unlocks, "user", userID+":")
	if err != nil {
		return nil, fmt.Errorf("finding unlocks for user %s: %w", userID, err)
	}

	slices.SortFunc(unlocks, func(a, b *domain.AchievementUnlock) int {
		return b.UnlockedAt.Compare(a.UnlockedAt)
	})

	return unlocks, nil
}
