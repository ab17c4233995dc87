package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookdueapp/bookdue-server/internal/domain"
)

// GetDeadline retrieves a deadline by ID.
// Returns ErrNotFound if the deadline does not exist.
func (s *Store) GetDeadline(ctx context.Context, id string) (*domain.Deadline, error) {
	deadline, err := s.Deadlines.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("deadline %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting deadline %s: %w", id, err)
	}
	return deadline, nil
}

// CreateDeadline creates a new deadline and indexes it for search.
// Returns ErrAlreadyExists if a deadline with this ID already exists.
func (s *Store) CreateDeadline(ctx context.Context, deadline *domain.Deadline) error {
	if err := s.Deadlines.Create(ctx, deadline.ID, deadline); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return fmt.Errorf("deadline %s: %w", deadline.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("creating deadline %s: %w", deadline.ID, err)
	}

	s.indexDeadline(ctx, deadline)
	return nil
}

// UpdateDeadline updates an existing deadline and re-indexes it.
// Returns ErrNotFound if the deadline does not exist.
func (s *Store) UpdateDeadline(ctx context.Context, deadline *domain.Deadline) error {
	if err := s.Deadlines.Update(ctx, deadline.ID, deadline); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("deadline %s: %w", deadline.ID, ErrNotFound)
		}
		return fmt.Errorf("updating deadline %s: %w", deadline.ID, err)
	}

	s.indexDeadline(ctx, deadline)
	return nil
}

// DeleteDeadline deletes a deadline by ID and removes it from the search index.
// This operation is idempotent.
func (s *Store) DeleteDeadline(ctx context.Context, id string) error {
	if err := s.Deadlines.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting deadline %s: %w", id, err)
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.DeleteDeadline(ctx, id); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove deadline from search index", "deadline_id", id, "error", err)
		}
	}
	return nil
}

// GetUserDeadlines returns all deadlines for a user, sorted by deadline date ascending.
func (s *Store) GetUserDeadlines(ctx context.Context, userID string) ([]*domain.Deadline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deadlines, err := scanIndexPrefix(ctx, s, s.Deadlines, "user", userID+":")
	if err != nil {
		return nil, fmt.Errorf("finding deadlines for user %s: %w", userID, err)
	}

	slices.SortFunc(deadlines, func(a, b *domain.Deadline) int {
		return a.DeadlineDate.Compare(b.DeadlineDate)
	})

	return deadlines, nil
}

// indexDeadline updates the search index, logging failures instead of
// surfacing them. Search staleness is tolerable; losing the write is not.
func (s *Store) indexDeadline(ctx context.Context, deadline *domain.Deadline) {
	if s.searchIndexer == nil {
		return
	}
	if err := s.searchIndexer.IndexDeadline(ctx, deadline); err != nil && s.logger != nil {
		s.logger.Warn("failed to index deadline for search", "deadline_id", deadline.ID, "error", err)
	}
}

// scanIndexPrefix retrieves all entities whose index keys match a prefix.
// Index keys embed the entity ID, so a prefix of "userID:" matches every
// entry the user owns.
func scanIndexPrefix[T any](ctx context.Context, s *Store, e *Entity[T], indexName, prefix string) ([]*T, error) {
	indexPrefix := buildIndexKey(e.Prefix(), indexName, prefix)
	defer releaseKey(indexPrefix)

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = indexPrefix
		opts.PrefetchValues = true

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(indexPrefix); it.ValidForPrefix(indexPrefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var results []*T
	for _, id := range ids {
		entity, err := e.Get(ctx, id)
		if err != nil {
			// Skip if entity not found (index cleanup issue)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		results = append(results, entity)
	}

	return results, nil
}
