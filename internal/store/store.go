// Package store provides persistence on top of Badger with generic
// entity CRUD and secondary indexes.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookdueapp/bookdue-server/internal/domain"
)

// SearchIndexer is the interface for updating the search index.
// Store uses this to keep search in sync without depending on search implementation.
type SearchIndexer interface {
	IndexDeadline(ctx context.Context, d *domain.Deadline) error
	DeleteDeadline(ctx context.Context, deadlineID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexDeadline is a no-op.
func (NoopSearchIndexer) IndexDeadline(context.Context, *domain.Deadline) error { return nil }

// DeleteDeadline is a no-op.
func (NoopSearchIndexer) DeleteDeadline(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Search indexer for keeping search in sync with store changes.
	// Set via SetSearchIndexer after store creation to avoid circular dependencies.
	searchIndexer SearchIndexer

	// Generic entities
	Users     *Entity[domain.User]
	Deadlines *Entity[domain.Deadline]
	Unlocks   *Entity[domain.AchievementUnlock]
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	store.initUsers()
	store.initDeadlines()
	store.initUnlocks()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// This is set after store creation to avoid circular dependencies
// (store needs to exist before search service can be created).
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

// initUsers initializes the Users entity on the store.
// Uses case-insensitive email indexing via normalizeEmail transformation.
func (s *Store) initUsers() {
	s.Users = NewEntity[domain.User](s, "user:").
		WithIndexTransform("email",
			func(u *domain.User) []string {
				return []string{normalizeEmail(u.Email)}
			},
			normalizeEmail, // Transform lookups to be case-insensitive
		)
}

// initDeadlines initializes the Deadlines entity on the store.
// Indexed by user; index keys include the deadline ID since a user has many deadlines.
func (s *Store) initDeadlines() {
	s.Deadlines = NewEntity[domain.Deadline](s, "deadline:").
		WithIndex("user", func(d *domain.Deadline) []string {
			return []string{d.UserID + ":" + d.ID}
		})
}

// initUnlocks initializes the achievement unlock entity on the store.
// Unlock IDs are "userID:achievementID", so the user index key is the ID itself.
func (s *Store) initUnlocks() {
	s.Unlocks = NewEntity[domain.AchievementUnlock](s, "unlock:").
		WithIndex("user", func(u *domain.AchievementUnlock) []string {
			return []string{u.UserID + ":" + u.AchievementID}
		})
}

// normalizeEmail normalizes an email address for consistent lookups.
// Lowercases and trims whitespace.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
