package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookdueapp/bookdue-server/internal/domain"
	"github.com/bookdueapp/bookdue-server/internal/id"
	"github.com/bookdueapp/bookdue-server/internal/store"
)

// Importer loads parsed backups into the store. Use Parse first, then
// Import with the owning user's ID.
type Importer struct {
	store  *store.Store
	logger *slog.Logger
}

// NewImporter creates an importer.
func NewImporter(s *store.Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		store:  s,
		logger: logger,
	}
}

// Import inserts the backup's deadlines for the given user.
// Device-local IDs are discarded; every deadline and snapshot gets a fresh
// server ID. Snapshot timestamps are kept verbatim so imported history feeds
// the pace and streak calculators exactly as it was recorded.
func (im *Importer) Import(
	ctx context.Context,
	backup *Backup,
	userID string,
	opts ImportOptions,
) (*ImportResult, error) {
	start := time.Now()
	result := &ImportResult{}

	im.logger.Info("backup import starting",
		"user_id", userID,
		"deadlines", len(backup.Deadlines),
		"skip_invalid", opts.SkipInvalid,
		"skip_duplicates", opts.SkipDuplicates,
	)

	// Existing deadlines keyed by title+due date for duplicate detection.
	existing := make(map[string]bool)
	if opts.SkipDuplicates {
		current, err := im.store.GetUserDeadlines(ctx, userID)
		if err != nil {
			return result, fmt.Errorf("load existing deadlines: %w", err)
		}
		for _, d := range current {
			existing[dedupeKey(d.BookTitle, d.DeadlineDate)] = true
		}
	}

	for _, bd := range backup.Deadlines {
		deadline, err := im.toDomain(&bd, userID)
		if err != nil {
			if !opts.SkipInvalid {
				return result, fmt.Errorf("deadline %q: %w", bd.BookTitle, err)
			}
			result.DeadlinesSkipped++
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("skipped %q: %v", bd.BookTitle, err))
			continue
		}

		if opts.SkipDuplicates && existing[dedupeKey(deadline.BookTitle, deadline.DeadlineDate)] {
			result.DeadlinesSkipped++
			continue
		}

		if err := im.store.CreateDeadline(ctx, deadline); err != nil {
			// Log but continue - we want to import what we can
			im.logger.Warn("failed to create deadline",
				"error", err,
				"user_id", userID,
				"book_title", deadline.BookTitle,
			)
			result.DeadlinesSkipped++
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("failed to create %q: %v", deadline.BookTitle, err))
			continue
		}

		existing[dedupeKey(deadline.BookTitle, deadline.DeadlineDate)] = true
		result.DeadlinesImported++
		result.SnapshotsImported += len(deadline.Progress)
	}

	result.Duration = time.Since(start)

	im.logger.Info("backup import completed",
		"user_id", userID,
		"deadlines_imported", result.DeadlinesImported,
		"deadlines_skipped", result.DeadlinesSkipped,
		"snapshots_imported", result.SnapshotsImported,
		"duration", result.Duration,
	)

	return result, nil
}

// toDomain converts a backup row to a domain deadline owned by userID.
func (im *Importer) toDomain(bd *BackupDeadline, userID string) (*domain.Deadline, error) {
	if strings.TrimSpace(bd.BookTitle) == "" {
		return nil, fmt.Errorf("%w: empty book title", ErrInvalidContent)
	}

	format := domain.Format(bd.Format)
	if !format.Valid() {
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidContent, bd.Format)
	}

	if bd.TotalQuantity <= 0 {
		return nil, fmt.Errorf("%w: total quantity must be positive", ErrInvalidContent)
	}

	dueDate, err := parseBackupTime(bd.DeadlineDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad deadline date %q", ErrInvalidContent, bd.DeadlineDate)
	}

	flexibility := domain.Flexibility(bd.Flexibility)
	if !flexibility.Valid() {
		flexibility = domain.FlexibilityFlexible
	}

	deadlineID, err := id.Generate("dl")
	if err != nil {
		return nil, fmt.Errorf("generate deadline id: %w", err)
	}

	now := time.Now().UTC()
	createdAt := now
	if t, err := parseBackupTime(bd.CreatedAt); err == nil {
		createdAt = t
	}

	deadline := &domain.Deadline{
		ID:            deadlineID,
		UserID:        userID,
		BookTitle:     bd.BookTitle,
		Author:        bd.Author,
		Format:        format,
		Source:        bd.Source,
		Flexibility:   flexibility,
		TotalQuantity: bd.TotalQuantity,
		DeadlineDate:  dueDate,
		CreatedAt:     createdAt,
		UpdatedAt:     now,
	}

	for _, snap := range bd.Snapshots {
		snapID, err := id.Generate("snap")
		if err != nil {
			return nil, fmt.Errorf("generate snapshot id: %w", err)
		}
		deadline.Progress = append(deadline.Progress, domain.ProgressSnapshot{
			ID:              snapID,
			CurrentProgress: snap.CurrentProgress,
			CreatedAt:       snap.CreatedAt,
		})
	}

	return deadline, nil
}

// parseBackupTime parses a client-recorded timestamp. Devices record either
// full RFC 3339 or a bare date.
func parseBackupTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func dedupeKey(title string, due time.Time) string {
	return strings.ToLower(strings.TrimSpace(title)) + ":" + due.UTC().Format("2006-01-02")
}
