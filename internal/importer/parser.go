// Package importer reads device backups produced by the BookDue mobile app
// and loads their deadlines into the store. The client exports its local
// cache as a .bookdue file; parsing and persisting are split so the API can
// report what a backup contains before anything is written.
package importer

import (
	"archive/zip"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// Parser errors.
var (
	ErrNotBackup      = errors.New("not a bookdue backup")
	ErrMissingTable   = errors.New("backup missing expected table")
	ErrInvalidContent = errors.New("invalid backup content")
)

// Parse reads a BookDue device backup file and extracts its deadlines.
//
// Backups are .bookdue files: a ZIP with the app's local SQLite cache:
//
//	backup.bookdue (ZIP)
//	├── details           (app version info, optional)
//	└── bookdue.sqlite    (deadlines + progress snapshots)
func Parse(path string) (*Backup, error) {
	start := time.Now()
	slog.Info("parsing device backup", "path", path)

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid ZIP archive: %v", ErrNotBackup, err)
	}
	defer zr.Close()

	// Look for the SQLite database
	var dbFile *zip.File
	for _, f := range zr.File {
		if f.Name == "bookdue.sqlite" {
			dbFile = f
			break
		}
	}

	if dbFile == nil {
		return nil, fmt.Errorf("%w: missing bookdue.sqlite", ErrNotBackup)
	}

	slog.Info("found database in archive", "size", dbFile.UncompressedSize64)

	// Extract SQLite to temp file
	tmpFile, err := os.CreateTemp("", "bookdue-import-*.sqlite")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	rc, err := dbFile.Open()
	if err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("open database in archive: %w", err)
	}

	_, err = io.Copy(tmpFile, rc)
	rc.Close()
	tmpFile.Close()
	if err != nil {
		return nil, fmt.Errorf("extract database: %w", err)
	}

	// Open SQLite database (using modernc.org/sqlite - pure Go, no CGO)
	db, err := sql.Open("sqlite", tmpPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	backup := &Backup{Path: path}

	if err := parseDeadlines(db, backup); err != nil {
		return nil, fmt.Errorf("parse deadlines: %w", err)
	}

	if err := parseSnapshots(db, backup); err != nil {
		return nil, fmt.Errorf("parse snapshots: %w", err)
	}

	slog.Info("device backup parsed",
		"deadlines", len(backup.Deadlines),
		"snapshots", backup.SnapshotCount(),
		"duration", time.Since(start),
	)

	return backup, nil
}

func parseDeadlines(db *sql.DB, backup *Backup) error {
	query := `
		SELECT
			id,
			COALESCE(book_title, ''),
			author,
			COALESCE(format, ''),
			COALESCE(source, ''),
			COALESCE(flexibility, 'flexible'),
			COALESCE(total_quantity, 0),
			COALESCE(deadline_date, ''),
			COALESCE(created_at, ''),
			COALESCE(updated_at, '')
		FROM deadlines
	`

	rows, err := db.Query(query)
	if err != nil {
		return fmt.Errorf("%w: deadlines: %v", ErrMissingTable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var d BackupDeadline
		err := rows.Scan(
			&d.ID,
			&d.BookTitle,
			&d.Author,
			&d.Format,
			&d.Source,
			&d.Flexibility,
			&d.TotalQuantity,
			&d.DeadlineDate,
			&d.CreatedAt,
			&d.UpdatedAt,
		)
		if err != nil {
			return err
		}
		backup.Deadlines = append(backup.Deadlines, d)
	}
	return rows.Err()
}

func parseSnapshots(db *sql.DB, backup *Backup) error {
	query := `
		SELECT
			id,
			COALESCE(deadline_id, ''),
			COALESCE(current_progress, 0),
			COALESCE(created_at, '')
		FROM progress_snapshots
	`

	rows, err := db.Query(query)
	if err != nil {
		return fmt.Errorf("%w: progress_snapshots: %v", ErrMissingTable, err)
	}
	defer rows.Close()

	// The snapshot table references deadlines by the device-local ID, so
	// group first and attach after.
	byDeadline := make(map[string][]BackupSnapshot)

	for rows.Next() {
		var s BackupSnapshot
		var deadlineID string
		if err := rows.Scan(&s.ID, &deadlineID, &s.CurrentProgress, &s.CreatedAt); err != nil {
			return err
		}
		byDeadline[deadlineID] = append(byDeadline[deadlineID], s)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range backup.Deadlines {
		backup.Deadlines[i].Snapshots = byDeadline[backup.Deadlines[i].ID]
	}

	return nil
}

// Summary returns a human-readable summary of the backup contents.
func (b *Backup) Summary() string {
	var physical, ebook, audio, other int
	for _, d := range b.Deadlines {
		switch d.Format {
		case "physical":
			physical++
		case "ebook":
			ebook++
		case "audio":
			audio++
		default:
			other++
		}
	}
	return fmt.Sprintf(
		"BookDue backup: %d deadlines (%d physical, %d ebook, %d audio, %d unknown), %d snapshots",
		len(b.Deadlines), physical, ebook, audio, other, b.SnapshotCount(),
	)
}

// SnapshotCount returns the total number of progress snapshots in the backup.
func (b *Backup) SnapshotCount() int {
	n := 0
	for _, d := range b.Deadlines {
		n += len(d.Snapshots)
	}
	return n
}
