package importer

import (
	"archive/zip"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdueapp/bookdue-server/internal/domain"
	"github.com/bookdueapp/bookdue-server/internal/store"
)

// backupRow is a deadline row written into a test backup database.
type backupRow struct {
	id            string
	title         string
	author        string
	format        string
	source        string
	flexibility   string
	totalQuantity int
	deadlineDate  string
	snapshots     []snapshotRow
}

type snapshotRow struct {
	id        string
	progress  int
	createdAt string
}

// writeBackupFile builds a .bookdue file (ZIP containing bookdue.sqlite)
// with the given rows.
func writeBackupFile(t *testing.T, rows []backupRow) string {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "bookdue.sqlite")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)

	_, err = db.Exec(`
		CREATE TABLE deadlines (
			id TEXT PRIMARY KEY,
			book_title TEXT,
			author TEXT,
			format TEXT,
			source TEXT,
			flexibility TEXT,
			total_quantity INTEGER,
			deadline_date TEXT,
			created_at TEXT,
			updated_at TEXT
		);
		CREATE TABLE progress_snapshots (
			id TEXT PRIMARY KEY,
			deadline_id TEXT,
			current_progress INTEGER,
			created_at TEXT
		);
	`)
	require.NoError(t, err)

	for _, r := range rows {
		var author any
		if r.author != "" {
			author = r.author
		}
		_, err = db.Exec(
			`INSERT INTO deadlines (id, book_title, author, format, source, flexibility, total_quantity, deadline_date, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.id, r.title, author, r.format, r.source, r.flexibility, r.totalQuantity, r.deadlineDate,
			"2026-01-01T10:00:00Z", "2026-01-01T10:00:00Z",
		)
		require.NoError(t, err)

		for _, s := range r.snapshots {
			_, err = db.Exec(
				`INSERT INTO progress_snapshots (id, deadline_id, current_progress, created_at) VALUES (?, ?, ?, ?)`,
				s.id, r.id, s.progress, s.createdAt,
			)
			require.NoError(t, err)
		}
	}
	require.NoError(t, db.Close())

	// Zip it up as the client does
	backupPath := filepath.Join(dir, "export.bookdue")
	f, err := os.Create(backupPath)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	w, err := zw.Create("bookdue.sqlite")
	require.NoError(t, err)
	data, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	return backupPath
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "badger"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestParse(t *testing.T) {
	path := writeBackupFile(t, []backupRow{
		{
			id: "local-1", title: "The Hobbit", author: "J.R.R. Tolkien",
			format: "physical", source: "library", flexibility: "flexible",
			totalQuantity: 310, deadlineDate: "2026-06-01T00:00:00Z",
			snapshots: []snapshotRow{
				{id: "ls-1", progress: 50, createdAt: "2026-01-02T20:00:00Z"},
				{id: "ls-2", progress: 120, createdAt: "2026-01-05T20:00:00Z"},
			},
		},
		{
			id: "local-2", title: "Project Hail Mary",
			format: "audio", source: "personal", flexibility: "strict",
			totalQuantity: 970, deadlineDate: "2026-07-15T00:00:00Z",
		},
	})

	backup, err := Parse(path)
	require.NoError(t, err)

	require.Len(t, backup.Deadlines, 2)
	assert.Equal(t, 2, backup.SnapshotCount())

	var hobbit *BackupDeadline
	for i := range backup.Deadlines {
		if backup.Deadlines[i].BookTitle == "The Hobbit" {
			hobbit = &backup.Deadlines[i]
		}
	}
	require.NotNil(t, hobbit)
	require.NotNil(t, hobbit.Author)
	assert.Equal(t, "J.R.R. Tolkien", *hobbit.Author)
	assert.Len(t, hobbit.Snapshots, 2)
	assert.Equal(t, 310, hobbit.TotalQuantity)
}

func TestParse_NotAZip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garbage.bookdue")
	require.NoError(t, os.WriteFile(path, []byte("not a zip at all"), 0o644))

	_, err := Parse(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotBackup)
}

func TestParse_MissingDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bookdue")

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("details")
	require.NoError(t, err)
	_, err = w.Write([]byte("bookdue-android 1.4.0"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = Parse(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotBackup)
}

func TestImport(t *testing.T) {
	path := writeBackupFile(t, []backupRow{
		{
			id: "local-1", title: "The Hobbit", author: "J.R.R. Tolkien",
			format: "physical", source: "library", flexibility: "flexible",
			totalQuantity: 310, deadlineDate: "2026-06-01T00:00:00Z",
			snapshots: []snapshotRow{
				{id: "ls-1", progress: 50, createdAt: "2026-01-02T20:00:00Z"},
			},
		},
	})

	backup, err := Parse(path)
	require.NoError(t, err)

	s := setupTestStore(t)
	im := NewImporter(s, nil)
	ctx := context.Background()

	result, err := im.Import(ctx, backup, "user-1", DefaultImportOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, result.DeadlinesImported)
	assert.Equal(t, 0, result.DeadlinesSkipped)
	assert.Equal(t, 1, result.SnapshotsImported)

	deadlines, err := s.GetUserDeadlines(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, deadlines, 1)

	d := deadlines[0]
	assert.Equal(t, "The Hobbit", d.BookTitle)
	assert.Equal(t, domain.FormatPhysical, d.Format)
	assert.Equal(t, "user-1", d.UserID)
	// Fresh server IDs, not the device-local ones
	assert.NotEqual(t, "local-1", d.ID)
	require.Len(t, d.Progress, 1)
	assert.Equal(t, 50, d.Progress[0].CurrentProgress)
	assert.Equal(t, "2026-01-02T20:00:00Z", d.Progress[0].CreatedAt)
}

func TestImport_SkipsDuplicates(t *testing.T) {
	path := writeBackupFile(t, []backupRow{
		{
			id: "local-1", title: "The Hobbit",
			format: "physical", source: "library", flexibility: "flexible",
			totalQuantity: 310, deadlineDate: "2026-06-01T00:00:00Z",
		},
	})

	backup, err := Parse(path)
	require.NoError(t, err)

	s := setupTestStore(t)
	im := NewImporter(s, nil)
	ctx := context.Background()

	// First import lands, second is a no-op
	result, err := im.Import(ctx, backup, "user-1", DefaultImportOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, result.DeadlinesImported)

	result, err = im.Import(ctx, backup, "user-1", DefaultImportOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, result.DeadlinesImported)
	assert.Equal(t, 1, result.DeadlinesSkipped)

	deadlines, err := s.GetUserDeadlines(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, deadlines, 1)
}

func TestImport_SkipsInvalidRows(t *testing.T) {
	path := writeBackupFile(t, []backupRow{
		{
			id: "local-1", title: "Good Book",
			format: "ebook", source: "personal", flexibility: "flexible",
			totalQuantity: 200, deadlineDate: "2026-06-01T00:00:00Z",
		},
		{
			id: "local-2", title: "Bad Format",
			format: "hardcover", source: "personal", flexibility: "flexible",
			totalQuantity: 200, deadlineDate: "2026-06-01T00:00:00Z",
		},
		{
			id: "local-3", title: "",
			format: "ebook", source: "personal", flexibility: "flexible",
			totalQuantity: 200, deadlineDate: "2026-06-01T00:00:00Z",
		},
	})

	backup, err := Parse(path)
	require.NoError(t, err)

	s := setupTestStore(t)
	im := NewImporter(s, nil)

	result, err := im.Import(context.Background(), backup, "user-1", DefaultImportOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, result.DeadlinesImported)
	assert.Equal(t, 2, result.DeadlinesSkipped)
	assert.Len(t, result.Warnings, 2)
}

func TestImport_StrictModeFailsOnInvalid(t *testing.T) {
	path := writeBackupFile(t, []backupRow{
		{
			id: "local-1", title: "Bad Format",
			format: "hardcover", source: "personal", flexibility: "flexible",
			totalQuantity: 200, deadlineDate: "2026-06-01T00:00:00Z",
		},
	})

	backup, err := Parse(path)
	require.NoError(t, err)

	s := setupTestStore(t)
	im := NewImporter(s, nil)

	opts := DefaultImportOptions()
	opts.SkipInvalid = false

	_, err = im.Import(context.Background(), backup, "user-1", opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidContent)
}

func TestImport_UnknownFlexibilityDefaultsToFlexible(t *testing.T) {
	path := writeBackupFile(t, []backupRow{
		{
			id: "local-1", title: "Odd Flexibility",
			format: "physical", source: "personal", flexibility: "whenever",
			totalQuantity: 100, deadlineDate: "2026-06-01",
		},
	})

	backup, err := Parse(path)
	require.NoError(t, err)

	s := setupTestStore(t)
	im := NewImporter(s, nil)
	ctx := context.Background()

	result, err := im.Import(ctx, backup, "user-1", DefaultImportOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, result.DeadlinesImported)

	deadlines, err := s.GetUserDeadlines(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, deadlines, 1)
	assert.Equal(t, domain.FlexibilityFlexible, deadlines[0].Flexibility)
}
