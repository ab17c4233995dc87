package importer

import "time"

// Backup holds the parsed contents of a .bookdue device backup.
type Backup struct {
	Path      string
	Deadlines []BackupDeadline
}

// BackupDeadline is a deadline row as stored in the device's local cache.
// IDs are device-local; the importer assigns fresh server IDs on insert.
// Timestamps are kept as the raw strings the client recorded.
type BackupDeadline struct {
	ID            string
	BookTitle     string
	Author        *string
	Format        string
	Source        string
	Flexibility   string
	TotalQuantity int
	DeadlineDate  string
	CreatedAt     string
	UpdatedAt     string
	Snapshots     []BackupSnapshot
}

// BackupSnapshot is a progress snapshot row from the device cache.
type BackupSnapshot struct {
	ID              string
	CurrentProgress int
	CreatedAt       string
}

// ImportOptions configures the import execution.
type ImportOptions struct {
	// SkipInvalid skips rows with unrecognized formats or empty titles
	// instead of failing the whole import.
	// Default: true (we import what we can)
	SkipInvalid bool

	// SkipDuplicates skips deadlines the user already tracks, matched on
	// book title plus due date.
	// Default: true
	SkipDuplicates bool
}

// DefaultImportOptions returns sensible defaults.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		SkipInvalid:    true,
		SkipDuplicates: true,
	}
}

// ImportResult contains the results of executing a backup import.
type ImportResult struct {
	DeadlinesImported int `json:"deadlines_imported"`
	DeadlinesSkipped  int `json:"deadlines_skipped"`
	SnapshotsImported int `json:"snapshots_imported"`

	// Duration
	Duration time.Duration `json:"duration"`

	// Issues
	Warnings []string `json:"warnings,omitempty"`
}
