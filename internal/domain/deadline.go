// Package domain contains the core business entities and domain logic for the BookDue deadline tracker.
package domain

import (
	"math"
	"time"
)

// Format identifies the medium of a tracked book. The format fixes the unit
// system for TotalQuantity and every progress value: pages for physical and
// ebook, minutes for audio. No conversion happens at the data layer.
type Format string

// Supported book formats.
const (
	FormatPhysical Format = "physical"
	FormatEbook    Format = "ebook"
	FormatAudio    Format = "audio"
)

// Valid returns true if the format is a recognized value.
func (f Format) Valid() bool {
	switch f {
	case FormatPhysical, FormatEbook, FormatAudio:
		return true
	default:
		return false
	}
}

// Unit returns the measurement unit for this format.
func (f Format) Unit() string {
	if f == FormatAudio {
		return "minutes"
	}
	return "pages"
}

// Flexibility indicates whether a deadline date can slip.
type Flexibility string

// Flexibility values.
const (
	FlexibilityFlexible Flexibility = "flexible"
	FlexibilityStrict   Flexibility = "strict"
)

// Valid returns true if the flexibility is a recognized value.
func (fl Flexibility) Valid() bool {
	return fl == FlexibilityFlexible || fl == FlexibilityStrict
}

// Well-known deadline sources. Source is an open set; these are the values
// the client currently sends.
const (
	SourceARC      = "arc"
	SourceLibrary  = "library"
	SourcePersonal = "personal"
)

// ProgressSnapshot is an immutable, timestamped observation of cumulative
// progress for one deadline. Snapshots are append-only and never mutated.
//
// CurrentProgress is cumulative as of CreatedAt: pages for physical/ebook,
// minutes for audio. Values normally only grow, but user corrections can
// make them shrink; consumers must tolerate decreases.
//
// CreatedAt is kept as the raw ISO-8601 string the client recorded. It is
// the authoritative ordering key, and malformed values are filtered by
// consumers rather than rejected at the data layer.
type ProgressSnapshot struct {
	ID              string `json:"id"`
	CurrentProgress int    `json:"current_progress"`
	CreatedAt       string `json:"created_at"`
}

// Time parses the snapshot timestamp. Returns false for empty or malformed
// values, which callers are expected to skip.
func (ps ProgressSnapshot) Time() (time.Time, bool) {
	if ps.CreatedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, ps.CreatedAt)
	if err != nil {
		// Clients occasionally record without an offset.
		t, err = time.Parse("2006-01-02T15:04:05", ps.CreatedAt)
		if err != nil {
			return time.Time{}, false
		}
	}
	return t, true
}

// Deadline is a tracked reading goal: one book, a target date, and the
// chronological progress recorded against it. The snapshot list is owned
// exclusively by its deadline and source ordering is not guaranteed.
type Deadline struct {
	ID            string             `json:"id"`
	UserID        string             `json:"user_id"`
	BookTitle     string             `json:"book_title"`
	Author        *string            `json:"author,omitempty"`
	Format        Format             `json:"format"`
	Source        string             `json:"source"`
	Flexibility   Flexibility        `json:"flexibility"`
	TotalQuantity int                `json:"total_quantity"`
	DeadlineDate  time.Time          `json:"deadline_date"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Progress      []ProgressSnapshot `json:"progress"`
}

// LatestProgress returns the most recent cumulative progress value, by
// snapshot timestamp. Zero when no parseable snapshots exist.
func (d *Deadline) LatestProgress() int {
	latest := 0
	var latestAt time.Time
	for _, ps := range d.Progress {
		t, ok := ps.Time()
		if !ok {
			continue
		}
		if latestAt.IsZero() || t.After(latestAt) {
			latestAt = t
			latest = ps.CurrentProgress
		}
	}
	return latest
}

// ProgressPercentage returns completion as 0-100. Over-completion is not
// clamped; corrections below zero are.
func (d *Deadline) ProgressPercentage() float64 {
	if d.TotalQuantity <= 0 {
		return 0
	}
	pct := float64(d.LatestProgress()) / float64(d.TotalQuantity) * 100
	if pct < 0 {
		return 0
	}
	return pct
}

// UnitsRemaining returns the remaining work in the deadline's native unit.
// Negative when the user has recorded more than the total (valid input).
func (d *Deadline) UnitsRemaining() int {
	return d.TotalQuantity - d.LatestProgress()
}

// DaysLeft returns whole calendar days until the deadline date, measured
// from now. Today counts as 0 remaining once the date has passed.
func (d *Deadline) DaysLeft(now time.Time) int {
	return int(math.Ceil(d.DeadlineDate.Sub(now).Hours() / 24))
}

// HasProgress returns true if at least one snapshot with a parseable
// timestamp exists.
func (d *Deadline) HasProgress() bool {
	for _, ps := range d.Progress {
		if _, ok := ps.Time(); ok {
			return true
		}
	}
	return false
}
