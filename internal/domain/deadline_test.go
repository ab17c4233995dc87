package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_Valid(t *testing.T) {
	assert.True(t, FormatPhysical.Valid())
	assert.True(t, FormatEbook.Valid())
	assert.True(t, FormatAudio.Valid())
	assert.False(t, Format("vinyl").Valid())
	assert.False(t, Format("").Valid())
}

func TestFormat_Unit(t *testing.T) {
	assert.Equal(t, "pages", FormatPhysical.Unit())
	assert.Equal(t, "pages", FormatEbook.Unit())
	assert.Equal(t, "minutes", FormatAudio.Unit())
}

func TestProgressSnapshot_Time(t *testing.T) {
	ps := ProgressSnapshot{CreatedAt: "2025-06-01T12:00:00Z"}
	got, ok := ps.Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), got)

	// Offset-less timestamps are accepted.
	_, ok = ProgressSnapshot{CreatedAt: "2025-06-01T12:00:00"}.Time()
	assert.True(t, ok)

	_, ok = ProgressSnapshot{CreatedAt: ""}.Time()
	assert.False(t, ok)
	_, ok = ProgressSnapshot{CreatedAt: "yesterday-ish"}.Time()
	assert.False(t, ok)
}

func TestDeadline_LatestProgress(t *testing.T) {
	d := Deadline{
		Progress: []ProgressSnapshot{
			// Unsorted on purpose; latest by timestamp wins, not by
			// position.
			{ID: "c", CurrentProgress: 150, CreatedAt: "2025-06-03T08:00:00Z"},
			{ID: "a", CurrentProgress: 50, CreatedAt: "2025-06-01T08:00:00Z"},
			{ID: "bad", CurrentProgress: 999, CreatedAt: "not-a-date"},
			{ID: "b", CurrentProgress: 100, CreatedAt: "2025-06-02T08:00:00Z"},
		},
	}
	assert.Equal(t, 150, d.LatestProgress())

	assert.Zero(t, (&Deadline{}).LatestProgress())
}

func TestDeadline_ProgressPercentage(t *testing.T) {
	d := Deadline{
		TotalQuantity: 200,
		Progress: []ProgressSnapshot{
			{ID: "a", CurrentProgress: 50, CreatedAt: "2025-06-01T08:00:00Z"},
		},
	}
	assert.InDelta(t, 25.0, d.ProgressPercentage(), 0.001)

	d.TotalQuantity = 0
	assert.Zero(t, d.ProgressPercentage())
}

func TestDeadline_DaysLeft(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	d := Deadline{DeadlineDate: now.AddDate(0, 0, 10)}
	assert.Equal(t, 10, d.DaysLeft(now))

	overdue := Deadline{DeadlineDate: now.AddDate(0, 0, -5)}
	assert.Equal(t, -5, overdue.DaysLeft(now))

	today := Deadline{DeadlineDate: now}
	assert.Equal(t, 0, today.DaysLeft(now))
}

func TestDeadline_HasProgress(t *testing.T) {
	assert.False(t, (&Deadline{}).HasProgress())

	onlyBad := Deadline{Progress: []ProgressSnapshot{{ID: "x", CreatedAt: "nope"}}}
	assert.False(t, onlyBad.HasProgress())

	ok := Deadline{Progress: []ProgressSnapshot{{ID: "x", CreatedAt: "2025-06-01T08:00:00Z"}}}
	assert.True(t, ok.HasProgress())
}

func TestUnlockID(t *testing.T) {
	assert.Equal(t, "user-1:speed_reader", UnlockID("user-1", "speed_reader"))
}
