// Package streaks computes consecutive-day reading streaks and evaluates
// the achievement catalog against a user's deadlines. Like the pace engine,
// everything is a pure function over in-memory records; the current time is
// injected so results are deterministic under test.
package streaks

import (
	"slices"
	"time"

	"github.com/bookdueapp/bookdue-server/internal/domain"
	"github.com/bookdueapp/bookdue-server/internal/pace"
)

// Result holds the current and all-time-best consecutive-day streaks.
type Result struct {
	CurrentStreak int `json:"current_streak"`
	MaxStreak     int `json:"max_streak"`
}

// activityDates collects the set of distinct UTC calendar dates that have
// at least one progress snapshot, across every deadline and format.
// Presence is what counts: fifty snapshots on one date are one day of
// activity, and the very first baseline entry counts like any other.
func activityDates(deadlines []domain.Deadline) map[string]bool {
	dates := make(map[string]bool)
	for i := range deadlines {
		for _, ps := range deadlines[i].Progress {
			t, ok := ps.Time()
			if !ok {
				continue
			}
			dates[pace.DateKey(t)] = true
		}
	}
	return dates
}

// Calculate computes streaks from the activity-date set. The current streak
// walks backward day-by-day from today and is zero when today itself has no
// activity; there is no partial credit from yesterday. The max streak is
// the longest historical run of consecutive dates.
func Calculate(deadlines []domain.Deadline, today time.Time) Result {
	dates := activityDates(deadlines)
	if len(dates) == 0 {
		return Result{}
	}

	var result Result

	day := time.Date(today.UTC().Year(), today.UTC().Month(), today.UTC().Day(), 0, 0, 0, 0, time.UTC)
	for dates[pace.DateKey(day)] {
		result.CurrentStreak++
		day = day.AddDate(0, 0, -1)
	}

	sorted := make([]string, 0, len(dates))
	for d := range dates {
		sorted = append(sorted, d)
	}
	slices.Sort(sorted)

	best, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		prev, err1 := time.Parse("2006-01-02", sorted[i-1])
		curr, err2 := time.Parse("2006-01-02", sorted[i])
		if err1 != nil || err2 != nil {
			continue
		}
		if curr.Sub(prev) == 24*time.Hour {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 1
		}
	}
	result.MaxStreak = best

	return result
}
