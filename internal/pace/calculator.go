package pace

import (
	"time"

	"github.com/bookdueapp/bookdue-server/internal/domain"
)

// Tuning constants for the pace calculators.
const (
	// lookbackDays restricts pace math to recent activity. The cutoff is
	// anchored at the newest snapshot in the dataset, not at wall-clock
	// now, so a user returning from a break is judged on their latest
	// burst rather than the gap.
	lookbackDays = 21

	// minReliableReadingDays is the distinct-day threshold below which the
	// reading calculator falls back to the default pace.
	minReliableReadingDays = 3

	// DefaultReadingPace is the conservative fallback, in page-equivalents
	// per day, used when recent data is too sparse to trust.
	DefaultReadingPace = 25.0

	// listeningSeedThreshold is the largest single-transition minute delta
	// treated as genuine listening. Anything above it is assumed to be an
	// imported baseline (a user logging hundreds of minutes of
	// pre-existing progress in one entry) and excluded from pace math
	// only; cumulative totals elsewhere keep it.
	listeningSeedThreshold = 300.0
)

// CalculationMethod records which tier produced a pace value.
type CalculationMethod string

// Calculation methods.
const (
	MethodRecentData      CalculationMethod = "recent_data"
	MethodDefaultFallback CalculationMethod = "default_fallback"
)

// UserPaceData is a point-in-time summary of reading velocity, in
// page-equivalents per day.
type UserPaceData struct {
	AveragePace       float64           `json:"average_pace"`
	ReadingDaysCount  int               `json:"reading_days_count"`
	IsReliable        bool              `json:"is_reliable"`
	CalculationMethod CalculationMethod `json:"calculation_method"`
}

// UserListeningPaceData is the listening-side summary, in minutes per day.
// The listening pipeline has its own reliability threshold: a single active
// day already counts as recent data.
type UserListeningPaceData struct {
	AveragePace        float64           `json:"average_pace"`
	ListeningDaysCount int               `json:"listening_days_count"`
	IsReliable         bool              `json:"is_reliable"`
	CalculationMethod  CalculationMethod `json:"calculation_method"`
}

// latestSnapshotTime finds the newest parseable snapshot timestamp across
// the whole dataset, regardless of format.
func latestSnapshotTime(deadlines []domain.Deadline) (time.Time, bool) {
	var latest time.Time
	found := false
	for i := range deadlines {
		for _, ps := range deadlines[i].Progress {
			t, ok := ps.Time()
			if !ok {
				continue
			}
			if !found || t.After(latest) {
				latest = t
				found = true
			}
		}
	}
	return latest, found
}

// withinCutoff returns copies of the deadlines with snapshots older than the
// lookback window removed. The input is never mutated.
func withinCutoff(deadlines []domain.Deadline) []domain.Deadline {
	latest, ok := latestSnapshotTime(deadlines)
	if !ok {
		return nil
	}
	cutoff := latest.AddDate(0, 0, -lookbackDays)

	filtered := make([]domain.Deadline, 0, len(deadlines))
	for i := range deadlines {
		d := deadlines[i]
		kept := make([]domain.ProgressSnapshot, 0, len(d.Progress))
		for _, ps := range d.Progress {
			t, ok := ps.Time()
			if !ok {
				continue
			}
			if !t.Before(cutoff) {
				kept = append(kept, ps)
			}
		}
		d.Progress = kept
		filtered = append(filtered, d)
	}
	return filtered
}

// CalculateUserPace computes reading velocity from recent day-bucketed
// activity. Tier 1 (recent_data) requires at least 3 distinct active days
// and divides the total delta by the calendar span between the first and
// last contributing snapshot date. Tier 2 falls back to DefaultReadingPace
// with IsReliable=false.
func CalculateUserPace(deadlines []domain.Deadline) UserPaceData {
	days, span := extractDaysSpan(withinCutoff(deadlines), readingPolicy, 0)

	if len(days) < minReliableReadingDays {
		return UserPaceData{
			AveragePace:       DefaultReadingPace,
			ReadingDaysCount:  len(days),
			IsReliable:        false,
			CalculationMethod: MethodDefaultFallback,
		}
	}

	var total float64
	for _, d := range days {
		total += d.Units
	}

	return UserPaceData{
		AveragePace:       total / span,
		ReadingDaysCount:  len(days),
		IsReliable:        true,
		CalculationMethod: MethodRecentData,
	}
}

// CalculateUserListeningPace computes listening velocity in raw minutes per
// day. Single-transition deltas above the seed threshold are excluded, and
// any activity at all counts as recent data.
func CalculateUserListeningPace(deadlines []domain.Deadline) UserListeningPaceData {
	days, span := extractDaysSpan(withinCutoff(deadlines), listeningPolicy, listeningSeedThreshold)

	if len(days) == 0 {
		return UserListeningPaceData{
			AveragePace:        0,
			ListeningDaysCount: 0,
			IsReliable:         false,
			CalculationMethod:  MethodDefaultFallback,
		}
	}

	var total float64
	for _, d := range days {
		total += d.Units
	}

	return UserListeningPaceData{
		AveragePace:        total / span,
		ListeningDaysCount: len(days),
		IsReliable:         true,
		CalculationMethod:  MethodRecentData,
	}
}
