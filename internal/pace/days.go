// Package pace implements the reading-velocity calculation engine: day
// bucketing of progress snapshots, average pace with tiered fallback, and
// deadline status classification. Everything here is a pure function over an
// in-memory deadline slice; callers own fetching and persistence.
package pace

import (
	"math"
	"slices"
	"sort"
	"time"

	"github.com/bookdueapp/bookdue-server/internal/domain"
)

// AudioMinutesPerPage converts audio minutes to page-equivalents. Applied in
// required-pace math and the page-equivalent day policy, never in the
// listening pipeline (which stays in raw minutes).
const AudioMinutesPerPage = 1.5

// ebookPagesPerPercent converts ebook percentage deltas to pages. Ebook
// progress arrives as percent-complete and is normalized against a nominal
// 300-page book. Unrelated to the audio constant; the per-format tables are
// deliberately not unified.
const ebookPagesPerPercent = 3.0

// UnitPolicy maps formats to the factor applied to raw progress deltas.
// Formats absent from the policy are excluded from extraction entirely.
type UnitPolicy map[domain.Format]float64

// Per-pipeline conversion policies.
var (
	// readingPolicy: physical and ebook pages count 1:1; audio deadlines
	// are excluded from reading-day extraction and handled by the
	// listening pipeline instead.
	readingPolicy = UnitPolicy{
		domain.FormatPhysical: 1,
		domain.FormatEbook:    1,
	}

	// listeningPolicy: audio minutes, no conversion.
	listeningPolicy = UnitPolicy{
		domain.FormatAudio: 1,
	}

	// PageEquivalents is the cross-format policy used for single-day
	// totals (e.g. the speed-reader achievement): physical 1:1, ebook
	// percent normalized to a 300-page book, audio minutes divided by 1.5.
	PageEquivalents = UnitPolicy{
		domain.FormatPhysical: 1,
		domain.FormatEbook:    ebookPagesPerPercent,
		domain.FormatAudio:    1 / AudioMinutesPerPage,
	}
)

// Day is one calendar date's aggregated progress delta across deadlines.
// Units is signed: user corrections produce negative values and flow
// through unchanged. Date is a UTC YYYY-MM-DD key.
type Day struct {
	Date  string  `json:"date"`
	Units float64 `json:"units"`
}

// ReadingDay is a Day in page units, emitted by the reading pipeline.
type ReadingDay struct {
	Date      string  `json:"date"`
	PagesRead float64 `json:"pages_read"`
}

// ListeningDay is a Day in raw minutes, emitted by the listening pipeline.
type ListeningDay struct {
	Date            string  `json:"date"`
	MinutesListened float64 `json:"minutes_listened"`
}

// DateKey derives the calendar-date bucket for a timestamp. Day boundaries
// are UTC everywhere (extractors, streaks, peaks) so that a snapshot lands
// in the same bucket no matter which component looks at it.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

type snapshotPoint struct {
	at    time.Time
	value int
}

// sortedPoints returns a deadline's snapshots with parseable timestamps,
// ascending by time. Malformed timestamps are dropped, not fatal.
func sortedPoints(d *domain.Deadline) []snapshotPoint {
	points := make([]snapshotPoint, 0, len(d.Progress))
	for _, ps := range d.Progress {
		t, ok := ps.Time()
		if !ok {
			continue
		}
		points = append(points, snapshotPoint{at: t, value: ps.CurrentProgress})
	}
	slices.SortFunc(points, func(a, b snapshotPoint) int {
		return a.at.Compare(b.at)
	})
	return points
}

// ExtractDays converts deadlines into a day-bucketed delta series under the
// given unit policy. For each consecutive snapshot pair the delta is spread
// evenly across max(1, round(gap)) calendar days starting at the earlier
// snapshot's date. Values are rounded to 2 decimals and sorted ascending by
// date. Deadlines with fewer than two usable snapshots contribute nothing.
//
// maxTransition, when positive, drops any single pair delta whose absolute
// value exceeds it. The listening pace calculator uses this to exclude
// imported baseline entries that would otherwise look like one enormous
// sitting.
func ExtractDays(deadlines []domain.Deadline, policy UnitPolicy, maxTransition float64) []Day {
	days, _ := extractDaysSpan(deadlines, policy, maxTransition)
	return days
}

// extractDaysSpan additionally reports the calendar-day span between the
// earliest and latest snapshot dates among the contributing pairs, floored
// at 1. The pace averages divide by this span, never by the bucket keys: a
// pair's delta is spread over prev..curr-1, so the last bucket key sits a
// day before the last actual activity and would understate the span.
func extractDaysSpan(deadlines []domain.Deadline, policy UnitPolicy, maxTransition float64) ([]Day, float64) {
	buckets := make(map[string]float64)
	var firstActivity, lastActivity string

	for i := range deadlines {
		d := &deadlines[i]
		factor, ok := policy[d.Format]
		if !ok {
			continue
		}

		points := sortedPoints(d)
		for j := 1; j < len(points); j++ {
			prev, curr := points[j-1], points[j]

			diff := float64(curr.value - prev.value)
			if maxTransition > 0 && math.Abs(diff) > maxTransition {
				continue
			}

			// Date keys are YYYY-MM-DD, so string order is date order.
			prevKey, currKey := DateKey(prev.at), DateKey(curr.at)
			if firstActivity == "" || prevKey < firstActivity {
				firstActivity = prevKey
			}
			if currKey > lastActivity {
				lastActivity = currKey
			}

			// Minimum of 1 day keeps same-day pairs out of a zero
			// denominator and guarantees every pair lands somewhere.
			gapDays := math.Round(curr.at.Sub(prev.at).Hours() / 24)
			daysBetween := math.Max(1, gapDays)

			perDay := diff * factor / daysBetween
			for offset := 0; offset < int(daysBetween); offset++ {
				key := DateKey(prev.at.AddDate(0, 0, offset))
				buckets[key] += perDay
			}
		}
	}

	days := make([]Day, 0, len(buckets))
	for date, units := range buckets {
		days = append(days, Day{
			Date:  date,
			Units: math.Round(units*100) / 100,
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	if firstActivity == "" {
		return days, 1
	}
	return days, spanDays(firstActivity, lastActivity)
}

// ExtractReadingDays produces the page-unit day series for physical and
// ebook deadlines. Audio deadlines are excluded; their activity belongs to
// ExtractListeningDays.
func ExtractReadingDays(deadlines []domain.Deadline) []ReadingDay {
	days := ExtractDays(deadlines, readingPolicy, 0)
	out := make([]ReadingDay, len(days))
	for i, d := range days {
		out[i] = ReadingDay{Date: d.Date, PagesRead: d.Units}
	}
	return out
}

// ExtractListeningDays produces the raw-minute day series for audio
// deadlines. No page conversion and no cross-contamination with the reading
// pipeline.
func ExtractListeningDays(deadlines []domain.Deadline) []ListeningDay {
	days := ExtractDays(deadlines, listeningPolicy, 0)
	out := make([]ListeningDay, len(days))
	for i, d := range days {
		out[i] = ListeningDay{Date: d.Date, MinutesListened: d.Units}
	}
	return out
}

// spanDays returns the calendar-day span between two date keys, floored at
// 1. Sparse, bursty activity is penalized: reading on day 1 and day 4
// divides by 3, not by 2.
func spanDays(first, last string) float64 {
	start, err1 := time.Parse("2006-01-02", first)
	end, err2 := time.Parse("2006-01-02", last)
	if err1 != nil || err2 != nil {
		return 1
	}
	span := end.Sub(start).Hours() / 24
	return math.Max(1, span)
}
