package streaks

import (
	"math"
	"time"

	"github.com/bookdueapp/bookdue-server/internal/domain"
	"github.com/bookdueapp/bookdue-server/internal/pace"
)

// Evaluator computes achievement progress for one user's deadlines. It is
// cheap to construct and safe to call repeatedly with the same input: the
// streak and day-peak scans are memoized per instance, nothing else is.
type Evaluator struct {
	deadlines []domain.Deadline
	userID    string
	now       time.Time

	streaks *Result
	peaks   *dayPeaks
}

type dayPeaks struct {
	pages   float64
	minutes float64
}

// NewEvaluator creates an evaluator for a user's deadline snapshot. The
// supplied time anchors current-streak calculation.
func NewEvaluator(deadlines []domain.Deadline, userID string, now time.Time) *Evaluator {
	return &Evaluator{deadlines: deadlines, userID: userID, now: now}
}

// UserID returns the user this evaluator was built for.
func (e *Evaluator) UserID() string { return e.userID }

// Streaks returns the memoized streak result.
func (e *Evaluator) Streaks() Result {
	if e.streaks == nil {
		r := Calculate(e.deadlines, e.now)
		e.streaks = &r
	}
	return *e.streaks
}

func (e *Evaluator) dayPeaks() dayPeaks {
	if e.peaks == nil {
		p := dayPeaks{}
		for _, d := range pace.ExtractDays(e.deadlines, pace.PageEquivalents, 0) {
			if d.Units > p.pages {
				p.pages = d.Units
			}
		}
		for _, d := range pace.ExtractListeningDays(e.deadlines) {
			if d.MinutesListened > p.minutes {
				p.minutes = d.MinutesListened
			}
		}
		e.peaks = &p
	}
	return *e.peaks
}

// current computes the raw value an achievement's criteria measures.
func (e *Evaluator) current(c domain.AchievementCriteria) float64 {
	switch c.Type {
	case domain.CriteriaMaxStreak:
		return float64(e.Streaks().MaxStreak)
	case domain.CriteriaCurrentStreak:
		return float64(e.Streaks().CurrentStreak)
	case domain.CriteriaActiveDeadlines:
		return float64(len(e.deadlines))
	case domain.CriteriaFormatDiversity:
		formats := make(map[domain.Format]bool)
		for i := range e.deadlines {
			if e.deadlines[i].HasProgress() {
				formats[e.deadlines[i].Format] = true
			}
		}
		return float64(len(formats))
	case domain.CriteriaSourceCount:
		n := 0
		for i := range e.deadlines {
			if e.deadlines[i].Source == c.Source && e.deadlines[i].HasProgress() {
				n++
			}
		}
		return float64(n)
	case domain.CriteriaDailyPages:
		return e.dayPeaks().pages
	case domain.CriteriaDailyMinutes:
		return e.dayPeaks().minutes
	default:
		return 0
	}
}

// Progress evaluates one achievement. Current is the raw computed value and
// may exceed the target; Percentage is clamped to 0-100.
func (e *Evaluator) Progress(a domain.Achievement) domain.AchievementProgress {
	current := e.current(a.Criteria)
	target := a.Criteria.Target

	pct := 0
	if target > 0 {
		pct = int(math.Round(current / float64(target) * 100))
		if pct > 100 {
			pct = 100
		}
		if pct < 0 {
			pct = 0
		}
	}

	return domain.AchievementProgress{
		AchievementID: a.ID,
		Current:       current,
		Max:           target,
		Percentage:    pct,
		Achieved:      current >= float64(target),
	}
}

// ProgressAll evaluates the whole catalog in declaration order.
func (e *Evaluator) ProgressAll() []domain.AchievementProgress {
	out := make([]domain.AchievementProgress, 0, len(Catalog))
	for _, a := range Catalog {
		out = append(out, e.Progress(a))
	}
	return out
}
