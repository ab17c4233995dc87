package pace

import (
	"fmt"
	"math"

	"github.com/bookdueapp/bookdue-server/internal/domain"
)

// daysPerMonth is the average Gregorian month length used for coarse
// required-pace display. Display only; never used in classification math.
const daysPerMonth = 30.44

// pluralize returns the unit with an "s" when n != 1.
func pluralize(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

// FormatPace renders a velocity for display, rounded to the nearest whole
// unit. Audio paces are minutes/day, rendered as hours and minutes above
// one hour.
func FormatPace(unitsPerDay float64, format domain.Format) string {
	n := int(math.Round(unitsPerDay))

	if format == domain.FormatAudio {
		if n >= 60 {
			h, m := n/60, n%60
			if m == 0 {
				return fmt.Sprintf("%dh/day", h)
			}
			return fmt.Sprintf("%dh %dm/day", h, m)
		}
		return fmt.Sprintf("%d %s/day", n, pluralize(n, "minute"))
	}

	return fmt.Sprintf("%d %s/day", n, pluralize(n, "page"))
}

// FormatRequiredPace renders the work rate needed to finish on time. Very
// low rates get week or month granularity so a long-dated book reads as
// "1 page/week" rather than a misleading "1 page/day".
func FormatRequiredPace(remaining float64, daysLeft int, format domain.Format) string {
	unit := "page"
	if format == domain.FormatAudio {
		remaining /= AudioMinutesPerPage
	}

	if daysLeft <= 0 {
		n := int(math.Ceil(remaining))
		return fmt.Sprintf("%d %s today", n, pluralize(n, unit))
	}

	perDay := remaining / float64(daysLeft)
	if perDay >= 1 {
		n := int(math.Ceil(perDay))
		return fmt.Sprintf("%d %s/day", n, pluralize(n, unit))
	}

	// Below one unit per day, fall back to week then month granularity so
	// a 372-day deadline with 52 pages left reads "1 page/week".
	perWeek := remaining * 7 / float64(daysLeft)
	if n := int(math.Round(perWeek)); n >= 1 {
		return fmt.Sprintf("%d %s/week", n, pluralize(n, unit))
	}

	n := int(math.Round(remaining * daysPerMonth / float64(daysLeft)))
	if n < 1 {
		n = 1
	}
	return fmt.Sprintf("%d %s/month", n, pluralize(n, unit))
}

// StatusMessage layers pace reliability on top of the base classification
// to produce the richer display message: an impossible deadline reads
// differently depending on whether we actually know the user's pace yet,
// and on-track deadlines report the pace they are on track at.
func StatusMessage(status PaceBasedStatus, userPace UserPaceData, requiredPace float64, format domain.Format) string {
	switch status.Level {
	case LevelOverdue:
		return "Return or renew"
	case LevelImpossible:
		if !userPace.IsReliable {
			return "Start reading to track pace"
		}
		return "Pace too ambitious"
	case LevelApproaching:
		return "Pick up the pace: need " + FormatPace(requiredPace, format)
	default:
		return "On track at " + FormatPace(userPace.AveragePace, format)
	}
}
