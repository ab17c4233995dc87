package pace

import (
	"math"

	"github.com/bookdueapp/bookdue-server/internal/domain"
)

// StatusColor is the traffic-light color for a deadline status.
type StatusColor string

// StatusLevel is the severity classification for a deadline status.
type StatusLevel string

// Status colors and levels.
const (
	ColorGreen  StatusColor = "green"
	ColorOrange StatusColor = "orange"
	ColorRed    StatusColor = "red"

	LevelGood        StatusLevel = "good"
	LevelApproaching StatusLevel = "approaching"
	LevelOverdue     StatusLevel = "overdue"
	LevelImpossible  StatusLevel = "impossible"
)

// PaceBasedStatus classifies a single deadline against the user's velocity.
// Recomputed fresh on every call; nothing here is persisted.
type PaceBasedStatus struct {
	Color   StatusColor `json:"color"`
	Level   StatusLevel `json:"level"`
	Message string      `json:"message"`
}

// RequiredPace computes the velocity needed to finish on time, in
// page-equivalents per day. Remaining work is signed: over-completion
// yields a zero-or-negative result that downstream consumers must handle.
// Audio quantities are converted to page-equivalents first. A non-positive
// daysLeft means "all of it, now" and returns the remainder directly.
func RequiredPace(total, current, daysLeft int, format domain.Format) float64 {
	remaining := float64(total - current)
	if format == domain.FormatAudio {
		remaining /= AudioMinutesPerPage
	}
	if daysLeft <= 0 {
		return remaining
	}
	return math.Ceil(remaining / float64(daysLeft))
}

// StatusFor classifies a deadline. It is an ordered decision chain — the
// ordering is the specification, first match wins:
//
//  1. past the deadline             -> red/overdue
//  2. untouched with <3 days left   -> red/impossible
//  3. behind pace                   -> orange, or red when the needed
//     increase exceeds 100%
//  4. otherwise                     -> green (a tie goes to success)
func StatusFor(userPace, requiredPace float64, daysLeft int, progressPercentage float64) PaceBasedStatus {
	if daysLeft <= 0 {
		return PaceBasedStatus{Color: ColorRed, Level: LevelOverdue, Message: "Return or renew"}
	}

	if progressPercentage == 0 && daysLeft < 3 {
		return PaceBasedStatus{Color: ColorRed, Level: LevelImpossible, Message: "Start reading now"}
	}

	if userPace < requiredPace {
		// A zero pace cannot be increased by any percentage; classify as
		// impossible instead of dividing by zero.
		if userPace == 0 {
			return PaceBasedStatus{Color: ColorRed, Level: LevelImpossible, Message: "Pace too slow"}
		}

		increaseNeeded := (requiredPace - userPace) / userPace * 100
		if increaseNeeded > 100 {
			return PaceBasedStatus{Color: ColorRed, Level: LevelImpossible, Message: "Pace too slow"}
		}
		return PaceBasedStatus{Color: ColorOrange, Level: LevelApproaching, Message: "Pick up the pace"}
	}

	return PaceBasedStatus{Color: ColorGreen, Level: LevelGood, Message: "You're on track"}
}
