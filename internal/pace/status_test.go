package pace

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookdueapp/bookdue-server/internal/domain"
)

func TestRequiredPace(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		current  int
		daysLeft int
		format   domain.Format
		want     float64
	}{
		{"simple ceil", 200, 50, 10, domain.FormatPhysical, 15},
		{"rounds up", 100, 0, 3, domain.FormatPhysical, 34},
		{"rona book", 52, 0, 372, domain.FormatPhysical, 1},
		{"overdue returns remainder", 200, 50, 0, domain.FormatPhysical, 150},
		{"negative days returns remainder", 200, 50, -5, domain.FormatPhysical, 150},
		{"audio converts to page equivalents", 300, 0, 10, domain.FormatAudio, 20},
		{"over-completion goes non-positive", 100, 120, 5, domain.FormatPhysical, -4},
		{"exactly done", 100, 100, 5, domain.FormatPhysical, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequiredPace(tt.total, tt.current, tt.daysLeft, tt.format)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusFor_OverdueWinsRegardlessOfPace(t *testing.T) {
	// Even a pace that vastly exceeds requirements cannot rescue a
	// deadline that has already passed.
	got := StatusFor(500, 1, -5, 90)
	assert.Equal(t, ColorRed, got.Color)
	assert.Equal(t, LevelOverdue, got.Level)
	assert.Equal(t, "Return or renew", got.Message)

	got = StatusFor(500, 1, 0, 90)
	assert.Equal(t, LevelOverdue, got.Level)
}

func TestStatusFor_UntouchedAndUrgent(t *testing.T) {
	got := StatusFor(50, 10, 2, 0)
	assert.Equal(t, ColorRed, got.Color)
	assert.Equal(t, LevelImpossible, got.Level)
	assert.Equal(t, "Start reading now", got.Message)

	// Three days out is not yet urgent-start territory.
	got = StatusFor(0, 10, 3, 0)
	assert.NotEqual(t, "Start reading now", got.Message)
}

func TestStatusFor_TieIsSuccess(t *testing.T) {
	got := StatusFor(20, 20, 10, 50)
	assert.Equal(t, ColorGreen, got.Color)
	assert.Equal(t, LevelGood, got.Level)
}

func TestStatusFor_ImpossibilityThreshold(t *testing.T) {
	// A needed increase of exactly 100% is still approachable; strictly
	// greater is impossible.
	atBoundary := StatusFor(20, 40, 10, 50)
	assert.Equal(t, ColorOrange, atBoundary.Color)
	assert.Equal(t, LevelApproaching, atBoundary.Level)

	pastBoundary := StatusFor(20, 41, 10, 50)
	assert.Equal(t, ColorRed, pastBoundary.Color)
	assert.Equal(t, LevelImpossible, pastBoundary.Level)
}

func TestStatusFor_ZeroPaceBehindIsImpossible(t *testing.T) {
	// Guarded division: a zero pace must classify, not produce NaN.
	got := StatusFor(0, 10, 10, 50)
	assert.Equal(t, ColorRed, got.Color)
	assert.Equal(t, LevelImpossible, got.Level)
}

func TestStatusFor_OnTrack(t *testing.T) {
	got := StatusFor(50, 15, 10, 25)
	assert.Equal(t, ColorGreen, got.Color)
	assert.Equal(t, LevelGood, got.Level)
	assert.Equal(t, "You're on track", got.Message)
}

func TestStatusFor_BehindButFeasible(t *testing.T) {
	got := StatusFor(10, 15, 10, 25)
	assert.Equal(t, ColorOrange, got.Color)
	assert.Equal(t, LevelApproaching, got.Level)
	assert.Equal(t, "Pick up the pace", got.Message)
}
