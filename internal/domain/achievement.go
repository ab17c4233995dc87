package domain

import "time"

// CriteriaType selects which computed value an achievement is measured
// against.
type CriteriaType string

// Criteria types used by the achievement catalog.
const (
	CriteriaMaxStreak       CriteriaType = "max_streak"
	CriteriaCurrentStreak   CriteriaType = "current_streak"
	CriteriaActiveDeadlines CriteriaType = "active_deadlines"
	CriteriaFormatDiversity CriteriaType = "format_diversity"
	CriteriaSourceCount     CriteriaType = "source_count"
	CriteriaDailyPages      CriteriaType = "daily_pages"
	CriteriaDailyMinutes    CriteriaType = "daily_minutes"
)

// AchievementCriteria is the threshold an achievement is evaluated against.
type AchievementCriteria struct {
	Type   CriteriaType `json:"type"`
	Target int          `json:"target"`
	// Source restricts source_count criteria to one deadline source
	// (e.g. "library" for library_warrior).
	Source string `json:"source,omitempty"`
}

// Achievement is a static catalog entry. The catalog itself lives in the
// streaks package; this is just its shape.
type Achievement struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Criteria    AchievementCriteria `json:"criteria"`
}

// AchievementProgress is the result of evaluating one achievement against a
// user's deadlines. Current is the raw computed value and is never clamped;
// Percentage is always clamped to 0-100.
type AchievementProgress struct {
	AchievementID string  `json:"achievement_id"`
	Current       float64 `json:"current"`
	Max           int     `json:"max"`
	Percentage    int     `json:"percentage"`
	Achieved      bool    `json:"achieved"`
}

// AchievementUnlock is the persisted record of an achieved achievement.
// Unlocks are write-once: re-checking an already unlocked achievement is a
// no-op, keeping the check endpoint idempotent.
type AchievementUnlock struct {
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
	Current       float64   `json:"current"`
	Max           int       `json:"max"`
	Percentage    int       `json:"percentage"`
}

// UnlockID generates the composite key: "userID:achievementID".
func UnlockID(userID, achievementID string) string {
	return userID + ":" + achievementID
}
