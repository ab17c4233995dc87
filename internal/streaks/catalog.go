package streaks

import "github.com/bookdueapp/bookdue-server/internal/domain"

// Catalog is the static achievement list. IDs are stable: they key
// persisted unlock records, so renaming one orphans its unlocks.
//
// The streak family differs only in target and deliberately measures the
// historical best streak, rewarding consistency the user has ever shown
// rather than only the live run. consistency_champion is the one streak
// achievement bound to the current run.
var Catalog = []domain.Achievement{
	{
		ID:          "dedicated_reader",
		Title:       "Dedicated Reader",
		Description: "Read on 25 consecutive days",
		Criteria:    domain.AchievementCriteria{Type: domain.CriteriaMaxStreak, Target: 25},
	},
	{
		ID:          "reading_habit_master",
		Title:       "Reading Habit Master",
		Description: "Read on 50 consecutive days",
		Criteria:    domain.AchievementCriteria{Type: domain.CriteriaMaxStreak, Target: 50},
	},
	{
		ID:          "reading_champion",
		Title:       "Reading Champion",
		Description: "Read on 75 consecutive days",
		Criteria:    domain.AchievementCriteria{Type: domain.CriteriaMaxStreak, Target: 75},
	},
	{
		ID:          "century_reader",
		Title:       "Century Reader",
		Description: "Read on 100 consecutive days",
		Criteria:    domain.AchievementCriteria{Type: domain.CriteriaMaxStreak, Target: 100},
	},
	{
		ID:          "half_year_scholar",
		Title:       "Half-Year Scholar",
		Description: "Read on 180 consecutive days",
		Criteria:    domain.AchievementCriteria{Type: domain.CriteriaMaxStreak, Target: 180},
	},
	{
		ID:          "year_long_scholar",
		Title:       "Year-Long Scholar",
		Description: "Read on 365 consecutive days",
		Criteria:    domain.AchievementCriteria{Type: domain.CriteriaMaxStreak, Target: 365},
	},
	{
		ID:          "reading_hero",
		Title:       "Reading Hero",
		Description: "Read on 500 consecutive days",
		Criteria:    domain.AchievementCriteria{Type: domain.CriteriaMaxStreak, Target: 500},
	},
	{
		ID:          "reading_myth",
		Title:       "Reading Myth",
		Description: "Read on 750 consecutive days",
		Criteria:    domain.AchievementCriteria{Type: domain.CriteriaMaxStreak, Target: 750},
	},
	{
		ID:          "reading_legend",
		Title:       "Reading Legend",
		Description: "Read on 1000 consecutive days",
		Criteria:    domain.AchievementCriteria{Type: domain.CriteriaMaxStreak, Target: 1000},
	},
	{
		ID:          "consistency_champion",
		Title:       "Consistency Champion",
		Description: "Keep a 7-day streak going right now",
		Criteria:    domain.AchievementCriteria{Type: domain.CriteriaCurrentStreak, Target: 7},
	},
	{
		ID:          "ambitious_reader",
		Title:       "Ambitious Reader",
		Description: "Track 5 deadlines at once",
		Criteria:    domain.AchievementCriteria{Type: domain.CriteriaActiveDeadlines, Target: 5},
	},
	{
		ID:          "format_explorer",
		Title:       "Format Explorer",
		Description: "Make progress in every format",
		Criteria:    domain.AchievementCriteria{Type: domain.CriteriaFormatDiversity, Target: 3},
	},
	{
		ID:          "library_warrior",
		Title:       "Library Warrior",
		Description: "Make progress on 10 library books",
		Criteria:    domain.AchievementCriteria{Type: domain.CriteriaSourceCount, Target: 10, Source: domain.SourceLibrary},
	},
	{
		ID:          "speed_reader",
		Title:       "Speed Reader",
		Description: "Read 100 page-equivalents in a single day",
		Criteria:    domain.AchievementCriteria{Type: domain.CriteriaDailyPages, Target: 100},
	},
	{
		ID:          "marathon_listener",
		Title:       "Marathon Listener",
		Description: "Listen for 8 hours in a single day",
		Criteria:    domain.AchievementCriteria{Type: domain.CriteriaDailyMinutes, Target: 480},
	},
}

// catalogByID returns the achievement definition for an ID, or false.
func catalogByID(id string) (domain.Achievement, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Achievement{}, false
}
