package badge

import (
	"time"

	"github.com/google/uuid"
)

type CriteriaType string

const (
	CriteriaCount     CriteriaType = "count"
	CriteriaStreak    CriteriaType = "streak"
	CriteriaTime      CriteriaType = "time"
	CriteriaMilestone CriteriaType = "milestone"
)

// Badge is catalog reference data: the rule for earning one achievement.
type Badge struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	Name          string       `json:"name" db:"name"`
	Description   string       `json:"description" db:"description"`
	Icon          string       `json:"icon" db:"icon"`
	Color         string       `json:"color" db:"color"`
	Category      string       `json:"category" db:"category"`
	CriteriaType  CriteriaType `json:"criteria_type" db:"criteria_type"`
	CriteriaValue int          `json:"criteria_value" db:"criteria_value"`
	IsActive      bool         `json:"is_active" db:"is_active"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}

// UserBadge joins a session to a badge: either an immutable earned record or
// a repeatedly overwritten progress snapshot (IsEarned false).
type UserBadge struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	SessionID     string     `json:"session_id" db:"session_id"`
	BadgeID       uuid.UUID  `json:"badge_id" db:"badge_id"`
	EarnedAt      *time.Time `json:"earned_at" db:"earned_at"`
	ProgressValue int        `json:"progress_value" db:"progress_value"`
	IsEarned      bool       `json:"is_earned" db:"is_earned"`
}

// Progress is the per-badge progress view returned to clients.
type Progress struct {
	Badge
	Earned     bool       `json:"earned"`
	EarnedAt   *time.Time `json:"earned_at,omitempty"`
	Progress   int        `json:"progress"`
	Percentage float64    `json:"percentage"`
}

// EarnedBadge pairs a catalog badge with when the session earned it.
type EarnedBadge struct {
	Badge
	EarnedAt time.Time `json:"earned_at"`
}

// Stats summarizes a session's badge cabinet.
type Stats struct {
	TotalBadges          int            `json:"total_badges"`
	EarnedBadges         int            `json:"earned_badges"`
	CompletionPercentage float64        `json:"completion_percentage"`
	CategoryBreakdown    map[string]int `json:"category_breakdown"`
	RecentBadgesCount    int            `json:"recent_badges_count"`
	RecentBadges         []string       `json:"recent_badges"`
}

// Percentage caps badge progress display at 100%.
func Percentage(progress, criteriaValue int) float64 {
	if criteriaValue <= 0 {
		return 0
	}
	pct := float64(progress) / float64(criteriaValue) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// Seed is one row of the default badge catalog.
type Seed struct {
	Name          string
	Description   string
	Category      string
	CriteriaType  CriteriaType
	CriteriaValue int
	Icon          string
	Color         string
}

// DefaultCatalog is the badge set seeded on startup. The "Mood Improver"
// milestone badge is the single bespoke milestone rule; its progress is
// computed by a name check, not a generic criteria mechanism.
var DefaultCatalog = []Seed{
	{"First Mood", "Logged your first mood entry", "mood", CriteriaCount, 1, "fas fa-smile", "success"},
	{"Mood Tracker", "Logged mood for 7 consecutive days", "mood", CriteriaStreak, 7, "fas fa-calendar-check", "info"},
	{"Mood Master", "Logged mood for 30 consecutive days", "mood", CriteriaStreak, 30, "fas fa-crown", "warning"},
	{"Mood Explorer", "Logged 50 different mood entries", "mood", CriteriaCount, 50, "fas fa-search", "primary"},

	{"First Entry", "Wrote your first journal entry", "journal", CriteriaCount, 1, "fas fa-pen", "success"},
	{"Reflective", "Wrote 10 journal entries", "journal", CriteriaCount, 10, "fas fa-book", "info"},
	{"Storyteller", "Wrote 50 journal entries", "journal", CriteriaCount, 50, "fas fa-scroll", "warning"},
	{"Mood Improver", "Journal entries show consistent mood improvement", "journal", CriteriaMilestone, 5, "fas fa-chart-line", "success"},

	{"First Chat", "Started your first conversation", "chat", CriteriaCount, 1, "fas fa-comments", "success"},
	{"Active Listener", "Had 25 conversations", "chat", CriteriaCount, 25, "fas fa-ear-listen", "info"},
	{"Chat Champion", "Had 100 conversations", "chat", CriteriaCount, 100, "fas fa-trophy", "warning"},

	{"Study Starter", "Completed first study session", "study", CriteriaCount, 1, "fas fa-graduation-cap", "success"},
	{"Focused Learner", "Completed 10 study sessions", "study", CriteriaCount, 10, "fas fa-brain", "info"},
	{"Study Master", "Completed 50 study sessions", "study", CriteriaCount, 50, "fas fa-award", "warning"},
	{"Marathon Student", "Studied for 10 hours total", "study", CriteriaTime, 600, "fas fa-clock", "primary"},

	{"Wellness Beginner", "Completed first micro-plan", "wellness", CriteriaCount, 1, "fas fa-seedling", "success"},
	{"Wellness Explorer", "Completed 5 micro-plans", "wellness", CriteriaCount, 5, "fas fa-tree", "info"},
	{"Wellness Champion", "Completed 20 micro-plans", "wellness", CriteriaCount, 20, "fas fa-mountain", "warning"},

	{"Week Warrior", "7-day streak in any activity", "streak", CriteriaStreak, 7, "fas fa-fire", "danger"},
	{"Month Master", "30-day streak in any activity", "streak", CriteriaStreak, 30, "fas fa-star", "warning"},
	{"Consistency King", "100-day streak in any activity", "streak", CriteriaStreak, 100, "fas fa-crown", "gold"},
}
