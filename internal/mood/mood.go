package mood

import "time"

// Entry is a single mood check-in on a 1-10 scale.
type Entry struct {
	ID        int64     `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Mood      int       `json:"mood" db:"mood"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type LogMoodRequest struct {
	Mood int `json:"mood"`
}

// WeeklySummary aggregates the last seven days of check-ins.
type WeeklySummary struct {
	AverageMood  float64 `json:"average_mood"`
	EntriesCount int     `json:"entries_count"`
	BestMood     *Entry  `json:"best_mood"`
	WorstMood    *Entry  `json:"worst_mood"`
	Streak       int     `json:"streak"`
}
