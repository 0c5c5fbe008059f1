package studysession

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is one study-timer run. A row with a NULL EndTime is the active
// session; at most one exists per user session at a time.
type Session struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	SessionID          string     `json:"session_id" db:"session_id"`
	Subject            *string    `json:"subject" db:"subject"`
	Duration           int        `json:"duration" db:"duration"` // seconds
	StartTime          time.Time  `json:"start_time" db:"start_time"`
	EndTime            *time.Time `json:"end_time" db:"end_time"`
	Completed          bool       `json:"completed" db:"completed"`
	Notes              *string    `json:"notes" db:"notes"`
	MoodBefore         *int       `json:"mood_before" db:"mood_before"`
	MoodAfter          *int       `json:"mood_after" db:"mood_after"`
	ProductivityRating *int       `json:"productivity_rating" db:"productivity_rating"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
}

// FormatDuration renders seconds as "12m 30s" for client display.
func FormatDuration(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}

type StartRequest struct {
	Subject    *string `json:"subject"`
	MoodBefore *int    `json:"mood_before"`
}

type StopRequest struct {
	MoodAfter          *int    `json:"mood_after"`
	ProductivityRating *int    `json:"productivity_rating"`
	Notes              *string `json:"notes"`
}

// Status is the poll response for the timer page.
type Status struct {
	Active           bool      `json:"active"`
	SessionID        uuid.UUID `json:"session_id,omitempty"`
	Subject          *string   `json:"subject,omitempty"`
	StartTime        string    `json:"start_time,omitempty"`
	ElapsedSeconds   int       `json:"elapsed_seconds,omitempty"`
	ElapsedFormatted string    `json:"elapsed_formatted,omitempty"`
	MoodBefore       *int      `json:"mood_before,omitempty"`
}

// Stats aggregates study activity for a user session.
type Stats struct {
	TotalSessions    int            `json:"total_sessions"`
	TotalSeconds     int            `json:"total_seconds"`
	TotalFormatted   string         `json:"total_formatted"`
	AverageSeconds   int            `json:"average_seconds"`
	SubjectBreakdown map[string]int `json:"subject_breakdown"`
	Streak           int            `json:"streak"`
}
