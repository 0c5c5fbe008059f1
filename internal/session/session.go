package session

import (
	"time"
)

// UserSession is the anonymous scope for all activity. It is identified by an
// opaque token stored in a cookie; there is no account or login behind it.
type UserSession struct {
	ID           int64     `json:"id" db:"id"`
	SessionID    string    `json:"session_id" db:"session_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	LastActivity time.Time `json:"last_activity" db:"last_activity"`
	Persona      *string   `json:"persona" db:"persona"`
	Language     string    `json:"language" db:"language"`
}

// Preferences is the typed per-session settings row. Every known preference
// has a named column; there is intentionally no free-form key/value bag.
type Preferences struct {
	SessionID            string     `json:"session_id" db:"session_id"`
	MoodRemindersEnabled bool       `json:"mood_reminders_enabled" db:"mood_reminders_enabled"`
	LastMoodReminder     *time.Time `json:"last_mood_reminder" db:"last_mood_reminder"`
	MoodReminderTime     *string    `json:"mood_reminder_time" db:"mood_reminder_time"`
	JournalReminderTime  *string    `json:"journal_reminder_time" db:"journal_reminder_time"`
	StudyReminderTime    *string    `json:"study_reminder_time" db:"study_reminder_time"`
}

// Nudge is a lazily delivered wellness prompt. Nudges are never pushed; a
// client polls for pending ones and they are marked sent on read.
type Nudge struct {
	ID            int64      `json:"id" db:"id"`
	SessionID     string     `json:"session_id" db:"session_id"`
	NudgeType     string     `json:"type" db:"nudge_type"`
	ScheduledTime time.Time  `json:"scheduled_time" db:"scheduled_time"`
	Sent          bool       `json:"sent" db:"sent"`
	SentTime      *time.Time `json:"sent_time" db:"sent_time"`
}

type SetPersonaRequest struct {
	Persona string `json:"persona"`
}

type SetLanguageRequest struct {
	Language string `json:"language"`
}

type ScheduleNudgeRequest struct {
	Type          string     `json:"type"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
}
