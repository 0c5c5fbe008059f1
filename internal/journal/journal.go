package journal

import (
	"time"

	"github.com/google/uuid"
)

// Entry is the persisted journal record. When IsEncrypted is set, Title and
// Content hold ciphertext and EncryptionKey holds the base64 per-entry key.
// The stored row is never mutated by decryption; reads go through View.
type Entry struct {
	ID            uuid.UUID `json:"id" db:"id"`
	SessionID     string    `json:"session_id" db:"session_id"`
	Title         *string   `json:"title" db:"title"`
	Content       string    `json:"content" db:"content"`
	MoodBefore    *int      `json:"mood_before" db:"mood_before"`
	MoodAfter     *int      `json:"mood_after" db:"mood_after"`
	Tags          []string  `json:"tags" db:"tags"`
	IsEncrypted   bool      `json:"is_encrypted" db:"is_encrypted"`
	EncryptionKey *string   `json:"-" db:"encryption_key"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// View is the transient read model handed to callers. For encrypted entries
// it carries the decrypted plaintext, or the original ciphertext with
// Undecryptable set when the key no longer opens the entry.
type View struct {
	ID            uuid.UUID `json:"id"`
	SessionID     string    `json:"session_id"`
	Title         *string   `json:"title"`
	Content       string    `json:"content"`
	MoodBefore    *int      `json:"mood_before"`
	MoodAfter     *int      `json:"mood_after"`
	Tags          []string  `json:"tags"`
	IsEncrypted   bool      `json:"is_encrypted"`
	Undecryptable bool      `json:"undecryptable,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateEntryRequest struct {
	Content    string   `json:"content"`
	Title      *string  `json:"title"`
	MoodBefore *int     `json:"mood_before"`
	MoodAfter  *int     `json:"mood_after"`
	Tags       []string `json:"tags"`
	Encrypt    *bool    `json:"encrypt"` // nil means true
}

type UpdateEntryRequest struct {
	Content    *string  `json:"content"`
	Title      *string  `json:"title"`
	MoodBefore *int     `json:"mood_before"`
	MoodAfter  *int     `json:"mood_after"`
	Tags       []string `json:"tags"`
}

// Stats summarizes journaling activity over a trailing window.
type Stats struct {
	PeriodDays        int        `json:"period_days"`
	TotalEntries      int        `json:"total_entries"`
	EntriesWithMood   int        `json:"entries_with_mood"`
	MoodImprovements  int        `json:"mood_improvements"`
	MoodDeclines      int        `json:"mood_declines"`
	AverageMoodBefore float64    `json:"average_mood_before"`
	AverageMoodAfter  float64    `json:"average_mood_after"`
	TopTags           []TagCount `json:"top_tags"`
	UniqueTags        int        `json:"unique_tags"`
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Export is a full decrypted dump of a session's entries, suitable for the
// user to take their data elsewhere.
type Export struct {
	ExportDate   time.Time `json:"export_date"`
	SessionID    string    `json:"session_id"`
	TotalEntries int       `json:"total_entries"`
	Entries      []*View   `json:"entries"`
}
