package crisis

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Log is an append-only record of a detected crisis. It is written once by
// the escalation path and never updated afterwards.
type Log struct {
	ID                uuid.UUID `json:"id" db:"id"`
	SessionID         string    `json:"session_id" db:"session_id"`
	DetectedKeywords  []string  `json:"detected_keywords" db:"detected_keywords"`
	Timestamp         time.Time `json:"timestamp" db:"timestamp"`
	Escalated         bool      `json:"escalated" db:"escalated"`
	HelplineContacted *string   `json:"helpline_contacted" db:"helpline_contacted"`
}

// AnonymizedLog is the gatekeeper view of a Log: the session id is truncated
// so operators can correlate events without deanonymizing a user.
type AnonymizedLog struct {
	Timestamp         string   `json:"timestamp"`
	Keywords          []string `json:"keywords"`
	Escalated         bool     `json:"escalated"`
	HelplineContacted *string  `json:"helpline_contacted"`
	SessionID         string   `json:"session_id"`
}

// Stats aggregates crisis activity over a trailing window for monitoring.
type Stats struct {
	TotalCrises          int            `json:"total_crises"`
	Escalated            int            `json:"escalated"`
	UniqueSessions       int            `json:"unique_sessions"`
	EscalationRate       float64        `json:"escalation_rate"`
	HelplineDistribution map[string]int `json:"helpline_distribution"`
	PeriodDays           int            `json:"period_days"`
}

// Detect returns every keyword that occurs in message as a case-insensitive
// substring, in keyword-list order. No stemming and no word boundaries: the
// matcher is deliberately over-sensitive, because a false positive costs a
// helpline banner while a false negative costs a missed crisis.
func Detect(message string, keywords []string) []string {
	detected := []string{}
	lower := strings.ToLower(message)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			detected = append(detected, kw)
		}
	}
	return detected
}
