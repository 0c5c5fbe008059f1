package conversation

import "time"

// Conversation is one chat turn: the user message and the reply that was
// surfaced, with the crisis flag recording whether escalation short-circuited
// the response generator.
type Conversation struct {
	ID             int64     `json:"id" db:"id"`
	SessionID      string    `json:"session_id" db:"session_id"`
	Message        string    `json:"message" db:"message"`
	Response       string    `json:"response" db:"response"`
	Timestamp      time.Time `json:"timestamp" db:"timestamp"`
	Language       string    `json:"language" db:"language"`
	CrisisDetected bool      `json:"crisis_detected" db:"crisis_detected"`
}

type ChatRequest struct {
	Message  string `json:"message"`
	Language string `json:"language"`
}

type ChatResponse struct {
	Response         string `json:"response"`
	Crisis           bool   `json:"crisis"`
	DetectedLanguage string `json:"detected_language"`
	Helpline         string `json:"helpline,omitempty"`
}
