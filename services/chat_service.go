package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"mannMitraAPI/internal/apperr"
	"mannMitraAPI/internal/conversation"
	"mannMitraAPI/internal/crisis"
)

// ResponseGenerator produces the supportive reply for non-crisis messages.
// The chat service treats it as opaque; see GeminiGenerator for the default.
type ResponseGenerator interface {
	Generate(ctx context.Context, message, persona, language string, history []string) (string, error)
}

const historyTurns = 10

type ChatService struct {
	db             *pgxpool.Pool
	sessions       *SessionService
	helplines      *HelplineService
	generator      ResponseGenerator
	crisisKeywords []string
}

func NewChatService(db *pgxpool.Pool, sessions *SessionService, helplines *HelplineService, crisisKeywords []string) *ChatService {
	return &ChatService{
		db:             db,
		sessions:       sessions,
		helplines:      helplines,
		crisisKeywords: crisisKeywords,
	}
}

// SetResponseGenerator injects the reply provider. Without one, non-crisis
// messages fail; the crisis path never needs it.
func (s *ChatService) SetResponseGenerator(g ResponseGenerator) {
	s.generator = g
}

// SubmitMessage runs one chat turn: language resolution, crisis interception,
// response generation and conversation persistence. A crisis match
// short-circuits the generator entirely and escalates instead.
func (s *ChatService) SubmitMessage(ctx context.Context, sessionID, message, language string) (*conversation.ChatResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message is required", apperr.ErrInvalidArgument)
	}

	userSession, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if language == "" || language == "auto" {
		detected := DetectLanguage(message)
		if detected == "hi" || detected == "hinglish" {
			language = detected
		} else {
			language = "en"
		}
	}
	if language != userSession.Language {
		if err := s.sessions.SetLanguage(ctx, sessionID, language); err != nil {
			return nil, err
		}
	}

	detected := crisis.Detect(message, s.crisisKeywords)
	crisisDetected := len(detected) > 0

	var responseText, routedHelpline string
	if crisisDetected {
		crisisLog, err := s.helplines.EscalateCrisis(ctx, sessionID, detected, "")
		if err != nil {
			// Escalation must never be silently dropped; fail the turn.
			return nil, err
		}
		if crisisLog.HelplineContacted != nil {
			routedHelpline = *crisisLog.HelplineContacted
		}
		responseText = s.crisisResponse(crisisLog)
	} else {
		history, err := s.recentHistory(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		persona := "general"
		if userSession.Persona != nil {
			persona = *userSession.Persona
		}

		if s.generator == nil {
			return nil, fmt.Errorf("no response generator configured")
		}
		responseText, err = s.generator.Generate(ctx, message, persona, language, history)
		if err != nil {
			return nil, fmt.Errorf("failed to generate response: %w", err)
		}
	}

	query := `
	INSERT INTO conversations (session_id, message, response, timestamp, language, crisis_detected)
	VALUES ($1, $2, $3, NOW(), $4, $5)
	`
	if _, err := s.db.Exec(ctx, query, sessionID, message, responseText, language, crisisDetected); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	return &conversation.ChatResponse{
		Response:         responseText,
		Crisis:           crisisDetected,
		DetectedLanguage: language,
		Helpline:         routedHelpline,
	}, nil
}

func (s *ChatService) crisisResponse(crisisLog *crisis.Log) string {
	var b strings.Builder
	b.WriteString("I'm concerned about what you've shared. Please reach out to a helpline right now - you don't have to face this alone.")
	if crisisLog.HelplineContacted != nil {
		if contact, ok := s.helplines.GetHelplines("")[*crisisLog.HelplineContacted]; ok {
			b.WriteString(fmt.Sprintf(" %s: %s.", *crisisLog.HelplineContacted, contact))
		}
	}
	if national, ok := s.helplines.GetHelplines("")["national"]; ok {
		b.WriteString(fmt.Sprintf(" National helpline: %s.", national))
	}
	return b.String()
}

// GetHistory returns the session's chat turns, newest first.
func (s *ChatService) GetHistory(ctx context.Context, sessionID string, limit int) ([]conversation.Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
	SELECT id, session_id, message, response, timestamp, language, crisis_detected
	FROM conversations
	WHERE session_id = $1
	ORDER BY timestamp DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}
	defer rows.Close()

	history := []conversation.Conversation{}
	for rows.Next() {
		var c conversation.Conversation
		err := rows.Scan(&c.ID, &c.SessionID, &c.Message, &c.Response, &c.Timestamp, &c.Language, &c.CrisisDetected)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		history = append(history, c)
	}

	return history, rows.Err()
}

// recentHistory returns the last turns oldest-first, formatted for the
// generator prompt.
func (s *ChatService) recentHistory(ctx context.Context, sessionID string) ([]string, error) {
	query := `
	SELECT message, response
	FROM conversations
	WHERE session_id = $1
	ORDER BY timestamp DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, sessionID, historyTurns)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}
	defer rows.Close()

	var turns []string
	for rows.Next() {
		var message, response string
		if err := rows.Scan(&message, &response); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		turns = append(turns, fmt.Sprintf("User: %s\nAI: %s", message, response))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	return turns, nil
}
