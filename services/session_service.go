package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mannMitraAPI/config"
	"mannMitraAPI/internal/apperr"
	"mannMitraAPI/internal/session"
)

type SessionService struct {
	db *pgxpool.Pool
}

func NewSessionService(db *pgxpool.Pool) *SessionService {
	return &SessionService{db: db}
}

// GetOrCreate resolves the opaque token to a session row, creating one on
// first contact and touching last_activity otherwise. An empty token always
// creates a fresh session.
func (s *SessionService) GetOrCreate(ctx context.Context, sessionID string) (*session.UserSession, error) {
	if sessionID == "" {
		return s.create(ctx, uuid.New().String())
	}

	query := `
	UPDATE user_sessions
	SET last_activity = NOW()
	WHERE session_id = $1
	RETURNING id, session_id, created_at, last_activity, persona, language
	`

	userSession := &session.UserSession{}
	err := s.db.QueryRow(ctx, query, sessionID).Scan(
		&userSession.ID,
		&userSession.SessionID,
		&userSession.CreatedAt,
		&userSession.LastActivity,
		&userSession.Persona,
		&userSession.Language,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Stale cookie from a wiped database; recreate under the same token.
			return s.create(ctx, sessionID)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return userSession, nil
}

func (s *SessionService) create(ctx context.Context, sessionID string) (*session.UserSession, error) {
	query := `
	INSERT INTO user_sessions (session_id, language, created_at, last_activity)
	VALUES ($1, $2, NOW(), NOW())
	RETURNING id, session_id, created_at, last_activity, persona, language
	`

	userSession := &session.UserSession{}
	err := s.db.QueryRow(ctx, query, sessionID, config.DefaultLanguage).Scan(
		&userSession.ID,
		&userSession.SessionID,
		&userSession.CreatedAt,
		&userSession.LastActivity,
		&userSession.Persona,
		&userSession.Language,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return userSession, nil
}

func (s *SessionService) Get(ctx context.Context, sessionID string) (*session.UserSession, error) {
	query := `
	SELECT id, session_id, created_at, last_activity, persona, language
	FROM user_sessions
	WHERE session_id = $1
	`

	userSession := &session.UserSession{}
	err := s.db.QueryRow(ctx, query, sessionID).Scan(
		&userSession.ID,
		&userSession.SessionID,
		&userSession.CreatedAt,
		&userSession.LastActivity,
		&userSession.Persona,
		&userSession.Language,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return userSession, nil
}

func (s *SessionService) SetPersona(ctx context.Context, sessionID, persona string) error {
	result, err := s.db.Exec(ctx, `UPDATE user_sessions SET persona = $2 WHERE session_id = $1`, sessionID, persona)
	if err != nil {
		return fmt.Errorf("failed to set persona: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("session: %w", apperr.ErrNotFound)
	}
	return nil
}

func (s *SessionService) SetLanguage(ctx context.Context, sessionID, language string) error {
	if _, ok := config.SupportedLanguages[language]; !ok {
		return fmt.Errorf("%w: unsupported language %q", apperr.ErrInvalidArgument, language)
	}

	result, err := s.db.Exec(ctx, `UPDATE user_sessions SET language = $2 WHERE session_id = $1`, sessionID, language)
	if err != nil {
		return fmt.Errorf("failed to set language: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("session: %w", apperr.ErrNotFound)
	}
	return nil
}

// GetPreferences returns the typed preference row, creating the default row
// on first access.
func (s *SessionService) GetPreferences(ctx context.Context, sessionID string) (*session.Preferences, error) {
	query := `
	INSERT INTO session_preferences (session_id)
	VALUES ($1)
	ON CONFLICT (session_id) DO UPDATE SET session_id = EXCLUDED.session_id
	RETURNING session_id, mood_reminders_enabled, last_mood_reminder,
	          mood_reminder_time, journal_reminder_time, study_reminder_time
	`

	prefs := &session.Preferences{}
	err := s.db.QueryRow(ctx, query, sessionID).Scan(
		&prefs.SessionID,
		&prefs.MoodRemindersEnabled,
		&prefs.LastMoodReminder,
		&prefs.MoodReminderTime,
		&prefs.JournalReminderTime,
		&prefs.StudyReminderTime,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	return prefs, nil
}

func (s *SessionService) SetMoodRemindersEnabled(ctx context.Context, sessionID string, enabled bool) error {
	query := `
	INSERT INTO session_preferences (session_id, mood_reminders_enabled)
	VALUES ($1, $2)
	ON CONFLICT (session_id) DO UPDATE SET mood_reminders_enabled = $2
	`
	if _, err := s.db.Exec(ctx, query, sessionID, enabled); err != nil {
		return fmt.Errorf("failed to update reminder preference: %w", err)
	}
	return nil
}

func (s *SessionService) MarkMoodReminderSent(ctx context.Context, sessionID string, at time.Time) error {
	query := `
	INSERT INTO session_preferences (session_id, last_mood_reminder)
	VALUES ($1, $2)
	ON CONFLICT (session_id) DO UPDATE SET last_mood_reminder = $2
	`
	if _, err := s.db.Exec(ctx, query, sessionID, at); err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}
