package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mannMitraAPI/internal/apperr"
	"mannMitraAPI/internal/streak"
	"mannMitraAPI/internal/studysession"
)

type StudyTimerService struct {
	db *pgxpool.Pool
}

func NewStudyTimerService(db *pgxpool.Pool) *StudyTimerService {
	return &StudyTimerService{db: db}
}

const studyColumns = `id, session_id, subject, duration, start_time, end_time, completed, notes, mood_before, mood_after, productivity_rating, created_at`

// StartSession opens a new timer run. A second start while one is active is
// an InvalidState rejection, enforced by a partial unique index on the open
// row so two concurrent starts cannot both succeed.
func (s *StudyTimerService) StartSession(ctx context.Context, sessionID string, req *studysession.StartRequest) (*studysession.Session, error) {
	if err := validateMood(req.MoodBefore); err != nil {
		return nil, err
	}

	active, err := s.GetActiveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, fmt.Errorf("%w: an active study session already exists", apperr.ErrInvalidState)
	}

	query := `
	INSERT INTO study_sessions (id, session_id, subject, duration, start_time, completed, mood_before, created_at)
	VALUES ($1, $2, $3, 0, NOW(), false, $4, NOW())
	RETURNING ` + studyColumns

	session := &studysession.Session{}
	err = scanStudyRow(s.db.QueryRow(ctx, query, uuid.New(), sessionID, req.Subject, req.MoodBefore), session)
	if err != nil {
		return nil, fmt.Errorf("failed to start study session: %w", err)
	}

	return session, nil
}

// StopSession closes the active run and records its duration.
func (s *StudyTimerService) StopSession(ctx context.Context, sessionID string, req *studysession.StopRequest) (*studysession.Session, error) {
	if err := validateMood(req.MoodAfter); err != nil {
		return nil, err
	}
	if req.ProductivityRating != nil && (*req.ProductivityRating < 1 || *req.ProductivityRating > 5) {
		return nil, fmt.Errorf("%w: productivity rating must be between 1 and 5", apperr.ErrInvalidArgument)
	}

	query := `
	UPDATE study_sessions
	SET end_time = NOW(),
	    duration = EXTRACT(EPOCH FROM NOW() - start_time)::int,
	    completed = true,
	    mood_after = $2,
	    productivity_rating = $3,
	    notes = $4
	WHERE session_id = $1 AND end_time IS NULL
	RETURNING ` + studyColumns

	session := &studysession.Session{}
	err := scanStudyRow(s.db.QueryRow(ctx, query, sessionID, req.MoodAfter, req.ProductivityRating, req.Notes), session)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no active study session found", apperr.ErrInvalidState)
		}
		return nil, fmt.Errorf("failed to stop study session: %w", err)
	}

	return session, nil
}

// PauseSession closes the active run without marking it completed.
func (s *StudyTimerService) PauseSession(ctx context.Context, sessionID string) (*studysession.Session, error) {
	query := `
	UPDATE study_sessions
	SET end_time = NOW(),
	    duration = EXTRACT(EPOCH FROM NOW() - start_time)::int,
	    completed = false
	WHERE session_id = $1 AND end_time IS NULL
	RETURNING ` + studyColumns

	session := &studysession.Session{}
	err := scanStudyRow(s.db.QueryRow(ctx, query, sessionID), session)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no active study session found", apperr.ErrInvalidState)
		}
		return nil, fmt.Errorf("failed to pause study session: %w", err)
	}

	return session, nil
}

// GetActiveSession returns the open run, or nil when there is none.
func (s *StudyTimerService) GetActiveSession(ctx context.Context, sessionID string) (*studysession.Session, error) {
	query := `SELECT ` + studyColumns + ` FROM study_sessions WHERE session_id = $1 AND end_time IS NULL`

	session := &studysession.Session{}
	err := scanStudyRow(s.db.QueryRow(ctx, query, sessionID), session)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active study session: %w", err)
	}

	return session, nil
}

// GetStatus is the poll response for the timer page.
func (s *StudyTimerService) GetStatus(ctx context.Context, sessionID string) (*studysession.Status, error) {
	active, err := s.GetActiveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return &studysession.Status{Active: false}, nil
	}

	elapsed := int(time.Since(active.StartTime).Seconds())
	return &studysession.Status{
		Active:           true,
		SessionID:        active.ID,
		Subject:          active.Subject,
		StartTime:        active.StartTime.Format(time.RFC3339),
		ElapsedSeconds:   elapsed,
		ElapsedFormatted: studysession.FormatDuration(elapsed),
		MoodBefore:       active.MoodBefore,
	}, nil
}

func (s *StudyTimerService) GetSessions(ctx context.Context, sessionID string, limit, offset int) ([]studysession.Session, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `SELECT ` + studyColumns + `
	FROM study_sessions
	WHERE session_id = $1 AND end_time IS NOT NULL
	ORDER BY start_time DESC
	LIMIT $2 OFFSET $3`

	rows, err := s.db.Query(ctx, query, sessionID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get study sessions: %w", err)
	}
	defer rows.Close()

	sessions := []studysession.Session{}
	for rows.Next() {
		var session studysession.Session
		if err := scanStudyRow(rows, &session); err != nil {
			return nil, fmt.Errorf("failed to scan study session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// GetStats aggregates completed study activity for a session.
func (s *StudyTimerService) GetStats(ctx context.Context, sessionID string) (*studysession.Stats, error) {
	query := `
	SELECT COALESCE(subject, 'general'), duration
	FROM study_sessions
	WHERE session_id = $1 AND end_time IS NOT NULL
	`

	rows, err := s.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get study stats: %w", err)
	}
	defer rows.Close()

	stats := &studysession.Stats{SubjectBreakdown: map[string]int{}}
	for rows.Next() {
		var subject string
		var duration int
		if err := rows.Scan(&subject, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan study row: %w", err)
		}
		stats.TotalSessions++
		stats.TotalSeconds += duration
		stats.SubjectBreakdown[subject] += duration
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.TotalFormatted = studysession.FormatDuration(stats.TotalSeconds)
	if stats.TotalSessions > 0 {
		stats.AverageSeconds = stats.TotalSeconds / stats.TotalSessions
	}

	currentStreak, err := s.GetStudyStreak(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	stats.Streak = currentStreak

	return stats, nil
}

func (s *StudyTimerService) GetStudyStreak(ctx context.Context, sessionID string) (int, error) {
	query := `
	SELECT start_time FROM study_sessions
	WHERE session_id = $1 AND start_time >= NOW() - make_interval(days => $2)
	`

	rows, err := s.db.Query(ctx, query, sessionID, streakLookbackDays)
	if err != nil {
		return 0, fmt.Errorf("failed to load study dates: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return 0, fmt.Errorf("failed to scan study date: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	return streak.Current(streak.DaySet(times), time.Now()), nil
}

func scanStudyRow(row rowScanner, session *studysession.Session) error {
	return row.Scan(
		&session.ID,
		&session.SessionID,
		&session.Subject,
		&session.Duration,
		&session.StartTime,
		&session.EndTime,
		&session.Completed,
		&session.Notes,
		&session.MoodBefore,
		&session.MoodAfter,
		&session.ProductivityRating,
		&session.CreatedAt,
	)
}
