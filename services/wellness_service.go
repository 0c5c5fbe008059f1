package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mannMitraAPI/internal/apperr"
	"mannMitraAPI/internal/mood"
	"mannMitraAPI/internal/session"
	"mannMitraAPI/internal/streak"
)

// streakLookbackDays bounds the activity window fed to the streak calculator.
// Purely a query-size cap; the calculator gives the same answer either way.
const streakLookbackDays = 60

type WellnessService struct {
	db       *pgxpool.Pool
	sessions *SessionService
}

func NewWellnessService(db *pgxpool.Pool, sessions *SessionService) *WellnessService {
	return &WellnessService{db: db, sessions: sessions}
}

func (s *WellnessService) LogMood(ctx context.Context, sessionID string, moodValue int) (*mood.Entry, error) {
	if moodValue < 1 || moodValue > 10 {
		return nil, fmt.Errorf("%w: mood must be between 1 and 10", apperr.ErrInvalidArgument)
	}

	query := `
	INSERT INTO mood_entries (session_id, mood, created_at)
	VALUES ($1, $2, NOW())
	RETURNING id, session_id, mood, created_at
	`

	entry := &mood.Entry{}
	err := s.db.QueryRow(ctx, query, sessionID, moodValue).Scan(
		&entry.ID,
		&entry.SessionID,
		&entry.Mood,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to log mood: %w", err)
	}

	return entry, nil
}

func (s *WellnessService) GetMoodHistory(ctx context.Context, sessionID string, limit int) ([]mood.Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
	SELECT id, session_id, mood, created_at
	FROM mood_entries
	WHERE session_id = $1
	ORDER BY created_at DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get mood history: %w", err)
	}
	defer rows.Close()

	entries := []mood.Entry{}
	for rows.Next() {
		var entry mood.Entry
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Mood, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// GetMoodTrend returns the average mood over the trailing window, or nil when
// there are no entries in it.
func (s *WellnessService) GetMoodTrend(ctx context.Context, sessionID string, days int) (*float64, error) {
	if days <= 0 {
		days = 7
	}

	query := `
	SELECT AVG(mood)::float8
	FROM mood_entries
	WHERE session_id = $1 AND created_at >= NOW() - make_interval(days => $2)
	`

	var avg *float64
	if err := s.db.QueryRow(ctx, query, sessionID, days).Scan(&avg); err != nil {
		return nil, fmt.Errorf("failed to compute mood trend: %w", err)
	}

	return avg, nil
}

func (s *WellnessService) GetMoodStreak(ctx context.Context, sessionID string) (int, error) {
	times, err := s.activityDates(ctx, sessionID, "mood_entries", "created_at")
	if err != nil {
		return 0, err
	}
	return streak.Current(streak.DaySet(times), time.Now()), nil
}

func (s *WellnessService) GetWeeklySummary(ctx context.Context, sessionID string) (*mood.WeeklySummary, error) {
	query := `
	SELECT id, session_id, mood, created_at
	FROM mood_entries
	WHERE session_id = $1 AND created_at >= NOW() - INTERVAL '7 days'
	ORDER BY created_at
	`

	rows, err := s.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly entries: %w", err)
	}
	defer rows.Close()

	var entries []mood.Entry
	for rows.Next() {
		var entry mood.Entry
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Mood, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, nil
	}

	summary := &mood.WeeklySummary{EntriesCount: len(entries)}
	sum := 0
	best, worst := &entries[0], &entries[0]
	for i := range entries {
		sum += entries[i].Mood
		if entries[i].Mood > best.Mood {
			best = &entries[i]
		}
		if entries[i].Mood < worst.Mood {
			worst = &entries[i]
		}
	}
	summary.AverageMood = float64(sum) / float64(len(entries))
	summary.BestMood = best
	summary.WorstMood = worst

	currentStreak, err := s.GetMoodStreak(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summary.Streak = currentStreak

	return summary, nil
}

// ShouldSendMoodReminder is the lazy pull-side reminder check: reminders are
// due when enabled, nothing was logged today, the UTC hour is 9-21, and the
// last reminder is at least four hours old.
func (s *WellnessService) ShouldSendMoodReminder(ctx context.Context, sessionID string) (bool, error) {
	prefs, err := s.sessions.GetPreferences(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if !prefs.MoodRemindersEnabled {
		return false, nil
	}

	now := time.Now().UTC()
	if now.Hour() < 9 || now.Hour() > 21 {
		return false, nil
	}

	var loggedToday bool
	query := `
	SELECT EXISTS (
		SELECT 1 FROM mood_entries
		WHERE session_id = $1 AND created_at::date = CURRENT_DATE
	)
	`
	if err := s.db.QueryRow(ctx, query, sessionID).Scan(&loggedToday); err != nil {
		return false, fmt.Errorf("failed to check today's mood: %w", err)
	}
	if loggedToday {
		return false, nil
	}

	if prefs.LastMoodReminder != nil && now.Sub(*prefs.LastMoodReminder) < 4*time.Hour {
		return false, nil
	}

	return true, nil
}

func (s *WellnessService) MarkMoodReminderSent(ctx context.Context, sessionID string) error {
	return s.sessions.MarkMoodReminderSent(ctx, sessionID, time.Now().UTC())
}

// ScheduleNudge stores a pull-delivered nudge; nothing pushes it. A nil
// scheduledTime defaults to one hour from now.
func (s *WellnessService) ScheduleNudge(ctx context.Context, sessionID, nudgeType string, scheduledTime *time.Time) (*session.Nudge, error) {
	if nudgeType == "" {
		return nil, fmt.Errorf("%w: nudge type is required", apperr.ErrInvalidArgument)
	}

	at := time.Now().Add(time.Hour)
	if scheduledTime != nil {
		at = *scheduledTime
	}

	query := `
	INSERT INTO nudges (session_id, nudge_type, scheduled_time, sent)
	VALUES ($1, $2, $3, false)
	RETURNING id, session_id, nudge_type, scheduled_time, sent, sent_time
	`

	nudge := &session.Nudge{}
	err := s.db.QueryRow(ctx, query, sessionID, nudgeType, at).Scan(
		&nudge.ID,
		&nudge.SessionID,
		&nudge.NudgeType,
		&nudge.ScheduledTime,
		&nudge.Sent,
		&nudge.SentTime,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule nudge: %w", err)
	}

	return nudge, nil
}

// ConsumePendingNudges returns every due unsent nudge and marks them sent in
// the same statement, so a second poll returns nothing.
func (s *WellnessService) ConsumePendingNudges(ctx context.Context, sessionID string) ([]session.Nudge, error) {
	query := `
	UPDATE nudges
	SET sent = true, sent_time = NOW()
	WHERE session_id = $1 AND sent = false AND scheduled_time <= NOW()
	RETURNING id, session_id, nudge_type, scheduled_time, sent, sent_time
	`

	rows, err := s.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to consume nudges: %w", err)
	}
	defer rows.Close()

	nudges := []session.Nudge{}
	for rows.Next() {
		var nudge session.Nudge
		if err := rows.Scan(&nudge.ID, &nudge.SessionID, &nudge.NudgeType, &nudge.ScheduledTime, &nudge.Sent, &nudge.SentTime); err != nil {
			return nil, fmt.Errorf("failed to scan nudge: %w", err)
		}
		nudges = append(nudges, nudge)
	}

	return nudges, rows.Err()
}

// activityDates pulls timestamps of one activity kind inside the streak
// lookback window. table and column come from a fixed internal call set,
// never from user input.
func (s *WellnessService) activityDates(ctx context.Context, sessionID, table, column string) ([]time.Time, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM %s
	WHERE session_id = $1 AND %s >= NOW() - make_interval(days => $2)
	`, column, table, column)

	rows, err := s.db.Query(ctx, query, sessionID, streakLookbackDays)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s activity dates: %w", table, err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan activity date: %w", err)
		}
		times = append(times, t)
	}

	return times, rows.Err()
}
