package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mannMitraAPI/internal/badge"
	"mannMitraAPI/internal/streak"
)

const moodImproverBadge = "Mood Improver"

type BadgeService struct {
	db *pgxpool.Pool
}

func NewBadgeService(db *pgxpool.Pool) *BadgeService {
	return &BadgeService{db: db}
}

// SeedCatalog inserts the default badge set. Badges that already exist by
// name are left untouched, so re-running on startup is safe.
func (s *BadgeService) SeedCatalog(ctx context.Context) error {
	query := `
	INSERT INTO badges (name, description, icon, color, category, criteria_type, criteria_value, is_active, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, true, NOW())
	ON CONFLICT (name) DO NOTHING
	`

	for _, seed := range badge.DefaultCatalog {
		_, err := s.db.Exec(ctx, query,
			seed.Name, seed.Description, seed.Icon, seed.Color, seed.Category, seed.CriteriaType, seed.CriteriaValue,
		)
		if err != nil {
			return fmt.Errorf("failed to seed badge %s: %w", seed.Name, err)
		}
	}

	return nil
}

// GetCatalog returns the active badge definitions.
func (s *BadgeService) GetCatalog(ctx context.Context) ([]badge.Badge, error) {
	query := `
	SELECT id, name, description, icon, color, category, criteria_type, criteria_value, is_active, created_at
	FROM badges
	WHERE is_active = true
	ORDER BY category, criteria_value
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load badge catalog: %w", err)
	}
	defer rows.Close()

	badges := []badge.Badge{}
	for rows.Next() {
		var b badge.Badge
		err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.Color, &b.Category,
			&b.CriteriaType, &b.CriteriaValue, &b.IsActive, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, b)
	}

	return badges, rows.Err()
}

// GetUserBadges lists the badges a session has earned, newest first.
func (s *BadgeService) GetUserBadges(ctx context.Context, sessionID string) ([]badge.EarnedBadge, error) {
	query := `
	SELECT b.id, b.name, b.description, b.icon, b.color, b.category, b.criteria_type, b.criteria_value, b.is_active, b.created_at, ub.earned_at
	FROM user_badges ub
	JOIN badges b ON b.id = ub.badge_id
	WHERE ub.session_id = $1 AND ub.is_earned = true
	ORDER BY ub.earned_at DESC
	`

	rows, err := s.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user badges: %w", err)
	}
	defer rows.Close()

	earned := []badge.EarnedBadge{}
	for rows.Next() {
		var e badge.EarnedBadge
		err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Icon, &e.Color, &e.Category,
			&e.CriteriaType, &e.CriteriaValue, &e.IsActive, &e.CreatedAt, &e.EarnedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan earned badge: %w", err)
		}
		earned = append(earned, e)
	}

	return earned, rows.Err()
}

// GetBadgeProgress returns every active badge with the session's progress
// toward it, earned badges included.
func (s *BadgeService) GetBadgeProgress(ctx context.Context, sessionID string) ([]badge.Progress, error) {
	catalog, err := s.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}

	userRows, err := s.userBadgeRows(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := []badge.Progress{}
	for _, b := range catalog {
		p := badge.Progress{Badge: b}
		if ub, ok := userRows[b.ID.String()]; ok {
			p.Earned = ub.IsEarned
			p.EarnedAt = ub.EarnedAt
			p.Progress = ub.ProgressValue
		}
		if p.Earned {
			p.Progress = b.CriteriaValue
		}
		p.Percentage = badge.Percentage(p.Progress, b.CriteriaValue)
		result = append(result, p)
	}

	return result, nil
}

// CheckAndAwardBadges evaluates every unearned badge for the session, records
// progress, and awards any whose criteria are now met. Returns only the newly
// earned badges; a second call with no new activity returns an empty slice.
func (s *BadgeService) CheckAndAwardBadges(ctx context.Context, sessionID string) ([]badge.EarnedBadge, error) {
	catalog, err := s.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}

	userRows, err := s.userBadgeRows(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	newlyEarned := []badge.EarnedBadge{}
	for _, b := range catalog {
		if ub, ok := userRows[b.ID.String()]; ok && ub.IsEarned {
			continue
		}

		progress, err := s.computeProgress(ctx, sessionID, b)
		if err != nil {
			log.Printf("Failed to compute progress for badge %s: %v", b.Name, err)
			continue
		}

		if progress >= b.CriteriaValue {
			earnedAt, err := s.awardBadge(ctx, sessionID, b.ID.String(), b.CriteriaValue)
			if err != nil {
				return nil, err
			}
			if earnedAt != nil {
				newlyEarned = append(newlyEarned, badge.EarnedBadge{Badge: b, EarnedAt: *earnedAt})
			}
		} else if err := s.recordProgress(ctx, sessionID, b.ID.String(), progress); err != nil {
			return nil, err
		}
	}

	return newlyEarned, nil
}

// GetBadgeStats summarizes the session's badge cabinet.
func (s *BadgeService) GetBadgeStats(ctx context.Context, sessionID string) (*badge.Stats, error) {
	catalog, err := s.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	earned, err := s.GetUserBadges(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	stats := &badge.Stats{
		TotalBadges:       len(catalog),
		EarnedBadges:      len(earned),
		CategoryBreakdown: map[string]int{},
		RecentBadges:      []string{},
	}
	if stats.TotalBadges > 0 {
		stats.CompletionPercentage = float64(stats.EarnedBadges) / float64(stats.TotalBadges) * 100
	}

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	for _, e := range earned {
		stats.CategoryBreakdown[e.Category]++
		if e.EarnedAt.After(weekAgo) {
			stats.RecentBadgesCount++
			stats.RecentBadges = append(stats.RecentBadges, e.Name)
		}
	}

	return stats, nil
}

func (s *BadgeService) userBadgeRows(ctx context.Context, sessionID string) (map[string]badge.UserBadge, error) {
	query := `
	SELECT id, session_id, badge_id, earned_at, progress_value, is_earned
	FROM user_badges
	WHERE session_id = $1
	`

	rows, err := s.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user badge rows: %w", err)
	}
	defer rows.Close()

	result := map[string]badge.UserBadge{}
	for rows.Next() {
		var ub badge.UserBadge
		if err := rows.Scan(&ub.ID, &ub.SessionID, &ub.BadgeID, &ub.EarnedAt, &ub.ProgressValue, &ub.IsEarned); err != nil {
			return nil, fmt.Errorf("failed to scan user badge row: %w", err)
		}
		result[ub.BadgeID.String()] = ub
	}

	return result, rows.Err()
}

// awardBadge marks the badge earned. The unique (session_id, badge_id) index
// makes double awarding impossible; an already-earned row wins the conflict
// and the returned time is nil so the caller does not re-announce it.
func (s *BadgeService) awardBadge(ctx context.Context, sessionID, badgeID string, progress int) (*time.Time, error) {
	query := `
	INSERT INTO user_badges (session_id, badge_id, earned_at, progress_value, is_earned)
	VALUES ($1, $2, NOW(), $3, true)
	ON CONFLICT (session_id, badge_id) DO UPDATE
	SET earned_at = COALESCE(user_badges.earned_at, NOW()), progress_value = $3, is_earned = true
	WHERE user_badges.is_earned = false
	RETURNING earned_at
	`

	var earnedAt time.Time
	err := s.db.QueryRow(ctx, query, sessionID, badgeID, progress).Scan(&earnedAt)
	if err != nil {
		// No row returned means another evaluation earned it first.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to award badge: %w", err)
	}

	return &earnedAt, nil
}

func (s *BadgeService) recordProgress(ctx context.Context, sessionID, badgeID string, progress int) error {
	query := `
	INSERT INTO user_badges (session_id, badge_id, progress_value, is_earned)
	VALUES ($1, $2, $3, false)
	ON CONFLICT (session_id, badge_id) DO UPDATE
	SET progress_value = $3
	WHERE user_badges.is_earned = false
	`

	if _, err := s.db.Exec(ctx, query, sessionID, badgeID, progress); err != nil {
		return fmt.Errorf("failed to record badge progress: %w", err)
	}
	return nil
}

func (s *BadgeService) computeProgress(ctx context.Context, sessionID string, b badge.Badge) (int, error) {
	switch b.CriteriaType {
	case badge.CriteriaCount:
		return s.countProgress(ctx, sessionID, b.Category)
	case badge.CriteriaStreak:
		return s.streakProgress(ctx, sessionID, b.Category)
	case badge.CriteriaTime:
		return s.studyMinutes(ctx, sessionID)
	case badge.CriteriaMilestone:
		if b.Name == moodImproverBadge {
			return s.moodImprovementCount(ctx, sessionID)
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unknown criteria type %q", b.CriteriaType)
	}
}

func (s *BadgeService) countProgress(ctx context.Context, sessionID, category string) (int, error) {
	var query string
	switch category {
	case "mood":
		query = `SELECT COUNT(*) FROM mood_entries WHERE session_id = $1`
	case "journal":
		query = `SELECT COUNT(*) FROM journal_entries WHERE session_id = $1`
	case "chat":
		query = `SELECT COUNT(*) FROM conversations WHERE session_id = $1`
	case "study":
		query = `SELECT COUNT(*) FROM study_sessions WHERE session_id = $1 AND completed = true`
	case "wellness":
		query = `SELECT COUNT(*) FROM micro_plan_progress WHERE session_id = $1 AND is_completed = true`
	default:
		return 0, fmt.Errorf("no count source for category %q", category)
	}

	var count int
	if err := s.db.QueryRow(ctx, query, sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s activity: %w", category, err)
	}
	return count, nil
}

// streakProgress computes the consecutive-day streak for a category. The
// "streak" category badges accept any activity kind, so they take the best
// of the three tracked streaks.
func (s *BadgeService) streakProgress(ctx context.Context, sessionID, category string) (int, error) {
	switch category {
	case "mood":
		return s.tableStreak(ctx, sessionID, "mood_entries", "created_at")
	case "journal":
		return s.tableStreak(ctx, sessionID, "journal_entries", "created_at")
	case "study":
		return s.tableStreak(ctx, sessionID, "study_sessions", "start_time")
	case "streak":
		best := 0
		for _, src := range []struct{ table, column string }{
			{"mood_entries", "created_at"},
			{"journal_entries", "created_at"},
			{"study_sessions", "start_time"},
		} {
			n, err := s.tableStreak(ctx, sessionID, src.table, src.column)
			if err != nil {
				return 0, err
			}
			if n > best {
				best = n
			}
		}
		return best, nil
	default:
		return 0, fmt.Errorf("no streak source for category %q", category)
	}
}

// tableStreak mirrors the wellness streak query. table and column come from
// the fixed call set above, never from user input.
func (s *BadgeService) tableStreak(ctx context.Context, sessionID, table, column string) (int, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM %s
	WHERE session_id = $1 AND %s >= NOW() - make_interval(days => $2)
	`, column, table, column)

	rows, err := s.db.Query(ctx, query, sessionID, streakLookbackDays)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s streak dates: %w", table, err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return 0, fmt.Errorf("failed to scan streak date: %w", err)
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	return streak.Current(streak.DaySet(times), time.Now().UTC()), nil
}

// studyMinutes converts the stored per-session seconds to total minutes,
// the unit time-criteria badges are defined in.
func (s *BadgeService) studyMinutes(ctx context.Context, sessionID string) (int, error) {
	query := `
	SELECT COALESCE(SUM(duration), 0) / 60 FROM study_sessions
	WHERE session_id = $1 AND completed = true
	`

	var minutes int
	if err := s.db.QueryRow(ctx, query, sessionID).Scan(&minutes); err != nil {
		return 0, fmt.Errorf("failed to sum study minutes: %w", err)
	}
	return minutes, nil
}

// moodImprovementCount backs the Mood Improver badge: journal entries whose
// mood_after beats mood_before.
func (s *BadgeService) moodImprovementCount(ctx context.Context, sessionID string) (int, error) {
	query := `
	SELECT COUNT(*) FROM journal_entries
	WHERE session_id = $1
	  AND mood_before IS NOT NULL AND mood_after IS NOT NULL
	  AND mood_after > mood_before
	`

	var count int
	if err := s.db.QueryRow(ctx, query, sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count mood improvements: %w", err)
	}
	return count, nil
}
