package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"mannMitraAPI/config"
	"mannMitraAPI/internal/crisis"
)

type HelplineService struct {
	db        *pgxpool.Pool
	helplines map[string]string
}

func NewHelplineService(db *pgxpool.Pool, helplines map[string]string) *HelplineService {
	return &HelplineService{db: db, helplines: helplines}
}

// GetHelplines returns the directory, optionally filtered by a region
// substring against the target names.
func (s *HelplineService) GetHelplines(region string) map[string]string {
	if region == "" {
		return s.helplines
	}

	filtered := map[string]string{}
	for name, contact := range s.helplines {
		if strings.Contains(strings.ToLower(name), strings.ToLower(region)) {
			filtered[name] = contact
		}
	}
	if len(filtered) == 0 {
		return s.helplines
	}
	return filtered
}

// GetRegionalHelplines groups the directory by the region each target serves.
func (s *HelplineService) GetRegionalHelplines() map[string]map[string]string {
	regionFor := func(name string) string {
		lower := strings.ToLower(name)
		switch {
		case strings.Contains(lower, "national") || strings.Contains(lower, "cooj"):
			return "national"
		case strings.Contains(lower, "vandrevala"):
			return "delhi"
		case strings.Contains(lower, "sneha"):
			return "chennai"
		default:
			return "other"
		}
	}

	regional := map[string]map[string]string{}
	for name, contact := range s.helplines {
		region := regionFor(name)
		if regional[region] == nil {
			regional[region] = map[string]string{}
		}
		regional[region][name] = contact
	}
	return regional
}

// DetermineHelpline picks the routing target for a crisis. Order matters:
// national default, then the location table, then keyword markers which
// replace whatever the location chose.
func DetermineHelpline(userLocation string, detectedKeywords []string) string {
	helpline := "national"

	if userLocation != "" {
		locationLower := strings.ToLower(userLocation)
		for _, region := range config.RegionHelplines {
			if strings.Contains(locationLower, region.Match) {
				helpline = region.Target
				break
			}
		}
	}

	keywordsStr := strings.ToLower(strings.Join(detectedKeywords, " "))
	if strings.Contains(keywordsStr, "student") || strings.Contains(keywordsStr, "exam") {
		helpline = "student_helpline"
	} else if strings.Contains(keywordsStr, "domestic") || strings.Contains(keywordsStr, "abuse") {
		helpline = "women_helpline"
	}

	return helpline
}

// EscalateCrisis persists the crisis record and returns it. This path must
// never drop a signal: the insert is retried once, and a second failure
// propagates so the enclosing request fails loudly.
func (s *HelplineService) EscalateCrisis(ctx context.Context, sessionID string, detectedKeywords []string, userLocation string) (*crisis.Log, error) {
	helpline := DetermineHelpline(userLocation, detectedKeywords)

	log.Printf("CRISIS ESCALATION: session %s - keywords: %v - helpline: %s", truncateSessionID(sessionID), detectedKeywords, helpline)

	entry, err := s.insertCrisisLog(ctx, sessionID, detectedKeywords, helpline)
	if err != nil {
		log.Printf("crisis log insert failed, retrying once: %v", err)
		entry, err = s.insertCrisisLog(ctx, sessionID, detectedKeywords, helpline)
		if err != nil {
			return nil, fmt.Errorf("failed to persist crisis log after retry: %w", err)
		}
	}

	return entry, nil
}

func (s *HelplineService) insertCrisisLog(ctx context.Context, sessionID string, detectedKeywords []string, helpline string) (*crisis.Log, error) {
	query := `
	INSERT INTO crisis_logs (session_id, detected_keywords, timestamp, escalated, helpline_contacted)
	VALUES ($1, $2, NOW(), true, $3)
	RETURNING id, session_id, detected_keywords, timestamp, escalated, helpline_contacted
	`

	entry := &crisis.Log{}
	err := s.db.QueryRow(ctx, query, sessionID, detectedKeywords, helpline).Scan(
		&entry.ID,
		&entry.SessionID,
		&entry.DetectedKeywords,
		&entry.Timestamp,
		&entry.Escalated,
		&entry.HelplineContacted,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// GetCrisisLogs returns recent logs with session ids truncated for the
// gatekeeper view.
func (s *HelplineService) GetCrisisLogs(ctx context.Context, limit int) ([]crisis.AnonymizedLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
	SELECT session_id, detected_keywords, timestamp, escalated, helpline_contacted
	FROM crisis_logs
	ORDER BY timestamp DESC
	LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get crisis logs: %w", err)
	}
	defer rows.Close()

	logs := []crisis.AnonymizedLog{}
	for rows.Next() {
		var entry crisis.Log
		if err := rows.Scan(&entry.SessionID, &entry.DetectedKeywords, &entry.Timestamp, &entry.Escalated, &entry.HelplineContacted); err != nil {
			return nil, fmt.Errorf("failed to scan crisis log: %w", err)
		}
		logs = append(logs, crisis.AnonymizedLog{
			Timestamp:         entry.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			Keywords:          entry.DetectedKeywords,
			Escalated:         entry.Escalated,
			HelplineContacted: entry.HelplineContacted,
			SessionID:         truncateSessionID(entry.SessionID),
		})
	}

	return logs, rows.Err()
}

// GetCrisisStats aggregates crisis activity over the trailing window.
func (s *HelplineService) GetCrisisStats(ctx context.Context, days int) (*crisis.Stats, error) {
	if days <= 0 {
		days = 30
	}

	query := `
	SELECT session_id, escalated, COALESCE(helpline_contacted, 'unknown')
	FROM crisis_logs
	WHERE timestamp >= NOW() - make_interval(days => $1)
	`

	rows, err := s.db.Query(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to get crisis stats: %w", err)
	}
	defer rows.Close()

	stats := &crisis.Stats{
		HelplineDistribution: map[string]int{},
		PeriodDays:           days,
	}
	sessions := map[string]bool{}
	for rows.Next() {
		var sessionID, helpline string
		var escalated bool
		if err := rows.Scan(&sessionID, &escalated, &helpline); err != nil {
			return nil, fmt.Errorf("failed to scan crisis row: %w", err)
		}
		stats.TotalCrises++
		if escalated {
			stats.Escalated++
		}
		sessions[sessionID] = true
		stats.HelplineDistribution[helpline]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.UniqueSessions = len(sessions)
	if stats.TotalCrises > 0 {
		stats.EscalationRate = float64(stats.Escalated) / float64(stats.TotalCrises) * 100
	}

	return stats, nil
}

// GetEmergencyResources returns the static immediate-help payload shown on
// the crisis page.
func (s *HelplineService) GetEmergencyResources() map[string][]string {
	return map[string][]string{
		"immediate_actions": {
			"Call a helpline immediately",
			"Talk to someone you trust",
			"Remove means of self-harm if possible",
			"Practice deep breathing or grounding techniques",
			"Remember that this feeling will pass",
		},
		"coping_strategies": {
			"5-4-3-2-1 grounding technique",
			"Cold water on face or ice cube hold",
			"Physical activity or walk",
			"Listen to calming music",
			"Write down your thoughts",
		},
		"professional_help": {
			"Mental health professionals",
			"Crisis helplines",
			"Emergency services if in immediate danger",
			"Support groups and online communities",
		},
	}
}

func truncateSessionID(sessionID string) string {
	if len(sessionID) <= 8 {
		return sessionID
	}
	return sessionID[:8] + "..."
}
