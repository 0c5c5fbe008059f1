package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mannMitraAPI/internal/apperr"
	"mannMitraAPI/internal/microplan"
)

type MicroPlanService struct {
	db      *pgxpool.Pool
	catalog *microplan.Catalog
}

func NewMicroPlanService(db *pgxpool.Pool, catalog *microplan.Catalog) *MicroPlanService {
	return &MicroPlanService{db: db, catalog: catalog}
}

// ProgressView is the enriched progress payload returned to clients.
type ProgressView struct {
	Progress             *microplan.Progress `json:"progress"`
	Plan                 *microplan.Plan     `json:"plan"`
	CompletionPercentage float64             `json:"completion_percentage"`
	CurrentDay           *microplan.Day      `json:"current_day_data,omitempty"`
	IsPlanComplete       bool                `json:"is_plan_complete"`
}

func (s *MicroPlanService) GetAvailablePlans(persona string) map[string]*microplan.Plan {
	return s.catalog.Plans(persona)
}

// Enroll creates the progress row for (session, plan). Re-enrolling returns
// the existing row unchanged; an unknown plan is NotFound.
func (s *MicroPlanService) Enroll(ctx context.Context, sessionID, planID string) (*microplan.Progress, error) {
	if _, ok := s.catalog.Plan(planID); !ok {
		return nil, fmt.Errorf("plan %s: %w", planID, apperr.ErrNotFound)
	}

	query := `
	INSERT INTO micro_plan_progress (session_id, plan_id, enrolled_date, current_day, completed_tasks, is_completed)
	VALUES ($1, $2, NOW(), 1, '{}', false)
	ON CONFLICT (session_id, plan_id) DO NOTHING
	`
	if _, err := s.db.Exec(ctx, query, sessionID, planID); err != nil {
		return nil, fmt.Errorf("failed to enroll in plan: %w", err)
	}

	progress, err := s.getProgress(ctx, sessionID, planID)
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// CompleteTask marks a task done and advances the plan day when the current
// day is cleared. Concurrent completions are resolved optimistically: the
// write is conditional on the day the decision was computed from, and the
// operation re-reads and retries once on conflict.
func (s *MicroPlanService) CompleteTask(ctx context.Context, sessionID, planID string, day int, taskID string) (bool, error) {
	plan, ok := s.catalog.Plan(planID)
	if !ok {
		return false, fmt.Errorf("plan %s: %w", planID, apperr.ErrNotFound)
	}

	for attempt := 0; attempt < 2; attempt++ {
		progress, err := s.getProgress(ctx, sessionID, planID)
		if err != nil {
			return false, err
		}

		expectedDay := progress.CurrentDay
		changed, err := progress.CompleteTask(plan, day, taskID, time.Now().UTC())
		if err != nil {
			return false, err
		}
		if !changed {
			return false, nil
		}

		applied, err := s.storeProgress(ctx, progress, expectedDay)
		if err != nil {
			return false, err
		}
		if applied {
			return true, nil
		}
		// Lost a race against a concurrent completion; re-read and retry.
	}

	return false, fmt.Errorf("%w: concurrent plan update, please retry", apperr.ErrInvalidState)
}

// GetUserProgress returns the enriched progress for one plan, or NotFound if
// the session never enrolled.
func (s *MicroPlanService) GetUserProgress(ctx context.Context, sessionID, planID string) (*ProgressView, error) {
	plan, ok := s.catalog.Plan(planID)
	if !ok {
		return nil, fmt.Errorf("plan %s: %w", planID, apperr.ErrNotFound)
	}

	progress, err := s.getProgress(ctx, sessionID, planID)
	if err != nil {
		return nil, err
	}

	return s.buildView(progress, plan), nil
}

// GetActivePlans lists the session's in-flight enrollments.
func (s *MicroPlanService) GetActivePlans(ctx context.Context, sessionID string) ([]*ProgressView, error) {
	return s.listPlans(ctx, sessionID, false)
}

// GetCompletedPlans lists finished enrollments.
func (s *MicroPlanService) GetCompletedPlans(ctx context.Context, sessionID string) ([]*ProgressView, error) {
	return s.listPlans(ctx, sessionID, true)
}

func (s *MicroPlanService) listPlans(ctx context.Context, sessionID string, completed bool) ([]*ProgressView, error) {
	query := `
	SELECT id, session_id, plan_id, enrolled_date, current_day, completed_tasks, is_completed, completion_date
	FROM micro_plan_progress
	WHERE session_id = $1 AND is_completed = $2
	ORDER BY enrolled_date DESC
	`

	rows, err := s.db.Query(ctx, query, sessionID, completed)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	views := []*ProgressView{}
	for rows.Next() {
		progress, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		plan, ok := s.catalog.Plan(progress.PlanID)
		if !ok {
			// Enrollment for a plan removed from the catalog; skip it.
			continue
		}
		views = append(views, s.buildView(progress, plan))
	}

	return views, rows.Err()
}

func (s *MicroPlanService) buildView(progress *microplan.Progress, plan *microplan.Plan) *ProgressView {
	view := &ProgressView{
		Progress:             progress,
		Plan:                 plan,
		CompletionPercentage: progress.CompletionPercentage(plan),
		IsPlanComplete:       progress.IsCompleted,
	}
	if day, ok := plan.Days[strconv.Itoa(progress.CurrentDay)]; ok {
		view.CurrentDay = &day
	}
	return view
}

func (s *MicroPlanService) getProgress(ctx context.Context, sessionID, planID string) (*microplan.Progress, error) {
	query := `
	SELECT id, session_id, plan_id, enrolled_date, current_day, completed_tasks, is_completed, completion_date
	FROM micro_plan_progress
	WHERE session_id = $1 AND plan_id = $2
	`

	row := s.db.QueryRow(ctx, query, sessionID, planID)
	progress, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("not enrolled in plan %s: %w", planID, apperr.ErrNotFound)
		}
		return nil, err
	}
	return progress, nil
}

// storeProgress writes the mutated progress conditional on the day it was
// computed from. Returns false when a concurrent writer advanced it first.
func (s *MicroPlanService) storeProgress(ctx context.Context, progress *microplan.Progress, expectedDay int) (bool, error) {
	completedTasks, err := json.Marshal(progress.CompletedTasks)
	if err != nil {
		return false, fmt.Errorf("failed to encode completed tasks: %w", err)
	}

	query := `
	UPDATE micro_plan_progress
	SET current_day = $2, completed_tasks = $3, is_completed = $4, completion_date = $5
	WHERE id = $1 AND current_day = $6 AND is_completed = false
	`

	result, err := s.db.Exec(ctx, query,
		progress.ID, progress.CurrentDay, completedTasks, progress.IsCompleted, progress.CompletionDate, expectedDay,
	)
	if err != nil {
		return false, fmt.Errorf("failed to store plan progress: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func scanProgress(row rowScanner) (*microplan.Progress, error) {
	progress := &microplan.Progress{}
	var completedTasks []byte

	err := row.Scan(
		&progress.ID,
		&progress.SessionID,
		&progress.PlanID,
		&progress.EnrolledDate,
		&progress.CurrentDay,
		&completedTasks,
		&progress.IsCompleted,
		&progress.CompletionDate,
	)
	if err != nil {
		return nil, err
	}

	if len(completedTasks) > 0 {
		if err := json.Unmarshal(completedTasks, &progress.CompletedTasks); err != nil {
			return nil, fmt.Errorf("failed to decode completed tasks: %w", err)
		}
	}
	if progress.CompletedTasks == nil {
		progress.CompletedTasks = map[string][]string{}
	}

	return progress, nil
}
