package microplan

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"mannMitraAPI/internal/apperr"
)

// Task is a single activity inside a plan day.
type Task struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// Day groups the tasks required to clear one day of a plan.
type Day struct {
	Title string `json:"title"`
	Tasks []Task `json:"tasks"`
}

// Plan is a fixed-length guided program. Days are keyed by their day number
// as a string ("1".."N"), matching the catalog JSON.
type Plan struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	TargetAudience string         `json:"target_audience,omitempty"`
	DurationDays   int            `json:"duration_days"`
	Days           map[string]Day `json:"days"`
}

// DayTasks returns the required task ids for a day, or false if the day is
// not part of the plan.
func (p *Plan) DayTasks(day int) ([]string, bool) {
	d, ok := p.Days[strconv.Itoa(day)]
	if !ok {
		return nil, false
	}
	ids := make([]string, len(d.Tasks))
	for i, t := range d.Tasks {
		ids[i] = t.ID
	}
	return ids, true
}

// TotalTasks counts every task across all days of the plan.
func (p *Plan) TotalTasks() int {
	total := 0
	for _, d := range p.Days {
		total += len(d.Tasks)
	}
	return total
}

// Catalog is the read-only set of available plans, loaded once at startup and
// injected into the service.
type Catalog struct {
	plans map[string]*Plan
}

// LoadCatalog reads the plan definitions from a JSON file keyed by plan id.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan catalog: %w", err)
	}

	var plans map[string]*Plan
	if err := json.Unmarshal(raw, &plans); err != nil {
		return nil, fmt.Errorf("failed to parse plan catalog: %w", err)
	}

	for id, plan := range plans {
		plan.ID = id
		if plan.DurationDays != len(plan.Days) {
			return nil, fmt.Errorf("plan %s declares %d days but defines %d", id, plan.DurationDays, len(plan.Days))
		}
	}

	return &Catalog{plans: plans}, nil
}

// NewCatalog wraps already-built plans; used by tests.
func NewCatalog(plans map[string]*Plan) *Catalog {
	for id, p := range plans {
		p.ID = id
	}
	return &Catalog{plans: plans}
}

func (c *Catalog) Plan(planID string) (*Plan, bool) {
	p, ok := c.plans[planID]
	return p, ok
}

// Plans returns the catalog, optionally filtered by target audience.
func (c *Catalog) Plans(persona string) map[string]*Plan {
	if persona == "" {
		return c.plans
	}
	filtered := make(map[string]*Plan)
	for id, p := range c.plans {
		if p.TargetAudience == persona {
			filtered[id] = p
		}
	}
	return filtered
}

// Progress tracks one session's enrollment in one plan. CompletedTasks is
// keyed by day number as a string, matching the persisted JSON column.
type Progress struct {
	ID             int64               `json:"id" db:"id"`
	SessionID      string              `json:"session_id" db:"session_id"`
	PlanID         string              `json:"plan_id" db:"plan_id"`
	EnrolledDate   time.Time           `json:"enrolled_date" db:"enrolled_date"`
	CurrentDay     int                 `json:"current_day" db:"current_day"`
	CompletedTasks map[string][]string `json:"completed_tasks" db:"completed_tasks"`
	IsCompleted    bool                `json:"is_completed" db:"is_completed"`
	CompletionDate *time.Time          `json:"completion_date" db:"completion_date"`
}

// CompletedTasksForDay returns the completed task ids recorded for a day.
func (p *Progress) CompletedTasksForDay(day int) []string {
	if p.CompletedTasks == nil {
		return nil
	}
	return p.CompletedTasks[strconv.Itoa(day)]
}

// IsTaskCompleted reports whether a task was already marked done.
func (p *Progress) IsTaskCompleted(day int, taskID string) bool {
	for _, id := range p.CompletedTasksForDay(day) {
		if id == taskID {
			return true
		}
	}
	return false
}

// CompleteTask validates and applies a task completion against the plan
// definition. It returns true when the progress changed, false when the task
// was already done (a no-op, not an error). When the completion clears the
// current day the progress advances, and past the final day the plan becomes
// completed with CompletionDate set.
func (p *Progress) CompleteTask(plan *Plan, day int, taskID string, now time.Time) (bool, error) {
	if p.IsCompleted {
		return false, fmt.Errorf("%w: plan already completed", apperr.ErrInvalidState)
	}

	required, ok := plan.DayTasks(day)
	if !ok {
		return false, fmt.Errorf("%w: day %d is not part of plan %s", apperr.ErrInvalidArgument, day, plan.ID)
	}
	if !containsTask(required, taskID) {
		return false, fmt.Errorf("%w: task %s is not part of day %d", apperr.ErrInvalidArgument, taskID, day)
	}

	if p.IsTaskCompleted(day, taskID) {
		return false, nil
	}

	if p.CompletedTasks == nil {
		p.CompletedTasks = make(map[string][]string)
	}
	key := strconv.Itoa(day)
	p.CompletedTasks[key] = append(p.CompletedTasks[key], taskID)

	// Advance only when the cleared day is the current one: finishing a past
	// or future day never moves the needle.
	if day == p.CurrentDay && len(p.CompletedTasks[key]) == len(required) {
		p.CurrentDay++
		if p.CurrentDay > plan.DurationDays {
			p.IsCompleted = true
			p.CompletionDate = &now
		}
	}

	return true, nil
}

// CompletionPercentage reports completed tasks across days up to and
// including the current day, over the plan's total task count.
func (p *Progress) CompletionPercentage(plan *Plan) float64 {
	total := plan.TotalTasks()
	if total == 0 {
		return 0
	}
	done := 0
	for day := 1; day <= p.CurrentDay; day++ {
		done += len(p.CompletedTasksForDay(day))
	}
	return float64(done) / float64(total) * 100
}

func containsTask(ids []string, taskID string) bool {
	for _, id := range ids {
		if id == taskID {
			return true
		}
	}
	return false
}
