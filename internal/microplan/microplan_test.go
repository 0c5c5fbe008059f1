package microplan

import (
	"errors"
	"testing"
	"time"

	"mannMitraAPI/internal/apperr"
)

func twoDayPlan() *Plan {
	return &Plan{
		ID:           "exam_stress_sos",
		Title:        "Exam Stress SOS",
		DurationDays: 2,
		Days: map[string]Day{
			"1": {Title: "Breathe", Tasks: []Task{{ID: "breathing"}, {ID: "journal_prompt"}}},
			"2": {Title: "Plan", Tasks: []Task{{ID: "study_blocks"}}},
		},
	}
}

func enrolled(planID string) *Progress {
	return &Progress{SessionID: "sess-1", PlanID: planID, CurrentDay: 1}
}

func TestCompleteTaskAdvancesDayWhenAllTasksDone(t *testing.T) {
	plan := twoDayPlan()
	p := enrolled(plan.ID)
	now := time.Now()

	changed, err := p.CompleteTask(plan, 1, "breathing", now)
	if err != nil || !changed {
		t.Fatalf("first task: changed=%v err=%v", changed, err)
	}
	if p.CurrentDay != 1 {
		t.Fatalf("advanced after partial day, current_day=%d", p.CurrentDay)
	}

	changed, err = p.CompleteTask(plan, 1, "journal_prompt", now)
	if err != nil || !changed {
		t.Fatalf("second task: changed=%v err=%v", changed, err)
	}
	if p.CurrentDay != 2 {
		t.Errorf("current_day = %d, want 2 after clearing day 1", p.CurrentDay)
	}
	if p.IsCompleted {
		t.Error("plan marked completed before final day")
	}
}

func TestCompleteFinalDayCompletesPlan(t *testing.T) {
	plan := twoDayPlan()
	p := enrolled(plan.ID)
	now := time.Now()

	p.CompleteTask(plan, 1, "breathing", now)
	p.CompleteTask(plan, 1, "journal_prompt", now)

	changed, err := p.CompleteTask(plan, 2, "study_blocks", now)
	if err != nil || !changed {
		t.Fatalf("final task: changed=%v err=%v", changed, err)
	}
	if !p.IsCompleted {
		t.Error("plan not marked completed after final day cleared")
	}
	if p.CompletionDate == nil {
		t.Error("completion_date not set")
	}
	if p.CurrentDay != 3 {
		t.Errorf("current_day = %d, want 3 (past last day)", p.CurrentDay)
	}
}

func TestCompleteTaskOnOtherDayDoesNotAdvance(t *testing.T) {
	plan := twoDayPlan()
	p := enrolled(plan.ID)

	changed, err := p.CompleteTask(plan, 2, "study_blocks", time.Now())
	if err != nil || !changed {
		t.Fatalf("changed=%v err=%v", changed, err)
	}
	if p.CurrentDay != 1 {
		t.Errorf("current_day = %d, want 1: clearing a future day must not advance", p.CurrentDay)
	}
	if p.IsCompleted {
		t.Error("plan completed without clearing the current day")
	}
}

func TestCompleteTaskIdempotent(t *testing.T) {
	plan := twoDayPlan()
	p := enrolled(plan.ID)
	now := time.Now()

	if changed, _ := p.CompleteTask(plan, 1, "breathing", now); !changed {
		t.Fatal("first completion reported no change")
	}
	changed, err := p.CompleteTask(plan, 1, "breathing", now)
	if err != nil {
		t.Fatalf("repeat completion errored: %v", err)
	}
	if changed {
		t.Error("repeat completion reported a change")
	}
	if got := len(p.CompletedTasksForDay(1)); got != 1 {
		t.Errorf("task recorded %d times, want 1", got)
	}
}

func TestCompleteTaskValidation(t *testing.T) {
	plan := twoDayPlan()

	t.Run("unknown day", func(t *testing.T) {
		p := enrolled(plan.ID)
		_, err := p.CompleteTask(plan, 5, "breathing", time.Now())
		if !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("err = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("unknown task", func(t *testing.T) {
		p := enrolled(plan.ID)
		_, err := p.CompleteTask(plan, 1, "cold_shower", time.Now())
		if !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("err = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("completed plan rejects mutation", func(t *testing.T) {
		p := enrolled(plan.ID)
		now := time.Now()
		p.CompleteTask(plan, 1, "breathing", now)
		p.CompleteTask(plan, 1, "journal_prompt", now)
		p.CompleteTask(plan, 2, "study_blocks", now)

		_, err := p.CompleteTask(plan, 2, "study_blocks", now)
		if !errors.Is(err, apperr.ErrInvalidState) {
			t.Errorf("err = %v, want ErrInvalidState", err)
		}
	})
}

func TestCompletionPercentage(t *testing.T) {
	plan := twoDayPlan()
	p := enrolled(plan.ID)
	now := time.Now()

	if pct := p.CompletionPercentage(plan); pct != 0 {
		t.Errorf("fresh enrollment pct = %f, want 0", pct)
	}

	p.CompleteTask(plan, 1, "breathing", now)
	if pct := p.CompletionPercentage(plan); pct < 33.2 || pct > 33.4 {
		t.Errorf("pct = %f, want ~33.3 (1 of 3 tasks)", pct)
	}

	p.CompleteTask(plan, 1, "journal_prompt", now)
	p.CompleteTask(plan, 2, "study_blocks", now)
	if pct := p.CompletionPercentage(plan); pct != 100 {
		t.Errorf("pct = %f, want 100", pct)
	}
}

func TestCatalogPersonaFilter(t *testing.T) {
	catalog := NewCatalog(map[string]*Plan{
		"exam_stress_sos": {DurationDays: 1, TargetAudience: "class_10_12", Days: map[string]Day{"1": {}}},
		"sleep_reset":     {DurationDays: 1, TargetAudience: "college_youth", Days: map[string]Day{"1": {}}},
	})

	all := catalog.Plans("")
	if len(all) != 2 {
		t.Errorf("unfiltered catalog has %d plans, want 2", len(all))
	}
	students := catalog.Plans("class_10_12")
	if len(students) != 1 {
		t.Errorf("filtered catalog has %d plans, want 1", len(students))
	}
	if _, ok := students["exam_stress_sos"]; !ok {
		t.Error("expected exam_stress_sos for class_10_12")
	}
}
