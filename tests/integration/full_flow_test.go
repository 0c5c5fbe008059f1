package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mannMitraAPI/config"
	"mannMitraAPI/internal/journal"
	"mannMitraAPI/internal/microplan"
	"mannMitraAPI/services"
	"mannMitraAPI/tests/helpers"
)

// TestFullWellnessFlow walks one anonymous session through the core journey:
// session creation, mood logging, journaling, a micro-plan day, and badge
// evaluation.
func TestFullWellnessFlow(t *testing.T) {
	pool := helpers.SetupTestDB(t)

	sessionService := services.NewSessionService(pool)
	wellnessService := services.NewWellnessService(pool, sessionService)
	journalService := services.NewJournalService(pool)
	badgeService := services.NewBadgeService(pool)

	catalog := microplan.NewCatalog(map[string]*microplan.Plan{
		"test_plan": {
			Title:        "Test Plan",
			DurationDays: 1,
			Days: map[string]microplan.Day{
				"1": {Title: "Day One", Tasks: []microplan.Task{
					{ID: "task_a", Title: "Task A"},
					{ID: "task_b", Title: "Task B"},
				}},
			},
		},
	})
	planService := services.NewMicroPlanService(pool, catalog)

	ctx := context.Background()
	require.NoError(t, badgeService.SeedCatalog(ctx))

	token := "test_" + uuid.New().String()
	defer helpers.CleanupTestSession(t, pool, token)

	// Step 1: First contact creates the session
	t.Log("Step 1: Session creation")
	sess, err := sessionService.GetOrCreate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, token, sess.SessionID)
	assert.Equal(t, config.DefaultLanguage, sess.Language)

	// Step 2: Log a mood and check the streak starts
	t.Log("Step 2: Mood logging")
	entry, err := wellnessService.LogMood(ctx, token, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, entry.Mood)

	streak, err := wellnessService.GetMoodStreak(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	// Step 3: Write an encrypted journal entry and read it back
	t.Log("Step 3: Journal round trip")
	title := "Rough day"
	before, after := 4, 7
	view, err := journalService.CreateEntry(ctx, token, &journal.CreateEntryRequest{
		Content:    "Wrote down everything that was bothering me.",
		Title:      &title,
		MoodBefore: &before,
		MoodAfter:  &after,
		Tags:       []string{"exams"},
	})
	require.NoError(t, err)
	assert.True(t, view.IsEncrypted)
	assert.False(t, view.Undecryptable)
	assert.Equal(t, "Wrote down everything that was bothering me.", view.Content)

	fetched, err := journalService.GetEntry(ctx, view.ID, token)
	require.NoError(t, err)
	assert.Equal(t, view.Content, fetched.Content)

	// Mood-range filter matches on the post-writing mood
	low, high := 6, 8
	byMood, err := journalService.GetEntriesByMoodRange(ctx, token, &low, &high)
	require.NoError(t, err)
	require.Len(t, byMood, 1)
	assert.Equal(t, view.ID, byMood[0].ID)

	outOfRange := 8
	byMood, err = journalService.GetEntriesByMoodRange(ctx, token, &outOfRange, nil)
	require.NoError(t, err)
	assert.Empty(t, byMood)

	// Export carries the decrypted entry
	export, err := journalService.ExportEntries(ctx, token, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, token, export.SessionID)
	require.Equal(t, 1, export.TotalEntries)
	assert.Equal(t, view.Content, export.Entries[0].Content)

	// Step 4: Enroll in a plan and complete day one
	t.Log("Step 4: Micro-plan day")
	progress, err := planService.Enroll(ctx, token, "test_plan")
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CurrentDay)

	changed, err := planService.CompleteTask(ctx, token, "test_plan", 1, "task_a")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = planService.CompleteTask(ctx, token, "test_plan", 1, "task_b")
	require.NoError(t, err)
	assert.True(t, changed)

	planView, err := planService.GetUserProgress(ctx, token, "test_plan")
	require.NoError(t, err)
	assert.True(t, planView.IsPlanComplete, "single-day plan should finish when day one clears")

	// Step 5: Badge evaluation awards first-activity badges once
	t.Log("Step 5: Badge evaluation")
	earned, err := badgeService.CheckAndAwardBadges(ctx, token)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, b := range earned {
		names[b.Name] = true
	}
	assert.True(t, names["First Mood"], "expected First Mood badge, got %v", names)
	assert.True(t, names["First Entry"], "expected First Entry badge, got %v", names)
	assert.True(t, names["Wellness Beginner"], "expected Wellness Beginner badge, got %v", names)

	again, err := badgeService.CheckAndAwardBadges(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, again, "second evaluation must not re-award")
}

// TestCrisisEscalationFlow verifies a crisis message short-circuits the
// generator, persists the log, and routes a helpline, all without any
// response generator configured.
func TestCrisisEscalationFlow(t *testing.T) {
	pool := helpers.SetupTestDB(t)

	sessionService := services.NewSessionService(pool)
	helplineService := services.NewHelplineService(pool, config.Helplines)
	chatService := services.NewChatService(pool, sessionService, helplineService, config.CrisisKeywords)

	ctx := context.Background()
	token := "test_" + uuid.New().String()
	defer helpers.CleanupTestSession(t, pool, token)

	_, err := sessionService.GetOrCreate(ctx, token)
	require.NoError(t, err)

	response, err := chatService.SubmitMessage(ctx, token, "I keep having suicidal thoughts lately", "en")
	require.NoError(t, err)
	assert.True(t, response.Crisis)
	assert.NotEmpty(t, response.Helpline)
	assert.Contains(t, response.Response, config.Helplines["national"])

	logs, err := helplineService.GetCrisisLogs(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.NotEqual(t, token, logs[0].SessionID, "gatekeeper view must not expose the full session id")
}
