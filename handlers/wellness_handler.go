package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"mannMitraAPI/internal/mood"
	"mannMitraAPI/internal/session"
	"mannMitraAPI/middleware"
	"mannMitraAPI/services"
)

type WellnessHandler struct {
	wellnessService *services.WellnessService
	badgeService    *services.BadgeService
}

func NewWellnessHandler(wellnessService *services.WellnessService, badgeService *services.BadgeService) *WellnessHandler {
	return &WellnessHandler{
		wellnessService: wellnessService,
		badgeService:    badgeService,
	}
}

func (h *WellnessHandler) LogMood(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	var req mood.LogMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.wellnessService.LogMood(ctx, sessionID, req.Mood)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	newBadges, err := h.badgeService.CheckAndAwardBadges(ctx, sessionID)
	if err != nil {
		// Badge evaluation must not fail the mood log itself.
		log.Printf("Badge evaluation failed for session %s: %v", sessionID, err)
		newBadges = nil
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"entry":      entry,
		"new_badges": newBadges,
	})
}

func (h *WellnessHandler) GetMoodHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := h.wellnessService.GetMoodHistory(ctx, sessionID, limit)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, history)
}

func (h *WellnessHandler) GetMoodTrend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 7
	}

	trend, err := h.wellnessService.GetMoodTrend(ctx, sessionID, days)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"days":         days,
		"average_mood": trend,
	})
}

func (h *WellnessHandler) GetMoodStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	streak, err := h.wellnessService.GetMoodStreak(ctx, sessionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"streak": streak})
}

func (h *WellnessHandler) GetWeeklySummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	summary, err := h.wellnessService.GetWeeklySummary(ctx, sessionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

func (h *WellnessHandler) ScheduleNudge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	var req session.ScheduleNudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Type == "" {
		respondWithError(w, http.StatusBadRequest, "Field 'type' is required")
		return
	}

	nudge, err := h.wellnessService.ScheduleNudge(ctx, sessionID, req.Type, req.ScheduledTime)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, nudge)
}

// GetPendingNudges returns due nudges and marks them sent in the same call.
// Delivery is pull-only; there is no push channel.
func (h *WellnessHandler) GetPendingNudges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	nudges, err := h.wellnessService.ConsumePendingNudges(ctx, sessionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, nudges)
}

// CheckMoodReminder tells the client whether to surface a mood reminder now,
// and records the send when it says yes.
func (h *WellnessHandler) CheckMoodReminder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	due, err := h.wellnessService.ShouldSendMoodReminder(ctx, sessionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	if due {
		if err := h.wellnessService.MarkMoodReminderSent(ctx, sessionID); err != nil {
			respondWithServiceError(w, err)
			return
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"reminder_due": due})
}
