package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"mannMitraAPI/middleware"
	"mannMitraAPI/services"
)

type MicroPlanHandler struct {
	planService  *services.MicroPlanService
	badgeService *services.BadgeService
}

func NewMicroPlanHandler(planService *services.MicroPlanService, badgeService *services.BadgeService) *MicroPlanHandler {
	return &MicroPlanHandler{
		planService:  planService,
		badgeService: badgeService,
	}
}

func (h *MicroPlanHandler) GetAvailablePlans(w http.ResponseWriter, r *http.Request) {
	persona := r.URL.Query().Get("persona")
	respondWithJSON(w, http.StatusOK, h.planService.GetAvailablePlans(persona))
}

func (h *MicroPlanHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	planID := mux.Vars(r)["planId"]
	progress, err := h.planService.Enroll(ctx, sessionID, planID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, progress)
}

func (h *MicroPlanHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	planID := mux.Vars(r)["planId"]

	var req struct {
		Day    int    `json:"day"`
		TaskID string `json:"task_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TaskID == "" {
		respondWithError(w, http.StatusBadRequest, "Field 'task_id' is required")
		return
	}

	changed, err := h.planService.CompleteTask(ctx, sessionID, planID, req.Day, req.TaskID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	progress, err := h.planService.GetUserProgress(ctx, sessionID, planID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	var newBadges interface{}
	if changed {
		earned, err := h.badgeService.CheckAndAwardBadges(ctx, sessionID)
		if err != nil {
			log.Printf("Badge evaluation failed for session %s: %v", sessionID, err)
		} else {
			newBadges = earned
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"changed":    changed,
		"progress":   progress,
		"new_badges": newBadges,
	})
}

func (h *MicroPlanHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	planID := mux.Vars(r)["planId"]
	progress, err := h.planService.GetUserProgress(ctx, sessionID, planID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, progress)
}

func (h *MicroPlanHandler) GetActivePlans(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	plans, err := h.planService.GetActivePlans(ctx, sessionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, plans)
}

func (h *MicroPlanHandler) GetCompletedPlans(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	plans, err := h.planService.GetCompletedPlans(ctx, sessionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, plans)
}
