package handlers

import (
	"context"
	"net/http"
	"time"

	"mannMitraAPI/middleware"
	"mannMitraAPI/services"
)

type BadgeHandler struct {
	badgeService *services.BadgeService
}

func NewBadgeHandler(badgeService *services.BadgeService) *BadgeHandler {
	return &BadgeHandler{
		badgeService: badgeService,
	}
}

func (h *BadgeHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	catalog, err := h.badgeService.GetCatalog(ctx)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, catalog)
}

func (h *BadgeHandler) GetUserBadges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	badges, err := h.badgeService.GetUserBadges(ctx, sessionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, badges)
}

func (h *BadgeHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	progress, err := h.badgeService.GetBadgeProgress(ctx, sessionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, progress)
}

// Evaluate re-checks every unearned badge and returns only the newly earned
// ones. Safe to call as often as the client likes.
func (h *BadgeHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	earned, err := h.badgeService.CheckAndAwardBadges(ctx, sessionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"new_badges": earned})
}

func (h *BadgeHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	stats, err := h.badgeService.GetBadgeStats(ctx, sessionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
