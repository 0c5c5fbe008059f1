package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"mannMitraAPI/services"
)

type HelplineHandler struct {
	helplineService *services.HelplineService
}

func NewHelplineHandler(helplineService *services.HelplineService) *HelplineHandler {
	return &HelplineHandler{
		helplineService: helplineService,
	}
}

func (h *HelplineHandler) GetHelplines(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	respondWithJSON(w, http.StatusOK, h.helplineService.GetHelplines(region))
}

func (h *HelplineHandler) GetRegionalHelplines(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.helplineService.GetRegionalHelplines())
}

func (h *HelplineHandler) GetEmergencyResources(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.helplineService.GetEmergencyResources())
}

// GetCrisisLogs serves the anonymized escalation log. Routed behind the
// metrics basic auth in main.go; it is an operator surface, not a user one.
func (h *HelplineHandler) GetCrisisLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := h.helplineService.GetCrisisLogs(ctx, limit)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, logs)
}

func (h *HelplineHandler) GetCrisisStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 30
	}

	stats, err := h.helplineService.GetCrisisStats(ctx, days)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
