package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"mannMitraAPI/internal/session"
	"mannMitraAPI/middleware"
	"mannMitraAPI/services"
)

type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	sess, err := h.sessionService.Get(ctx, sessionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, sess)
}

func (h *SessionHandler) SetPersona(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	var req session.SetPersonaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Persona == "" {
		respondWithError(w, http.StatusBadRequest, "Field 'persona' is required")
		return
	}

	if err := h.sessionService.SetPersona(ctx, sessionID, req.Persona); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Persona updated", "persona": req.Persona})
}

func (h *SessionHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	var req session.SetLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.sessionService.SetLanguage(ctx, sessionID, req.Language); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Language updated", "language": req.Language})
}

func (h *SessionHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	prefs, err := h.sessionService.GetPreferences(ctx, sessionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, prefs)
}

func (h *SessionHandler) SetMoodReminders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.sessionService.SetMoodRemindersEnabled(ctx, sessionID, req.Enabled); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"mood_reminders_enabled": req.Enabled})
}
