package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"mannMitraAPI/internal/journal"
	"mannMitraAPI/middleware"
	"mannMitraAPI/services"
)

type JournalHandler struct {
	journalService *services.JournalService
	badgeService   *services.BadgeService
}

func NewJournalHandler(journalService *services.JournalService, badgeService *services.BadgeService) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
		badgeService:   badgeService,
	}
}

func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	var req journal.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.journalService.CreateEntry(ctx, sessionID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	newBadges, err := h.badgeService.CheckAndAwardBadges(ctx, sessionID)
	if err != nil {
		log.Printf("Badge evaluation failed for session %s: %v", sessionID, err)
		newBadges = nil
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"entry":      view,
		"new_badges": newBadges,
	})
}

func (h *JournalHandler) GetEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	query := r.URL.Query()
	if query.Get("from") != "" || query.Get("to") != "" {
		from, err := time.Parse("2006-01-02", query.Get("from"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		to, err := time.Parse("2006-01-02", query.Get("to"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		entries, err := h.journalService.GetEntriesByDateRange(ctx, sessionID, from, to.AddDate(0, 0, 1))
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, entries)
		return
	}

	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	entries, err := h.journalService.GetEntries(ctx, sessionID, limit, offset)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *JournalHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	entryID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid entry id")
		return
	}

	entry, err := h.journalService.GetEntry(ctx, entryID, sessionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

func (h *JournalHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	entryID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid entry id")
		return
	}

	var req journal.UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.journalService.UpdateEntry(ctx, entryID, sessionID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

func (h *JournalHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	entryID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid entry id")
		return
	}

	if err := h.journalService.DeleteEntry(ctx, entryID, sessionID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Entry deleted"})
}

// SearchEntries matches unencrypted entries only; ciphertext is not
// searchable server side.
func (h *JournalHandler) SearchEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Search query parameter 'q' is required")
		return
	}

	entries, err := h.journalService.SearchEntries(ctx, sessionID, query)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *JournalHandler) GetEntriesByMood(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	query := r.URL.Query()
	moodMin, err := optionalMoodParam(query.Get("min"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid min mood, expected an integer")
		return
	}
	moodMax, err := optionalMoodParam(query.Get("max"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid max mood, expected an integer")
		return
	}
	if moodMin == nil && moodMax == nil {
		respondWithError(w, http.StatusBadRequest, "At least one of min or max is required")
		return
	}

	entries, err := h.journalService.GetEntriesByMoodRange(ctx, sessionID, moodMin, moodMax)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *JournalHandler) ExportEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	query := r.URL.Query()
	var start, end *time.Time
	if query.Get("from") != "" || query.Get("to") != "" {
		from, err := time.Parse("2006-01-02", query.Get("from"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		to, err := time.Parse("2006-01-02", query.Get("to"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		to = to.AddDate(0, 0, 1)
		start, end = &from, &to
	}

	export, err := h.journalService.ExportEntries(ctx, sessionID, start, end)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, export)
}

func optionalMoodParam(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (h *JournalHandler) GetEntriesByTag(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	tag := mux.Vars(r)["tag"]
	entries, err := h.journalService.GetEntriesByTag(ctx, sessionID, tag)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *JournalHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 30
	}

	stats, err := h.journalService.GetStats(ctx, sessionID, days)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

func (h *JournalHandler) GetWritingStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	streak, err := h.journalService.GetWritingStreak(ctx, sessionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"streak": streak})
}
