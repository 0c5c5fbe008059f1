package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"mannMitraAPI/services"
)

type MythsHandler struct {
	mythsService *services.MythsFactsService
}

func NewMythsHandler(mythsService *services.MythsFactsService) *MythsHandler {
	return &MythsHandler{
		mythsService: mythsService,
	}
}

func (h *MythsHandler) GetMythsFacts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	language := r.URL.Query().Get("language")
	respondWithJSON(w, http.StatusOK, h.mythsService.GetMythsFacts(category, language))
}

func (h *MythsHandler) GetRandom(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	language := r.URL.Query().Get("language")

	m, err := h.mythsService.GetRandom(category, language)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, m)
}

func (h *MythsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	m, err := h.mythsService.GetByID(mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, m)
}

func (h *MythsHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Search query parameter 'q' is required")
		return
	}

	language := r.URL.Query().Get("language")
	respondWithJSON(w, http.StatusOK, h.mythsService.Search(query, language))
}

func (h *MythsHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.mythsService.Categories())
}
