package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"mannMitraAPI/internal/conversation"
	"mannMitraAPI/middleware"
	"mannMitraAPI/services"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// SendMessage runs one chat turn. A longer timeout than the usual 5s because
// the response generator is a remote model call.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	var req conversation.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.chatService.SubmitMessage(ctx, sessionID, req.Message, req.Language)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	if response.Crisis {
		helpline := response.Helpline
		if helpline == "" {
			helpline = "national"
		}
		middleware.RecordCrisisEscalation(helpline)
	}

	respondWithJSON(w, http.StatusOK, response)
}

func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Session not resolved")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := h.chatService.GetHistory(ctx, sessionID, limit)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, history)
}
