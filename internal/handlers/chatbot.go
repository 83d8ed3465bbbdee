package handlers

import (
	"BlogHub/internal/chatbot"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ChatHandler — виджет чата.
type ChatHandler struct {
	Bot    *chatbot.Bot
	Logger *zap.SugaredLogger
}

func NewChatHandler(bot *chatbot.Bot, logger *zap.SugaredLogger) *ChatHandler {
	return &ChatHandler{Bot: bot, Logger: logger}
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *ChatHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	reply, err := h.Bot.Reply(r.Context(), req.Message)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
