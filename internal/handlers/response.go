package handlers

import (
	"BlogHub/internal/chatbot"
	"BlogHub/internal/middleware"
	"BlogHub/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// detail отрезает у обёрнутой ошибки префикс сигнальной ошибки.
func detail(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		msg = sentinel.Error()
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// writeServiceError переводит ошибку сервиса в HTTP-ответ. 500 логируются с деталями.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeMessage(w, http.StatusBadRequest, detail(err, service.ErrValidation))
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, service.ErrForbidden):
		writeMessage(w, http.StatusForbidden, detail(err, service.ErrForbidden))
	case errors.Is(err, service.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		writeMessage(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, service.ErrTooLarge):
		writeMessage(w, http.StatusRequestEntityTooLarge, detail(err, service.ErrTooLarge))
	case errors.Is(err, service.ErrUnsupportedMedia):
		writeMessage(w, http.StatusUnsupportedMediaType, "Only image and video files are allowed")
	case errors.Is(err, chatbot.ErrEmptyMessage):
		writeMessage(w, http.StatusBadRequest, "Message is required")
	case errors.Is(err, chatbot.ErrBadUpstream):
		logger.Warnw("chat upstream returned invalid response", "error", err)
		writeMessage(w, http.StatusBadGateway, "Chat service returned an invalid response")
	case errors.Is(err, chatbot.ErrNotConfigured):
		writeMessage(w, http.StatusServiceUnavailable, "Chat service is not configured")
	default:
		logger.Errorw("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
			"error", err,
		)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// actorFrom — пользователь, положенный middleware.RequireAuth.
func actorFrom(r *http.Request) (service.Actor, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{ID: id.ID, Name: id.Name, Email: id.Email, Admin: id.IsAdmin()}, true
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
