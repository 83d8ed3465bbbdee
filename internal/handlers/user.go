package handlers

import (
	"BlogHub/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// UserHandler — админка пользователей и профиль.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
}

func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger}
}

// List только для администратора (RequireAdmin на маршруте)
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	user, err := h.UserService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete — сам пользователь или администратор
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if err := h.UserService.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "User deleted successfully")
}
