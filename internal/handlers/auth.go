package handlers

import (
	"BlogHub/internal/config"
	"BlogHub/internal/middleware"
	"BlogHub/internal/model"
	"BlogHub/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// AuthHandler — регистрация, вход и текущий пользователь.
type AuthHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewAuthHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{UserService: userService, Logger: logger, Config: cfg}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Message string      `json:"message,omitempty"`
	User    *model.User `json:"user"`
	Token   string      `json:"token,omitempty"`
}

// Register регистрация пользователя
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{Message: "User registered successfully", User: user})
}

// Login вход: возвращает пользователя и токен
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.Logger.Infow("login failed", "ip", r.RemoteAddr)
		}
		writeServiceError(w, r, h.Logger, err)
		return
	}

	token, err := middleware.IssueToken(user.ID, h.Config.AuthSecret, h.Config.TokenTTL)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	h.Logger.Infow("user logged in", "user_id", user.ID)
	writeJSON(w, http.StatusOK, userResponse{User: user, Token: token})
}

// Me — текущий пользователь по токену
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, id)
}
