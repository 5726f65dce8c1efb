package handlers

import (
	"GophBox/internal/config"
	"GophBox/internal/middleware"
	"GophBox/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// UserHandler: регистрация, вход и проверка статуса.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg}
}

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type authResponse struct {
	ID    string `json:"id"`
	Login string `json:"login"`
	Token string `json:"token"`
}

// Register регистрация пользователя
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Login, req.Password)
	switch {
	case errors.Is(err, service.ErrLoginTaken):
		writeError(w, http.StatusConflict, "login already taken")
		return
	case errors.Is(err, service.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "login and password are required")
		return
	case err != nil:
		h.Logger.Errorw("Register: service error", "login", req.Login, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.issueToken(w, user.ID, user.Login)
}

// Login вход пользователя
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.UserService.Login(r.Context(), req.Login, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid login or password")
		return
	}
	if err != nil {
		h.Logger.Errorw("Login: service error", "login", req.Login, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.issueToken(w, user.ID, user.Login)
}

// Status проверка авторизации
func (h *UserHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"result": "anonymous"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "User ID = " + userID})
}

func (h *UserHandler) issueToken(w http.ResponseWriter, userID, login string) {
	token, err := middleware.NewToken(userID, h.Config.AuthSecret)
	if err != nil {
		h.Logger.Errorw("failed to sign token", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	middleware.SetTokenCookie(w, token)
	writeJSON(w, http.StatusOK, authResponse{ID: userID, Login: login, Token: token})
}
