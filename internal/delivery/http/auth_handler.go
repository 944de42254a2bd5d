package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/frontandrew/caretrip/internal/domain"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/usecase/auth"
)

// AuthService определяет интерфейс сервиса аутентификации
type AuthService interface {
	Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error)
	DriverLogin(ctx context.Context, req *auth.DriverLoginRequest) (*auth.LoginResponse, error)
	Refresh(ctx context.Context, req *auth.RefreshTokenRequest) (*auth.LoginResponse, error)
	Logout(ctx context.Context, principal *domain.Principal, req *auth.LogoutRequest) error
	LoginOptions(ctx context.Context, code string) (*domain.LoginOptions, error)
	Session(ctx context.Context, principal *domain.Principal) (*domain.DriverSession, error)
	UpdateSession(ctx context.Context, principal *domain.Principal, req *auth.UpdateSessionRequest) (*domain.DriverSession, error)
}

// AuthHandler обрабатывает запросы аутентификации и сессии водителя
type AuthHandler struct {
	authService AuthService
	logger      logger.Logger
}

// NewAuthHandler создает новый handler
func NewAuthHandler(authService AuthService, logger logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login обрабатывает вход администратора
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	response, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err, "login")
		return
	}

	respondSuccess(w, http.StatusOK, response)
}

// DriverLogin обрабатывает вход водителя по коду управления
// POST /api/v1/auth/driver/login
func (h *AuthHandler) DriverLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.DriverLoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	response, err := h.authService.DriverLogin(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err, "login driver")
		return
	}

	respondSuccess(w, http.StatusOK, response)
}

// Refresh обновляет пару токенов
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req auth.RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	response, err := h.authService.Refresh(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err, "refresh token")
		return
	}

	respondSuccess(w, http.StatusOK, response)
}

// Logout отзывает refresh токен и удаляет сессию водителя
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	var req auth.LogoutRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.authService.Logout(r.Context(), principal, &req); err != nil {
		handleError(w, r, h.logger, err, "logout")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	})
}

// LoginOptions возвращает списки для экрана входа водителя
// GET /api/v1/auth/login-options?code=
func (h *AuthHandler) LoginOptions(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		respondValidationError(w, map[string]string{"code": "is required"})
		return
	}

	options, err := h.authService.LoginOptions(r.Context(), code)
	if err != nil {
		handleError(w, r, h.logger, err, "get login options")
		return
	}

	respondSuccess(w, http.StatusOK, options)
}

// GetMe возвращает текущий субъект и, для водителя, его сессию
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	data := map[string]interface{}{
		"principal": principal,
	}
	if principal.IsDriver() {
		session, err := h.authService.Session(r.Context(), principal)
		if err != nil {
			handleError(w, r, h.logger, err, "get session")
			return
		}
		data["session"] = session
	}

	respondSuccess(w, http.StatusOK, data)
}

// GetSession возвращает сессию водителя
// GET /api/v1/driver/session
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	session, err := h.authService.Session(r.Context(), principal)
	if err != nil {
		handleError(w, r, h.logger, err, "get session")
		return
	}

	respondSuccess(w, http.StatusOK, session)
}

// UpdateSession меняет машину, пассажиров и маршрут в сессии
// PUT /api/v1/driver/session
func (h *AuthHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	var req auth.UpdateSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.authService.UpdateSession(r.Context(), principal, &req)
	if err != nil {
		handleError(w, r, h.logger, err, "update session")
		return
	}

	respondSuccess(w, http.StatusOK, session)
}
