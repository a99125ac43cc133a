package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/utafrali/BackofficeGo/internal/domain"
)

// AuthService is the authentication surface the handler depends on.
type AuthService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.TokenPair, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenPair, error)
	Refresh(ctx context.Context, authorizationHeader string) (*domain.TokenPair, error)
}

// AuthHandler exposes the authentication endpoints.
type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

// NewAuthHandler creates the authentication handler.
func NewAuthHandler(auth AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	pair, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeRaw(w, http.StatusCreated, pair)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	pair, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeRaw(w, http.StatusOK, pair)
}

// Refresh handles POST /api/v1/auth/refresh. The refresh token travels
// in the Authorization header as a Bearer credential.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	pair, err := h.auth.Refresh(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeRaw(w, http.StatusOK, pair)
}
