package handler

import (
	"encoding/json"
	"net/http"

	"calikart/internal/middleware"
	"calikart/internal/model"
	"calikart/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler handles passwordless authentication HTTP requests.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// RequestCode handles POST /api/auth/request-code requests.
func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req model.RequestCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.RequestCode(r.Context(), req.Email); err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// VerifyCode handles POST /api/auth/verify-code requests.
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	sessionToken, user, err := h.service.VerifyCode(r.Context(), req.Email, req.Code, req.BasketTokens)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.VerifyCodeResponse{
		SessionToken: sessionToken,
		User:         user,
	})
}

// Me handles GET /api/auth/me requests, returning the caller's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", h.logger)
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}
	if user == nil {
		// Session outlived the user row.
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "unknown user", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
