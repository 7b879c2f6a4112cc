package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"calikart/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// handleServiceError maps a service error onto the HTTP status taxonomy.
func handleServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Msg("unexpected service error")
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
		return
	}

	writeError(w, statusForCode(domainErr.Code), domainErr.Code, domainErr.Message, logger)
}

func statusForCode(code string) int {
	switch code {
	case model.ErrCodeBasketNotFound,
		model.ErrCodeItemNotFound,
		model.ErrCodeProductNotFound,
		model.ErrCodeCartNotFound,
		model.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidJSON,
		model.ErrCodeValidationFailed,
		model.ErrCodeInvalidQuantity,
		model.ErrCodeEmptyCart:
		return http.StatusBadRequest
	case model.ErrCodeOTPInvalid, model.ErrCodeOTPExpired, model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeInvalidTransition, model.ErrCodeInvalidState:
		return http.StatusConflict
	case model.ErrCodeDeliveryFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
