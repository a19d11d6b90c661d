package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pizza-desk/internal/model"

	"github.com/rs/zerolog"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

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
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeDomainError maps a domain error to its HTTP status and writes
// the standard error payload.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	status := http.StatusInternalServerError
	code := model.ErrCodeInternalError
	message := "internal error"

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
		message = domainErr.Message
		switch domainErr.Code {
		case model.ErrCodeStoreNotConfigured:
			status = http.StatusServiceUnavailable
		case model.ErrCodeOrderNotFound:
			status = http.StatusNotFound
		case model.ErrCodeTerminalStatus, model.ErrCodeAdvanceInFlight, model.ErrCodeInvalidTransition:
			status = http.StatusConflict
		case model.ErrCodeFetchFailed, model.ErrCodeTransitionFailed:
			status = http.StatusBadGateway
		}
	}

	logger.Error().Str("code", code).Int("status", status).Msg("handler error")
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}
