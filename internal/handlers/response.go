package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Send a standardized JSON error response
func RespondWithError(w http.ResponseWriter, statusCode int, code string, message string) {
	RespondWithErrorDetails(w, statusCode, code, message, nil)
}

// RespondWithErrorDetails is RespondWithError with machine-readable context,
// e.g. the byte offset of a template parse error.
func RespondWithErrorDetails(w http.ResponseWriter, statusCode int, code string, message string, details map[string]string) {
	RespondWithJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
