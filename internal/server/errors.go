package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/ironlog/internal/models"
)

// errorBody is the JSON error envelope. Field is set for validation errors.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError maps a core error to an HTTP status. NotFound and terminal
// state errors are never retryable; Conflict is the only one callers may
// retry, and the engine has already done its bounded retries by the time
// it reaches here.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, models.ErrInvalidState):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "session is no longer in progress"})
	case errors.Is(err, models.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: "concurrent update, retry"})
	default:
		s.log.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
