package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/p-n-ai/curricuforge/internal/curriculum"
	"github.com/p-n-ai/curricuforge/internal/generation"
	"github.com/p-n-ai/curricuforge/internal/workspace"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeBody reads a JSON body into v and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeFailure maps an engine error onto a status and a message the user may
// see. Generation failures always read the same.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workspace.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, workspace.ErrDocumentNotFound),
		errors.Is(err, workspace.ErrTopicNotFound),
		errors.Is(err, workspace.ErrNoQuiz):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, workspace.ErrRequestInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, workspace.ErrInvalidIdentity),
		errors.Is(err, workspace.ErrConfirmationRequired),
		errors.Is(err, generation.ErrInvalidRequest),
		errors.Is(err, curriculum.ErrIncompleteAnswers):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, generation.ErrGenerationFailed):
		writeError(w, http.StatusBadGateway, workspace.FailureNotice)
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
