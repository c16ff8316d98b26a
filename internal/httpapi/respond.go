package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	errx "github.com/sharpchat/server/internal/core/error"
	logx "github.com/sharpchat/server/pkg/logger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps an error to its carried HTTP status and safe message.
// Unwrapped errors become a generic 500; the underlying cause is logged, not
// leaked.
func writeError(w http.ResponseWriter, err error) {
	status := errx.StatusOf(err)
	message := errx.SystemErrorMessage

	var e *errx.Error
	if errors.As(err, &e) {
		message = e.Message
	}
	if status >= 500 {
		logx.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": message})
}
