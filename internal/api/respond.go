package api

import (
	"encoding/json"
	"net/http"

	"candleboard/pkg/errors"
	"candleboard/pkg/logger"
)

func writeJSON(w http.ResponseWriter, log *logger.Logger, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warnw("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errors.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrNotFound):
		status = http.StatusNotFound
	}
	writeJSON(w, log, status, map[string]string{"error": err.Error()})
}
