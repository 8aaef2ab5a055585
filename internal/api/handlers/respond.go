package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/producerfilm/backend/internal/contracts"
	"github.com/producerfilm/backend/pkg/logger"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondServiceError maps domain errors onto HTTP status codes
func respondServiceError(w http.ResponseWriter, log *logger.Logger, err error, action string) {
	var ve *contracts.ValidationError

	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, contracts.ErrNotFound):
		respondError(w, http.StatusNotFound, "Movie not found")
	case errors.Is(err, contracts.ErrInvariant):
		log.WithError(err).Error("Invariant violated while " + action)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	default:
		log.WithError(err).Error("Failed while " + action)
		respondError(w, http.StatusInternalServerError, "Failed while "+action)
	}
}
