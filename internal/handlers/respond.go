package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"conditions-backend/internal/models"

	"go.uber.org/zap"
)

const msgInternal = "internal server error"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps err onto a status code. Only messages carried by
// *models.Error reach the client.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var e *models.Error
	if !errors.As(err, &e) {
		log.Error("unhandled error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternal})
		return
	}

	status := statusFor(e.Kind)
	if status >= http.StatusInternalServerError {
		log.Error(e.Message, zap.Error(e.Err))
	}
	writeJSON(w, status, errorResponse{Error: e.Message})
}

func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindInvalidInput:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
