package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Thobbytosin/flowva-server/internal/domain"
	apperrors "github.com/Thobbytosin/flowva-server/pkg/errors"
	"github.com/Thobbytosin/flowva-server/pkg/logger"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError funnels every handler failure through the uniform envelope.
// Anything that is not an AppError answers 500.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternalError("Internal server error", err)
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
	} else {
		log.WithError(err).Warn("Request rejected")
	}

	writeJSON(w, appErr.StatusCode, domain.Response{Success: false, Message: appErr.Message})
}

// decodeBody decodes a JSON request body into dst
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewBadRequestError("Invalid request body")
	}
	return nil
}
