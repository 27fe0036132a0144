package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/twilightpharmacy/booking-backend/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps an AppError to its HTTP status. Anything else is
// an internal error and the message is not leaked to the client.
func respondWithAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		respondWithJSON(w, appErr.HTTPStatus(), map[string]string{
			"error": appErr.Message,
			"type":  string(appErr.Type),
		})
		return
	}
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}
