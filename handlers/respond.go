package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"truthlens/models"
	"truthlens/services"
)

const (
	internalErrorMessage = "Internal server error. Please try again."
	maxJSONBody          = 1 << 20
)

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HANDLER] ⚠ Could not write response: %v", err)
	}
}

func writeData(w http.ResponseWriter, inputType string, data any) {
	writeJSON(w, http.StatusOK, models.Envelope{
		Success:   true,
		InputType: inputType,
		Data:      data,
		Timestamp: timestamp(),
	})
}

func writeFailure(w http.ResponseWriter, status int, inputType, msg string) {
	writeJSON(w, status, models.Envelope{
		Success:   false,
		InputType: inputType,
		Error:     msg,
		Timestamp: timestamp(),
	})
}

// writeError maps a pipeline error onto a status code. Only validation and
// fetch failures reveal their message; everything else is a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, inputType string, err error) {
	var verr *services.ValidationError
	var ferr *services.FetchError
	switch {
	case errors.As(err, &verr):
		writeFailure(w, http.StatusBadRequest, inputType, verr.Msg)
	case errors.As(err, &ferr):
		writeFailure(w, http.StatusBadRequest, inputType, ferr.Reason)
	default:
		log.Printf("[HANDLER] ❌ %s %s [%s]: %v", r.Method, r.URL.Path, RequestID(r.Context()), err)
		writeFailure(w, http.StatusInternalServerError, inputType, internalErrorMessage)
	}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(v)
}
