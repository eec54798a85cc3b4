package handler

import (
	"encoding/json"
	"net/http"

	"codelens/internal/intake"
	"codelens/internal/logger"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Error: message})
}

// writeError logs err and answers with the intake status and user message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := intake.HTTPStatus(err)
	log := logger.FromContext(r.Context())
	if intake.IsUserError(err) {
		log.Infow("request rejected", logger.FieldStatus, status, logger.FieldError, err.Error())
	} else {
		log.Errorw("request failed", logger.FieldStatus, status, logger.FieldError, err.Error())
	}
	writeFailure(w, status, intake.UserMessage(err))
}

func methodNotAllowed(w http.ResponseWriter) {
	writeFailure(w, http.StatusMethodNotAllowed, "Method not allowed")
}
