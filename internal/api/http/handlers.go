// Package http exposes the composer operations over HTTP. Handlers close
// over their dependencies and translate the error taxonomy: validation
// errors become 400s with the human message, collaborator errors keep the
// service status and detail text.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quizforge/composer/internal/backend"
	"github.com/quizforge/composer/internal/quiz"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Detail string      `json:"detail"`
	Reason quiz.Reason `json:"reason,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	var ve *quiz.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: ve.Message, Reason: ve.Reason})
		return
	}
	var ae *backend.APIError
	if errors.As(err, &ae) {
		code := ae.Status
		if code < 400 {
			code = http.StatusBadGateway
		}
		writeJSON(w, code, errorBody{Detail: ae.Detail})
		return
	}
	writeJSON(w, http.StatusBadGateway, errorBody{Detail: err.Error()})
}

func asValidation(err error) *quiz.ValidationError {
	var ve *quiz.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return &quiz.ValidationError{Message: err.Error()}
}
