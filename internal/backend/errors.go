package backend

import (
	"encoding/json"
	"net/http"
)

// APIError is a non-success response from the service. Detail is the
// service-provided message when the body carried one, otherwise the calling
// operation's fallback text.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string { return e.Detail }

func decodeError(res *http.Response, fallback string) error {
	msg := fallback
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil && body.Detail != "" {
		msg = body.Detail
	}
	return &APIError{Status: res.StatusCode, Detail: msg}
}
