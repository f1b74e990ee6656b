package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/sudokuduo/internal/api/apierr"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decode reads a JSON body into v, writing a 400 on failure
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return false
	}
	return true
}

// eloOrInvalid maps a missing rating to a value the services reject
func eloOrInvalid(elo *int) int {
	if elo == nil {
		return -1
	}
	return *elo
}
