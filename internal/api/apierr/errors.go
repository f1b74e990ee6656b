package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes, one per failure kind
const (
	CodeUnauthenticated    = "unauthenticated"
	CodeInvalidArgument    = "invalid-argument"
	CodeNotFound           = "not-found"
	CodeAlreadyExists      = "already-exists"
	CodeResourceExhausted  = "resource-exhausted"
	CodeFailedPrecondition = "failed-precondition"
	CodePermissionDenied   = "permission-denied"
	CodeInternal           = "internal"
)

var statusForCode = map[string]int{
	CodeUnauthenticated:    http.StatusUnauthorized,
	CodeInvalidArgument:    http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeAlreadyExists:      http.StatusConflict,
	CodeResourceExhausted:  http.StatusTooManyRequests,
	CodeFailedPrecondition: http.StatusPreconditionFailed,
	CodePermissionDenied:   http.StatusForbidden,
	CodeInternal:           http.StatusInternalServerError,
}

// mappings pairs domain errors with their kind. The sentinel's text becomes the message.
var mappings = []struct {
	err  error
	code string
}{
	// Request validation
	{model.ErrInvalidDifficulty, CodeInvalidArgument},
	{model.ErrInvalidElo, CodeInvalidArgument},
	{model.ErrInvalidInviteCode, CodeInvalidArgument},
	{model.ErrInvalidWinner, CodeInvalidArgument},
	{model.ErrInvalidMatchReport, CodeInvalidArgument},
	{model.ErrInvalidMatchID, CodeInvalidArgument},

	// Lookups
	{model.ErrPlayerNotFound, CodeNotFound},
	{model.ErrProfileNotFound, CodeNotFound},
	{model.ErrMatchNotFound, CodeNotFound},
	{model.ErrInviteNotFound, CodeNotFound},
	{model.ErrQueueEntryNotFound, CodeNotFound},

	// Match lifecycle
	{model.ErrCannotJoinOwnMatch, CodeAlreadyExists},
	{model.ErrMatchFull, CodeResourceExhausted},
	{model.ErrMatchNotCompleted, CodeFailedPrecondition},
	{model.ErrMatchNotActive, CodeFailedPrecondition},
	{model.ErrMatchAlreadyComplete, CodeFailedPrecondition},
	{model.ErrMatchAlreadySettled, CodeAlreadyExists},
	{model.ErrNotInMatch, CodePermissionDenied},

	// Store contention and allocation; safe to retry
	{model.ErrMatchConflict, CodeInternal},
	{model.ErrInviteCodeExhausted, CodeInternal},

	// Auth
	{model.ErrSessionNotFound, CodeUnauthenticated},
	{auth.ErrInvalidCredentials, CodeUnauthenticated},
	{auth.ErrInvalidSession, CodeUnauthenticated},
	{auth.ErrUsernameExists, CodeAlreadyExists},
}

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

func newError(code, message string) *httpError {
	return &httpError{statusForCode[code], APIError{code, message}}
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return newError(m.code, m.err.Error())
		}
	}
	return newError(CodeInternal, "Internal server error")
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return newError(CodeInvalidArgument, message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return newError(CodeUnauthenticated, "User must be authenticated")
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return newError(CodeInternal, "Internal server error")
}
