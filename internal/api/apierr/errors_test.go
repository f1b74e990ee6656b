package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/services/auth"
)

func TestWriteErrorMapsKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrInvalidDifficulty, http.StatusBadRequest, CodeInvalidArgument},
		{model.ErrInvalidElo, http.StatusBadRequest, CodeInvalidArgument},
		{model.ErrInvalidWinner, http.StatusBadRequest, CodeInvalidArgument},
		{model.ErrInvalidMatchID, http.StatusBadRequest, CodeInvalidArgument},
		{model.ErrMatchNotFound, http.StatusNotFound, CodeNotFound},
		{model.ErrInviteNotFound, http.StatusNotFound, CodeNotFound},
		{model.ErrCannotJoinOwnMatch, http.StatusConflict, CodeAlreadyExists},
		{model.ErrMatchAlreadySettled, http.StatusConflict, CodeAlreadyExists},
		{model.ErrMatchFull, http.StatusTooManyRequests, CodeResourceExhausted},
		{model.ErrMatchNotCompleted, http.StatusPreconditionFailed, CodeFailedPrecondition},
		{model.ErrMatchAlreadyComplete, http.StatusPreconditionFailed, CodeFailedPrecondition},
		{model.ErrNotInMatch, http.StatusForbidden, CodePermissionDenied},
		{model.ErrInviteCodeExhausted, http.StatusInternalServerError, CodeInternal},
		{model.ErrMatchConflict, http.StatusInternalServerError, CodeInternal},
		{auth.ErrInvalidSession, http.StatusUnauthorized, CodeUnauthenticated},
		{auth.ErrUsernameExists, http.StatusConflict, CodeAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, fmt.Errorf("handler: %w", tt.err))

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.err.Error(), resp.Error.Message)
		})
	}
}

func TestWriteErrorHidesUnknownErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("redis: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, CodeInternal, resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "redis")
}

func TestWriteErrorPassesThroughRequestErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, NewInvalidRequestError("winner is required"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "winner is required", resp.Error.Message)
}
