package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/sudokuduo/internal/api"
	"github.com/mcoot/sudokuduo/internal/api/apierr"
	"github.com/mcoot/sudokuduo/internal/api/response"
	"github.com/mcoot/sudokuduo/internal/factory"
	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/services/matchmaking"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{
		Logger:            logger,
		MatchmakingConfig: matchmaking.Config{WaitTimeout: 50 * time.Millisecond},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		AuthService:        app.AuthService,
		ProfileService:     app.ProfileService,
		LobbyService:       app.LobbyService,
		MatchmakingService: app.MatchmakingService,
		SettlementService:  app.SettlementService,
		GameController:     app.GameController,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rr.Code, rr.Body.String())
	resp := decodeBody[apierr.ErrorResponse](t, rr)
	assert.Equal(t, code, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Message)
}

func createGuestPlayer(t *testing.T, ts *testServer, name string) (string, string) {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"displayName": name}, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	resp := decodeBody[response.AuthResponse](t, rr)
	return resp.SessionToken, resp.Player.ID
}

func createPrivateMatch(t *testing.T, ts *testServer, token string) response.CreatePrivateMatchResponse {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/matches/private", map[string]any{
		"difficulty":  "easy",
		"elo":         1000,
		"displayName": "Host",
	}, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeBody[response.CreatePrivateMatchResponse](t, rr)
}

// startPrivateMatch returns an active match between two new guests
func startPrivateMatch(t *testing.T, ts *testServer) (string, string, string) {
	t.Helper()
	hostToken, _ := createGuestPlayer(t, ts, "Hannah")
	guestToken, _ := createGuestPlayer(t, ts, "Felix")

	created := createPrivateMatch(t, ts, hostToken)
	rr := ts.request(http.MethodPost, "/api/v1/matches/private/join", map[string]any{
		"inviteCode":  created.InviteCode,
		"elo":         1000,
		"displayName": "Felix",
	}, guestToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	return created.MatchID, hostToken, guestToken
}

func complete(t *testing.T, ts *testServer, matchID, token string, winner int) {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/matches/"+matchID+"/complete", map[string]any{
		"winner":        winner,
		"reason":        "completion",
		"elapsedTime":   200,
		"player2Errors": 2,
	}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

// Players

func TestCreateGuestPlayer(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"displayName": "Alice"}, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	resp := decodeBody[response.AuthResponse](t, rr)
	assert.Equal(t, "Alice", resp.Player.DisplayName)
	assert.True(t, resp.Player.IsGuest)
	assert.NotEmpty(t, resp.SessionToken)
}

func TestCreateGuestPlayerRequiresName(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{}, "")
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidArgument)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	registerBody := map[string]string{
		"username":    "alice",
		"password":    "secret123",
		"displayName": "Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	assert.Equal(t, http.StatusCreated, rr.Code)
	registerResp := decodeBody[response.AuthResponse](t, rr)
	assert.False(t, registerResp.Player.IsGuest)

	rr = ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	assertError(t, rr, http.StatusConflict, apierr.CodeAlreadyExists)

	rr = ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{
		"username": "alice",
		"password": "secret123",
	}, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	loginResp := decodeBody[response.AuthResponse](t, rr)
	assert.Equal(t, registerResp.Player.ID, loginResp.Player.ID)

	rr = ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	}, "")
	assertError(t, rr, http.StatusUnauthorized, apierr.CodeUnauthenticated)
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)
	token, id := createGuestPlayer(t, ts, "Bob")

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)

	me := decodeBody[response.Player](t, rr)
	assert.Equal(t, id, me.ID)
	assert.Equal(t, "Bob", me.DisplayName)
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, "")
	assertError(t, rr, http.StatusUnauthorized, apierr.CodeUnauthenticated)

	rr = ts.request(http.MethodPost, "/api/v1/matches/private", map[string]any{"difficulty": "easy", "elo": 1000}, "")
	assertError(t, rr, http.StatusUnauthorized, apierr.CodeUnauthenticated)

	rr = ts.request(http.MethodPost, "/api/v1/matchmaking", map[string]any{"difficulty": "easy", "elo": 1000}, "not-a-token")
	assertError(t, rr, http.StatusUnauthorized, apierr.CodeUnauthenticated)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	ts := newTestServer(t)
	token, _ := createGuestPlayer(t, ts, "Bob")

	rr := ts.request(http.MethodPost, "/api/v1/players/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestInvalidJSONBody(t *testing.T) {
	ts := newTestServer(t)
	token, _ := createGuestPlayer(t, ts, "Bob")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches/private", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidArgument)
}

// Private matches

func TestCreatePrivateMatch(t *testing.T) {
	ts := newTestServer(t)
	token, _ := createGuestPlayer(t, ts, "Hannah")

	created := createPrivateMatch(t, ts, token)
	assert.NotEmpty(t, created.MatchID)
	assert.Len(t, created.InviteCode, 6)
	assert.Equal(t, "sudokuduo://join/"+created.InviteCode, created.InviteURL)

	rr := ts.request(http.MethodGet, "/api/v1/matches/"+created.MatchID, nil, token)
	assert.Equal(t, http.StatusOK, rr.Code)
	m := decodeBody[model.Match](t, rr)
	assert.Equal(t, model.MatchStatusLobby, m.Status)
	assert.Equal(t, created.InviteCode, m.InviteCode)
}

func TestCreatePrivateMatchValidation(t *testing.T) {
	ts := newTestServer(t)
	token, _ := createGuestPlayer(t, ts, "Hannah")

	rr := ts.request(http.MethodPost, "/api/v1/matches/private", map[string]any{"difficulty": "impossible", "elo": 1000}, token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidArgument)

	rr = ts.request(http.MethodPost, "/api/v1/matches/private", map[string]any{"difficulty": "easy"}, token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidArgument)

	rr = ts.request(http.MethodPost, "/api/v1/matches/private", map[string]any{"difficulty": "easy", "elo": 3001}, token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidArgument)
}

func TestJoinPrivateMatch(t *testing.T) {
	ts := newTestServer(t)
	hostToken, _ := createGuestPlayer(t, ts, "Hannah")
	guestToken, _ := createGuestPlayer(t, ts, "Felix")
	lateToken, _ := createGuestPlayer(t, ts, "Late")
	created := createPrivateMatch(t, ts, hostToken)

	join := func(token string) *httptest.ResponseRecorder {
		return ts.request(http.MethodPost, "/api/v1/matches/private/join", map[string]any{
			"inviteCode": created.InviteCode,
			"elo":        1100,
		}, token)
	}

	rr := join(hostToken)
	assertError(t, rr, http.StatusConflict, apierr.CodeAlreadyExists)

	rr = join(guestToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	joined := decodeBody[response.JoinPrivateMatchResponse](t, rr)
	assert.Equal(t, created.MatchID, joined.MatchID)
	assert.Equal(t, "Host", joined.Host.DisplayName)
	assert.Equal(t, 1000, joined.Host.Elo)
	assert.Equal(t, "easy", joined.Difficulty)

	// Slot 2 is taken once the match starts
	rr = join(lateToken)
	assertError(t, rr, http.StatusTooManyRequests, apierr.CodeResourceExhausted)
}

func TestJoinPrivateMatchUnknownCode(t *testing.T) {
	ts := newTestServer(t)
	token, _ := createGuestPlayer(t, ts, "Felix")

	rr := ts.request(http.MethodPost, "/api/v1/matches/private/join", map[string]any{
		"inviteCode": "NOPE00",
		"elo":        1000,
	}, token)
	assertError(t, rr, http.StatusNotFound, apierr.CodeNotFound)

	rr = ts.request(http.MethodPost, "/api/v1/matches/private/join", map[string]any{"elo": 1000}, token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidArgument)
}

func TestGetMatchOutsiderForbidden(t *testing.T) {
	ts := newTestServer(t)
	matchID, _, _ := startPrivateMatch(t, ts)
	outsider, _ := createGuestPlayer(t, ts, "Mallory")

	rr := ts.request(http.MethodGet, "/api/v1/matches/"+matchID, nil, outsider)
	assertError(t, rr, http.StatusForbidden, apierr.CodePermissionDenied)

	rr = ts.request(http.MethodGet, "/api/v1/matches/missing", nil, outsider)
	assertError(t, rr, http.StatusNotFound, apierr.CodeNotFound)
}

// Lifecycle and settlement

func TestCompleteAndSettleMatch(t *testing.T) {
	ts := newTestServer(t)
	matchID, hostToken, guestToken := startPrivateMatch(t, ts)

	rr := ts.request(http.MethodPost, "/api/v1/matches/"+matchID+"/elo", map[string]any{"winner": 1}, hostToken)
	assertError(t, rr, http.StatusPreconditionFailed, apierr.CodeFailedPrecondition)

	complete(t, ts, matchID, guestToken, 1)

	rr = ts.request(http.MethodPost, "/api/v1/matches/"+matchID+"/complete", map[string]any{
		"winner": 2,
		"reason": "completion",
	}, hostToken)
	assertError(t, rr, http.StatusPreconditionFailed, apierr.CodeFailedPrecondition)

	rr = ts.request(http.MethodPost, "/api/v1/matches/"+matchID+"/elo", map[string]any{"winner": 1}, hostToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	settled := decodeBody[response.UpdateEloResponse](t, rr)
	assert.Equal(t, 16, settled.Player1EloChange)
	assert.Equal(t, -16, settled.Player2EloChange)
	assert.Equal(t, 1016, settled.NewElos.Player1)
	assert.Equal(t, 984, settled.NewElos.Player2)
	assert.Equal(t, model.RankBronze, settled.NewRanks.Player1)
	assert.Equal(t, model.RankNovice, settled.NewRanks.Player2)

	rr = ts.request(http.MethodPost, "/api/v1/matches/"+matchID+"/elo", map[string]any{"winner": 1}, guestToken)
	assertError(t, rr, http.StatusConflict, apierr.CodeAlreadyExists)

	rr = ts.request(http.MethodGet, "/api/v1/players/me/profile", nil, hostToken)
	require.Equal(t, http.StatusOK, rr.Code)
	p := decodeBody[model.Profile](t, rr)
	assert.Equal(t, 1016, p.CurrentElo)
	assert.Equal(t, 1, p.Wins)
	assert.Equal(t, 1, p.TotalMatches)

	rr = ts.request(http.MethodGet, "/api/v1/players/me/history?limit=5", nil, guestToken)
	require.Equal(t, http.StatusOK, rr.Code)
	history := decodeBody[response.HistoryResponse](t, rr)
	require.Len(t, history.History, 1)
	assert.Equal(t, model.OutcomeLoss, history.History[0].Result)
	assert.Equal(t, 2, history.History[0].YourErrors)
	assert.Equal(t, 200, history.History[0].Duration)

	rr = ts.request(http.MethodGet, "/api/v1/leaderboard?limit=1", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	board := decodeBody[response.LeaderboardResponse](t, rr)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, 1016, board.Entries[0].Elo)
}

func TestUpdateEloValidation(t *testing.T) {
	ts := newTestServer(t)
	matchID, hostToken, _ := startPrivateMatch(t, ts)
	complete(t, ts, matchID, hostToken, 0)
	outsider, _ := createGuestPlayer(t, ts, "Mallory")

	rr := ts.request(http.MethodPost, "/api/v1/matches/"+matchID+"/elo", map[string]any{}, hostToken)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidArgument)

	rr = ts.request(http.MethodPost, "/api/v1/matches/"+matchID+"/elo", map[string]any{"winner": 3}, hostToken)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidArgument)

	rr = ts.request(http.MethodPost, "/api/v1/matches/"+matchID+"/elo", map[string]any{"winner": 0}, outsider)
	assertError(t, rr, http.StatusForbidden, apierr.CodePermissionDenied)

	rr = ts.request(http.MethodPost, "/api/v1/matches/missing/elo", map[string]any{"winner": 0}, hostToken)
	assertError(t, rr, http.StatusNotFound, apierr.CodeNotFound)
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	ts := newTestServer(t)
	token, _ := createGuestPlayer(t, ts, "Bob")

	rr := ts.request(http.MethodGet, "/api/v1/players/me/history?limit=abc", nil, token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidArgument)
}

// Matchmaking

func TestMatchmakingFallsBackToAI(t *testing.T) {
	ts := newTestServer(t)
	token, _ := createGuestPlayer(t, ts, "Solo")

	rr := ts.request(http.MethodPost, "/api/v1/matchmaking", map[string]any{
		"difficulty": "medium",
		"elo":        1200,
	}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeBody[response.MatchmakingResponse](t, rr)
	assert.False(t, resp.OpponentFound)
	assert.True(t, resp.AIOpponent)
	assert.True(t, resp.Opponent.IsAI)
	assert.InDelta(t, 1200, resp.Opponent.Elo, 50)

	rr = ts.request(http.MethodGet, "/api/v1/matches/"+resp.MatchID, nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	m := decodeBody[model.Match](t, rr)
	assert.Equal(t, model.MatchStatusActive, m.Status)
	assert.Equal(t, model.MatchTypeAI, m.Type)
}

func TestMatchmakingPairsTwoSearchers(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, aliceID := createGuestPlayer(t, ts, "Alice")
	bobToken, _ := createGuestPlayer(t, ts, "Bob")

	// Alice waits in the queue while Bob searches
	require.NoError(t, ts.app.Storage.SaveQueueEntry(context.Background(), &model.QueueEntry{
		UserID:      model.PlayerID(aliceID),
		DisplayName: "Alice",
		Difficulty:  model.DifficultyMedium,
		Elo:         1000,
		EloMin:      800,
		EloMax:      1200,
		ExpireAt:    time.Now().Add(time.Minute),
	}))

	rr := ts.request(http.MethodPost, "/api/v1/matchmaking", map[string]any{
		"difficulty": "medium",
		"elo":        1050,
	}, bobToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decodeBody[response.MatchmakingResponse](t, rr)
	assert.True(t, resp.OpponentFound)
	assert.False(t, resp.AIOpponent)
	assert.Equal(t, "Alice", resp.Opponent.DisplayName)
	assert.Equal(t, 1000, resp.Opponent.Elo)

	rr = ts.request(http.MethodPost, "/api/v1/matches/"+resp.MatchID+"/ready", nil, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/matches/"+resp.MatchID+"/ready", nil, bobToken)
	require.Equal(t, http.StatusOK, rr.Code)
	m := decodeBody[model.Match](t, rr)
	assert.Equal(t, model.MatchStatusActive, m.Status)
}

func TestMatchmakingValidation(t *testing.T) {
	ts := newTestServer(t)
	token, _ := createGuestPlayer(t, ts, "Solo")

	rr := ts.request(http.MethodPost, "/api/v1/matchmaking", map[string]any{"difficulty": "nightmare", "elo": 1000}, token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidArgument)

	rr = ts.request(http.MethodPost, "/api/v1/matchmaking", map[string]any{"difficulty": "easy", "elo": -1}, token)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidArgument)
}
