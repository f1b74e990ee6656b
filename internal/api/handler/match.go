package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/sudokuduo/internal/api/middleware"
	"github.com/mcoot/sudokuduo/internal/api/request"
	"github.com/mcoot/sudokuduo/internal/api/response"
	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/services/game"
	"github.com/mcoot/sudokuduo/internal/services/lobby"
	"github.com/mcoot/sudokuduo/internal/services/settlement"
)

// MatchHandler handles private lobbies and the match lifecycle
type MatchHandler struct {
	lobbyService      *lobby.Service
	gameController    *game.Controller
	settlementService *settlement.Service
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(
	lobbyService *lobby.Service,
	gameController *game.Controller,
	settlementService *settlement.Service,
) *MatchHandler {
	return &MatchHandler{
		lobbyService:      lobbyService,
		gameController:    gameController,
		settlementService: settlementService,
	}
}

// CreatePrivate handles POST /api/v1/matches/private
func (h *MatchHandler) CreatePrivate(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.CreatePrivateMatchRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.lobbyService.CreatePrivateMatch(r.Context(), player.ID, lobby.CreateRequest{
		Difficulty:  model.Difficulty(req.Difficulty),
		Elo:         eloOrInvalid(req.Elo),
		DisplayName: req.DisplayName,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.CreatePrivateMatchFromResult(result))
}

// JoinPrivate handles POST /api/v1/matches/private/join
func (h *MatchHandler) JoinPrivate(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.JoinPrivateMatchRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.lobbyService.JoinPrivateMatch(r.Context(), player.ID, lobby.JoinRequest{
		InviteCode:  req.InviteCode,
		Elo:         eloOrInvalid(req.Elo),
		DisplayName: req.DisplayName,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.JoinPrivateMatchFromResult(result))
}

// Get handles GET /api/v1/matches/{matchId}
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	m, err := h.gameController.GetMatch(r.Context(), matchID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, m)
}

// Ready handles POST /api/v1/matches/{matchId}/ready
func (h *MatchHandler) Ready(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	m, err := h.gameController.MarkReady(r.Context(), matchID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, m)
}

// Complete handles POST /api/v1/matches/{matchId}/complete
func (h *MatchHandler) Complete(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.CompleteMatchRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Winner == nil {
		WriteError(w, model.ErrInvalidWinner)
		return
	}

	m, err := h.gameController.CompleteMatch(r.Context(), matchID(r), player.ID, game.Report{
		Winner:          *req.Winner,
		Reason:          model.WinReason(req.Reason),
		ElapsedTime:     req.ElapsedTime,
		Player1Moves:    req.Player1Moves,
		Player2Moves:    req.Player2Moves,
		Player1Errors:   req.Player1Errors,
		Player2Errors:   req.Player2Errors,
		Player1Hints:    req.Player1Hints,
		Player2Hints:    req.Player2Hints,
		Player1Complete: req.Player1Complete,
		Player2Complete: req.Player2Complete,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, m)
}

// UpdateElo handles POST /api/v1/matches/{matchId}/elo
func (h *MatchHandler) UpdateElo(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.UpdateEloRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Winner == nil {
		WriteError(w, model.ErrInvalidWinner)
		return
	}

	result, err := h.settlementService.UpdateElo(r.Context(), player.ID, matchID(r), *req.Winner)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.UpdateEloFromResult(result))
}

func matchID(r *http.Request) model.MatchID {
	return model.MatchID(mux.Vars(r)["matchId"])
}
