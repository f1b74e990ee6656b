package handler

import (
	"net/http"

	"github.com/mcoot/sudokuduo/internal/api/middleware"
	"github.com/mcoot/sudokuduo/internal/api/request"
	"github.com/mcoot/sudokuduo/internal/api/response"
	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/services/matchmaking"
)

// MatchmakingHandler handles ranked searches
type MatchmakingHandler struct {
	service *matchmaking.Service
}

// NewMatchmakingHandler creates a new matchmaking handler
func NewMatchmakingHandler(service *matchmaking.Service) *MatchmakingHandler {
	return &MatchmakingHandler{service: service}
}

// Find handles POST /api/v1/matchmaking.
// Blocks for up to the configured wait before falling back to an AI opponent.
func (h *MatchmakingHandler) Find(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.MatchmakingRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.service.FindMatch(r.Context(), player.ID, matchmaking.Request{
		Difficulty:  model.Difficulty(req.Difficulty),
		Elo:         eloOrInvalid(req.Elo),
		DisplayName: req.DisplayName,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.MatchmakingFromResult(result))
}
