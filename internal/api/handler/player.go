package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/sudokuduo/internal/api/middleware"
	"github.com/mcoot/sudokuduo/internal/api/request"
	"github.com/mcoot/sudokuduo/internal/api/response"
	"github.com/mcoot/sudokuduo/internal/services/auth"
	"github.com/mcoot/sudokuduo/internal/services/profile"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	authService    *auth.Service
	profileService *profile.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service, profileService *profile.Service) *PlayerHandler {
	return &PlayerHandler{
		authService:    authService,
		profileService: profileService,
	}
}

// CreateGuest handles POST /api/v1/players/guest
func (h *PlayerHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGuestRequest
	if !decode(w, r, &req) {
		return
	}

	if req.DisplayName == "" {
		WriteError(w, NewInvalidRequestError("displayName is required"))
		return
	}

	session, err := h.authService.CreateGuestPlayer(r.Context(), req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.AuthResponseFromSession(session))
}

// Register handles POST /api/v1/players/register
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}
	if req.DisplayName == "" {
		WriteError(w, NewInvalidRequestError("displayName is required"))
		return
	}

	session, err := h.authService.RegisterPlayer(r.Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.AuthResponseFromSession(session))
}

// Login handles POST /api/v1/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.AuthResponseFromSession(session))
}

// Logout handles POST /api/v1/players/logout
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if err := h.authService.InvalidateSession(r.Context(), session.Token); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	response.OK(w, response.PlayerFromModel(player))
}

// GetProfile handles GET /api/v1/players/me/profile
func (h *PlayerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	p, err := h.profileService.GetProfile(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, p)
}

// GetHistory handles GET /api/v1/players/me/history
func (h *PlayerHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	history, err := h.profileService.GetHistory(r.Context(), player.ID, limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.HistoryResponse{History: history})
}

// GetLeaderboard handles GET /api/v1/leaderboard
func (h *PlayerHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	entries, err := h.profileService.GetLeaderboard(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.LeaderboardResponse{Entries: entries})
}

// parseLimit reads the optional limit query parameter. Zero means the service default.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		WriteError(w, NewInvalidRequestError("limit must be a positive integer"))
		return 0, false
	}
	return limit, true
}
