package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/sudokuduo/internal/api/handler"
	"github.com/mcoot/sudokuduo/internal/api/middleware"
	"github.com/mcoot/sudokuduo/internal/api/response"
	"github.com/mcoot/sudokuduo/internal/services/auth"
	"github.com/mcoot/sudokuduo/internal/services/game"
	"github.com/mcoot/sudokuduo/internal/services/lobby"
	"github.com/mcoot/sudokuduo/internal/services/matchmaking"
	"github.com/mcoot/sudokuduo/internal/services/profile"
	"github.com/mcoot/sudokuduo/internal/services/settlement"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	AuthService        *auth.Service
	ProfileService     *profile.Service
	LobbyService       *lobby.Service
	MatchmakingService *matchmaking.Service
	SettlementService  *settlement.Service
	GameController     *game.Controller
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService, cfg.ProfileService)
	matchHandler := handler.NewMatchHandler(cfg.LobbyService, cfg.GameController, cfg.SettlementService)
	matchmakingHandler := handler.NewMatchmakingHandler(cfg.MatchmakingService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player routes (no auth required for creating players/logging in)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/leaderboard", playerHandler.GetLeaderboard).Methods(http.MethodGet)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	playerProtected.HandleFunc("/me/profile", playerHandler.GetProfile).Methods(http.MethodGet)
	playerProtected.HandleFunc("/me/history", playerHandler.GetHistory).Methods(http.MethodGet)
	playerProtected.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)

	// Match routes (all require auth)
	matches := api.PathPrefix("/matches").Subrouter()
	matches.Use(authMiddleware)
	matches.HandleFunc("/private", matchHandler.CreatePrivate).Methods(http.MethodPost)
	matches.HandleFunc("/private/join", matchHandler.JoinPrivate).Methods(http.MethodPost)
	matches.HandleFunc("/{matchId}", matchHandler.Get).Methods(http.MethodGet)
	matches.HandleFunc("/{matchId}/ready", matchHandler.Ready).Methods(http.MethodPost)
	matches.HandleFunc("/{matchId}/complete", matchHandler.Complete).Methods(http.MethodPost)
	matches.HandleFunc("/{matchId}/elo", matchHandler.UpdateElo).Methods(http.MethodPost)

	// Ranked queue
	queue := api.PathPrefix("/matchmaking").Subrouter()
	queue.Use(authMiddleware)
	queue.HandleFunc("", matchmakingHandler.Find).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.OK(w, response.HealthResponse{Status: "ok"})
}
