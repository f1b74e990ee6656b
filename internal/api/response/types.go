package response

import (
	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/services/lobby"
	"github.com/mcoot/sudokuduo/internal/services/matchmaking"
	"github.com/mcoot/sudokuduo/internal/services/settlement"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	IsGuest     bool   `json:"isGuest"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player `json:"player"`
	SessionToken string `json:"sessionToken"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *model.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
	}
}

// CreatePrivateMatchResponse is returned to the host of a new lobby
type CreatePrivateMatchResponse struct {
	MatchID    string `json:"matchId"`
	InviteCode string `json:"inviteCode"`
	InviteURL  string `json:"inviteUrl"`
}

// CreatePrivateMatchFromResult converts a lobby.CreateResult
func CreatePrivateMatchFromResult(r *lobby.CreateResult) CreatePrivateMatchResponse {
	return CreatePrivateMatchResponse{
		MatchID:    string(r.MatchID),
		InviteCode: r.InviteCode,
		InviteURL:  r.InviteURL,
	}
}

// Host describes a lobby's host
type Host struct {
	DisplayName string `json:"displayName"`
	Elo         int    `json:"elo"`
}

// JoinPrivateMatchResponse is returned to the guest after joining
type JoinPrivateMatchResponse struct {
	MatchID    string `json:"matchId"`
	Host       Host   `json:"host"`
	Difficulty string `json:"difficulty"`
}

// JoinPrivateMatchFromResult converts a lobby.JoinResult
func JoinPrivateMatchFromResult(r *lobby.JoinResult) JoinPrivateMatchResponse {
	return JoinPrivateMatchResponse{
		MatchID: string(r.MatchID),
		Host: Host{
			DisplayName: r.Host.DisplayName,
			Elo:         r.Host.Elo,
		},
		Difficulty: string(r.Difficulty),
	}
}

// Opponent describes who a searcher was paired with
type Opponent struct {
	DisplayName string `json:"displayName"`
	Elo         int    `json:"elo"`
	IsAI        bool   `json:"isAI"`
}

// MatchmakingResponse is the outcome of a ranked search
type MatchmakingResponse struct {
	MatchID       string   `json:"matchId"`
	OpponentFound bool     `json:"opponentFound"`
	AIOpponent    bool     `json:"aiOpponent,omitempty"`
	Opponent      Opponent `json:"opponent"`
}

// MatchmakingFromResult converts a matchmaking.Result
func MatchmakingFromResult(r *matchmaking.Result) MatchmakingResponse {
	return MatchmakingResponse{
		MatchID:       string(r.MatchID),
		OpponentFound: r.OpponentFound,
		AIOpponent:    r.AIOpponent,
		Opponent: Opponent{
			DisplayName: r.Opponent.DisplayName,
			Elo:         r.Opponent.Elo,
			IsAI:        r.Opponent.IsAI,
		},
	}
}

// PlayerPair holds a value for each player number
type PlayerPair[T any] struct {
	Player1 T `json:"player1"`
	Player2 T `json:"player2"`
}

// UpdateEloResponse reports the settled rating changes
type UpdateEloResponse struct {
	Player1EloChange int                    `json:"player1EloChange"`
	Player2EloChange int                    `json:"player2EloChange"`
	NewElos          PlayerPair[int]        `json:"newElos"`
	NewRanks         PlayerPair[model.Rank] `json:"newRanks"`
}

// UpdateEloFromResult converts a settlement.Result
func UpdateEloFromResult(r *settlement.Result) UpdateEloResponse {
	return UpdateEloResponse{
		Player1EloChange: r.Player1EloChange,
		Player2EloChange: r.Player2EloChange,
		NewElos:          PlayerPair[int]{Player1: r.NewElos.Player1, Player2: r.NewElos.Player2},
		NewRanks:         PlayerPair[model.Rank]{Player1: r.NewRanks.Player1, Player2: r.NewRanks.Player2},
	}
}

// HistoryResponse lists a player's settled matches, newest first
type HistoryResponse struct {
	History []*model.HistoryEntry `json:"history"`
}

// LeaderboardResponse lists the top rated players
type LeaderboardResponse struct {
	Entries []*model.LeaderboardEntry `json:"entries"`
}

// HealthResponse reports that the server is serving requests
type HealthResponse struct {
	Status string `json:"status"`
}
