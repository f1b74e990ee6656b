package request

// Pointer fields distinguish a missing value from its zero value.

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"displayName"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreatePrivateMatchRequest is the request body for opening a private lobby
type CreatePrivateMatchRequest struct {
	Difficulty  string `json:"difficulty"`
	Elo         *int   `json:"elo"`
	DisplayName string `json:"displayName"`
}

// JoinPrivateMatchRequest is the request body for joining by invite code
type JoinPrivateMatchRequest struct {
	InviteCode  string `json:"inviteCode"`
	Elo         *int   `json:"elo"`
	DisplayName string `json:"displayName"`
}

// MatchmakingRequest is the request body for a ranked search
type MatchmakingRequest struct {
	Difficulty  string `json:"difficulty"`
	Elo         *int   `json:"elo"`
	DisplayName string `json:"displayName"`
}

// UpdateEloRequest is the request body for settling a completed match
type UpdateEloRequest struct {
	Winner *int `json:"winner"`
}

// CompleteMatchRequest is the request body for reporting a finished match
type CompleteMatchRequest struct {
	Winner          *int   `json:"winner"`
	Reason          string `json:"reason"`
	ElapsedTime     int    `json:"elapsedTime"`
	Player1Moves    int    `json:"player1Moves"`
	Player2Moves    int    `json:"player2Moves"`
	Player1Errors   int    `json:"player1Errors"`
	Player2Errors   int    `json:"player2Errors"`
	Player1Hints    int    `json:"player1Hints"`
	Player2Hints    int    `json:"player2Hints"`
	Player1Complete bool   `json:"player1Complete"`
	Player2Complete bool   `json:"player2Complete"`
}
