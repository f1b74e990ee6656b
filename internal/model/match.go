package model

import "time"

// MatchID uniquely identifies a match
type MatchID string

// MatchStatus represents the lifecycle phase of a match
type MatchStatus string

const (
	MatchStatusLobby     MatchStatus = "lobby"     // Waiting for the second player (or ready-up)
	MatchStatusActive    MatchStatus = "active"    // Both players in, puzzle being solved
	MatchStatusCompleted MatchStatus = "completed" // Result reported by the game client
	MatchStatusExpired   MatchStatus = "expired"   // Lobby abandoned past its expiry
)

// MatchType distinguishes how a match was formed
type MatchType string

const (
	MatchTypePrivate MatchType = "private"
	MatchTypeRanked  MatchType = "ranked"
	MatchTypeAI      MatchType = "ai"
)

// Lifetimes applied to match and queue records
const (
	PrivateLobbyExpiry      = 10 * time.Minute
	ActiveMatchExpiry       = time.Hour
	CompletedMatchRetention = 30 * 24 * time.Hour
	QueueEntryTTL           = 120 * time.Second
	// EloBand is the +/- rating window used when searching for opponents
	EloBand = 200
)

// Rating bounds accepted from clients
const (
	MinElo     = 0
	MaxElo     = 3000
	DefaultElo = 1000
)

// PlayerSlot is one of the two seats in a match.
// UID is nil for an empty private-lobby seat and for an AI opponent.
type PlayerSlot struct {
	UID          *PlayerID `json:"uid"`
	PlayerNumber int       `json:"playerNumber"`
	DisplayName  string    `json:"displayName"`
	Elo          int       `json:"elo"`
	IsAI         bool      `json:"isAI"`
	IsReady      bool      `json:"isReady"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// IsEmpty returns true if nobody occupies the slot
func (s *PlayerSlot) IsEmpty() bool {
	return s.UID == nil && !s.IsAI
}

// IsHuman returns true if the slot holds a real player
func (s *PlayerSlot) IsHuman() bool {
	return s.UID != nil && !s.IsAI
}

// Is returns true if the slot is held by the given player
func (s *PlayerSlot) Is(id PlayerID) bool {
	return s.UID != nil && *s.UID == id
}

// GameState is the shared puzzle plus per-player counters
type GameState struct {
	Board           Grid      `json:"board"`
	Solution        Grid      `json:"solution"`
	InitialBoard    Grid      `json:"initialBoard"`
	Player1Moves    int       `json:"player1Moves"`
	Player2Moves    int       `json:"player2Moves"`
	Player1Complete bool      `json:"player1Complete"`
	Player2Complete bool      `json:"player2Complete"`
	Player1Errors   int       `json:"player1Errors"`
	Player2Errors   int       `json:"player2Errors"`
	Player1Hints    int       `json:"player1Hints"`
	Player2Hints    int       `json:"player2Hints"`
	ElapsedTime     int       `json:"elapsedTime"` // Seconds
	LastMoveAt      time.Time `json:"lastMoveAt"`
}

// NewGameState creates the initial state for a freshly generated puzzle
func NewGameState(board, solution Grid, now time.Time) GameState {
	return GameState{
		Board:        board,
		Solution:     solution,
		InitialBoard: board,
		LastMoveAt:   now,
	}
}

// Errors returns the error count for a player number
func (g *GameState) Errors(playerNumber int) int {
	if playerNumber == 1 {
		return g.Player1Errors
	}
	return g.Player2Errors
}

// WinReason explains how a match ended
type WinReason string

const (
	WinReasonCompletion WinReason = "completion"
	WinReasonErrors     WinReason = "errors"
	WinReasonTimeout    WinReason = "timeout"
	WinReasonForfeit    WinReason = "forfeit"
)

// ValidWinReason returns true if the reason is known
func ValidWinReason(r WinReason) bool {
	switch r {
	case WinReasonCompletion, WinReasonErrors, WinReasonTimeout, WinReasonForfeit:
		return true
	default:
		return false
	}
}

// AIEloKey is the eloChanges key used for an AI slot
const AIEloKey = "ai"

// MatchResult is the outcome reported when a match completes
type MatchResult struct {
	Winner     int            `json:"winner"` // 0 = tie, 1 = player 1, 2 = player 2
	Reason     WinReason      `json:"reason"`
	WinnerUID  *PlayerID      `json:"winnerUid,omitempty"`
	FinalTime  int            `json:"finalTime"` // Seconds
	EloChanges map[string]int `json:"eloChanges,omitempty"`
}

// Match is the unit of play shared by two players
type Match struct {
	MatchID      MatchID       `json:"matchId"`
	Status       MatchStatus   `json:"status"`
	Type         MatchType     `json:"type"`
	Difficulty   Difficulty    `json:"difficulty"`
	CreatedAt    time.Time     `json:"createdAt"`
	StartedAt    *time.Time    `json:"startedAt,omitempty"`
	CompletedAt  *time.Time    `json:"completedAt,omitempty"`
	ExpireAt     time.Time     `json:"expireAt"`
	Players      [2]PlayerSlot `json:"players"`
	PrivateMatch bool          `json:"privateMatch"`
	InviteCode   string        `json:"inviteCode,omitempty"`
	HostUID      PlayerID      `json:"hostUid"`
	GameState    GameState     `json:"gameState"`
	Result       *MatchResult  `json:"result,omitempty"`
	Settled      bool          `json:"settled"`
}

// Slot returns the slot for a player number (1 or 2), or nil
func (m *Match) Slot(playerNumber int) *PlayerSlot {
	if playerNumber < 1 || playerNumber > 2 {
		return nil
	}
	return &m.Players[playerNumber-1]
}

// SlotFor returns the slot held by the given player, or nil
func (m *Match) SlotFor(id PlayerID) *PlayerSlot {
	for i := range m.Players {
		if m.Players[i].Is(id) {
			return &m.Players[i]
		}
	}
	return nil
}

// HasPlayer returns true if the player holds either slot
func (m *Match) HasPlayer(id PlayerID) bool {
	return m.SlotFor(id) != nil
}

// Opponent returns the slot opposite the given player, or nil if not a participant
func (m *Match) Opponent(id PlayerID) *PlayerSlot {
	slot := m.SlotFor(id)
	if slot == nil {
		return nil
	}
	return &m.Players[2-slot.PlayerNumber]
}

// IsExpired returns true if the match never got past the lobby before expireAt
func (m *Match) IsExpired(now time.Time) bool {
	if m.Status == MatchStatusExpired {
		return true
	}
	return m.Status == MatchStatusLobby && !now.Before(m.ExpireAt)
}

// IsLive returns true if the match holds its invite code (lobby or active)
func (m *Match) IsLive(now time.Time) bool {
	switch m.Status {
	case MatchStatusActive:
		return true
	case MatchStatusLobby:
		return !m.IsExpired(now)
	default:
		return false
	}
}

// EffectiveStatus reports expired for lobbies past their expiry
func (m *Match) EffectiveStatus(now time.Time) MatchStatus {
	if m.IsExpired(now) {
		return MatchStatusExpired
	}
	return m.Status
}

// Clone returns a deep copy of the match
func (m *Match) Clone() *Match {
	c := *m
	for i := range c.Players {
		if uid := m.Players[i].UID; uid != nil {
			id := *uid
			c.Players[i].UID = &id
		}
	}
	if m.StartedAt != nil {
		t := *m.StartedAt
		c.StartedAt = &t
	}
	if m.CompletedAt != nil {
		t := *m.CompletedAt
		c.CompletedAt = &t
	}
	if m.Result != nil {
		r := *m.Result
		if m.Result.WinnerUID != nil {
			id := *m.Result.WinnerUID
			r.WinnerUID = &id
		}
		if m.Result.EloChanges != nil {
			r.EloChanges = make(map[string]int, len(m.Result.EloChanges))
			for k, v := range m.Result.EloChanges {
				r.EloChanges[k] = v
			}
		}
		c.Result = &r
	}
	return &c
}

// HumanPlayers returns the IDs of the non-AI occupants
func (m *Match) HumanPlayers() []PlayerID {
	var ids []PlayerID
	for i := range m.Players {
		if m.Players[i].IsHuman() {
			ids = append(ids, *m.Players[i].UID)
		}
	}
	return ids
}

// EloKey returns the eloChanges key for a slot
func (s *PlayerSlot) EloKey() string {
	if s.UID == nil {
		return AIEloKey
	}
	return string(*s.UID)
}

// PlayerIDPtr returns a pointer to a copy of the ID
func PlayerIDPtr(id PlayerID) *PlayerID {
	return &id
}
