package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Profile:
		o.printProfile(v)
	case History:
		o.printHistory(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case CreatedMatch:
		o.printCreatedMatch(v)
	case JoinedMatch:
		o.printJoinedMatch(v)
	case MatchmakingResult:
		o.printMatchmakingResult(v)
	case Match:
		o.printMatch(v)
	case EloResult:
		o.printEloResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	IsGuest     bool   `json:"isGuest"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player `json:"player"`
	SessionToken string `json:"sessionToken"`
}

// Profile response type
type Profile struct {
	UID              string `json:"uid"`
	DisplayName      string `json:"displayName"`
	CurrentElo       int    `json:"currentElo"`
	HighestElo       int    `json:"highestElo"`
	CurrentRank      string `json:"currentRank"`
	TotalMatches     int    `json:"totalMatches"`
	Wins             int    `json:"wins"`
	Losses           int    `json:"losses"`
	Ties             int    `json:"ties"`
	CurrentWinStreak int    `json:"currentWinStreak"`
	LongestWinStreak int    `json:"longestWinStreak"`
}

// Opponent describes the other side of a match
type Opponent struct {
	DisplayName string `json:"displayName"`
	Elo         int    `json:"elo"`
	IsAI        bool   `json:"isAI"`
}

// HistoryEntry response type
type HistoryEntry struct {
	MatchID    string   `json:"matchId"`
	Opponent   Opponent `json:"opponent"`
	Result     string   `json:"result"`
	EloChange  int      `json:"eloChange"`
	Duration   int      `json:"duration"`
	Difficulty string   `json:"difficulty"`
	YourErrors int      `json:"yourErrors"`
	ErrorFree  bool     `json:"errorFree"`
}

// History response type
type History struct {
	History []HistoryEntry `json:"history"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Position    int    `json:"position"`
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Elo         int    `json:"elo"`
	Rank        string `json:"rank"`
}

// Leaderboard response type
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// CreatedMatch is returned when opening a private lobby
type CreatedMatch struct {
	MatchID    string `json:"matchId"`
	InviteCode string `json:"inviteCode"`
	InviteURL  string `json:"inviteUrl"`
}

// JoinedMatch is returned when joining a private lobby
type JoinedMatch struct {
	MatchID string `json:"matchId"`
	Host    struct {
		DisplayName string `json:"displayName"`
		Elo         int    `json:"elo"`
	} `json:"host"`
	Difficulty string `json:"difficulty"`
}

// MatchmakingResult response type
type MatchmakingResult struct {
	MatchID       string   `json:"matchId"`
	OpponentFound bool     `json:"opponentFound"`
	AIOpponent    bool     `json:"aiOpponent,omitempty"`
	Opponent      Opponent `json:"opponent"`
}

// MatchPlayer is one slot of a match
type MatchPlayer struct {
	UID          *string `json:"uid"`
	PlayerNumber int     `json:"playerNumber"`
	DisplayName  string  `json:"displayName"`
	Elo          int     `json:"elo"`
	IsAI         bool    `json:"isAI"`
	IsReady      bool    `json:"isReady"`
}

// MatchResult response type
type MatchResult struct {
	Winner     int            `json:"winner"`
	Reason     string         `json:"reason"`
	FinalTime  int            `json:"finalTime"`
	EloChanges map[string]int `json:"eloChanges,omitempty"`
}

// Match response type
type Match struct {
	MatchID    string         `json:"matchId"`
	Status     string         `json:"status"`
	Type       string         `json:"type"`
	Difficulty string         `json:"difficulty"`
	Players    [2]MatchPlayer `json:"players"`
	InviteCode string         `json:"inviteCode,omitempty"`
	Result     *MatchResult   `json:"result,omitempty"`
	Settled    bool           `json:"settled"`
}

// EloResult response type
type EloResult struct {
	Player1EloChange int `json:"player1EloChange"`
	Player2EloChange int `json:"player2EloChange"`
	NewElos          struct {
		Player1 int `json:"player1"`
		Player2 int `json:"player2"`
	} `json:"newElos"`
	NewRanks struct {
		Player1 string `json:"player1"`
		Player2 string `json:"player2"`
	} `json:"newRanks"`
}

// HealthResult response type
type HealthResult struct {
	Status    string `json:"status"`
	Server    string `json:"server,omitempty"`
	LatencyMs int64  `json:"latencyMs"`
}

func (o *Output) printPlayer(p Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Printf("Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printProfile(p Profile) {
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.UID)
	fmt.Printf("Rating: %d [%s] (best %d)\n", p.CurrentElo, p.CurrentRank, p.HighestElo)
	fmt.Printf("Record: %d W / %d L / %d T in %d matches\n", p.Wins, p.Losses, p.Ties, p.TotalMatches)
	fmt.Printf("Win Streak: %d (longest %d)\n", p.CurrentWinStreak, p.LongestWinStreak)
}

func (o *Output) printHistory(h History) {
	if len(h.History) == 0 {
		fmt.Println("No matches played")
		return
	}
	for _, e := range h.History {
		opponent := e.Opponent.DisplayName
		if e.Opponent.IsAI {
			opponent += " [AI]"
		}
		fmt.Printf("%s  %-4s vs %s (%d)  %s  %+d  %ds  errors: %d\n",
			e.MatchID, e.Result, opponent, e.Opponent.Elo, e.Difficulty, e.EloChange, e.Duration, e.YourErrors)
	}
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Entries) == 0 {
		fmt.Println("Leaderboard is empty")
		return
	}
	for _, e := range l.Entries {
		fmt.Printf("%3d. %-20s %5d  %s\n", e.Position, e.DisplayName, e.Elo, e.Rank)
	}
}

func (o *Output) printCreatedMatch(m CreatedMatch) {
	fmt.Printf("Match: %s\n", m.MatchID)
	fmt.Printf("Invite Code: %s\n", m.InviteCode)
	fmt.Printf("Invite URL: %s\n", m.InviteURL)
}

func (o *Output) printJoinedMatch(m JoinedMatch) {
	fmt.Printf("Match: %s\n", m.MatchID)
	fmt.Printf("Host: %s (%d)\n", m.Host.DisplayName, m.Host.Elo)
	fmt.Printf("Difficulty: %s\n", m.Difficulty)
}

func (o *Output) printMatchmakingResult(r MatchmakingResult) {
	fmt.Printf("Match: %s\n", r.MatchID)
	opponent := fmt.Sprintf("%s (%d)", r.Opponent.DisplayName, r.Opponent.Elo)
	if r.Opponent.IsAI {
		opponent += " [AI]"
	}
	fmt.Printf("Opponent: %s\n", opponent)
}

func (o *Output) printMatch(m Match) {
	fmt.Printf("Match: %s\n", m.MatchID)
	fmt.Printf("Type: %s\n", m.Type)
	fmt.Printf("Status: %s\n", m.Status)
	fmt.Printf("Difficulty: %s\n", m.Difficulty)
	if m.InviteCode != "" {
		fmt.Printf("Invite Code: %s\n", m.InviteCode)
	}

	fmt.Println("Players:")
	for _, p := range m.Players {
		if p.UID == nil && !p.IsAI {
			fmt.Printf("  %d. (open)\n", p.PlayerNumber)
			continue
		}
		tags := []string{}
		if p.IsAI {
			tags = append(tags, "AI")
		}
		if p.IsReady {
			tags = append(tags, "ready")
		}
		suffix := ""
		if len(tags) > 0 {
			suffix = " [" + strings.Join(tags, ", ") + "]"
		}
		fmt.Printf("  %d. %s (%d)%s\n", p.PlayerNumber, p.DisplayName, p.Elo, suffix)
	}

	if m.Result != nil {
		winner := "tie"
		if m.Result.Winner > 0 {
			winner = fmt.Sprintf("player %d", m.Result.Winner)
		}
		fmt.Printf("Result: %s by %s after %ds\n", winner, m.Result.Reason, m.Result.FinalTime)
		fmt.Printf("Settled: %t\n", m.Settled)
	}
}

func (o *Output) printEloResult(r EloResult) {
	fmt.Printf("Player 1: %+d -> %d [%s]\n", r.Player1EloChange, r.NewElos.Player1, r.NewRanks.Player1)
	fmt.Printf("Player 2: %+d -> %d [%s]\n", r.Player2EloChange, r.NewElos.Player2, r.NewRanks.Player2)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	if h.Server != "" {
		fmt.Printf("Server: %s\n", h.Server)
	}
	fmt.Printf("Latency: %dms\n", h.LatencyMs)
}
