package model

import "time"

// Profile holds a player's online rating and aggregate stats
type Profile struct {
	UID              PlayerID   `json:"uid"`
	DisplayName      string     `json:"displayName"`
	CurrentElo       int        `json:"currentElo"`
	HighestElo       int        `json:"highestElo"`
	CurrentRank      Rank       `json:"currentRank"`
	TotalMatches     int        `json:"totalMatches"`
	Wins             int        `json:"wins"`
	Losses           int        `json:"losses"`
	Ties             int        `json:"ties"`
	CurrentWinStreak int        `json:"currentWinStreak"`
	LongestWinStreak int        `json:"longestWinStreak"`
	LastMatchAt      *time.Time `json:"lastMatchAt,omitempty"`
	EloLastUpdated   *time.Time `json:"eloLastUpdated,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// NewProfile creates a profile at the default rating
func NewProfile(uid PlayerID, displayName string, rank Rank, now time.Time) *Profile {
	return &Profile{
		UID:         uid,
		DisplayName: displayName,
		CurrentElo:  DefaultElo,
		HighestElo:  DefaultElo,
		CurrentRank: rank,
		CreatedAt:   now,
	}
}

// MatchOutcome is a result from one player's point of view
type MatchOutcome string

const (
	OutcomeWin  MatchOutcome = "win"
	OutcomeLoss MatchOutcome = "loss"
	OutcomeTie  MatchOutcome = "tie"
)

// OutcomeFor returns the outcome for a player number given the winner (0 = tie)
func OutcomeFor(playerNumber, winner int) MatchOutcome {
	switch winner {
	case 0:
		return OutcomeTie
	case playerNumber:
		return OutcomeWin
	default:
		return OutcomeLoss
	}
}

// RecordOutcome applies a settled match to the profile's counters
func (p *Profile) RecordOutcome(outcome MatchOutcome, newElo int, rank Rank, now time.Time) {
	p.CurrentElo = newElo
	p.CurrentRank = rank
	if newElo > p.HighestElo {
		p.HighestElo = newElo
	}
	p.TotalMatches++
	switch outcome {
	case OutcomeWin:
		p.Wins++
		p.CurrentWinStreak++
		if p.CurrentWinStreak > p.LongestWinStreak {
			p.LongestWinStreak = p.CurrentWinStreak
		}
	case OutcomeLoss:
		p.Losses++
		p.CurrentWinStreak = 0
	case OutcomeTie:
		p.Ties++
	}
	p.LastMatchAt = &now
	p.EloLastUpdated = &now
}

// OpponentSummary describes the other side of a history entry
type OpponentSummary struct {
	DisplayName string `json:"displayName"`
	Elo         int    `json:"elo"`
	IsAI        bool   `json:"isAI"`
}

// HistoryEntry is one settled match in a player's history
type HistoryEntry struct {
	MatchID        MatchID         `json:"matchId"`
	Timestamp      time.Time       `json:"timestamp"`
	Opponent       OpponentSummary `json:"opponent"`
	Result         MatchOutcome    `json:"result"`
	EloChange      int             `json:"eloChange"`
	Duration       int             `json:"duration"` // Seconds
	Difficulty     Difficulty      `json:"difficulty"`
	YourErrors     int             `json:"yourErrors"`
	OpponentErrors int             `json:"opponentErrors"`
	ErrorFree      bool            `json:"errorFree"`
}

// LeaderboardEntry is one row of the rating leaderboard
type LeaderboardEntry struct {
	Position    int      `json:"position"`
	UID         PlayerID `json:"uid"`
	DisplayName string   `json:"displayName"`
	Elo         int      `json:"elo"`
	Rank        Rank     `json:"rank"`
}
