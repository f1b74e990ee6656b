package model

import "time"

// QueueEntry is one player's active search for a ranked opponent
type QueueEntry struct {
	UserID          PlayerID   `json:"userId"`
	DisplayName     string     `json:"displayName"`
	Difficulty      Difficulty `json:"difficulty"`
	Elo             int        `json:"elo"`
	EloMin          int        `json:"eloMin"`
	EloMax          int        `json:"eloMax"`
	SearchStartedAt time.Time  `json:"searchStartedAt"`
	ExpireAt        time.Time  `json:"expireAt"`
}

// IsExpired returns true once the entry's TTL has passed
func (e *QueueEntry) IsExpired(now time.Time) bool {
	return !now.Before(e.ExpireAt)
}

// CandidateQuery selects waiting opponents for a searching player
type CandidateQuery struct {
	Difficulty Difficulty
	EloMin     int
	EloMax     int
	Exclude    PlayerID
	Now        time.Time
	Limit      int
}

// Matches returns true if the entry satisfies the query
func (q CandidateQuery) Matches(e *QueueEntry) bool {
	return e.UserID != q.Exclude &&
		e.Difficulty == q.Difficulty &&
		e.Elo >= q.EloMin && e.Elo <= q.EloMax &&
		!e.IsExpired(q.Now)
}
