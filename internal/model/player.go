package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents a game participant
type Player struct {
	ID          PlayerID  `json:"id"`
	DisplayName string    `json:"displayName"`
	IsGuest     bool      `json:"isGuest"` // true for unregistered players
	CreatedAt   time.Time `json:"createdAt"`
}

// RegisteredPlayer extends Player with authentication data.
// Stored separately so the password hash never travels with a session.
type RegisteredPlayer struct {
	PlayerID     PlayerID  `json:"playerId"`
	Username     string    `json:"username"`     // login username (immutable)
	PasswordHash string    `json:"passwordHash"` // bcrypt hash
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Session represents an authenticated bearer token.
// Sessions live in storage so any handler instance can validate them.
type Session struct {
	Token     string    `json:"token"`
	PlayerID  PlayerID  `json:"playerId"`
	Player    Player    `json:"player"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsExpired returns true once the session has passed its expiry
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
