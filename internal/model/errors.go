package model

import "errors"

// Common errors used across the application
var (
	// Request errors
	ErrInvalidDifficulty  = errors.New("difficulty must be one of easy, medium, hard, expert")
	ErrInvalidElo         = errors.New("elo must be an integer between 0 and 3000")
	ErrInvalidInviteCode  = errors.New("invite code is required")
	ErrInvalidWinner      = errors.New("winner must be 0, 1 or 2")
	ErrInvalidMatchReport = errors.New("invalid match report")
	ErrInvalidMatchID     = errors.New("match id is required")

	// Player errors
	ErrPlayerNotFound  = errors.New("player not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrSessionNotFound = errors.New("session not found")

	// Match errors
	ErrMatchNotFound        = errors.New("match not found")
	ErrInviteNotFound       = errors.New("invalid or expired invite code")
	ErrCannotJoinOwnMatch   = errors.New("cannot join your own match")
	ErrMatchFull            = errors.New("match is full")
	ErrMatchNotCompleted    = errors.New("match is not completed")
	ErrMatchNotActive       = errors.New("match is not active")
	ErrMatchAlreadyComplete = errors.New("match is already completed")
	ErrMatchAlreadySettled  = errors.New("match rating already settled")
	ErrNotInMatch           = errors.New("player is not in this match")
	ErrMatchConflict        = errors.New("match was modified concurrently")

	// Matchmaking errors
	ErrQueueEntryNotFound = errors.New("queue entry not found")

	// Allocation errors
	ErrInviteCodeExhausted = errors.New("failed to generate unique invite code")
	ErrInviteCodeTaken     = errors.New("invite code is held by a live match")
)
