package invite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/sudokuduo/internal/dependencies/random"
	"github.com/mcoot/sudokuduo/internal/model"
)

const (
	// Alphabet is the set of characters used in invite codes
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// CodeLength is the number of characters in an invite code
	CodeLength = 6
	// MaxAttempts bounds how many candidates are checked before giving up
	MaxAttempts = 10
)

// LivenessFunc reports whether a code is held by a lobby or active match
type LivenessFunc func(ctx context.Context, code string) (bool, error)

// ClaimFunc tries to take a code, reporting false if a live match already holds it
type ClaimFunc func(ctx context.Context, code string) (bool, error)

// Allocator generates invite codes that are not held by any live match
type Allocator struct {
	random random.Random
	logger *slog.Logger
}

// New creates a new Allocator
func New(random random.Random, logger *slog.Logger) *Allocator {
	return &Allocator{
		random: random,
		logger: logger.With(slog.String("component", "invite")),
	}
}

// Allocate returns a code for which isLive reports false.
// Fails with model.ErrInviteCodeExhausted after MaxAttempts collisions.
func (a *Allocator) Allocate(ctx context.Context, isLive LivenessFunc) (string, error) {
	return a.Claim(ctx, func(ctx context.Context, code string) (bool, error) {
		live, err := isLive(ctx, code)
		return !live, err
	})
}

// Claim offers candidate codes to claim until one is taken.
// Fails with model.ErrInviteCodeExhausted after MaxAttempts collisions.
func (a *Allocator) Claim(ctx context.Context, claim ClaimFunc) (string, error) {
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		code := Normalize(a.random.String(CodeLength, Alphabet))
		if len(code) != CodeLength {
			continue
		}

		claimed, err := claim(ctx, code)
		if err != nil {
			return "", fmt.Errorf("checking invite code: %w", err)
		}
		if claimed {
			return code, nil
		}
		a.logger.Debug("invite code collision",
			slog.String("code", code),
			slog.Int("attempt", attempt),
		)
	}

	a.logger.Warn("invite code allocation exhausted", slog.Int("attempts", MaxAttempts))
	return "", model.ErrInviteCodeExhausted
}

// Normalize upper-cases and trims a user-supplied code
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
