package profile

import (
	"context"

	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/storage"
)

const (
	DefaultHistoryLimit     = 20
	DefaultLeaderboardLimit = 50
	MaxLimit                = 100
)

// Service serves read-only rating views
type Service struct {
	storage storage.Storage
}

// New creates a new profile Service
func New(store storage.Storage) *Service {
	return &Service{storage: store}
}

// GetProfile returns a player's rating profile
func (s *Service) GetProfile(ctx context.Context, id model.PlayerID) (*model.Profile, error) {
	return s.storage.GetProfile(ctx, id)
}

// GetHistory returns a player's settled matches, newest first
func (s *Service) GetHistory(ctx context.Context, id model.PlayerID, limit int) ([]*model.HistoryEntry, error) {
	return s.storage.GetHistory(ctx, id, clampLimit(limit, DefaultHistoryLimit))
}

// GetLeaderboard returns the top rated players
func (s *Service) GetLeaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	return s.storage.GetLeaderboard(ctx, clampLimit(limit, DefaultLeaderboardLimit))
}

// clampLimit substitutes def for non-positive limits and caps at MaxLimit
func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, MaxLimit)
}
