package janitor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/sudokuduo/internal/dependencies/mocks"
	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/storage/memory"
	"github.com/mcoot/sudokuduo/internal/testutil"
)

type JanitorSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	janitor *Janitor
	ctx     context.Context
}

func TestJanitorSuite(t *testing.T) {
	suite.Run(t, new(JanitorSuite))
}

func (s *JanitorSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.storage = memory.New(s.clock)
	s.janitor = New(s.storage, s.clock, Config{Interval: time.Hour, BatchSize: 2}, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *JanitorSuite) TearDownTest() {
	s.Require().NoError(s.janitor.Stop())
}

func (s *JanitorSuite) saveMatch(id string, status model.MatchStatus, expireAt time.Time) {
	s.Require().NoError(s.storage.CreateMatch(s.ctx, &model.Match{
		MatchID:   model.MatchID(id),
		Status:    status,
		Type:      model.MatchTypeRanked,
		CreatedAt: s.clock.Now(),
		ExpireAt:  expireAt,
		Players: [2]model.PlayerSlot{
			{UID: model.PlayerIDPtr("alice"), PlayerNumber: 1},
			{PlayerNumber: 2},
		},
		HostUID: "alice",
	}))
}

func (s *JanitorSuite) saveEntry(uid string, expireAt time.Time) {
	s.Require().NoError(s.storage.SaveQueueEntry(s.ctx, &model.QueueEntry{
		UserID:     model.PlayerID(uid),
		Difficulty: model.DifficultyEasy,
		Elo:        1000,
		EloMin:     800,
		EloMax:     1200,
		ExpireAt:   expireAt,
	}))
}

func (s *JanitorSuite) TestSweepDeletesExpiredRecords() {
	now := s.clock.Now()
	for i := 0; i < 5; i++ {
		s.saveMatch(fmt.Sprintf("old-%d", i), model.MatchStatusLobby, now.Add(-time.Minute))
	}
	s.saveMatch("live", model.MatchStatusActive, now.Add(time.Hour))
	s.saveEntry("stale-1", now.Add(-time.Second))
	s.saveEntry("stale-2", now)
	s.saveEntry("waiting", now.Add(time.Minute))

	result, err := s.janitor.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(SweepResult{Matches: 5, QueueEntries: 2}, result)

	_, err = s.storage.GetMatch(s.ctx, "live")
	s.NoError(err)
	_, err = s.storage.GetMatch(s.ctx, "old-0")
	s.ErrorIs(err, model.ErrMatchNotFound)
	_, err = s.storage.GetQueueEntry(s.ctx, "waiting")
	s.NoError(err)
	_, err = s.storage.GetQueueEntry(s.ctx, "stale-2")
	s.ErrorIs(err, model.ErrQueueEntryNotFound)
}

func (s *JanitorSuite) TestSweepRemovesCompletedMatchesAfterRetention() {
	now := s.clock.Now()
	s.saveMatch("done", model.MatchStatusCompleted, now.Add(model.CompletedMatchRetention))

	result, err := s.janitor.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Zero(result.Matches)

	s.clock.Advance(model.CompletedMatchRetention)
	result, err = s.janitor.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, result.Matches)
}

func (s *JanitorSuite) TestSweepNothingExpired() {
	result, err := s.janitor.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(SweepResult{}, result)
}

func (s *JanitorSuite) TestStartRunsSweep() {
	s.saveMatch("old", model.MatchStatusLobby, s.clock.Now().Add(-time.Minute))

	s.Require().NoError(s.janitor.Start(s.ctx))

	s.Eventually(func() bool {
		_, err := s.storage.GetMatch(s.ctx, "old")
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *JanitorSuite) TestStopWithoutStart() {
	s.NoError(s.janitor.Stop())
}

func (s *JanitorSuite) TestNewAppliesDefaults() {
	j := New(s.storage, s.clock, Config{}, testutil.NopLogger())
	s.Equal(DefaultConfig(), j.cfg)
}
