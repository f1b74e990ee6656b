package lobby

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/sudokuduo/internal/dependencies/mocks"
	"github.com/mcoot/sudokuduo/internal/dependencies/random"
	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/services/invite"
	"github.com/mcoot/sudokuduo/internal/services/puzzle"
	"github.com/mcoot/sudokuduo/internal/storage/memory"
	"github.com/mcoot/sudokuduo/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.storage = memory.New(s.clock)
	s.random = mocks.NewMockRandom()
	s.service = NewService(
		s.storage,
		puzzle.New(random.New()),
		invite.New(s.random, logger),
		s.clock,
		mocks.NewMockIDs(),
		logger,
	)
	s.ctx = context.Background()
}

func (s *ServiceSuite) createMatch(code string) *CreateResult {
	s.random.QueueString(code)
	result, err := s.service.CreatePrivateMatch(s.ctx, "host-1", CreateRequest{
		Difficulty:  model.DifficultyMedium,
		Elo:         1200,
		DisplayName: "Hannah",
	})
	s.Require().NoError(err)
	return result
}

// CreatePrivateMatch tests

func (s *ServiceSuite) TestCreatePrivateMatchReturnsCodeAndURL() {
	result := s.createMatch("ABC123")

	s.Equal("ABC123", result.InviteCode)
	s.Equal("sudokuduo://join/ABC123", result.InviteURL)
	s.NotEmpty(result.MatchID)
}

func (s *ServiceSuite) TestCreatePrivateMatchPersistsLobby() {
	result := s.createMatch("ABC123")

	m, err := s.storage.GetMatch(s.ctx, result.MatchID)
	s.Require().NoError(err)
	s.Equal(model.MatchStatusLobby, m.Status)
	s.Equal(model.MatchTypePrivate, m.Type)
	s.True(m.PrivateMatch)
	s.Equal(model.PlayerID("host-1"), m.HostUID)
	s.Equal(s.clock.Now().Add(10*time.Minute), m.ExpireAt)

	s.True(m.Players[0].Is("host-1"))
	s.Equal(1, m.Players[0].PlayerNumber)
	s.Equal("Hannah", m.Players[0].DisplayName)
	s.Equal(1200, m.Players[0].Elo)
	s.False(m.Players[0].IsReady)

	s.True(m.Players[1].IsEmpty())
	s.Equal(2, m.Players[1].PlayerNumber)

	s.Equal(50, m.GameState.Board.EmptyCount())
	s.Equal(m.GameState.Board, m.GameState.InitialBoard)
	s.True(puzzle.IsValidSolution(m.GameState.Solution))
	s.True(puzzle.IsConsistent(m.GameState.Board, m.GameState.Solution))
}

func (s *ServiceSuite) TestCreatePrivateMatchDefaultsHostName() {
	s.random.QueueString("ABC123")

	result, err := s.service.CreatePrivateMatch(s.ctx, "host-1", CreateRequest{Difficulty: model.DifficultyEasy, Elo: 1000})
	s.Require().NoError(err)

	m, _ := s.storage.GetMatch(s.ctx, result.MatchID)
	s.Equal("Host", m.Players[0].DisplayName)
}

func (s *ServiceSuite) TestCreatePrivateMatchSkipsLiveCode() {
	s.createMatch("ABC123")
	s.random.QueueString("ABC123", "XYZ789")

	result, err := s.service.CreatePrivateMatch(s.ctx, "host-2", CreateRequest{Difficulty: model.DifficultyEasy, Elo: 1000})
	s.Require().NoError(err)
	s.Equal("XYZ789", result.InviteCode)
}

func (s *ServiceSuite) TestCreatePrivateMatchReusesExpiredCode() {
	s.createMatch("ABC123")
	s.clock.Advance(11 * time.Minute)
	s.random.QueueString("ABC123")

	result, err := s.service.CreatePrivateMatch(s.ctx, "host-2", CreateRequest{Difficulty: model.DifficultyEasy, Elo: 1000})
	s.Require().NoError(err)
	s.Equal("ABC123", result.InviteCode)
}

func (s *ServiceSuite) TestCreatePrivateMatchCodeExhaustion() {
	s.createMatch("ABC123")
	for i := 0; i < invite.MaxAttempts; i++ {
		s.random.QueueString("ABC123")
	}

	_, err := s.service.CreatePrivateMatch(s.ctx, "host-2", CreateRequest{Difficulty: model.DifficultyEasy, Elo: 1000})
	s.ErrorIs(err, model.ErrInviteCodeExhausted)
}

func (s *ServiceSuite) TestCreatePrivateMatchValidation() {
	_, err := s.service.CreatePrivateMatch(s.ctx, "host-1", CreateRequest{Difficulty: "impossible", Elo: 1000})
	s.ErrorIs(err, model.ErrInvalidDifficulty)

	_, err = s.service.CreatePrivateMatch(s.ctx, "host-1", CreateRequest{Difficulty: model.DifficultyEasy, Elo: 3001})
	s.ErrorIs(err, model.ErrInvalidElo)

	_, err = s.service.CreatePrivateMatch(s.ctx, "host-1", CreateRequest{Difficulty: model.DifficultyEasy, Elo: -1})
	s.ErrorIs(err, model.ErrInvalidElo)
}

// JoinPrivateMatch tests

func (s *ServiceSuite) TestJoinPrivateMatchStartsMatch() {
	created := s.createMatch("ABC123")
	s.clock.Advance(time.Minute)

	result, err := s.service.JoinPrivateMatch(s.ctx, "guest-1", JoinRequest{InviteCode: "ABC123", Elo: 1100, DisplayName: "Gus"})
	s.Require().NoError(err)

	s.Equal(created.MatchID, result.MatchID)
	s.Equal("Hannah", result.Host.DisplayName)
	s.Equal(1200, result.Host.Elo)
	s.Equal(model.DifficultyMedium, result.Difficulty)

	m, _ := s.storage.GetMatch(s.ctx, created.MatchID)
	s.Equal(model.MatchStatusActive, m.Status)
	s.Require().NotNil(m.StartedAt)
	s.Equal(s.clock.Now(), *m.StartedAt)
	s.Equal(s.clock.Now().Add(time.Hour), m.ExpireAt)
	s.True(m.Players[1].Is("guest-1"))
	s.Equal("Gus", m.Players[1].DisplayName)
	s.Equal(1100, m.Players[1].Elo)
	s.True(m.Players[1].IsReady)
}

func (s *ServiceSuite) TestJoinPrivateMatchNormalizesCode() {
	s.createMatch("ABC123")

	_, err := s.service.JoinPrivateMatch(s.ctx, "guest-1", JoinRequest{InviteCode: "abc123", Elo: 1000})
	s.NoError(err)
}

func (s *ServiceSuite) TestJoinPrivateMatchDefaultsGuestName() {
	created := s.createMatch("ABC123")

	_, err := s.service.JoinPrivateMatch(s.ctx, "guest-1", JoinRequest{InviteCode: "ABC123", Elo: 1000})
	s.Require().NoError(err)

	m, _ := s.storage.GetMatch(s.ctx, created.MatchID)
	s.Equal("Guest", m.Players[1].DisplayName)
}

func (s *ServiceSuite) TestJoinPrivateMatchUnknownCode() {
	_, err := s.service.JoinPrivateMatch(s.ctx, "guest-1", JoinRequest{InviteCode: "NOPE00", Elo: 1000})
	s.ErrorIs(err, model.ErrInviteNotFound)
}

func (s *ServiceSuite) TestJoinPrivateMatchExpiredLobby() {
	s.createMatch("ABC123")
	s.clock.Advance(10 * time.Minute)

	_, err := s.service.JoinPrivateMatch(s.ctx, "guest-1", JoinRequest{InviteCode: "ABC123", Elo: 1000})
	s.ErrorIs(err, model.ErrInviteNotFound)
}

func (s *ServiceSuite) TestJoinPrivateMatchOwnMatch() {
	s.createMatch("ABC123")

	_, err := s.service.JoinPrivateMatch(s.ctx, "host-1", JoinRequest{InviteCode: "ABC123", Elo: 1000})
	s.ErrorIs(err, model.ErrCannotJoinOwnMatch)
}

func (s *ServiceSuite) TestJoinPrivateMatchAlreadyStarted() {
	created := s.createMatch("ABC123")
	_, err := s.service.JoinPrivateMatch(s.ctx, "guest-1", JoinRequest{InviteCode: "ABC123", Elo: 1000})
	s.Require().NoError(err)

	_, err = s.service.JoinPrivateMatch(s.ctx, "guest-2", JoinRequest{InviteCode: "ABC123", Elo: 1300})
	s.ErrorIs(err, model.ErrMatchFull)

	// The started match is untouched
	m, _ := s.storage.GetMatch(s.ctx, created.MatchID)
	s.Equal(model.PlayerID("guest-1"), *m.Players[1].UID)
	s.Equal(model.MatchStatusActive, m.Status)
}

func (s *ServiceSuite) TestJoinPrivateMatchFinishedMatchCodeUnknown() {
	created := s.createMatch("ABC123")
	_, err := s.service.JoinPrivateMatch(s.ctx, "guest-1", JoinRequest{InviteCode: "ABC123", Elo: 1000})
	s.Require().NoError(err)
	_, err = s.storage.UpdateMatch(s.ctx, created.MatchID, func(m *model.Match) error {
		m.Status = model.MatchStatusCompleted
		return nil
	})
	s.Require().NoError(err)

	_, err = s.service.JoinPrivateMatch(s.ctx, "guest-2", JoinRequest{InviteCode: "ABC123", Elo: 1000})
	s.ErrorIs(err, model.ErrInviteNotFound)
}

func (s *ServiceSuite) TestJoinPrivateMatchSlotTaken() {
	created := s.createMatch("ABC123")
	// A lobby whose second seat is occupied but has not started
	_, err := s.storage.UpdateMatch(s.ctx, created.MatchID, func(m *model.Match) error {
		m.Players[1].UID = model.PlayerIDPtr("squatter")
		return nil
	})
	s.Require().NoError(err)

	_, err = s.service.JoinPrivateMatch(s.ctx, "guest-1", JoinRequest{InviteCode: "ABC123", Elo: 1000})
	s.ErrorIs(err, model.ErrMatchFull)
}

func (s *ServiceSuite) TestJoinPrivateMatchValidation() {
	_, err := s.service.JoinPrivateMatch(s.ctx, "guest-1", JoinRequest{InviteCode: "  ", Elo: 1000})
	s.ErrorIs(err, model.ErrInvalidInviteCode)

	_, err = s.service.JoinPrivateMatch(s.ctx, "guest-1", JoinRequest{InviteCode: "ABC123", Elo: 5000})
	s.ErrorIs(err, model.ErrInvalidElo)
}

func (s *ServiceSuite) TestConcurrentJoinsExactlyOneWins() {
	created := s.createMatch("ABC123")

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 10; i++ {
		guest := model.PlayerID("guest-" + string(rune('a'+i)))
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.JoinPrivateMatch(s.ctx, guest, JoinRequest{InviteCode: "ABC123", Elo: 1000})
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
				return
			}
			s.ErrorIs(err, model.ErrMatchFull)
		}()
	}
	wg.Wait()

	s.Equal(1, winners)
	m, _ := s.storage.GetMatch(s.ctx, created.MatchID)
	s.Equal(model.MatchStatusActive, m.Status)
	s.True(m.Players[1].IsHuman())
}
