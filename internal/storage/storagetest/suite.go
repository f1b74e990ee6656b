// Package storagetest holds the behaviour suite shared by every Storage implementation.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/storage"
)

// Suite runs the storage contract against the implementation returned by NewStorage.
// Embed it in a package-level suite and set NewStorage before SetupTest runs.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
	Now     time.Time
}

func (s *Suite) SetupTest() {
	s.Now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Ctx = context.Background()
	s.Storage = s.NewStorage()
}

// Fixtures

func (s *Suite) lobbyMatch(id model.MatchID, code string, host model.PlayerID) *model.Match {
	return &model.Match{
		MatchID:      id,
		Status:       model.MatchStatusLobby,
		Type:         model.MatchTypePrivate,
		Difficulty:   model.DifficultyEasy,
		CreatedAt:    s.Now,
		ExpireAt:     s.Now.Add(10 * time.Minute),
		PrivateMatch: true,
		InviteCode:   code,
		HostUID:      host,
		Players: [2]model.PlayerSlot{
			{UID: model.PlayerIDPtr(host), PlayerNumber: 1, DisplayName: "Host", Elo: 1000, JoinedAt: s.Now},
			{PlayerNumber: 2},
		},
	}
}

func (s *Suite) rankedMatch(id model.MatchID, p1, p2 model.PlayerID, createdAt time.Time) *model.Match {
	return &model.Match{
		MatchID:    id,
		Status:     model.MatchStatusLobby,
		Type:       model.MatchTypeRanked,
		Difficulty: model.DifficultyMedium,
		CreatedAt:  createdAt,
		ExpireAt:   createdAt.Add(time.Hour),
		HostUID:    p1,
		Players: [2]model.PlayerSlot{
			{UID: model.PlayerIDPtr(p1), PlayerNumber: 1, DisplayName: "One", Elo: 1000, JoinedAt: createdAt},
			{UID: model.PlayerIDPtr(p2), PlayerNumber: 2, DisplayName: "Two", Elo: 1100, JoinedAt: createdAt},
		},
	}
}

func (s *Suite) queueEntry(id model.PlayerID, elo int, difficulty model.Difficulty) *model.QueueEntry {
	return &model.QueueEntry{
		UserID:          id,
		DisplayName:     string(id),
		Difficulty:      difficulty,
		Elo:             elo,
		EloMin:          elo - 200,
		EloMax:          elo + 200,
		SearchStartedAt: s.Now,
		ExpireAt:        s.Now.Add(120 * time.Second),
	}
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	player := &model.Player{ID: "player-1", DisplayName: "Alice", IsGuest: true, CreatedAt: s.Now}

	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	retrieved, err := s.Storage.GetPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("Alice", retrieved.DisplayName)
	s.True(retrieved.IsGuest)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestDeletePlayer() {
	_ = s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "player-1", DisplayName: "Alice"})

	s.Require().NoError(s.Storage.DeletePlayer(s.Ctx, "player-1"))

	_, err := s.Storage.GetPlayer(s.Ctx, "player-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestRegisteredPlayerByUsername() {
	rp := &model.RegisteredPlayer{PlayerID: "player-1", Username: "alice", PasswordHash: "hash", CreatedAt: s.Now}
	s.Require().NoError(s.Storage.SaveRegisteredPlayer(s.Ctx, rp))

	byName, err := s.Storage.GetRegisteredPlayerByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), byName.PlayerID)

	byID, err := s.Storage.GetRegisteredPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("hash", byID.PasswordHash)

	_, err = s.Storage.GetRegisteredPlayerByUsername(s.Ctx, "bob")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Session tests

func (s *Suite) TestSessionLifecycle() {
	session := &model.Session{
		Token:     "sess_1",
		PlayerID:  "player-1",
		Player:    model.Player{ID: "player-1", DisplayName: "Alice"},
		CreatedAt: s.Now,
		ExpiresAt: s.Now.Add(time.Hour),
	}
	s.Require().NoError(s.Storage.SaveSession(s.Ctx, session))

	got, err := s.Storage.GetSession(s.Ctx, "sess_1")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), got.PlayerID)
	s.Equal("Alice", got.Player.DisplayName)

	s.Require().NoError(s.Storage.DeleteSession(s.Ctx, "sess_1"))
	_, err = s.Storage.GetSession(s.Ctx, "sess_1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Match tests

func (s *Suite) TestCreateAndGetMatch() {
	m := s.lobbyMatch("m1", "ABC123", "host")
	m.GameState.Board[0][0] = 5

	s.Require().NoError(s.Storage.CreateMatch(s.Ctx, m))

	got, err := s.Storage.GetMatch(s.Ctx, "m1")
	s.Require().NoError(err)
	s.Equal(model.MatchStatusLobby, got.Status)
	s.Equal("ABC123", got.InviteCode)
	s.Equal(5, got.GameState.Board[0][0])
	s.True(got.Players[0].Is("host"))
	s.True(got.Players[1].IsEmpty())
}

func (s *Suite) TestGetMatchNotFound() {
	_, err := s.Storage.GetMatch(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *Suite) TestCreateInviteMatchRejectsLiveCode() {
	s.Require().NoError(s.Storage.CreateInviteMatch(s.Ctx, s.lobbyMatch("m1", "ABC123", "host"), s.Now))

	err := s.Storage.CreateInviteMatch(s.Ctx, s.lobbyMatch("m2", "ABC123", "other"), s.Now)
	s.ErrorIs(err, model.ErrInviteCodeTaken)
	_, err = s.Storage.GetMatch(s.Ctx, "m2")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *Suite) TestCreateInviteMatchReusesExpiredCode() {
	s.Require().NoError(s.Storage.CreateInviteMatch(s.Ctx, s.lobbyMatch("m1", "ABC123", "host"), s.Now))

	later := s.Now.Add(11 * time.Minute)
	s.Require().NoError(s.Storage.CreateInviteMatch(s.Ctx, s.lobbyMatch("m2", "ABC123", "other"), later))

	found, err := s.Storage.FindLobbyByInviteCode(s.Ctx, "ABC123", later)
	s.Require().NoError(err)
	s.Equal(model.MatchID("m2"), found.MatchID)
}

func (s *Suite) TestConcurrentCreateInviteMatchOneWinsPerCode() {
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id model.MatchID) {
			defer wg.Done()
			err := s.Storage.CreateInviteMatch(s.Ctx, s.lobbyMatch(id, "SAME01", "host"), s.Now)
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
				return
			}
			s.ErrorIs(err, model.ErrInviteCodeTaken)
		}(model.MatchID("m" + string(rune('a'+i))))
	}
	wg.Wait()

	s.Equal(1, created)
}

func (s *Suite) TestUpdateMatchAppliesChange() {
	_ = s.Storage.CreateMatch(s.Ctx, s.lobbyMatch("m1", "ABC123", "host"))

	updated, err := s.Storage.UpdateMatch(s.Ctx, "m1", func(m *model.Match) error {
		m.Status = model.MatchStatusActive
		return nil
	})
	s.Require().NoError(err)
	s.Equal(model.MatchStatusActive, updated.Status)

	got, _ := s.Storage.GetMatch(s.Ctx, "m1")
	s.Equal(model.MatchStatusActive, got.Status)
}

func (s *Suite) TestUpdateMatchErrorWritesNothing() {
	_ = s.Storage.CreateMatch(s.Ctx, s.lobbyMatch("m1", "ABC123", "host"))
	boom := errors.New("boom")

	_, err := s.Storage.UpdateMatch(s.Ctx, "m1", func(m *model.Match) error {
		m.Status = model.MatchStatusActive
		return boom
	})
	s.ErrorIs(err, boom)

	got, _ := s.Storage.GetMatch(s.Ctx, "m1")
	s.Equal(model.MatchStatusLobby, got.Status)
}

func (s *Suite) TestUpdateMatchNotFound() {
	_, err := s.Storage.UpdateMatch(s.Ctx, "missing", func(m *model.Match) error { return nil })
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *Suite) TestConcurrentUpdatesFirstWriterWins() {
	_ = s.Storage.CreateMatch(s.Ctx, s.lobbyMatch("m1", "ABC123", "host"))

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		joiner := model.PlayerID("guest-" + string(rune('a'+i)))
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Storage.UpdateMatch(s.Ctx, "m1", func(m *model.Match) error {
				if !m.Players[1].IsEmpty() {
					return model.ErrMatchFull
				}
				m.Players[1].UID = model.PlayerIDPtr(joiner)
				return nil
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		s.ErrorIs(err, model.ErrMatchFull)
	}
	s.Equal(1, successes)
}

func (s *Suite) TestDeleteMatch() {
	_ = s.Storage.CreateMatch(s.Ctx, s.lobbyMatch("m1", "ABC123", "host"))

	s.Require().NoError(s.Storage.DeleteMatch(s.Ctx, "m1"))

	_, err := s.Storage.GetMatch(s.Ctx, "m1")
	s.ErrorIs(err, model.ErrMatchNotFound)
	inUse, err := s.Storage.InviteCodeInUse(s.Ctx, "ABC123", s.Now)
	s.Require().NoError(err)
	s.False(inUse)
}

func (s *Suite) TestFindLobbyByInviteCode() {
	_ = s.Storage.CreateMatch(s.Ctx, s.lobbyMatch("m1", "ABC123", "host"))

	found, err := s.Storage.FindLobbyByInviteCode(s.Ctx, "ABC123", s.Now)
	s.Require().NoError(err)
	s.Equal(model.MatchID("m1"), found.MatchID)

	_, err = s.Storage.FindLobbyByInviteCode(s.Ctx, "ZZZZZZ", s.Now)
	s.ErrorIs(err, model.ErrInviteNotFound)
}

func (s *Suite) TestFindLobbyIgnoresExpiredAndActive() {
	_ = s.Storage.CreateMatch(s.Ctx, s.lobbyMatch("m1", "ABC123", "host"))

	_, err := s.Storage.FindLobbyByInviteCode(s.Ctx, "ABC123", s.Now.Add(10*time.Minute))
	s.ErrorIs(err, model.ErrInviteNotFound)

	_, _ = s.Storage.UpdateMatch(s.Ctx, "m1", func(m *model.Match) error {
		m.Status = model.MatchStatusActive
		return nil
	})
	_, err = s.Storage.FindLobbyByInviteCode(s.Ctx, "ABC123", s.Now)
	s.ErrorIs(err, model.ErrInviteNotFound)
}

func (s *Suite) TestInviteCodeInUse() {
	_ = s.Storage.CreateMatch(s.Ctx, s.lobbyMatch("m1", "ABC123", "host"))

	inUse, err := s.Storage.InviteCodeInUse(s.Ctx, "ABC123", s.Now)
	s.Require().NoError(err)
	s.True(inUse)

	// Expired lobby releases its code
	inUse, _ = s.Storage.InviteCodeInUse(s.Ctx, "ABC123", s.Now.Add(time.Hour))
	s.False(inUse)

	// Active matches keep holding it
	_, _ = s.Storage.UpdateMatch(s.Ctx, "m1", func(m *model.Match) error {
		m.Status = model.MatchStatusActive
		return nil
	})
	inUse, _ = s.Storage.InviteCodeInUse(s.Ctx, "ABC123", s.Now.Add(time.Hour))
	s.True(inUse)

	// Completed matches release it
	_, _ = s.Storage.UpdateMatch(s.Ctx, "m1", func(m *model.Match) error {
		m.Status = model.MatchStatusCompleted
		return nil
	})
	inUse, _ = s.Storage.InviteCodeInUse(s.Ctx, "ABC123", s.Now)
	s.False(inUse)
}

func (s *Suite) TestLatestMatchForPlayer() {
	_ = s.Storage.CreateMatch(s.Ctx, s.rankedMatch("old", "alice", "bob", s.Now))
	_ = s.Storage.CreateMatch(s.Ctx, s.rankedMatch("new", "carol", "alice", s.Now.Add(time.Minute)))
	_ = s.Storage.CreateMatch(s.Ctx, s.rankedMatch("other", "bob", "carol", s.Now.Add(2*time.Minute)))

	latest, err := s.Storage.LatestMatchForPlayer(s.Ctx, "alice", s.Now)
	s.Require().NoError(err)
	s.Equal(model.MatchID("new"), latest.MatchID)

	_, err = s.Storage.LatestMatchForPlayer(s.Ctx, "alice", s.Now.Add(90*time.Second))
	s.ErrorIs(err, model.ErrMatchNotFound)

	_, err = s.Storage.LatestMatchForPlayer(s.Ctx, "dave", s.Now)
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *Suite) TestDeleteExpiredMatches() {
	_ = s.Storage.CreateMatch(s.Ctx, s.lobbyMatch("m1", "AAAAAA", "host"))           // expires +10m
	_ = s.Storage.CreateMatch(s.Ctx, s.rankedMatch("m2", "alice", "bob", s.Now)) // expires +1h

	deleted, err := s.Storage.DeleteExpiredMatches(s.Ctx, s.Now.Add(30*time.Minute), 500)
	s.Require().NoError(err)
	s.Equal(1, deleted)

	_, err = s.Storage.GetMatch(s.Ctx, "m1")
	s.ErrorIs(err, model.ErrMatchNotFound)
	_, err = s.Storage.GetMatch(s.Ctx, "m2")
	s.NoError(err)
}

func (s *Suite) TestDeleteExpiredMatchesRespectsLimit() {
	for _, id := range []model.MatchID{"m1", "m2", "m3"} {
		_ = s.Storage.CreateMatch(s.Ctx, s.lobbyMatch(id, string(id)+"CODE", "host"))
	}

	deleted, err := s.Storage.DeleteExpiredMatches(s.Ctx, s.Now.Add(time.Hour), 2)
	s.Require().NoError(err)
	s.Equal(2, deleted)

	deleted, _ = s.Storage.DeleteExpiredMatches(s.Ctx, s.Now.Add(time.Hour), 2)
	s.Equal(1, deleted)
}

// Queue tests

func (s *Suite) TestQueueEntryLifecycle() {
	s.Require().NoError(s.Storage.SaveQueueEntry(s.Ctx, s.queueEntry("alice", 1000, model.DifficultyEasy)))

	got, err := s.Storage.GetQueueEntry(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(800, got.EloMin)
	s.Equal(1200, got.EloMax)

	s.Require().NoError(s.Storage.DeleteQueueEntry(s.Ctx, "alice"))
	_, err = s.Storage.GetQueueEntry(s.Ctx, "alice")
	s.ErrorIs(err, model.ErrQueueEntryNotFound)
}

func (s *Suite) TestFindQueueCandidatesFiltersAndOrders() {
	_ = s.Storage.SaveQueueEntry(s.Ctx, s.queueEntry("self", 1000, model.DifficultyEasy))
	_ = s.Storage.SaveQueueEntry(s.Ctx, s.queueEntry("zed", 1100, model.DifficultyEasy))
	_ = s.Storage.SaveQueueEntry(s.Ctx, s.queueEntry("amy", 1100, model.DifficultyEasy))
	_ = s.Storage.SaveQueueEntry(s.Ctx, s.queueEntry("low", 850, model.DifficultyEasy))
	_ = s.Storage.SaveQueueEntry(s.Ctx, s.queueEntry("far", 1300, model.DifficultyEasy))
	_ = s.Storage.SaveQueueEntry(s.Ctx, s.queueEntry("hard", 1000, model.DifficultyHard))

	candidates, err := s.Storage.FindQueueCandidates(s.Ctx, model.CandidateQuery{
		Difficulty: model.DifficultyEasy,
		EloMin:     800,
		EloMax:     1200,
		Exclude:    "self",
		Now:        s.Now,
		Limit:      10,
	})
	s.Require().NoError(err)

	var ids []model.PlayerID
	for _, c := range candidates {
		ids = append(ids, c.UserID)
	}
	s.Equal([]model.PlayerID{"low", "amy", "zed"}, ids)
}

func (s *Suite) TestFindQueueCandidatesSkipsExpiredAndHonoursLimit() {
	for i, id := range []model.PlayerID{"a", "b", "c"} {
		_ = s.Storage.SaveQueueEntry(s.Ctx, s.queueEntry(id, 1000+i, model.DifficultyEasy))
	}
	stale := s.queueEntry("stale", 900, model.DifficultyEasy)
	stale.ExpireAt = s.Now.Add(-time.Second)
	_ = s.Storage.SaveQueueEntry(s.Ctx, stale)

	candidates, err := s.Storage.FindQueueCandidates(s.Ctx, model.CandidateQuery{
		Difficulty: model.DifficultyEasy,
		EloMin:     800,
		EloMax:     1200,
		Now:        s.Now,
		Limit:      2,
	})
	s.Require().NoError(err)
	s.Require().Len(candidates, 2)
	s.Equal(model.PlayerID("a"), candidates[0].UserID)
	s.Equal(model.PlayerID("b"), candidates[1].UserID)
}

func (s *Suite) TestClaimQueueEntriesCreatesMatch() {
	_ = s.Storage.SaveQueueEntry(s.Ctx, s.queueEntry("alice", 1000, model.DifficultyMedium))
	_ = s.Storage.SaveQueueEntry(s.Ctx, s.queueEntry("bob", 1100, model.DifficultyMedium))

	err := s.Storage.ClaimQueueEntries(s.Ctx, []model.PlayerID{"alice", "bob"}, s.rankedMatch("m1", "alice", "bob", s.Now))
	s.Require().NoError(err)

	_, err = s.Storage.GetQueueEntry(s.Ctx, "alice")
	s.ErrorIs(err, model.ErrQueueEntryNotFound)
	_, err = s.Storage.GetQueueEntry(s.Ctx, "bob")
	s.ErrorIs(err, model.ErrQueueEntryNotFound)

	latest, err := s.Storage.LatestMatchForPlayer(s.Ctx, "bob", s.Now)
	s.Require().NoError(err)
	s.Equal(model.MatchID("m1"), latest.MatchID)

	candidates, _ := s.Storage.FindQueueCandidates(s.Ctx, model.CandidateQuery{
		Difficulty: model.DifficultyMedium, EloMin: 0, EloMax: 3000, Now: s.Now, Limit: 10,
	})
	s.Empty(candidates)
}

func (s *Suite) TestClaimQueueEntriesMissingWritesNothing() {
	_ = s.Storage.SaveQueueEntry(s.Ctx, s.queueEntry("alice", 1000, model.DifficultyMedium))

	err := s.Storage.ClaimQueueEntries(s.Ctx, []model.PlayerID{"alice", "bob"}, s.rankedMatch("m1", "alice", "bob", s.Now))
	s.ErrorIs(err, model.ErrQueueEntryNotFound)

	_, err = s.Storage.GetQueueEntry(s.Ctx, "alice")
	s.NoError(err)
	_, err = s.Storage.GetMatch(s.Ctx, "m1")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *Suite) TestConcurrentClaimsPairEachPlayerOnce() {
	_ = s.Storage.SaveQueueEntry(s.Ctx, s.queueEntry("target", 1000, model.DifficultyEasy))
	for _, id := range []model.PlayerID{"a", "b", "c", "d"} {
		_ = s.Storage.SaveQueueEntry(s.Ctx, s.queueEntry(id, 1000, model.DifficultyEasy))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for _, id := range []model.PlayerID{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(id model.PlayerID) {
			defer wg.Done()
			matchID := model.MatchID("m-" + string(id))
			err := s.Storage.ClaimQueueEntries(s.Ctx, []model.PlayerID{id, "target"}, s.rankedMatch(matchID, id, "target", s.Now))
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			s.ErrorIs(err, model.ErrQueueEntryNotFound)
		}(id)
	}
	wg.Wait()

	s.Equal(1, successes)
}

func (s *Suite) TestDeleteExpiredQueueEntries() {
	_ = s.Storage.SaveQueueEntry(s.Ctx, s.queueEntry("alice", 1000, model.DifficultyEasy))

	deleted, err := s.Storage.DeleteExpiredQueueEntries(s.Ctx, s.Now.Add(time.Minute), 500)
	s.Require().NoError(err)
	s.Equal(0, deleted)

	deleted, err = s.Storage.DeleteExpiredQueueEntries(s.Ctx, s.Now.Add(3*time.Minute), 500)
	s.Require().NoError(err)
	s.Equal(1, deleted)
	_, err = s.Storage.GetQueueEntry(s.Ctx, "alice")
	s.ErrorIs(err, model.ErrQueueEntryNotFound)
}

// Profile tests

func (s *Suite) TestProfileAndLeaderboard() {
	for _, p := range []*model.Profile{
		{UID: "alice", DisplayName: "Alice", CurrentElo: 1200, CurrentRank: model.RankSilver},
		{UID: "bob", DisplayName: "Bob", CurrentElo: 1500, CurrentRank: model.RankGold},
		{UID: "carol", DisplayName: "Carol", CurrentElo: 900, CurrentRank: model.RankNovice},
	} {
		s.Require().NoError(s.Storage.SaveProfile(s.Ctx, p))
	}

	got, err := s.Storage.GetProfile(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1200, got.CurrentElo)

	board, err := s.Storage.GetLeaderboard(s.Ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(board, 2)
	s.Equal(model.PlayerID("bob"), board[0].UID)
	s.Equal(1, board[0].Position)
	s.Equal(model.PlayerID("alice"), board[1].UID)
	s.Equal(model.RankSilver, board[1].Rank)
}

func (s *Suite) TestGetProfileNotFound() {
	_, err := s.Storage.GetProfile(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *Suite) TestSettleMatchWritesEverything() {
	m := s.rankedMatch("m1", "alice", "bob", s.Now)
	m.Status = model.MatchStatusCompleted
	_ = s.Storage.CreateMatch(s.Ctx, m)
	_ = s.Storage.SaveProfile(s.Ctx, &model.Profile{UID: "alice", CurrentElo: 1000})

	settled, err := s.Storage.SettleMatch(s.Ctx, "m1", func(m *model.Match, profiles map[model.PlayerID]*model.Profile) (map[model.PlayerID]*model.HistoryEntry, error) {
		s.Contains(profiles, model.PlayerID("alice"))
		s.NotContains(profiles, model.PlayerID("bob"))

		profiles["alice"].CurrentElo = 1016
		profiles["bob"] = &model.Profile{UID: "bob", CurrentElo: 984}
		m.Settled = true
		return map[model.PlayerID]*model.HistoryEntry{
			"alice": {MatchID: "m1", Result: model.OutcomeWin, EloChange: 16},
			"bob":   {MatchID: "m1", Result: model.OutcomeLoss, EloChange: -16},
		}, nil
	})
	s.Require().NoError(err)
	s.True(settled.Settled)

	stored, _ := s.Storage.GetMatch(s.Ctx, "m1")
	s.True(stored.Settled)
	alice, _ := s.Storage.GetProfile(s.Ctx, "alice")
	s.Equal(1016, alice.CurrentElo)
	bob, _ := s.Storage.GetProfile(s.Ctx, "bob")
	s.Equal(984, bob.CurrentElo)

	history, err := s.Storage.GetHistory(s.Ctx, "bob", 10)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(model.OutcomeLoss, history[0].Result)

	board, _ := s.Storage.GetLeaderboard(s.Ctx, 10)
	s.Require().Len(board, 2)
	s.Equal(model.PlayerID("alice"), board[0].UID)
}

func (s *Suite) TestSettleMatchErrorWritesNothing() {
	m := s.rankedMatch("m1", "alice", "bob", s.Now)
	_ = s.Storage.CreateMatch(s.Ctx, m)

	_, err := s.Storage.SettleMatch(s.Ctx, "m1", func(m *model.Match, profiles map[model.PlayerID]*model.Profile) (map[model.PlayerID]*model.HistoryEntry, error) {
		m.Settled = true
		profiles["alice"] = &model.Profile{UID: "alice", CurrentElo: 2000}
		return nil, model.ErrMatchNotCompleted
	})
	s.ErrorIs(err, model.ErrMatchNotCompleted)

	stored, _ := s.Storage.GetMatch(s.Ctx, "m1")
	s.False(stored.Settled)
	_, err = s.Storage.GetProfile(s.Ctx, "alice")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *Suite) TestSettleMatchNotFound() {
	_, err := s.Storage.SettleMatch(s.Ctx, "missing", func(*model.Match, map[model.PlayerID]*model.Profile) (map[model.PlayerID]*model.HistoryEntry, error) {
		return nil, nil
	})
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *Suite) TestHistoryNewestFirst() {
	m := s.rankedMatch("m1", "alice", "bob", s.Now)
	_ = s.Storage.CreateMatch(s.Ctx, m)
	for _, id := range []model.MatchID{"first", "second", "third"} {
		matchID := id
		_, err := s.Storage.SettleMatch(s.Ctx, "m1", func(*model.Match, map[model.PlayerID]*model.Profile) (map[model.PlayerID]*model.HistoryEntry, error) {
			return map[model.PlayerID]*model.HistoryEntry{"alice": {MatchID: matchID}}, nil
		})
		s.Require().NoError(err)
	}

	history, err := s.Storage.GetHistory(s.Ctx, "alice", 2)
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal(model.MatchID("third"), history[0].MatchID)
	s.Equal(model.MatchID("second"), history[1].MatchID)
}
