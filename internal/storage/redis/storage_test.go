package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/storage"
	"github.com/mcoot/sudokuduo/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini  *miniredis.Miniredis
	redis *Storage
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage {
		s.mini = miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{
			Addr: s.mini.Addr(),
		})
		s.redis = NewWithClient(client, DefaultConfig())
		return s.redis
	}
	suite.Run(t, s)
}

func (s *StorageSuite) TearDownTest() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Redis-specific tests

func (s *StorageSuite) TestGuestPlayerHasTTL() {
	_ = s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "guest-1", IsGuest: true})
	_ = s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "reg-1", IsGuest: false})

	s.Equal(DefaultConfig().GuestPlayerTTL, s.mini.TTL(playerKey("guest-1")))
	s.Equal(time.Duration(0), s.mini.TTL(playerKey("reg-1")))
}

func (s *StorageSuite) TestQueueEntryExpiresWithTTL() {
	entry := &model.QueueEntry{
		UserID:     "alice",
		Difficulty: model.DifficultyEasy,
		Elo:        1000,
		ExpireAt:   s.Now.Add(120 * time.Second),
	}
	s.Require().NoError(s.Storage.SaveQueueEntry(s.Ctx, entry))

	s.mini.FastForward(121 * time.Second)

	_, err := s.Storage.GetQueueEntry(s.Ctx, "alice")
	s.ErrorIs(err, model.ErrQueueEntryNotFound)

	candidates, err := s.Storage.FindQueueCandidates(s.Ctx, model.CandidateQuery{
		Difficulty: model.DifficultyEasy, EloMin: 0, EloMax: 3000, Now: s.Now, Limit: 10,
	})
	s.Require().NoError(err)
	s.Empty(candidates)
}

func (s *StorageSuite) TestRequeueMovesDifficultyIndex() {
	entry := &model.QueueEntry{UserID: "alice", Difficulty: model.DifficultyEasy, Elo: 1000, ExpireAt: s.Now.Add(time.Minute)}
	_ = s.Storage.SaveQueueEntry(s.Ctx, entry)
	entry.Difficulty = model.DifficultyHard
	_ = s.Storage.SaveQueueEntry(s.Ctx, entry)

	members, err := s.redis.Client().ZRange(s.Ctx, queueIndexKey(model.DifficultyEasy), 0, -1).Result()
	s.Require().NoError(err)
	s.Empty(members)

	members, _ = s.redis.Client().ZRange(s.Ctx, queueIndexKey(model.DifficultyHard), 0, -1).Result()
	s.Equal([]string{"alice"}, members)
}

func (s *StorageSuite) TestMatchIndexesMaintained() {
	m := &model.Match{
		MatchID:    "m1",
		Status:     model.MatchStatusLobby,
		InviteCode: "ABC123",
		CreatedAt:  s.Now,
		ExpireAt:   s.Now.Add(10 * time.Minute),
		Players: [2]model.PlayerSlot{
			{UID: model.PlayerIDPtr("host"), PlayerNumber: 1},
			{PlayerNumber: 2},
		},
	}
	s.Require().NoError(s.Storage.CreateMatch(s.Ctx, m))

	s.True(s.mini.Exists(inviteIndexKey("ABC123")))
	s.True(s.mini.Exists(playerMatchesIndexKey("host")))
	score, err := s.mini.ZScore(matchExpiryIndexKey(), "m1")
	s.Require().NoError(err)
	s.Equal(float64(m.ExpireAt.UnixMilli()), score)

	s.Require().NoError(s.Storage.DeleteMatch(s.Ctx, "m1"))
	s.False(s.mini.Exists(inviteIndexKey("ABC123")))
	s.False(s.mini.Exists(matchKey("m1")))
}

func (s *StorageSuite) TestStaleInviteIndexIsPruned() {
	s.Require().NoError(s.redis.Client().SAdd(s.Ctx, inviteIndexKey("GHOST1"), "gone").Err())

	inUse, err := s.Storage.InviteCodeInUse(s.Ctx, "GHOST1", s.Now)
	s.Require().NoError(err)
	s.False(inUse)

	members, _ := s.redis.Client().SMembers(s.Ctx, inviteIndexKey("GHOST1")).Result()
	s.Empty(members)
}
