package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/sudokuduo/internal/model"
	"github.com/mcoot/sudokuduo/internal/testutil"
)

type HubSuite struct {
	suite.Suite
	hub *Hub
	ctx context.Context
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.hub = NewHub(testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *HubSuite) receive(sub Subscription) model.MatchID {
	select {
	case id := <-sub.C():
		return id
	case <-time.After(time.Second):
		s.FailNow("timed out waiting for notification")
		return ""
	}
}

func (s *HubSuite) TestPublishReachesSubscriber() {
	sub, err := s.hub.Subscribe(s.ctx, "alice")
	s.Require().NoError(err)
	defer sub.Close()

	s.Require().NoError(s.hub.Publish(s.ctx, "alice", "m1"))

	s.Equal(model.MatchID("m1"), s.receive(sub))
}

func (s *HubSuite) TestPublishOnlyReachesTargetPlayer() {
	alice, _ := s.hub.Subscribe(s.ctx, "alice")
	bob, _ := s.hub.Subscribe(s.ctx, "bob")
	defer alice.Close()
	defer bob.Close()

	_ = s.hub.Publish(s.ctx, "bob", "m1")

	s.Equal(model.MatchID("m1"), s.receive(bob))
	s.Empty(alice.C())
}

func (s *HubSuite) TestPublishWithoutSubscriberIsDropped() {
	s.NoError(s.hub.Publish(s.ctx, "nobody", "m1"))
}

func (s *HubSuite) TestCloseUnregistersAndClosesChannel() {
	sub, _ := s.hub.Subscribe(s.ctx, "alice")
	s.Equal(1, s.hub.SubscriberCount("alice"))

	s.NoError(sub.Close())
	s.NoError(sub.Close())

	s.Equal(0, s.hub.SubscriberCount("alice"))
	_, open := <-sub.C()
	s.False(open)
}

func (s *HubSuite) TestFullBufferDropsInsteadOfBlocking() {
	sub, _ := s.hub.Subscribe(s.ctx, "alice")
	defer sub.Close()

	for i := 0; i < subscriberBuffer+3; i++ {
		s.NoError(s.hub.Publish(s.ctx, "alice", "m"))
	}

	s.Len(sub.C(), subscriberBuffer)
}
