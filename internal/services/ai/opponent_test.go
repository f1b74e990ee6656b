package ai

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/sudokuduo/internal/dependencies/mocks"
	"github.com/mcoot/sudokuduo/internal/dependencies/random"
	"github.com/mcoot/sudokuduo/internal/testutil"
)

type FactorySuite struct {
	suite.Suite
	random  *mocks.MockRandom
	factory *Factory
}

func TestFactorySuite(t *testing.T) {
	suite.Run(t, new(FactorySuite))
}

func (s *FactorySuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.factory = NewFactory(s.random, testutil.NopLogger())
}

func (s *FactorySuite) TestNewOpponentAppliesOffset() {
	s.random.QueueIntn(80, 2, 5) // offset +30, Jordan, Johnson

	opp := s.factory.NewOpponent(1200)

	s.Equal(1230, opp.Elo)
	s.Equal("Jordan Johnson", opp.DisplayName)
}

func (s *FactorySuite) TestNewOpponentLowestOffset() {
	s.random.QueueIntn(0, 0, 0)

	opp := s.factory.NewOpponent(1200)

	s.Equal(1150, opp.Elo)
	s.Equal("Alex Smith", opp.DisplayName)
}

func (s *FactorySuite) TestNewOpponentClampsToRange() {
	s.random.QueueIntn(0)
	s.Equal(0, s.factory.NewOpponent(10).Elo)

	s.random.Reset()
	s.random.QueueIntn(99)
	s.Equal(3000, s.factory.NewOpponent(2990).Elo)
}

func (s *FactorySuite) TestNewOpponentWithinBand() {
	factory := NewFactory(random.New(), testutil.NopLogger())
	for i := 0; i < 100; i++ {
		opp := factory.NewOpponent(1500)
		s.GreaterOrEqual(opp.Elo, 1450)
		s.LessOrEqual(opp.Elo, 1549)
		s.NotEmpty(opp.DisplayName)
	}
}
