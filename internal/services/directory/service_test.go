package directory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/seabattle/internal/dependencies/mocks"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/storage/memory"
	"github.com/mcoot/seabattle/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger(), DefaultConfig())
	s.ctx = context.Background()
}

// Register tests

func (s *ServiceSuite) TestRegisterCreatesPlayer() {
	player, err := s.service.Register(s.ctx, "alice", "pw")
	s.Require().NoError(err)

	s.Equal(model.PlayerID(1), player.ID)
	s.Equal("alice", player.Name)
	s.Equal(0, player.Wins)
	s.Equal(s.clock.Now(), player.CreatedAt)
}

func (s *ServiceSuite) TestRegisterHashesPassword() {
	_, _ = s.service.Register(s.ctx, "alice", "pw")

	stored, err := s.storage.GetPlayerByName(s.ctx, "alice")
	s.Require().NoError(err)
	s.NotEmpty(stored.PasswordHash)
	s.NotEqual("pw", stored.PasswordHash)
}

func (s *ServiceSuite) TestRegisterAssignsSequentialIDs() {
	alice, err := s.service.Register(s.ctx, "alice", "pw")
	s.Require().NoError(err)
	bob, err := s.service.Register(s.ctx, "bob", "pw")
	s.Require().NoError(err)

	s.Equal(model.PlayerID(1), alice.ID)
	s.Equal(model.PlayerID(2), bob.ID)
}

func (s *ServiceSuite) TestRegisterExistingPlayerWithCorrectPassword() {
	first, _ := s.service.Register(s.ctx, "alice", "pw")

	second, err := s.service.Register(s.ctx, "alice", "pw")
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
}

func (s *ServiceSuite) TestRegisterExistingPlayerWithWrongPassword() {
	_, _ = s.service.Register(s.ctx, "alice", "pw")

	_, err := s.service.Register(s.ctx, "alice", "nope")
	s.ErrorIs(err, ErrWrongPassword)
	s.Equal("Wrong password", err.Error())
}

func (s *ServiceSuite) TestRegisterRejectsEmptyName() {
	_, err := s.service.Register(s.ctx, "", "pw")
	s.ErrorIs(err, ErrInvalidNameOrPassword)
	s.Equal("Invalid name or password", err.Error())
}

func (s *ServiceSuite) TestRegisterRejectsBlankCredentials() {
	_, err := s.service.Register(s.ctx, "   ", "pw")
	s.ErrorIs(err, ErrInvalidNameOrPassword)

	_, err = s.service.Register(s.ctx, "alice", "  ")
	s.ErrorIs(err, ErrInvalidNameOrPassword)
}

func (s *ServiceSuite) TestRegisterRejectsOverlongPassword() {
	_, err := s.service.Register(s.ctx, "alice", strings.Repeat("x", 100))
	s.ErrorIs(err, ErrInvalidNameOrPassword)
}

func (s *ServiceSuite) TestRegisterTrimsName() {
	first, _ := s.service.Register(s.ctx, " alice ", "pw")

	second, err := s.service.Register(s.ctx, "alice", "pw")
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
}

// Winner tests

func (s *ServiceSuite) TestRecordWinAndListWinners() {
	alice, _ := s.service.Register(s.ctx, "alice", "pw")
	bob, _ := s.service.Register(s.ctx, "bob", "pw")
	_, _ = s.service.Register(s.ctx, "carol", "pw")

	_, err := s.service.RecordWin(s.ctx, alice.ID)
	s.Require().NoError(err)
	wins, err := s.service.RecordWin(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal(2, wins)
	_, err = s.service.RecordWin(s.ctx, bob.ID)
	s.Require().NoError(err)

	winners, err := s.service.ListWinners(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.Winner{
		{Name: "bob", Wins: 1},
		{Name: "alice", Wins: 2},
	}, winners)
}

func (s *ServiceSuite) TestListWinnersEmpty() {
	_, _ = s.service.Register(s.ctx, "alice", "pw")

	winners, err := s.service.ListWinners(s.ctx)
	s.Require().NoError(err)
	s.Empty(winners)
}

func (s *ServiceSuite) TestRecordWinUnknownPlayer() {
	_, err := s.service.RecordWin(s.ctx, 77)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}
