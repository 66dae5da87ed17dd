package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/seabattle/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.PlayerTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) savePlayer(name string) *model.Player {
	id, err := s.storage.NextPlayerID(s.ctx)
	s.Require().NoError(err)
	player := &model.Player{ID: id, Name: name, PasswordHash: "hash", CreatedAt: time.Now()}
	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))
	return player
}

func (s *StorageSuite) TestNextPlayerIDStartsAtOne() {
	first, err := s.storage.NextPlayerID(s.ctx)
	s.Require().NoError(err)
	second, err := s.storage.NextPlayerID(s.ctx)
	s.Require().NoError(err)

	s.Equal(model.PlayerID(1), first)
	s.Equal(model.PlayerID(2), second)
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := s.savePlayer("alice")

	retrieved, err := s.storage.GetPlayer(s.ctx, player.ID)
	s.Require().NoError(err)
	s.Equal(player.ID, retrieved.ID)
	s.Equal("alice", retrieved.Name)
	s.Equal(0, retrieved.Wins)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, 42)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestGetPlayerByName() {
	player := s.savePlayer("alice")

	retrieved, err := s.storage.GetPlayerByName(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(player.ID, retrieved.ID)

	_, err = s.storage.GetPlayerByName(s.ctx, "bob")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestPlayerTTL() {
	player := s.savePlayer("alice")

	ttl := s.mini.TTL(playerKey(player.ID))
	s.Equal(time.Hour, ttl)
	s.Equal(time.Hour, s.mini.TTL(nameIndexKey("alice")))
}

// Leaderboard tests

func (s *StorageSuite) TestIncrementWins() {
	player := s.savePlayer("alice")

	wins, err := s.storage.IncrementWins(s.ctx, player.ID)
	s.Require().NoError(err)
	s.Equal(1, wins)

	wins, err = s.storage.IncrementWins(s.ctx, player.ID)
	s.Require().NoError(err)
	s.Equal(2, wins)

	retrieved, err := s.storage.GetPlayer(s.ctx, player.ID)
	s.Require().NoError(err)
	s.Equal(2, retrieved.Wins)
}

func (s *StorageSuite) TestIncrementWinsUnknownPlayer() {
	_, err := s.storage.IncrementWins(s.ctx, 99)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestListWinnersSortedAscending() {
	alice := s.savePlayer("alice")
	bob := s.savePlayer("bob")
	carol := s.savePlayer("carol")
	s.savePlayer("dave")

	for i := 0; i < 3; i++ {
		_, err := s.storage.IncrementWins(s.ctx, alice.ID)
		s.Require().NoError(err)
	}
	_, err := s.storage.IncrementWins(s.ctx, bob.ID)
	s.Require().NoError(err)
	_, err = s.storage.IncrementWins(s.ctx, carol.ID)
	s.Require().NoError(err)

	winners, err := s.storage.ListWinners(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(winners, 3)
	s.Equal("bob", winners[0].Name)
	s.Equal("carol", winners[1].Name)
	s.Equal("alice", winners[2].Name)
	s.Equal(3, winners[2].Wins)
}

func (s *StorageSuite) TestListWinnersEmpty() {
	winners, err := s.storage.ListWinners(s.ctx)
	s.Require().NoError(err)
	s.Empty(winners)
}
