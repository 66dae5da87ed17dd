package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	lastPlayerID model.PlayerID
	players      map[model.PlayerID]*model.Player
	nameIndex    map[string]model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:   make(map[model.PlayerID]*model.Player),
		nameIndex: make(map[string]model.PlayerID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) NextPlayerID(ctx context.Context) (model.PlayerID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPlayerID++
	return s.lastPlayerID, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *player
	s.players[player.ID] = &stored
	s.nameIndex[player.Name] = player.ID
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	result := *player
	return &result, nil
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nameIndex[name]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	result := *player
	return &result, nil
}

// Leaderboard operations

func (s *Storage) IncrementWins(ctx context.Context, id model.PlayerID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return 0, model.ErrPlayerNotFound
	}
	player.Wins++
	return player.Wins, nil
}

// ListWinners returns players with at least one win, ascending by wins then id
func (s *Storage) ListWinners(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var winners []*model.Player
	for _, player := range s.players {
		if player.Wins > 0 {
			p := *player
			winners = append(winners, &p)
		}
	}
	sort.Slice(winners, func(i, j int) bool {
		if winners[i].Wins != winners[j].Wins {
			return winners[i].Wins < winners[j].Wins
		}
		return winners[i].ID < winners[j].ID
	})
	return winners, nil
}
