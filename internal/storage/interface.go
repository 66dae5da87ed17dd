package storage

import (
	"context"

	"github.com/mcoot/seabattle/internal/model"
)

// Storage defines the interface for player directory persistence.
// Rooms and games live only in memory on the dispatch loop.
type Storage interface {
	// NextPlayerID allocates the next monotonic player id, starting at 1
	NextPlayerID(ctx context.Context) (model.PlayerID, error)

	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByName(ctx context.Context, name string) (*model.Player, error)

	// Leaderboard operations
	IncrementWins(ctx context.Context, id model.PlayerID) (int, error)
	ListWinners(ctx context.Context) ([]*model.Player, error)
}
