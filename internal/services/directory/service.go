package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/seabattle/internal/dependencies/clock"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/storage"
)

// Errors returned to clients in the reg response
var (
	ErrInvalidNameOrPassword = errors.New("Invalid name or password")
	ErrWrongPassword         = errors.New("Wrong password")
)

// Config holds configuration for the player directory
type Config struct {
	// HashCost is the bcrypt cost used for new passwords
	HashCost int
}

// DefaultConfig returns default directory configuration
func DefaultConfig() Config {
	return Config{
		HashCost: bcrypt.MinCost,
	}
}

// Service owns player identities, credentials and win counts
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	hashCost int
}

// New creates a new directory Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger, cfg Config) *Service {
	if cfg.HashCost < bcrypt.MinCost || cfg.HashCost > bcrypt.MaxCost {
		cfg.HashCost = DefaultConfig().HashCost
	}
	return &Service{
		storage:  storage,
		clock:    clock,
		logger:   logger.With(slog.String("component", "directory")),
		hashCost: cfg.HashCost,
	}
}

// Register logs a player in by name, creating the account on first use
func (s *Service) Register(ctx context.Context, name, password string) (*model.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidNameOrPassword
	}

	existing, err := s.storage.GetPlayerByName(ctx, name)
	if err == nil {
		if err := bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)); err != nil {
			s.logger.Debug("password mismatch", slog.String("name", name))
			return nil, ErrWrongPassword
		}
		return existing, nil
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, fmt.Errorf("lookup player: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, ErrInvalidNameOrPassword
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.storage.NextPlayerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate player id: %w", err)
	}

	player := &model.Player{
		ID:           id,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("save player: %w", err)
	}

	s.logger.Info("player created",
		slog.Int("player_id", int(player.ID)),
		slog.String("name", player.Name),
	)
	return player, nil
}

// RecordWin increments the player's win count and returns the new total
func (s *Service) RecordWin(ctx context.Context, playerID model.PlayerID) (int, error) {
	wins, err := s.storage.IncrementWins(ctx, playerID)
	if err != nil {
		return 0, fmt.Errorf("record win for player %d: %w", playerID, err)
	}
	return wins, nil
}

// ListWinners returns every player with at least one win, ascending by wins
func (s *Service) ListWinners(ctx context.Context) ([]model.Winner, error) {
	players, err := s.storage.ListWinners(ctx)
	if err != nil {
		return nil, err
	}
	winners := make([]model.Winner, len(players))
	for i, p := range players {
		winners[i] = model.Winner{Name: p.Name, Wins: p.Wins}
	}
	return winners, nil
}

// GetPlayer returns a player by ID
func (s *Service) GetPlayer(ctx context.Context, playerID model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, playerID)
}
