package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/storage"
)

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL, applying migrations first when configured
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Storage, error) {
	if cfg.Migrate {
		if err := Migrate(cfg.DSN, logger); err != nil {
			return nil, err
		}
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Storage{pool: pool}, nil
}

// NewWithPool creates a storage over an existing pool (for testing)
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Close releases the connection pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) NextPlayerID(ctx context.Context) (model.PlayerID, error) {
	var id int64
	if err := s.pool.QueryRow(ctx, `SELECT nextval('player_id_seq')`).Scan(&id); err != nil {
		return 0, err
	}
	return model.PlayerID(id), nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO players (id, name, password_hash, wins, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    password_hash = EXCLUDED.password_hash,
		    wins = EXCLUDED.wins`,
		int64(player.ID), player.Name, player.PasswordHash, player.Wins, player.CreatedAt,
	)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, password_hash, wins, created_at
		FROM players WHERE id = $1`, int64(id))
	return scanPlayer(row)
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, password_hash, wins, created_at
		FROM players WHERE name = $1`, name)
	return scanPlayer(row)
}

// Leaderboard operations

func (s *Storage) IncrementWins(ctx context.Context, id model.PlayerID) (int, error) {
	var wins int
	err := s.pool.QueryRow(ctx, `
		UPDATE players SET wins = wins + 1
		WHERE id = $1
		RETURNING wins`, int64(id)).Scan(&wins)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, model.ErrPlayerNotFound
	}
	if err != nil {
		return 0, err
	}
	return wins, nil
}

// ListWinners returns players with at least one win, ascending by wins then id
func (s *Storage) ListWinners(ctx context.Context) ([]*model.Player, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, password_hash, wins, created_at
		FROM players WHERE wins > 0
		ORDER BY wins ASC, id ASC`)
	if err != nil {
		return nil, err
	}

	winners, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Player, error) {
		return scanPlayer(row)
	})
	if err != nil {
		return nil, err
	}
	return winners, nil
}

func scanPlayer(row pgx.Row) (*model.Player, error) {
	var (
		player model.Player
		id     int64
	)
	err := row.Scan(&id, &player.Name, &player.PasswordHash, &player.Wins, &player.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	player.ID = model.PlayerID(id)
	return &player, nil
}
