package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Win counts live in a sorted set; player records carry everything else.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) NextPlayerID(ctx context.Context) (model.PlayerID, error) {
	id, err := s.client.Incr(ctx, playerSequenceKey()).Result()
	if err != nil {
		return 0, err
	}
	return model.PlayerID(id), nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, playerKey(player.ID), data, s.cfg.PlayerTTL)
	pipe.Set(ctx, nameIndexKey(player.Name), strconv.Itoa(int(player.ID)), s.cfg.PlayerTTL)
	if player.Wins > 0 {
		pipe.ZAdd(ctx, winnersKey(), redis.Z{Score: float64(player.Wins), Member: memberFor(player.ID)})
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, playerKey(id))
	scoreCmd := pipe.ZScore(ctx, winnersKey(), memberFor(id))
	_, _ = pipe.Exec(ctx)

	data, err := getCmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}

	wins, err := scoreCmd.Result()
	switch {
	case err == nil:
		player.Wins = int(wins)
	case errors.Is(err, redis.Nil):
		player.Wins = 0
	default:
		return nil, err
	}

	return &player, nil
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	// Look up player ID from name index
	idStr, err := s.client.Get(ctx, nameIndexKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return nil, err
	}

	return s.GetPlayer(ctx, model.PlayerID(id))
}

// Leaderboard operations

func (s *Storage) IncrementWins(ctx context.Context, id model.PlayerID) (int, error) {
	exists, err := s.client.Exists(ctx, playerKey(id)).Result()
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, model.ErrPlayerNotFound
	}

	pipe := s.client.TxPipeline()
	incr := pipe.ZIncrBy(ctx, winnersKey(), 1, memberFor(id))
	if s.cfg.PlayerTTL > 0 {
		pipe.Expire(ctx, winnersKey(), s.cfg.PlayerTTL) // Keep leaderboard TTL in step with players
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return int(incr.Val()), nil
}

// ListWinners returns players with at least one win, ascending by wins then id
func (s *Storage) ListWinners(ctx context.Context) ([]*model.Player, error) {
	entries, err := s.client.ZRangeByScoreWithScores(ctx, winnersKey(), &redis.ZRangeBy{
		Min: "(0",
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return []*model.Player{}, nil
	}

	keys := make([]string, len(entries))
	for i, entry := range entries {
		id, err := strconv.Atoi(entry.Member.(string))
		if err != nil {
			return nil, err
		}
		keys[i] = playerKey(model.PlayerID(id))
	}

	// Fetch all player records in one round trip
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	winners := make([]*model.Player, 0, len(values))
	for i, val := range values {
		if val == nil {
			continue // Player record may have expired
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			continue // Skip invalid data
		}
		player.Wins = int(entries[i].Score)
		winners = append(winners, &player)
	}

	sort.SliceStable(winners, func(i, j int) bool {
		if winners[i].Wins != winners[j].Wins {
			return winners[i].Wins < winners[j].Wins
		}
		return winners[i].ID < winners[j].ID
	})

	return winners, nil
}

func memberFor(id model.PlayerID) string {
	return strconv.Itoa(int(id))
}
