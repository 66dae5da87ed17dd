package game

import (
	"context"
	"log/slog"

	"github.com/mcoot/seabattle/internal/dependencies/clock"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/services/board"
	"github.com/mcoot/seabattle/internal/services/bot"
)

// WinRecorder credits a player with a won game
type WinRecorder interface {
	RecordWin(ctx context.Context, playerID model.PlayerID) (int, error)
}

// Engine owns every live game and enforces turn order and attack rules.
// It is not safe for concurrent use; callers serialize access.
type Engine struct {
	wins     WinRecorder
	strategy bot.Strategy
	clock    clock.Clock
	logger   *slog.Logger

	games      map[model.GameID]*model.Game
	lastGameID model.GameID
}

// NewEngine creates a new game Engine
func NewEngine(wins WinRecorder, strategy bot.Strategy, clock clock.Clock, logger *slog.Logger) *Engine {
	return &Engine{
		wins:     wins,
		strategy: strategy,
		clock:    clock,
		logger:   logger.With(slog.String("component", "game")),
		games:    make(map[model.GameID]*model.Game),
	}
}

// Create starts a game for a full room. The first member attacks first.
func (e *Engine) Create(ctx context.Context, room *model.Room) (*model.Game, error) {
	if len(room.Members) != model.MaxRoomMembers {
		return nil, model.ErrInsufficientPlayers
	}

	e.lastGameID++
	now := e.clock.Now()
	first, second := room.Members[0].PlayerID, room.Members[1].PlayerID

	game := &model.Game{
		ID:     e.lastGameID,
		RoomID: room.ID,
		State:  model.GameStatePlacing,

		Players: [2]model.PlayerID{first, second},
		Boards: map[model.PlayerID]*model.Board{
			first:  model.NewBoard(),
			second: model.NewBoard(),
		},
		Ships: make(map[model.PlayerID][]model.Ship),
		ShipsRemaining: map[model.PlayerID]int{
			first:  model.FleetSize,
			second: model.FleetSize,
		},
		Submitted: make(map[model.PlayerID]bool),

		CurrentTurn: first,
		Opponent:    second,

		CreatedAt: now,
		UpdatedAt: now,
	}
	e.games[game.ID] = game

	e.logger.Info("game created",
		slog.Int("game_id", int(game.ID)),
		slog.Int("room_id", int(room.ID)),
		slog.Int("first_player", int(first)),
		slog.Int("second_player", int(second)),
	)
	return game, nil
}

// GetGame returns a live game
func (e *Engine) GetGame(gameID model.GameID) (*model.Game, error) {
	game, ok := e.games[gameID]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

// ActiveGames returns the number of games that have not finished
func (e *Engine) ActiveGames() int {
	return len(e.games)
}

// PlaceShips records a player's fleet. ready is true once both fleets are in
// and the game has moved to the active phase.
func (e *Engine) PlaceShips(ctx context.Context, gameID model.GameID, playerID model.PlayerID, ships []model.Ship) (*model.Game, bool, error) {
	game, err := e.playerGame(gameID, playerID)
	if err != nil {
		return nil, false, err
	}
	if game.State != model.GameStatePlacing {
		return nil, false, model.ErrGameNotPlacing
	}
	if game.Submitted[playerID] {
		return nil, false, model.ErrAlreadySubmitted
	}

	board.PlaceFleet(game.Boards[playerID], ships)
	game.Ships[playerID] = append([]model.Ship(nil), ships...)
	game.Submitted[playerID] = true
	game.UpdatedAt = e.clock.Now()

	e.logger.Debug("ships placed",
		slog.Int("game_id", int(gameID)),
		slog.Int("player_id", int(playerID)),
		slog.Int("ship_count", len(ships)),
	)

	if !game.AllSubmitted() {
		return game, false, nil
	}

	game.State = model.GameStateActive
	e.logger.Info("game started",
		slog.Int("game_id", int(gameID)),
		slog.Int("current_turn", int(game.CurrentTurn)),
	)
	return game, true, nil
}

// Attack resolves a shot by the player holding the turn
func (e *Engine) Attack(ctx context.Context, gameID model.GameID, attackerID model.PlayerID, pos model.Position) (*model.AttackOutcome, error) {
	game, err := e.activeTurn(gameID, attackerID)
	if err != nil {
		return nil, err
	}

	defenderID := game.OpponentOf(attackerID)
	target := game.Boards[defenderID]
	if !target.IsValidPosition(pos) {
		return nil, model.ErrInvalidPosition
	}

	outcome := &model.AttackOutcome{
		GameID:   gameID,
		Attacker: attackerID,
		Defender: defenderID,
		Position: pos,
	}

	switch target.Get(pos) {
	case model.CellEmpty:
		target.Set(pos, model.CellMiss)
		game.CurrentTurn, game.Opponent = defenderID, attackerID
		outcome.Status = model.AttackMiss

	case model.CellHit, model.CellMiss:
		outcome.Status = model.AttackRetry

	case model.CellShip:
		target.Set(pos, model.CellHit)
		if !board.IsSunk(target, pos) {
			outcome.Status = model.AttackShot
			break
		}

		outcome.Status = model.AttackKilled
		outcome.ShipCells, outcome.SealedCells = board.SealSunkShip(target, pos)
		game.ShipsRemaining[defenderID]--
		if game.ShipsRemaining[defenderID] <= 0 {
			e.finish(ctx, game, attackerID, "fleet destroyed")
			outcome.GameOver = true
			outcome.Winner = attackerID
		}
	}

	if outcome.Status != model.AttackRetry {
		game.UpdatedAt = e.clock.Now()
	}
	outcome.NextTurn = game.CurrentTurn

	e.logger.Debug("attack resolved",
		slog.Int("game_id", int(gameID)),
		slog.Int("attacker", int(attackerID)),
		slog.Int("x", pos.X),
		slog.Int("y", pos.Y),
		slog.String("status", string(outcome.Status)),
	)
	return outcome, nil
}

// RandomAttack lets the targeting strategy pick a cell and attacks it
func (e *Engine) RandomAttack(ctx context.Context, gameID model.GameID, attackerID model.PlayerID) (*model.AttackOutcome, error) {
	game, err := e.activeTurn(gameID, attackerID)
	if err != nil {
		return nil, err
	}

	pos, ok := e.strategy.ChooseTarget(game.Boards[game.OpponentOf(attackerID)])
	if !ok {
		return nil, model.ErrNoTargetAvailable
	}
	return e.Attack(ctx, gameID, attackerID, pos)
}

// Forfeit ends an unfinished game in favour of the player who stayed
func (e *Engine) Forfeit(ctx context.Context, gameID model.GameID, leaverID model.PlayerID) (*model.Game, error) {
	game, err := e.playerGame(gameID, leaverID)
	if err != nil {
		return nil, err
	}
	if game.IsFinished() {
		return nil, model.ErrGameNotActive
	}

	e.finish(ctx, game, game.OpponentOf(leaverID), "forfeit")
	return game, nil
}

// finish records the result and drops the game from the live set
func (e *Engine) finish(ctx context.Context, game *model.Game, winnerID model.PlayerID, reason string) {
	game.State = model.GameStateFinished
	game.Winner = winnerID
	game.UpdatedAt = e.clock.Now()
	delete(e.games, game.ID)

	if _, err := e.wins.RecordWin(ctx, winnerID); err != nil {
		e.logger.Error("failed to record win",
			slog.Int("game_id", int(game.ID)),
			slog.Int("player_id", int(winnerID)),
			slog.String("error", err.Error()),
		)
	}

	e.logger.Info("game finished",
		slog.Int("game_id", int(game.ID)),
		slog.Int("winner", int(winnerID)),
		slog.String("reason", reason),
		slog.Duration("duration", e.clock.Since(game.CreatedAt)),
	)
}

func (e *Engine) playerGame(gameID model.GameID, playerID model.PlayerID) (*model.Game, error) {
	game, err := e.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if !game.HasPlayer(playerID) {
		return nil, model.ErrPlayerNotInGame
	}
	return game, nil
}

func (e *Engine) activeTurn(gameID model.GameID, playerID model.PlayerID) (*model.Game, error) {
	game, err := e.playerGame(gameID, playerID)
	if err != nil {
		return nil, err
	}
	if game.State != model.GameStateActive {
		return nil, model.ErrGameNotActive
	}
	if game.CurrentTurn != playerID {
		return nil, model.ErrNotPlayerTurn
	}
	return game, nil
}
