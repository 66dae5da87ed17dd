package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/seabattle/internal/broadcast"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/protocol"
	"github.com/mcoot/seabattle/internal/services/directory"
	"github.com/mcoot/seabattle/internal/services/game"
	"github.com/mcoot/seabattle/internal/services/room"
	"github.com/mcoot/seabattle/internal/services/session"
)

// ErrPlayerMismatch is returned when a payload names a player other than the sender
var ErrPlayerMismatch = errors.New("payload player does not match session")

type handlerFunc func(ctx context.Context, sess *session.Session, env *protocol.Envelope) error

// Dispatcher routes inbound frames to the game services. It must only be
// called from one goroutine at a time.
type Dispatcher struct {
	directory   *directory.Service
	sessions    *session.Registry
	rooms       *room.Matchmaker
	games       *game.Engine
	broadcaster *broadcast.Broadcaster
	logger      *slog.Logger

	handlers map[string]handlerFunc
}

// New creates a new Dispatcher
func New(
	directory *directory.Service,
	sessions *session.Registry,
	rooms *room.Matchmaker,
	games *game.Engine,
	broadcaster *broadcast.Broadcaster,
	logger *slog.Logger,
) *Dispatcher {
	d := &Dispatcher{
		directory:   directory,
		sessions:    sessions,
		rooms:       rooms,
		games:       games,
		broadcaster: broadcaster,
		logger:      logger.With(slog.String("component", "dispatch")),
	}
	d.handlers = map[string]handlerFunc{
		protocol.TypeReg:           d.handleReg,
		protocol.TypeCreateRoom:    d.handleCreateRoom,
		protocol.TypeAddUserToRoom: d.handleAddUserToRoom,
		protocol.TypeAddShips:      d.handleAddShips,
		protocol.TypeAttack:        d.handleAttack,
		protocol.TypeRandomAttack:  d.handleRandomAttack,
		protocol.TypeSinglePlay:    d.handleSinglePlay,
	}
	return d
}

// Connect registers a new connection
func (d *Dispatcher) Connect(conn session.Connection) {
	d.sessions.Connect(conn)
	d.logger.Debug("connection opened", slog.String("conn_id", string(conn.ID())))
}

// Handle runs one inbound frame to completion. Malformed, unknown and
// out-of-order commands are logged and dropped.
func (d *Dispatcher) Handle(ctx context.Context, connID session.ConnID, frame []byte) {
	logger := d.logger.With(slog.String("conn_id", string(connID)))

	env, err := protocol.Decode(frame)
	if err != nil {
		logger.Debug("malformed frame dropped", slog.String("error", err.Error()))
		return
	}
	logger = logger.With(slog.String("type", env.Type))

	handler, ok := d.handlers[env.Type]
	if !ok {
		logger.Debug("unknown command dropped")
		return
	}

	sess, ok := d.sessions.Resolve(connID)
	if !ok {
		logger.Debug("command from unknown connection dropped")
		return
	}
	if env.Type != protocol.TypeReg && !sess.Authenticated() {
		logger.Debug("command dropped", slog.String("error", model.ErrNotAuthenticated.Error()))
		return
	}

	if err := handler(ctx, sess, env); err != nil {
		logger.Debug("command dropped",
			slog.Int("player_id", int(sess.PlayerID)),
			slog.String("error", err.Error()))
	}
}

// Disconnect tears down a closed connection. A game in progress is forfeited
// to the remaining player and a waiting room the player held is retired.
func (d *Dispatcher) Disconnect(ctx context.Context, connID session.ConnID) {
	sess, ok := d.sessions.Unbind(connID)
	if !ok {
		// Already replaced by a newer connection for the same player
		return
	}
	d.logger.Debug("connection closed",
		slog.String("conn_id", string(connID)),
		slog.Int("player_id", int(sess.PlayerID)))

	if !sess.Authenticated() {
		return
	}

	if d.leave(ctx, sess) {
		d.broadcaster.RoomList(d.rooms.WaitingRooms())
	}
}

// leave forfeits the session's unfinished game and retires its waiting room.
// It reports whether the waiting room list changed.
func (d *Dispatcher) leave(ctx context.Context, sess *session.Session) bool {
	if sess.GameID != 0 {
		if g, err := d.games.Forfeit(ctx, sess.GameID, sess.PlayerID); err == nil {
			d.broadcaster.Finish(g.Players[:], g.Winner)
			d.gameOver(ctx, g)
		}
	}

	_, retired := d.rooms.Abandon(sess.PlayerID)
	return retired
}

func (d *Dispatcher) handleReg(ctx context.Context, sess *session.Session, env *protocol.Envelope) error {
	var req protocol.RegRequest
	if err := env.DecodeData(&req); err != nil {
		return err
	}

	resp := protocol.RegResponse{Name: req.Name, Password: req.Password}
	player, err := d.directory.Register(ctx, req.Name, req.Password)
	if err != nil {
		resp.Error = true
		resp.ErrorText = err.Error()
		if !errors.Is(err, directory.ErrInvalidNameOrPassword) && !errors.Is(err, directory.ErrWrongPassword) {
			d.logger.Error("registration failed",
				slog.String("name", req.Name),
				slog.String("error", err.Error()))
			resp.ErrorText = "Registration failed"
		}
		d.broadcaster.Registered(sess, resp)
		return nil
	}

	// Switching identity on a live connection gives up the old player's game and room
	if sess.Authenticated() && sess.PlayerID != player.ID {
		d.leave(ctx, sess)
	}

	if _, err := d.sessions.Bind(sess.Conn.ID(), player); err != nil {
		return err
	}

	resp.Name = player.Name
	resp.Index = int(player.ID)
	d.broadcaster.Registered(sess, resp)

	d.broadcaster.RoomList(d.rooms.WaitingRooms())
	d.broadcastWinners(ctx)
	return nil
}

func (d *Dispatcher) handleCreateRoom(ctx context.Context, sess *session.Session, _ *protocol.Envelope) error {
	if sess.GameID != 0 {
		d.broadcaster.RoomListTo(sess, d.rooms.WaitingRooms())
		return model.ErrAlreadyInGame
	}

	r, err := d.rooms.CreateRoom(ctx, sessionPlayer(sess))
	if err != nil {
		d.broadcaster.RoomListTo(sess, d.rooms.WaitingRooms())
		return err
	}

	sess.RoomID = r.ID
	d.broadcaster.RoomList(d.rooms.WaitingRooms())
	return nil
}

func (d *Dispatcher) handleAddUserToRoom(ctx context.Context, sess *session.Session, env *protocol.Envelope) error {
	var req protocol.AddUserToRoomRequest
	if err := env.DecodeData(&req); err != nil {
		return err
	}
	if sess.GameID != 0 {
		d.broadcaster.RoomListTo(sess, d.rooms.WaitingRooms())
		return model.ErrAlreadyInGame
	}

	g, err := d.rooms.JoinRoom(ctx, sessionPlayer(sess), model.RoomID(req.IndexRoom))
	if err != nil {
		d.broadcaster.RoomListTo(sess, d.rooms.WaitingRooms())
		return err
	}
	if g == nil {
		return nil
	}

	for _, playerID := range g.Players {
		if member, ok := d.sessions.ByPlayer(playerID); ok {
			member.RoomID = g.RoomID
			member.GameID = g.ID
		}
	}

	d.broadcaster.GameCreated(g)
	d.broadcaster.RoomList(d.rooms.WaitingRooms())
	return nil
}

func (d *Dispatcher) handleAddShips(ctx context.Context, sess *session.Session, env *protocol.Envelope) error {
	var req protocol.AddShipsRequest
	if err := env.DecodeData(&req); err != nil {
		return err
	}
	if err := checkSender(sess, req.GameID, req.IndexPlayer); err != nil {
		return err
	}

	g, ready, err := d.games.PlaceShips(ctx, sess.GameID, sess.PlayerID, protocol.ShipsToModel(req.Ships))
	if err != nil {
		return err
	}
	if ready {
		d.broadcaster.GameStarted(g)
	}
	return nil
}

func (d *Dispatcher) handleAttack(ctx context.Context, sess *session.Session, env *protocol.Envelope) error {
	var req protocol.AttackRequest
	if err := env.DecodeData(&req); err != nil {
		return err
	}
	if err := checkSender(sess, req.GameID, req.IndexPlayer); err != nil {
		return err
	}

	g, err := d.games.GetGame(sess.GameID)
	if err != nil {
		return err
	}
	outcome, err := d.games.Attack(ctx, g.ID, sess.PlayerID, model.Position{X: req.X, Y: req.Y})
	if err != nil {
		return err
	}
	d.afterAttack(ctx, g, outcome)
	return nil
}

func (d *Dispatcher) handleRandomAttack(ctx context.Context, sess *session.Session, env *protocol.Envelope) error {
	var req protocol.RandomAttackRequest
	if err := env.DecodeData(&req); err != nil {
		return err
	}
	if err := checkSender(sess, req.GameID, req.IndexPlayer); err != nil {
		return err
	}

	g, err := d.games.GetGame(sess.GameID)
	if err != nil {
		return err
	}
	outcome, err := d.games.RandomAttack(ctx, g.ID, sess.PlayerID)
	if err != nil {
		return err
	}
	d.afterAttack(ctx, g, outcome)
	return nil
}

// handleSinglePlay accepts the command without starting a bot game
func (d *Dispatcher) handleSinglePlay(_ context.Context, sess *session.Session, _ *protocol.Envelope) error {
	d.logger.Debug("single play requested", slog.Int("player_id", int(sess.PlayerID)))
	return nil
}

func (d *Dispatcher) afterAttack(ctx context.Context, g *model.Game, outcome *model.AttackOutcome) {
	d.broadcaster.AttackOutcome(outcome)
	if outcome.GameOver {
		d.gameOver(ctx, g)
	}
}

// gameOver clears the participants' game references and publishes the leaderboard
func (d *Dispatcher) gameOver(ctx context.Context, g *model.Game) {
	for _, playerID := range g.Players {
		if member, ok := d.sessions.ByPlayer(playerID); ok && member.GameID == g.ID {
			member.GameID = 0
			member.RoomID = 0
		}
	}
	d.rooms.Release(g.RoomID)
	d.broadcastWinners(ctx)
}

func (d *Dispatcher) broadcastWinners(ctx context.Context) {
	winners, err := d.directory.ListWinners(ctx)
	if err != nil {
		d.logger.Error("failed to list winners", slog.String("error", err.Error()))
		return
	}
	d.broadcaster.Winners(winners)
}

func sessionPlayer(sess *session.Session) *model.Player {
	return &model.Player{ID: sess.PlayerID, Name: sess.Name}
}

// checkSender verifies that a game command names the sender and their current game
func checkSender(sess *session.Session, gameID, indexPlayer int) error {
	if model.PlayerID(indexPlayer) != sess.PlayerID {
		return fmt.Errorf("%w: got %d", ErrPlayerMismatch, indexPlayer)
	}
	if sess.GameID == 0 || model.GameID(gameID) != sess.GameID {
		return fmt.Errorf("%w: got %d", model.ErrGameMismatch, gameID)
	}
	return nil
}
