package broadcast

import (
	"log/slog"

	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/protocol"
	"github.com/mcoot/seabattle/internal/services/session"
)

// Broadcaster pushes server events to sessions. Sends never block and are
// never retried; a connection that cannot take a frame simply misses it.
type Broadcaster struct {
	sessions *session.Registry
	logger   *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(sessions *session.Registry, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "broadcaster")),
	}
}

// ToSession sends one event to a single session
func (b *Broadcaster) ToSession(sess *session.Session, msgType string, payload any) {
	frame, ok := b.encode(msgType, payload)
	if !ok {
		return
	}
	b.send(sess, msgType, frame)
}

// ToAll sends one event to every connected session
func (b *Broadcaster) ToAll(msgType string, payload any) {
	frame, ok := b.encode(msgType, payload)
	if !ok {
		return
	}
	for _, sess := range b.sessions.All() {
		b.send(sess, msgType, frame)
	}
}

// ToPlayers sends one event to the live sessions of the given players
func (b *Broadcaster) ToPlayers(players []model.PlayerID, msgType string, payload any) {
	frame, ok := b.encode(msgType, payload)
	if !ok {
		return
	}
	for _, playerID := range players {
		sess, found := b.sessions.ByPlayer(playerID)
		if !found {
			b.logger.Debug("recipient offline",
				slog.String("type", msgType),
				slog.Int("player_id", int(playerID)))
			continue
		}
		b.send(sess, msgType, frame)
	}
}

// Registered answers a reg command
func (b *Broadcaster) Registered(sess *session.Session, resp protocol.RegResponse) {
	b.ToSession(sess, protocol.TypeReg, resp)
}

// RoomList publishes the waiting rooms to everyone
func (b *Broadcaster) RoomList(rooms []*model.Room) {
	b.ToAll(protocol.TypeUpdateRoom, protocol.RoomsFrom(rooms))
}

// RoomListTo resynchronizes one session with the waiting rooms
func (b *Broadcaster) RoomListTo(sess *session.Session, rooms []*model.Room) {
	b.ToSession(sess, protocol.TypeUpdateRoom, protocol.RoomsFrom(rooms))
}

// Winners publishes the leaderboard to everyone
func (b *Broadcaster) Winners(winners []model.Winner) {
	b.ToAll(protocol.TypeUpdateWinners, protocol.WinnersFrom(winners))
}

// GameCreated tells each participant the game id and their own player id
func (b *Broadcaster) GameCreated(game *model.Game) {
	for _, playerID := range game.Players {
		b.ToPlayers([]model.PlayerID{playerID}, protocol.TypeCreateGame, protocol.CreateGameEvent{
			IDGame:   int(game.ID),
			IDPlayer: int(playerID),
		})
	}
}

// GameStarted sends each participant their own fleet, followed by the first turn
func (b *Broadcaster) GameStarted(game *model.Game) {
	for _, playerID := range game.Players {
		b.ToPlayers([]model.PlayerID{playerID}, protocol.TypeStartGame, protocol.StartGameEvent{
			Ships:              protocol.ShipsFrom(game.Ships[playerID]),
			CurrentPlayerIndex: int(playerID),
		})
	}
	b.Turn(game.Players[:], game.CurrentTurn)
}

// AttackOutcome reports an attack to both participants. A kill is reported
// cell by cell, followed by a miss for every sealed neighbour. The turn or,
// when the game is over, the result follows.
func (b *Broadcaster) AttackOutcome(outcome *model.AttackOutcome) {
	players := []model.PlayerID{outcome.Attacker, outcome.Defender}

	if outcome.Status == model.AttackKilled {
		for _, pos := range outcome.ShipCells {
			b.attackEvent(players, outcome.Attacker, pos, model.AttackKilled)
		}
		for _, pos := range outcome.SealedCells {
			b.attackEvent(players, outcome.Attacker, pos, model.AttackMiss)
		}
	} else {
		b.attackEvent(players, outcome.Attacker, outcome.Position, outcome.Status)
	}

	if outcome.GameOver {
		b.Finish(players, outcome.Winner)
		return
	}
	b.Turn(players, outcome.NextTurn)
}

// Turn names the player who moves next
func (b *Broadcaster) Turn(players []model.PlayerID, current model.PlayerID) {
	b.ToPlayers(players, protocol.TypeTurn, protocol.TurnEvent{CurrentPlayer: int(current)})
}

// Finish announces the winner
func (b *Broadcaster) Finish(players []model.PlayerID, winner model.PlayerID) {
	b.ToPlayers(players, protocol.TypeFinish, protocol.FinishEvent{WinPlayer: int(winner)})
}

func (b *Broadcaster) attackEvent(players []model.PlayerID, attacker model.PlayerID, pos model.Position, status model.AttackStatus) {
	b.ToPlayers(players, protocol.TypeAttack, protocol.AttackEvent{
		Position:      protocol.PositionFrom(pos),
		CurrentPlayer: int(attacker),
		Status:        string(status),
	})
}

func (b *Broadcaster) encode(msgType string, payload any) ([]byte, bool) {
	frame, err := protocol.Encode(msgType, payload)
	if err != nil {
		b.logger.Error("failed to encode event",
			slog.String("type", msgType),
			slog.String("error", err.Error()))
		return nil, false
	}
	return frame, true
}

func (b *Broadcaster) send(sess *session.Session, msgType string, frame []byte) {
	if err := sess.Conn.Send(frame); err != nil {
		b.logger.Warn("event dropped",
			slog.String("type", msgType),
			slog.String("conn_id", string(sess.Conn.ID())),
			slog.String("error", err.Error()))
	}
}
