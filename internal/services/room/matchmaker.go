package room

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mcoot/seabattle/internal/dependencies/clock"
	"github.com/mcoot/seabattle/internal/model"
)

// GameCreator starts a game for a room that has filled up
type GameCreator interface {
	Create(ctx context.Context, room *model.Room) (*model.Game, error)
}

// Matchmaker pairs players through rooms. Waiting rooms are indexed both by
// id and by their single occupant so listing and cleanup never scan.
// It is not safe for concurrent use; callers serialize access.
type Matchmaker struct {
	games  GameCreator
	clock  clock.Clock
	logger *slog.Logger

	rooms      map[model.RoomID]*model.Room
	waiting    map[model.RoomID]*model.Room
	byOccupant map[model.PlayerID]model.RoomID
	lastRoomID model.RoomID
}

// NewMatchmaker creates a new Matchmaker
func NewMatchmaker(games GameCreator, clock clock.Clock, logger *slog.Logger) *Matchmaker {
	return &Matchmaker{
		games:      games,
		clock:      clock,
		logger:     logger.With(slog.String("component", "room")),
		rooms:      make(map[model.RoomID]*model.Room),
		waiting:    make(map[model.RoomID]*model.Room),
		byOccupant: make(map[model.PlayerID]model.RoomID),
	}
}

// CreateRoom opens a waiting room with the player as its only member.
// A player may hold at most one waiting room.
func (m *Matchmaker) CreateRoom(ctx context.Context, player *model.Player) (*model.Room, error) {
	if _, holding := m.byOccupant[player.ID]; holding {
		return nil, model.ErrAlreadyInRoom
	}

	m.lastRoomID++
	room := &model.Room{
		ID:        m.lastRoomID,
		Members:   []model.RoomMember{{PlayerID: player.ID, Name: player.Name}},
		CreatedAt: m.clock.Now(),
	}

	m.rooms[room.ID] = room
	m.waiting[room.ID] = room
	m.byOccupant[player.ID] = room.ID

	m.logger.Info("room created",
		slog.Int("room_id", int(room.ID)),
		slog.Int("player_id", int(player.ID)),
	)
	return room, nil
}

// JoinRoom adds the player to a waiting room. When the room fills, a game is
// created and returned. Joining your own room is a no-op that returns nil.
func (m *Matchmaker) JoinRoom(ctx context.Context, player *model.Player, roomID model.RoomID) (*model.Game, error) {
	room, ok := m.rooms[roomID]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	if room.HasMember(player.ID) {
		return nil, nil
	}
	if room.IsFull() {
		return nil, model.ErrRoomFull
	}

	room.Members = append(room.Members, model.RoomMember{PlayerID: player.ID, Name: player.Name})
	if !room.IsFull() {
		return nil, nil
	}

	game, err := m.games.Create(ctx, room)
	if err != nil {
		room.Members = room.Members[:len(room.Members)-1]
		return nil, err
	}

	m.removeWaiting(room)
	// The joiner's own waiting room is no longer reachable
	if own, holding := m.byOccupant[player.ID]; holding {
		if ownRoom, ok := m.rooms[own]; ok {
			m.removeWaiting(ownRoom)
			delete(m.rooms, own)
		}
	}

	m.logger.Info("room filled",
		slog.Int("room_id", int(room.ID)),
		slog.Int("game_id", int(game.ID)),
	)
	return game, nil
}

// WaitingRooms returns every room with exactly one member, ordered by id
func (m *Matchmaker) WaitingRooms() []*model.Room {
	result := make([]*model.Room, 0, len(m.waiting))
	for _, room := range m.waiting {
		result = append(result, room)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// GetRoom returns a room by ID
func (m *Matchmaker) GetRoom(roomID model.RoomID) (*model.Room, error) {
	room, ok := m.rooms[roomID]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

// Abandon retires the waiting room held by a player who left
func (m *Matchmaker) Abandon(playerID model.PlayerID) (*model.Room, bool) {
	roomID, holding := m.byOccupant[playerID]
	if !holding {
		return nil, false
	}
	room := m.rooms[roomID]
	m.removeWaiting(room)
	delete(m.rooms, roomID)

	m.logger.Info("room abandoned",
		slog.Int("room_id", int(roomID)),
		slog.Int("player_id", int(playerID)),
	)
	return room, true
}

// Release forgets a promoted room once its game is over
func (m *Matchmaker) Release(roomID model.RoomID) {
	if room, ok := m.rooms[roomID]; ok && room.IsFull() {
		delete(m.rooms, roomID)
	}
}

func (m *Matchmaker) removeWaiting(room *model.Room) {
	delete(m.waiting, room.ID)
	for _, member := range room.Members {
		if m.byOccupant[member.PlayerID] == room.ID {
			delete(m.byOccupant, member.PlayerID)
		}
	}
}
