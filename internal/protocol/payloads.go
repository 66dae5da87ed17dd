package protocol

import "github.com/mcoot/seabattle/internal/model"

// Inbound payloads

// RegRequest is the reg command: log in, or register an unknown name
type RegRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AddUserToRoomRequest joins a waiting room
type AddUserToRoomRequest struct {
	IndexRoom int `json:"indexRoom"`
}

// Position is a board cell; x is the column and y the row
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Ship is one ship of a fleet as clients send and receive it
type Ship struct {
	Position  Position `json:"position"`
	Direction bool     `json:"direction"` // true is vertical
	Length    int      `json:"length"`
	Type      string   `json:"type"`
}

// AddShipsRequest submits the sender's fleet for a game in placement
type AddShipsRequest struct {
	GameID      int    `json:"gameId"`
	Ships       []Ship `json:"ships"`
	IndexPlayer int    `json:"indexPlayer"`
}

// AttackRequest fires at one cell of the opponent's board
type AttackRequest struct {
	GameID      int `json:"gameId"`
	X           int `json:"x"`
	Y           int `json:"y"`
	IndexPlayer int `json:"indexPlayer"`
}

// RandomAttackRequest fires at a server-chosen cell
type RandomAttackRequest struct {
	GameID      int `json:"gameId"`
	IndexPlayer int `json:"indexPlayer"`
}

// Outbound payloads

// RegResponse answers reg on the sender's connection only
type RegResponse struct {
	Name      string `json:"name"`
	Password  string `json:"password"`
	Index     int    `json:"index"`
	Error     bool   `json:"error"`
	ErrorText string `json:"errorText"`
}

// RoomUser is a member listed in update_room
type RoomUser struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// RoomEntry is one waiting room in update_room
type RoomEntry struct {
	RoomID    int        `json:"roomId"`
	RoomUsers []RoomUser `json:"roomUsers"`
}

// WinnerEntry is one row of update_winners
type WinnerEntry struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

// CreateGameEvent tells each member of a filled room the game id and their own id
type CreateGameEvent struct {
	IDGame   int `json:"idGame"`
	IDPlayer int `json:"idPlayer"`
}

// StartGameEvent hands each player back their own fleet once both are placed
type StartGameEvent struct {
	Ships              []Ship `json:"ships"`
	CurrentPlayerIndex int    `json:"currentPlayerIndex"`
}

// AttackEvent reports the result of an attack on one cell
type AttackEvent struct {
	Position      Position `json:"position"`
	CurrentPlayer int      `json:"currentPlayer"`
	Status        string   `json:"status"`
}

// TurnEvent names the player who attacks next
type TurnEvent struct {
	CurrentPlayer int `json:"currentPlayer"`
}

// FinishEvent announces the winner of a game
type FinishEvent struct {
	WinPlayer int `json:"winPlayer"`
}

// Conversions

// ToModel converts a wire position
func (p Position) ToModel() model.Position {
	return model.Position{X: p.X, Y: p.Y}
}

// PositionFrom converts a board position to its wire form
func PositionFrom(p model.Position) Position {
	return Position{X: p.X, Y: p.Y}
}

// ToModel converts a wire ship
func (s Ship) ToModel() model.Ship {
	return model.Ship{
		Position: s.Position.ToModel(),
		Vertical: s.Direction,
		Length:   s.Length,
		Type:     model.ShipType(s.Type),
	}
}

// ShipsToModel converts a submitted fleet
func ShipsToModel(ships []Ship) []model.Ship {
	result := make([]model.Ship, len(ships))
	for i, s := range ships {
		result[i] = s.ToModel()
	}
	return result
}

// ShipsFrom converts a stored fleet back to wire form
func ShipsFrom(ships []model.Ship) []Ship {
	result := make([]Ship, len(ships))
	for i, s := range ships {
		result[i] = Ship{
			Position:  PositionFrom(s.Position),
			Direction: s.Vertical,
			Length:    s.Length,
			Type:      string(s.Type),
		}
	}
	return result
}

// RoomsFrom builds the update_room payload
func RoomsFrom(rooms []*model.Room) []RoomEntry {
	result := make([]RoomEntry, len(rooms))
	for i, room := range rooms {
		users := make([]RoomUser, len(room.Members))
		for j, m := range room.Members {
			users[j] = RoomUser{Name: m.Name, Index: int(m.PlayerID)}
		}
		result[i] = RoomEntry{RoomID: int(room.ID), RoomUsers: users}
	}
	return result
}

// WinnersFrom builds the update_winners payload
func WinnersFrom(winners []model.Winner) []WinnerEntry {
	result := make([]WinnerEntry, len(winners))
	for i, w := range winners {
		result[i] = WinnerEntry{Name: w.Name, Wins: w.Wins}
	}
	return result
}
