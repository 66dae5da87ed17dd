package response

import "github.com/mcoot/seabattle/internal/model"

// HealthResponse reports liveness and dispatch loop load
type HealthResponse struct {
	Status        string `json:"status"`
	Clients       int    `json:"clients"`
	PlayersOnline int    `json:"players_online"`
	WaitingRooms  int    `json:"waiting_rooms"`
	ActiveGames   int    `json:"active_games"`
}

// WinnerResponse is one leaderboard row
type WinnerResponse struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

// WinnersResponse wraps the leaderboard
type WinnersResponse struct {
	Winners []WinnerResponse `json:"winners"`
}

// RoomMemberResponse is a player waiting in a room
type RoomMemberResponse struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
}

// RoomResponse represents a joinable room
type RoomResponse struct {
	ID      int                  `json:"id"`
	Members []RoomMemberResponse `json:"members"`
}

// PlayerResponse is a player's public profile
type PlayerResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

// RoomsResponse wraps the list of waiting rooms
type RoomsResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

// WinnersFromModel converts leaderboard entries to a response
func WinnersFromModel(winners []model.Winner) WinnersResponse {
	rows := make([]WinnerResponse, len(winners))
	for i, w := range winners {
		rows[i] = WinnerResponse{Name: w.Name, Wins: w.Wins}
	}
	return WinnersResponse{Winners: rows}
}

// PlayerFromModel converts a player to a response, leaving out the password hash
func PlayerFromModel(player *model.Player) PlayerResponse {
	return PlayerResponse{ID: int(player.ID), Name: player.Name, Wins: player.Wins}
}

// RoomFromModel converts a room to a response
func RoomFromModel(room *model.Room) RoomResponse {
	members := make([]RoomMemberResponse, len(room.Members))
	for i, m := range room.Members {
		members[i] = RoomMemberResponse{PlayerID: int(m.PlayerID), Name: m.Name}
	}
	return RoomResponse{ID: int(room.ID), Members: members}
}

// RoomsFromModel converts waiting rooms to a response
func RoomsFromModel(rooms []*model.Room) RoomsResponse {
	result := make([]RoomResponse, len(rooms))
	for i, room := range rooms {
		result[i] = RoomFromModel(room)
	}
	return RoomsResponse{Rooms: result}
}
