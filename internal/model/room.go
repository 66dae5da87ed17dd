package model

import "time"

// RoomID identifies a pre-game room
type RoomID int

// MaxRoomMembers is the number of players needed to promote a room to a game
const MaxRoomMembers = 2

// RoomMember is a player waiting in a room
type RoomMember struct {
	PlayerID PlayerID
	Name     string
}

// Room groups up to two players before a game starts
type Room struct {
	ID        RoomID
	Members   []RoomMember
	CreatedAt time.Time
}

// IsWaiting returns true if the room has exactly one member
func (r *Room) IsWaiting() bool {
	return len(r.Members) == 1
}

// IsFull returns true if the room cannot accept more members
func (r *Room) IsFull() bool {
	return len(r.Members) >= MaxRoomMembers
}

// HasMember returns true if the player is in the room
func (r *Room) HasMember(playerID PlayerID) bool {
	for _, m := range r.Members {
		if m.PlayerID == playerID {
			return true
		}
	}
	return false
}

// PlayerIDs returns the member IDs in join order
func (r *Room) PlayerIDs() []PlayerID {
	ids := make([]PlayerID, len(r.Members))
	for i, m := range r.Members {
		ids[i] = m.PlayerID
	}
	return ids
}
