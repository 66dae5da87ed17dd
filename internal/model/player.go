package model

import "time"

// PlayerID uniquely identifies a player across the system.
// IDs start at 1; the zero value means "no player".
type PlayerID int

// Player represents a registered game participant
type Player struct {
	ID           PlayerID
	Name         string // unique, used as the login name
	PasswordHash string // bcrypt hash
	Wins         int
	CreatedAt    time.Time
}

// Winner is a leaderboard entry
type Winner struct {
	Name string
	Wins int
}
