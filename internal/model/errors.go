package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Session errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrNotAuthenticated = errors.New("session is not authenticated")

	// Room errors
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrAlreadyInRoom       = errors.New("player already holds a waiting room")
	ErrAlreadyInGame       = errors.New("player is already in a game")
	ErrInsufficientPlayers = errors.New("insufficient players to start game")

	// Game errors
	ErrGameNotFound      = errors.New("game not found")
	ErrGameMismatch      = errors.New("game id does not match session")
	ErrPlayerNotInGame   = errors.New("player is not in this game")
	ErrGameNotPlacing    = errors.New("game is not accepting ships")
	ErrAlreadySubmitted  = errors.New("player has already placed ships")
	ErrGameNotActive     = errors.New("game is not active")
	ErrNotPlayerTurn     = errors.New("not this player's turn")
	ErrInvalidPosition   = errors.New("invalid board position")
	ErrNoTargetAvailable = errors.New("no attackable cell left")
)
