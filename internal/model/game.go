package model

import "time"

// GameID uniquely identifies a game
type GameID int

// GameState represents the current phase of a game
type GameState string

const (
	GameStatePlacing  GameState = "placing"  // Waiting for both fleets
	GameStateActive   GameState = "active"   // Players alternate attacks
	GameStateFinished GameState = "finished" // Winner set or forfeited
)

// Game is a live match between the two players of a room
type Game struct {
	ID     GameID
	RoomID RoomID
	State  GameState

	// Players in room join order; Players[0] attacks first
	Players [2]PlayerID

	Boards         map[PlayerID]*Board
	Ships          map[PlayerID][]Ship
	ShipsRemaining map[PlayerID]int
	Submitted      map[PlayerID]bool

	// Turn management
	CurrentTurn PlayerID
	Opponent    PlayerID

	Winner PlayerID // zero until the game is won

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPlayer returns true if the player takes part in this game
func (g *Game) HasPlayer(playerID PlayerID) bool {
	return g.Players[0] == playerID || g.Players[1] == playerID
}

// OpponentOf returns the other player, or zero if playerID is not in the game
func (g *Game) OpponentOf(playerID PlayerID) PlayerID {
	switch playerID {
	case g.Players[0]:
		return g.Players[1]
	case g.Players[1]:
		return g.Players[0]
	default:
		return 0
	}
}

// AllSubmitted returns true once both players have placed their ships
func (g *Game) AllSubmitted() bool {
	return g.Submitted[g.Players[0]] && g.Submitted[g.Players[1]]
}

// IsFinished returns true if the game has a result
func (g *Game) IsFinished() bool {
	return g.State == GameStateFinished
}

// AttackStatus is the result of a single attack
type AttackStatus string

const (
	AttackMiss   AttackStatus = "miss"
	AttackShot   AttackStatus = "shot"
	AttackKilled AttackStatus = "killed"
	AttackRetry  AttackStatus = "retry" // cell already resolved, attacker keeps the turn
)

// AttackOutcome describes what an attack did to the defender's board
type AttackOutcome struct {
	GameID   GameID
	Attacker PlayerID
	Defender PlayerID
	Position Position
	Status   AttackStatus

	// Set when Status is AttackKilled
	ShipCells   []Position
	SealedCells []Position

	// Player holding the turn after the attack
	NextTurn PlayerID

	GameOver bool
	Winner   PlayerID
}
