package model

const (
	// BoardSize is the fixed grid dimension
	BoardSize = 10
	// FleetSize is the number of ships each player starts with
	FleetSize = 10
)

// CellState is the state of a single board cell
type CellState int

const (
	CellEmpty CellState = iota
	CellShip            // occupied by an unshot ship, hidden from the opponent
	CellHit
	CellMiss
)

func (c CellState) String() string {
	switch c {
	case CellEmpty:
		return "empty"
	case CellShip:
		return "ship"
	case CellHit:
		return "hit"
	case CellMiss:
		return "miss"
	default:
		return "unknown"
	}
}

// Position identifies a cell on the board
type Position struct {
	X int // column, 0-indexed from left
	Y int // row, 0-indexed from top
}

// Board is one player's 10x10 grid
type Board struct {
	Cells [BoardSize][BoardSize]CellState // Cells[y][x]
}

// NewBoard creates an all-empty board
func NewBoard() *Board {
	return &Board{}
}

// IsValidPosition returns true if the position is within bounds
func (b *Board) IsValidPosition(pos Position) bool {
	return pos.X >= 0 && pos.X < BoardSize && pos.Y >= 0 && pos.Y < BoardSize
}

// Get returns the state at the given position, or CellEmpty if out of bounds
func (b *Board) Get(pos Position) CellState {
	if !b.IsValidPosition(pos) {
		return CellEmpty
	}
	return b.Cells[pos.Y][pos.X]
}

// Set writes a state at the given position; out-of-bounds writes are ignored
func (b *Board) Set(pos Position, state CellState) {
	if b.IsValidPosition(pos) {
		b.Cells[pos.Y][pos.X] = state
	}
}

// Count returns the number of cells in the given state
func (b *Board) Count(state CellState) int {
	count := 0
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if b.Cells[y][x] == state {
				count++
			}
		}
	}
	return count
}

// ShipType is the class of a ship
type ShipType string

const (
	ShipSmall  ShipType = "small"
	ShipMedium ShipType = "medium"
	ShipLarge  ShipType = "large"
	ShipHuge   ShipType = "huge"
)

// Ship is a single placed ship
type Ship struct {
	Position Position // origin cell
	Vertical bool     // extends along Y when true, along X otherwise
	Length   int
	Type     ShipType
}

// Cells returns every position the ship covers, including out-of-bounds ones
func (s Ship) Cells() []Position {
	if s.Length <= 0 {
		return nil
	}
	cells := make([]Position, s.Length)
	for i := 0; i < s.Length; i++ {
		if s.Vertical {
			cells[i] = Position{X: s.Position.X, Y: s.Position.Y + i}
		} else {
			cells[i] = Position{X: s.Position.X + i, Y: s.Position.Y}
		}
	}
	return cells
}
