package board

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/seabattle/internal/model"
)

type BoardSuite struct {
	suite.Suite
	board *model.Board
}

func TestBoardSuite(t *testing.T) {
	suite.Run(t, new(BoardSuite))
}

func (s *BoardSuite) SetupTest() {
	s.board = model.NewBoard()
}

// PlaceFleet tests

func (s *BoardSuite) TestPlaceFleetHorizontal() {
	PlaceFleet(s.board, []model.Ship{
		{Position: model.Position{X: 2, Y: 3}, Length: 3, Type: model.ShipLarge},
	})

	s.Equal(model.CellShip, s.board.Get(model.Position{X: 2, Y: 3}))
	s.Equal(model.CellShip, s.board.Get(model.Position{X: 3, Y: 3}))
	s.Equal(model.CellShip, s.board.Get(model.Position{X: 4, Y: 3}))
	s.Equal(model.CellEmpty, s.board.Get(model.Position{X: 5, Y: 3}))
	s.Equal(3, s.board.Count(model.CellShip))
}

func (s *BoardSuite) TestPlaceFleetVertical() {
	PlaceFleet(s.board, []model.Ship{
		{Position: model.Position{X: 0, Y: 0}, Vertical: true, Length: 4, Type: model.ShipHuge},
	})

	for y := 0; y < 4; y++ {
		s.Equal(model.CellShip, s.board.Get(model.Position{X: 0, Y: y}))
	}
	s.Equal(model.CellEmpty, s.board.Get(model.Position{X: 1, Y: 0}))
}

func (s *BoardSuite) TestPlaceFleetSkipsOutOfBounds() {
	PlaceFleet(s.board, []model.Ship{
		{Position: model.Position{X: 8, Y: 9}, Length: 4, Type: model.ShipHuge},
	})

	s.Equal(2, s.board.Count(model.CellShip))
}

// AttackableCells tests

func (s *BoardSuite) TestAttackableCellsExcludesResolved() {
	s.board.Set(model.Position{X: 0, Y: 0}, model.CellHit)
	s.board.Set(model.Position{X: 1, Y: 0}, model.CellMiss)
	s.board.Set(model.Position{X: 2, Y: 0}, model.CellShip)

	cells := AttackableCells(s.board)
	s.Len(cells, model.BoardSize*model.BoardSize-2)
	s.Equal(model.Position{X: 2, Y: 0}, cells[0])
}

// Flood tests

func (s *BoardSuite) TestIsSunkSingleCell() {
	s.board.Set(model.Position{X: 5, Y: 5}, model.CellHit)
	s.True(IsSunk(s.board, model.Position{X: 5, Y: 5}))
}

func (s *BoardSuite) TestIsSunkWithRemainingCell() {
	PlaceFleet(s.board, []model.Ship{
		{Position: model.Position{X: 2, Y: 2}, Length: 2, Type: model.ShipMedium},
	})
	s.board.Set(model.Position{X: 2, Y: 2}, model.CellHit)

	s.False(IsSunk(s.board, model.Position{X: 2, Y: 2}))

	s.board.Set(model.Position{X: 3, Y: 2}, model.CellHit)
	s.True(IsSunk(s.board, model.Position{X: 2, Y: 2}))
}

func (s *BoardSuite) TestIsSunkFollowsLongShip() {
	PlaceFleet(s.board, []model.Ship{
		{Position: model.Position{X: 0, Y: 0}, Vertical: true, Length: 4, Type: model.ShipHuge},
	})
	for y := 0; y < 3; y++ {
		s.board.Set(model.Position{X: 0, Y: y}, model.CellHit)
	}

	s.False(IsSunk(s.board, model.Position{X: 0, Y: 0}))
}

func (s *BoardSuite) TestFloodVisitsEachCellOnce() {
	for x := 3; x < 6; x++ {
		s.board.Set(model.Position{X: x, Y: 4}, model.CellHit)
	}

	seen := make(map[model.Position]int)
	completed := Flood(s.board, model.Position{X: 3, Y: 4}, func(p model.Position, _ model.CellState) bool {
		seen[p]++
		return true
	})

	s.True(completed)
	// 3x1 region plus its 12-cell ring
	s.Len(seen, 15)
	for _, n := range seen {
		s.Equal(1, n)
	}
}

func (s *BoardSuite) TestFloodAbort() {
	s.board.Set(model.Position{X: 0, Y: 0}, model.CellHit)

	calls := 0
	completed := Flood(s.board, model.Position{X: 0, Y: 0}, func(model.Position, model.CellState) bool {
		calls++
		return calls < 2
	})

	s.False(completed)
	s.Equal(2, calls)
}

// SealSunkShip tests

func (s *BoardSuite) TestSealSunkShipInCorner() {
	s.board.Set(model.Position{X: 0, Y: 0}, model.CellHit)

	shipCells, sealed := SealSunkShip(s.board, model.Position{X: 0, Y: 0})

	s.Equal([]model.Position{{X: 0, Y: 0}}, shipCells)
	s.Equal([]model.Position{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}, sealed)
	s.Equal(model.CellMiss, s.board.Get(model.Position{X: 1, Y: 1}))
}

func (s *BoardSuite) TestSealSunkShipMiddle() {
	for x := 4; x < 7; x++ {
		s.board.Set(model.Position{X: x, Y: 5}, model.CellHit)
	}
	s.board.Set(model.Position{X: 3, Y: 5}, model.CellMiss)

	shipCells, sealed := SealSunkShip(s.board, model.Position{X: 5, Y: 5})

	s.Len(shipCells, 3)
	s.Equal(model.Position{X: 4, Y: 5}, shipCells[0])
	// 12 ring cells minus the one already missed
	s.Len(sealed, 11)
	for _, p := range sealed {
		s.Equal(model.CellMiss, s.board.Get(p))
	}
	s.Equal(3, s.board.Count(model.CellHit))
	s.Equal(12, s.board.Count(model.CellMiss))
}

func (s *BoardSuite) TestSealSunkShipLeavesOtherShipsAlone() {
	s.board.Set(model.Position{X: 0, Y: 0}, model.CellHit)
	s.board.Set(model.Position{X: 2, Y: 0}, model.CellShip)

	_, sealed := SealSunkShip(s.board, model.Position{X: 0, Y: 0})

	s.NotContains(sealed, model.Position{X: 2, Y: 0})
	s.Equal(model.CellShip, s.board.Get(model.Position{X: 2, Y: 0}))
}
