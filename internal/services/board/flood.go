package board

import (
	"sort"

	"github.com/mcoot/seabattle/internal/model"
)

// VisitFunc is called once per cell reached by Flood. Returning false stops the walk.
type VisitFunc func(pos model.Position, state model.CellState) bool

var neighbourOffsets = [8]model.Position{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// Flood walks the 8-connected region of Hit cells containing start. The
// start cell and every in-bounds neighbour of a region cell are passed to
// visit exactly once. Only Hit cells are expanded further. Flood returns
// false if visit aborted the walk.
func Flood(b *model.Board, start model.Position, visit VisitFunc) bool {
	if !b.IsValidPosition(start) {
		return true
	}

	visited := map[model.Position]bool{start: true}
	if !visit(start, b.Get(start)) {
		return false
	}

	stack := []model.Position{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, off := range neighbourOffsets {
			next := model.Position{X: cur.X + off.X, Y: cur.Y + off.Y}
			if !b.IsValidPosition(next) || visited[next] {
				continue
			}
			visited[next] = true

			state := b.Get(next)
			if !visit(next, state) {
				return false
			}
			if state == model.CellHit {
				stack = append(stack, next)
			}
		}
	}
	return true
}

// IsSunk reports whether the ship that owns the Hit cell at pos has no
// unshot cells left
func IsSunk(b *model.Board, pos model.Position) bool {
	return Flood(b, pos, func(_ model.Position, state model.CellState) bool {
		return state != model.CellShip
	})
}

// SealSunkShip collects the Hit cells of the sunk ship at pos and marks every
// Empty cell around it as Miss. Both slices are ordered by row, then column.
func SealSunkShip(b *model.Board, pos model.Position) (shipCells, sealed []model.Position) {
	Flood(b, pos, func(p model.Position, state model.CellState) bool {
		switch state {
		case model.CellHit:
			shipCells = append(shipCells, p)
		case model.CellEmpty:
			sealed = append(sealed, p)
		}
		return true
	})

	for _, p := range sealed {
		b.Set(p, model.CellMiss)
	}

	sortPositions(shipCells)
	sortPositions(sealed)
	return shipCells, sealed
}

func sortPositions(cells []model.Position) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
}
