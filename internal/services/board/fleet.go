package board

import "github.com/mcoot/seabattle/internal/model"

// PlaceFleet marks every in-bounds cell of every ship as CellShip.
// Cells that fall outside the grid are skipped.
func PlaceFleet(b *model.Board, ships []model.Ship) {
	for _, ship := range ships {
		for _, pos := range ship.Cells() {
			b.Set(pos, model.CellShip)
		}
	}
}

// AttackableCells returns the cells an attacker has not resolved yet, in row-major order
func AttackableCells(b *model.Board) []model.Position {
	var cells []model.Position
	for y := 0; y < model.BoardSize; y++ {
		for x := 0; x < model.BoardSize; x++ {
			switch b.Cells[y][x] {
			case model.CellEmpty, model.CellShip:
				cells = append(cells, model.Position{X: x, Y: y})
			}
		}
	}
	return cells
}
