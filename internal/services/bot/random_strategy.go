package bot

import (
	"github.com/mcoot/seabattle/internal/dependencies/random"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/services/board"
)

// RandomStrategy attacks a uniformly random unresolved cell
type RandomStrategy struct {
	random random.Random
}

var _ Strategy = (*RandomStrategy)(nil)

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChooseTarget samples one Empty or Ship cell of the opponent board
func (s *RandomStrategy) ChooseTarget(opponent *model.Board) (model.Position, bool) {
	cells := board.AttackableCells(opponent)
	if len(cells) == 0 {
		return model.Position{}, false
	}
	return cells[s.random.Intn(len(cells))], true
}
