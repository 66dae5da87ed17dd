package bot

import "github.com/mcoot/seabattle/internal/model"

// Strategy decides where an automated attack lands
type Strategy interface {
	// ChooseTarget picks a cell of the opponent's board to attack.
	// It returns false when no attackable cell remains.
	ChooseTarget(opponent *model.Board) (model.Position, bool)
}
