package rules

import "github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"

// LegalMoveCalculator computes legal moves for a team
type LegalMoveCalculator struct{}

// NewLegalMoveCalculator creates a new legal move calculator
func NewLegalMoveCalculator() *LegalMoveCalculator {
	return &LegalMoveCalculator{}
}

// LegalMoves returns every (own tile with units, adjacent tile) pair in board
// order, neighbors in direction order. Moves onto own tiles are included.
func (lmc *LegalMoveCalculator) LegalMoves(board *core.Board, team core.Team) []core.Action {
	var actions []core.Action
	for _, tile := range board.TeamTiles(team) {
		if tile.Units <= 0 {
			continue
		}
		for _, n := range board.Neighbors(tile.Pos) {
			actions = append(actions, core.NewAction(tile, n))
		}
	}
	return actions
}
