package rules

import (
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
	"github.com/rs/zerolog"
)

// WinConditionChecker handles game over detection and winner determination
type WinConditionChecker struct {
	logger zerolog.Logger
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// Winner returns the team holding every non-neutral tile. Zero-unit tiles
// still count for their team. A board with two or more teams, or with only
// neutral tiles, has no winner.
func (wc *WinConditionChecker) Winner(board *core.Board) (core.Team, bool) {
	winner := core.TeamNone
	for _, tile := range board.Tiles() {
		if tile.IsNeutral() {
			continue
		}
		if winner == core.TeamNone {
			winner = tile.Team
			continue
		}
		if tile.Team != winner {
			return core.TeamNone, false
		}
	}

	if winner == core.TeamNone {
		wc.logger.Debug().Msg("No team holds any tile")
		return core.TeamNone, false
	}
	wc.logger.Info().Str("winner", winner.String()).Msg("Winner determined")
	return winner, true
}

// TeamStats is a team's footprint on the board
type TeamStats struct {
	Tiles int
	Units int
}

// TeamCounts returns tiles and units held by each team present on the board
func TeamCounts(board *core.Board) map[core.Team]TeamStats {
	counts := make(map[core.Team]TeamStats)
	for _, tile := range board.Tiles() {
		c := counts[tile.Team]
		c.Tiles++
		c.Units += tile.Units
		counts[tile.Team] = c
	}
	return counts
}
