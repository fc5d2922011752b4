package game

import (
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/rules"
	"github.com/rs/zerolog"
)

// UnitsPerTile is what each of a team's tiles gains when its round begins
const UnitsPerTile = 1

// ReplenishmentManager refills a team once it has committed all its units
type ReplenishmentManager struct {
	eventBus events.Publisher
	gameID   string
	logger   zerolog.Logger
}

// NewReplenishmentManager creates a new replenishment manager
func NewReplenishmentManager(eventBus events.Publisher, gameID string, logger zerolog.Logger) *ReplenishmentManager {
	return &ReplenishmentManager{
		eventBus: eventBus,
		gameID:   gameID,
		logger:   logger.With().Str("component", "ReplenishmentManager").Logger(),
	}
}

// Replenish adds UnitsPerTile to every tile of team and returns the
// team's new unit total, which becomes the round budget.
func (rm *ReplenishmentManager) Replenish(board *core.Board, team core.Team, round int) int {
	tiles := board.TeamTiles(team)
	for _, tile := range tiles {
		tile.Units += UnitsPerTile
	}
	budget := board.TeamUnits(team)

	if rm.eventBus != nil {
		rm.eventBus.Publish(events.NewRoundAdvancedEvent(rm.gameID, team, round, budget, len(tiles)))
	}

	if e := rm.logger.Debug(); e.Enabled() {
		summary := zerolog.Dict()
		for t, stats := range rules.TeamCounts(board) {
			summary.Dict(t.String(), zerolog.Dict().Int("tiles", stats.Tiles).Int("units", stats.Units))
		}
		e.Str("team", team.String()).
			Int("round", round).
			Int("budget", budget).
			Dict("teams", summary).
			Msg("Round advanced")
	}
	return budget
}
