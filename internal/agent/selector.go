package agent

import (
	"math/rand"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/rules"
	"github.com/samber/lo"
)

// FrontierSelector picks moves with the frontier-distance field. It sends
// units from deep inside the territory toward the front and prefers
// attacks among equally deep sources.
type FrontierSelector struct{}

type candidate struct {
	action core.Action
	depth  int // frontier distance of the source
	source *core.Tile
	target *core.Tile
}

// Select returns one of actions for team. actions must be non-empty and
// legal on board.
func (FrontierSelector) Select(board *core.Board, team core.Team, actions []core.Action, rng *rand.Rand) core.Action {
	field := rules.FrontierField(board, team)

	candidates := lo.Map(actions, func(a core.Action, _ int) candidate {
		return candidate{
			action: a,
			depth:  field.At(a.From),
			source: board.Tile(a.From),
			target: board.Tile(a.To),
		}
	})

	// Never retreat: moves between own tiles must not go deeper.
	forward := lo.Filter(candidates, func(c candidate, _ int) bool {
		return c.target.Team != team || c.depth >= field.At(c.action.To)
	})

	viable := lo.Filter(forward, func(c candidate, _ int) bool {
		return isViable(c, team)
	})
	if len(viable) == 0 {
		return actions[rng.Intn(len(actions))]
	}

	deepest := lo.MaxBy(viable, func(a, b candidate) bool { return a.depth > b.depth }).depth
	pool := lo.Filter(forward, func(c candidate, _ int) bool { return c.depth == deepest })
	if attacks := lo.Filter(pool, func(c candidate, _ int) bool { return c.target.Team != team }); len(attacks) > 0 {
		pool = attacks
	}
	return pool[rng.Intn(len(pool))].action
}

// isViable accepts captures of empty enemy tiles, reinforcement of occupied
// own tiles and any attack launched from the frontier.
func isViable(c candidate, team core.Team) bool {
	if c.source.Units == 0 {
		return false
	}
	own := c.target.Team == team
	switch {
	case !own && c.target.Units == 0:
		return true
	case own && c.target.Units != 0:
		return true
	case !own && c.depth == 0:
		return true
	}
	return false
}
