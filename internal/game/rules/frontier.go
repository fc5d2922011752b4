package rules

import (
	"math"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
)

// Unreachable is the weight of a team tile with no path to the front
const Unreachable = math.MaxInt32

// Field maps every tile to its distance from contact with another team.
// Tiles not owned by the evaluated team are always 0.
type Field map[core.Coordinate]int

// At returns the weight of c, Unreachable if c is not in the field
func (f Field) At(c core.Coordinate) int {
	w, ok := f[c]
	if !ok {
		return Unreachable
	}
	return w
}

// IsFrontier reports whether tile belongs to team and touches a tile that does not
func IsFrontier(board *core.Board, tile *core.Tile, team core.Team) bool {
	if tile.Team != team {
		return false
	}
	for _, n := range board.Neighbors(tile.Pos) {
		if n.Team != team {
			return true
		}
	}
	return false
}

// FrontierField computes the frontier-distance field of team on board.
// Frontier tiles are seeded at 0 and every lowered weight is pushed to the
// tile's same-team neighbors as weight+1. Weights only ever decrease, so the
// pass reaches the same fixed point whatever order the worklist drains in.
// The result is a fresh map; the board is not touched.
func FrontierField(board *core.Board, team core.Team) Field {
	field := make(Field, board.Len())
	var pending []core.Coordinate

	lower := func(c core.Coordinate, w int) {
		if w < field[c] {
			field[c] = w
			pending = append(pending, c)
		}
	}

	for _, tile := range board.Tiles() {
		if tile.Team == team {
			field[tile.Pos] = Unreachable
		} else {
			field[tile.Pos] = 0
		}
	}
	for _, tile := range board.TeamTiles(team) {
		if IsFrontier(board, tile, team) {
			lower(tile.Pos, 0)
		}
	}

	for len(pending) > 0 {
		c := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		next := field[c] + 1
		for _, n := range board.Neighbors(c) {
			if n.Team == team {
				lower(n.Pos, next)
			}
		}
	}
	return field
}

// Relax runs one pull pass over the team's tiles and reports whether any
// weight went down. On a field returned by FrontierField it never does.
func (f Field) Relax(board *core.Board, team core.Team) bool {
	changed := false
	for _, tile := range board.TeamTiles(team) {
		best := f.At(tile.Pos)
		for _, n := range board.Neighbors(tile.Pos) {
			candidate := 0
			if n.Team == team {
				w := f.At(n.Pos)
				if w == Unreachable {
					continue
				}
				candidate = w + 1
			}
			if candidate < best {
				best = candidate
			}
		}
		if best < f.At(tile.Pos) {
			f[tile.Pos] = best
			changed = true
		}
	}
	return changed
}
