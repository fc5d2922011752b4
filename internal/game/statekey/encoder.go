// Package statekey turns boards into the string keys used by the value
// table and maps keys between the four team perspectives.
package statekey

import (
	"strings"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
)

// Separator joins tile descriptors within a key
const Separator = ";"

// Encode returns the state key of board: one descriptor per tile in board
// order. A tile with no neighbors contributes an empty segment.
func Encode(board *core.Board) string {
	tiles := board.Tiles()
	segments := make([]string, len(tiles))
	for i, tile := range tiles {
		neighbors := board.Neighbors(tile.Pos)
		if len(neighbors) == 0 {
			continue
		}
		segments[i] = Descriptor{Team: tile.Team, Pos: tile.Pos, Lean: Lean(tile, neighbors)}.String()
	}
	return strings.Join(segments, Separator)
}

// Lean classifies how tile fares when it moves onto each neighbor and
// returns the sign of the total. A neighbor scores 1 if it ends on tile's
// team, 0 if its resulting units equal tile's units, and -1 otherwise.
// Neither tile nor its neighbors are modified.
func Lean(tile *core.Tile, neighbors []*core.Tile) int {
	sum := 0
	for _, n := range neighbors {
		sum += outcome(tile, n)
	}
	switch {
	case sum > 0:
		return 1
	case sum < 0:
		return -1
	default:
		return 0
	}
}

func outcome(tile, neighbor *core.Tile) int {
	result := core.Simulate(tile, neighbor)
	switch {
	case result.Team == tile.Team:
		return 1
	case result.Units == tile.Units:
		return 0
	default:
		return -1
	}
}
