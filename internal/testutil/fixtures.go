package testutil

import (
	"strings"
	"testing"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/mapgen"
	"github.com/stretchr/testify/require"
)

// StockLayout is a 5x9 level with one corner start per team
var StockLayout = []string{
	"BUUUO",
	"UUUU",
	"UUUUU",
	"UUUU",
	"UUXUU",
	"UUUU",
	"UUUUU",
	"UUUU",
	"RUUUP",
}

// T is shorthand for a tile literal at (x, y)
func T(team core.Team, x, y, units int) core.Tile {
	return core.Tile{Team: team, Pos: core.NewCoordinate(x, y), Units: units}
}

// CreateTestBoard places copies of tiles on a fresh board, in order
func CreateTestBoard(tb testing.TB, tiles ...core.Tile) *core.Board {
	tb.Helper()
	b := core.NewBoard()
	for i := range tiles {
		tile := tiles[i]
		require.NoError(tb, b.Add(&tile))
	}
	return b
}

// CreateLayoutBoard builds a board from layout rows with the stock units
func CreateLayoutBoard(tb testing.TB, width, height int, rows ...string) *core.Board {
	tb.Helper()
	cfg := mapgen.DefaultMapConfig(strings.Join(rows, ""), width)
	cfg.Height = height
	b, err := mapgen.NewGenerator(cfg, NopLogger()).GenerateMap()
	require.NoError(tb, err)
	return b
}

// CreateStockBoard builds the StockLayout board
func CreateStockBoard(tb testing.TB) *core.Board {
	tb.Helper()
	return CreateLayoutBoard(tb, 5, 9, StockLayout...)
}
