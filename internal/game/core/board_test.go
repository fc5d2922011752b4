package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineBoard builds B(0,0) - R(12,0) - U(24,0) with an extra B tile NE of the first.
func lineBoard(t *testing.T) *Board {
	t.Helper()
	b := NewBoard()
	require.NoError(t, b.Add(&Tile{Team: TeamBlue, Pos: Coordinate{0, 0}, Units: 2}))
	require.NoError(t, b.Add(&Tile{Team: TeamRed, Pos: Coordinate{12, 0}, Units: 3}))
	require.NoError(t, b.Add(&Tile{Team: TeamNeutral, Pos: Coordinate{24, 0}, Units: 1}))
	require.NoError(t, b.Add(&Tile{Team: TeamBlue, Pos: Coordinate{6, 9}, Units: 0}))
	return b
}

func TestBoard_AddRejectsCollision(t *testing.T) {
	b := NewBoard()
	require.NoError(t, b.Add(&Tile{Team: TeamBlue, Pos: Coordinate{0, 0}}))

	err := b.Add(&Tile{Team: TeamRed, Pos: Coordinate{0, 0}})
	assert.ErrorIs(t, err, ErrCoordinateCollision)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, TeamBlue, b.Tile(Coordinate{0, 0}).Team, "original tile kept")
}

func TestBoard_EnumerationOrder(t *testing.T) {
	b := lineBoard(t)
	tiles := b.Tiles()
	require.Len(t, tiles, 4)
	assert.Equal(t, Coordinate{0, 0}, tiles[0].Pos)
	assert.Equal(t, Coordinate{12, 0}, tiles[1].Pos)
	assert.Equal(t, Coordinate{24, 0}, tiles[2].Pos)
	assert.Equal(t, Coordinate{6, 9}, tiles[3].Pos)

	blue := b.TeamTiles(TeamBlue)
	require.Len(t, blue, 2)
	assert.Equal(t, Coordinate{0, 0}, blue[0].Pos)
	assert.Equal(t, 2, b.TeamUnits(TeamBlue))
	assert.Equal(t, 0, b.TeamUnits(TeamOrange))
}

func TestBoard_Neighbors(t *testing.T) {
	b := lineBoard(t)

	n := b.Neighbors(Coordinate{0, 0})
	require.Len(t, n, 2)
	assert.Equal(t, Coordinate{6, 9}, n[0].Pos, "NE before E")
	assert.Equal(t, Coordinate{12, 0}, n[1].Pos)

	n = b.Neighbors(Coordinate{12, 0})
	require.Len(t, n, 3)
	assert.Equal(t, []Coordinate{{6, 9}, {24, 0}, {0, 0}}, []Coordinate{n[0].Pos, n[1].Pos, n[2].Pos})

	assert.Empty(t, b.Neighbors(Coordinate{120, 120}))
}

func TestBoard_TileByKey(t *testing.T) {
	b := lineBoard(t)
	tile := b.TileByKey("12,0")
	require.NotNil(t, tile)
	assert.Equal(t, TeamRed, tile.Team)
	assert.Nil(t, b.TileByKey("13,0"))
	assert.Nil(t, b.TileByKey("garbage"))
}

func TestBoard_CloneIsIndependent(t *testing.T) {
	b := lineBoard(t)
	c := b.Clone()

	c.Tile(Coordinate{0, 0}).Units = 99
	c.Tile(Coordinate{12, 0}).Team = TeamBlue

	assert.Equal(t, 2, b.Tile(Coordinate{0, 0}).Units)
	assert.Equal(t, TeamRed, b.Tile(Coordinate{12, 0}).Team)
	assert.Equal(t, b.Len(), c.Len())
}

func TestParseTeam(t *testing.T) {
	for _, m := range []byte("BROPU") {
		team, err := ParseTeam(m)
		require.NoError(t, err)
		assert.Equal(t, Team(m), team)
	}
	_, err := ParseTeam('X')
	assert.ErrorIs(t, err, ErrUnknownTeam)
	assert.False(t, TeamNeutral.IsPlayer())
	assert.Equal(t, "B", TeamBlue.String())
}
