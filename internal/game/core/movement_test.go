package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Table(t *testing.T) {
	tests := []struct {
		name          string
		sourceTeam    Team
		sourceUnits   int
		targetTeam    Team
		targetUnits   int
		expectedTeam  Team
		expectedUnits int
		expectedOut   Outcome
	}{
		{"merge into own tile", TeamBlue, 3, TeamBlue, 4, TeamBlue, 7, OutcomeMerged},
		{"merge zero units", TeamBlue, 0, TeamBlue, 4, TeamBlue, 4, OutcomeMerged},
		{"attack repelled", TeamBlue, 2, TeamRed, 5, TeamRed, 3, OutcomeRepelled},
		{"attack ties to zero", TeamBlue, 3, TeamRed, 3, TeamRed, 0, OutcomeRepelled},
		{"capture", TeamBlue, 3, TeamRed, 2, TeamBlue, 1, OutcomeCaptured},
		{"capture neutral", TeamOrange, 2, TeamNeutral, 1, TeamOrange, 1, OutcomeCaptured},
		{"capture empty enemy", TeamPurple, 1, TeamRed, 0, TeamPurple, 1, OutcomeCaptured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &Tile{Team: tt.sourceTeam, Pos: Coordinate{0, 0}, Units: tt.sourceUnits}
			dst := &Tile{Team: tt.targetTeam, Pos: Coordinate{12, 0}, Units: tt.targetUnits}

			res := Resolve(src, dst)

			assert.Equal(t, tt.expectedOut, res.Outcome)
			assert.Equal(t, tt.expectedTeam, dst.Team)
			assert.Equal(t, tt.expectedUnits, dst.Units)
			assert.Equal(t, 0, src.Units, "source is always emptied")
			assert.Equal(t, tt.sourceTeam, src.Team, "source keeps its team")
			assert.Equal(t, tt.targetTeam, res.PreviousTeam)
			assert.Equal(t, tt.targetUnits, res.PreviousUnits)
		})
	}
}

func TestResolve_AllUnitPairs(t *testing.T) {
	for s := 0; s <= 6; s++ {
		for u := 0; u <= 6; u++ {
			src := &Tile{Team: TeamBlue, Units: s}
			same := &Tile{Team: TeamBlue, Units: u}
			Resolve(src, same)
			assert.Equal(t, u+s, same.Units)
			assert.Equal(t, TeamBlue, same.Team)

			src = &Tile{Team: TeamBlue, Units: s}
			enemy := &Tile{Team: TeamRed, Units: u}
			Resolve(src, enemy)
			if u >= s {
				assert.Equal(t, TeamRed, enemy.Team, "s=%d u=%d", s, u)
				assert.Equal(t, u-s, enemy.Units, "s=%d u=%d", s, u)
			} else {
				assert.Equal(t, TeamBlue, enemy.Team, "s=%d u=%d", s, u)
				assert.Equal(t, s-u, enemy.Units, "s=%d u=%d", s, u)
			}
			assert.Equal(t, 0, src.Units)
		}
	}
}

func TestApplyMove_Scenario(t *testing.T) {
	t.Run("A:3 attacks B:2", func(t *testing.T) {
		b := NewBoard()
		require.NoError(t, b.Add(&Tile{Team: TeamBlue, Pos: Coordinate{0, 0}, Units: 3}))
		require.NoError(t, b.Add(&Tile{Team: TeamRed, Pos: Coordinate{12, 0}, Units: 2}))

		res, err := ApplyMove(b, Action{From: Coordinate{0, 0}, To: Coordinate{12, 0}})
		require.NoError(t, err)
		assert.Equal(t, OutcomeCaptured, res.Outcome)

		assert.Equal(t, TeamBlue, b.Tile(Coordinate{12, 0}).Team)
		assert.Equal(t, 1, b.Tile(Coordinate{12, 0}).Units)
		assert.Equal(t, TeamBlue, b.Tile(Coordinate{0, 0}).Team)
		assert.Equal(t, 0, b.Tile(Coordinate{0, 0}).Units)
	})

	t.Run("A:2 attacks B:3", func(t *testing.T) {
		b := NewBoard()
		require.NoError(t, b.Add(&Tile{Team: TeamBlue, Pos: Coordinate{0, 0}, Units: 2}))
		require.NoError(t, b.Add(&Tile{Team: TeamRed, Pos: Coordinate{12, 0}, Units: 3}))

		res, err := ApplyMove(b, Action{From: Coordinate{0, 0}, To: Coordinate{12, 0}})
		require.NoError(t, err)
		assert.Equal(t, OutcomeRepelled, res.Outcome)

		assert.Equal(t, TeamRed, b.Tile(Coordinate{12, 0}).Team)
		assert.Equal(t, 1, b.Tile(Coordinate{12, 0}).Units)
		assert.Equal(t, 0, b.Tile(Coordinate{0, 0}).Units)
	})
}

func TestApplyMove_InvalidAction(t *testing.T) {
	b := NewBoard()
	require.NoError(t, b.Add(&Tile{Team: TeamBlue, Pos: Coordinate{0, 0}, Units: 3}))
	require.NoError(t, b.Add(&Tile{Team: TeamRed, Pos: Coordinate{24, 0}, Units: 2}))

	tests := []struct {
		name   string
		action Action
		err    error
	}{
		{"missing source", Action{From: Coordinate{-12, 0}, To: Coordinate{0, 0}}, ErrTileNotFound},
		{"missing target", Action{From: Coordinate{0, 0}, To: Coordinate{12, 0}}, ErrTileNotFound},
		{"not adjacent", Action{From: Coordinate{0, 0}, To: Coordinate{24, 0}}, ErrNotAdjacent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyMove(b, tt.action)
			assert.ErrorIs(t, err, ErrInvalidAction)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 3, b.Tile(Coordinate{0, 0}).Units, "board untouched")
		})
	}
}

func TestSimulate_LeavesInputsUntouched(t *testing.T) {
	src := &Tile{Team: TeamBlue, Pos: Coordinate{0, 0}, Units: 4}
	dst := &Tile{Team: TeamRed, Pos: Coordinate{12, 0}, Units: 1}

	out := Simulate(src, dst)

	assert.Equal(t, TeamBlue, out.Team)
	assert.Equal(t, 3, out.Units)
	assert.Equal(t, 4, src.Units)
	assert.Equal(t, TeamRed, dst.Team)
	assert.Equal(t, 1, dst.Units)
}
