package agent

import (
	"context"
	"testing"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/levels"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/states"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/qtable"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// duel is B(-12,0) U(0,0) R(12,0)
var duel = levels.Level{Name: "duel", Width: 3, Height: 1, Board: []string{"BUR"}}

// wedge is B(-12,9) U(0,9) R(12,9) over U(-6,0) U(6,0)
var wedge = levels.Level{Name: "wedge", Width: 3, Height: 2, Board: []string{"BUR", "UU"}}

// mapTable is a plain value table without fan-out
type mapTable map[string]float64

func (m mapTable) Get(_ context.Context, key string) (float64, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m mapTable) Set(_ context.Context, key string, value float64) error {
	m[key] = value
	return nil
}

func newEngine(t *testing.T, cfg game.GameConfig) *game.Engine {
	t.Helper()
	cfg.Logger = testutil.NopLogger()
	e, err := game.NewEngine(context.Background(), cfg)
	require.NoError(t, err)
	return e
}

func newMemoryTable(t *testing.T) *qtable.Table {
	t.Helper()
	tbl := qtable.New(qtable.NewMemoryStore(), testutil.NopLogger())
	t.Cleanup(func() { _ = tbl.Close() })
	return tbl
}

func move(fromX, fromY, toX, toY int) core.Action {
	return core.Action{From: core.NewCoordinate(fromX, fromY), To: core.NewCoordinate(toX, toY)}
}

func greedyAgent() *Agent {
	cfg := DefaultConfig()
	cfg.Epsilon = 0
	return New(cfg, testutil.NopLogger())
}

func TestLearner_Update(t *testing.T) {
	ctx := context.Background()
	vt := mapTable{}
	l := NewLearner(0.25, 0.9)

	v, err := l.Update(ctx, vt, "B(0,0):1", 1, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, v, 1e-9)

	v, err = l.Update(ctx, vt, "B(0,0):1", 1, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.4375, v, 1e-9)

	vt["B(12,0):-1"] = 1
	vt["R(12,0):1"] = 0.2
	v, err = l.Update(ctx, vt, "U(0,0):0", 0, []string{"R(12,0):1", "B(12,0):-1", "B(24,0):0"})
	require.NoError(t, err)
	assert.InDelta(t, 0.25*0.9*1, v, 1e-9, "best next value is used")
	assert.InDelta(t, v, vt["U(0,0):0"], 1e-9)

	_, seen := vt["B(24,0):0"]
	assert.False(t, seen, "reading an unseen state does not store it")
}

func TestLearner_UpdateFansOut(t *testing.T) {
	ctx := context.Background()
	tbl := newMemoryTable(t)

	_, err := NewLearner(0.5, 0.9).Update(ctx, tbl, "B(0,9):1", -1, nil)
	require.NoError(t, err)

	v, err := Value(ctx, tbl, "P(0,-9):1")
	require.NoError(t, err)
	assert.InDelta(t, -0.5, v, 1e-9)

	n, err := tbl.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestAgent_ChooseGreedy(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewTestRNG(1)
	a := greedyAgent()

	e := newEngine(t, game.GameConfig{Level: wedge})
	_, actions := e.EnumerateActions()
	require.Len(t, actions, 2)

	vt := mapTable{}
	for i, action := range actions {
		key, err := e.Afterstate(action)
		require.NoError(t, err)
		vt[key] = float64(i)
	}

	for i := 0; i < 5; i++ {
		choice, err := a.Choose(ctx, e, vt, rng, true)
		require.NoError(t, err)
		assert.Equal(t, actions[1], choice, "trained team takes the highest value")
	}
}

func TestAgent_ChooseOpponentMinimizes(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewTestRNG(1)
	a := greedyAgent()

	e := newEngine(t, game.GameConfig{
		Level:    wedge,
		Teams:    []core.Team{core.TeamBlue, core.TeamRed},
		Rotation: states.RoundRobinPolicy{},
	})
	for _, action := range []core.Action{move(-12, 9, -6, 0), move(-6, 0, 6, 0)} {
		_, _, err := e.ApplyAction(action)
		require.NoError(t, err)
	}
	require.Equal(t, core.TeamRed, e.ActiveTeam())

	_, actions := e.EnumerateActions()
	require.Len(t, actions, 2)

	vt := mapTable{}
	for i, action := range actions {
		key, err := e.Afterstate(action)
		require.NoError(t, err)
		vt[key] = float64(i)
	}

	choice, err := a.Choose(ctx, e, vt, rng, false)
	require.NoError(t, err)
	assert.Equal(t, actions[0], choice, "other teams push the trained team's value down")
}

func TestAgent_ChooseTiesAndExploration(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, game.GameConfig{Level: wedge})
	_, actions := e.EnumerateActions()

	seen := map[core.Action]bool{}
	rng := testutil.NewTestRNG(3)
	for i := 0; i < 50; i++ {
		choice, err := greedyAgent().Choose(ctx, e, mapTable{}, rng, false)
		require.NoError(t, err)
		seen[choice] = true
	}
	assert.Len(t, seen, len(actions), "equal values are broken at random")

	explorer := New(Config{LearningRate: 0.25, Discount: 0.9, Epsilon: 1}, testutil.NopLogger())
	for i := 0; i < 10; i++ {
		choice, err := explorer.Choose(ctx, e, mapTable{}, rng, true)
		require.NoError(t, err)
		assert.Contains(t, actions, choice)
	}
}

func TestAgent_ExplorationByTeam(t *testing.T) {
	// B(-24,0) U(-12,0) R(0,0) R(12,0); Red's frontier is (0,0)
	line := levels.Level{Name: "line", Width: 4, Height: 1, Board: []string{"BURR"}}
	retreat := move(0, 0, 12, 0)
	explorer := New(Config{LearningRate: 0.25, Discount: 0.9, Epsilon: 1}, testutil.NopLogger())

	tests := []struct {
		name        string
		trained     core.Team
		wantRetreat bool
	}{
		{"trained team follows the frontier", core.TeamRed, false},
		{"other teams move at random", core.TeamBlue, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, game.GameConfig{
				Level:        line,
				Teams:        []core.Team{core.TeamBlue, core.TeamRed},
				TrainedTeam:  tt.trained,
				Rotation:     states.RoundRobinPolicy{},
				NeutralUnits: 5,
			})
			if e.ActiveTeam() == core.TeamBlue {
				// repelled, which spends Blue's units and hands Red the turn
				_, _, err := e.ApplyAction(move(-24, 0, -12, 0))
				require.NoError(t, err)
			}
			require.Equal(t, core.TeamRed, e.ActiveTeam())
			_, actions := e.EnumerateActions()
			require.Contains(t, actions, retreat)

			seen := map[core.Action]bool{}
			rng := testutil.NewTestRNG(5)
			for i := 0; i < 100; i++ {
				choice, err := explorer.Choose(context.Background(), e, mapTable{}, rng, true)
				require.NoError(t, err)
				seen[choice] = true
			}
			assert.Equal(t, tt.wantRetreat, seen[retreat])
			if tt.wantRetreat {
				assert.Len(t, seen, len(actions))
			}
		})
	}
}

func TestAgent_ChooseNoActions(t *testing.T) {
	e := newEngine(t, game.GameConfig{
		Level: levels.Level{Name: "no-blue", Width: 3, Height: 1, Board: []string{"OUR"}},
	})
	_, err := greedyAgent().Choose(context.Background(), e, mapTable{}, testutil.NewTestRNG(1), true)
	assert.ErrorIs(t, err, ErrNoActions)
}

func TestAgent_Play(t *testing.T) {
	ctx := context.Background()
	vt := mapTable{}
	e := newEngine(t, game.GameConfig{Level: duel})
	before := e.StateKey()

	step, err := greedyAgent().Play(ctx, e, vt, testutil.NewTestRNG(1), false, true)
	require.NoError(t, err)
	assert.Equal(t, core.TeamBlue, step.Team)
	assert.Equal(t, move(-12, 0, 0, 0), step.Action)
	assert.Equal(t, before, step.State)
	assert.True(t, step.Learned)
	assert.Zero(t, step.Value)
	assert.Contains(t, vt, before)

	step, err = greedyAgent().Play(ctx, e, mapTable{}, testutil.NewTestRNG(1), false, false)
	require.NoError(t, err)
	assert.False(t, step.Learned)
}
