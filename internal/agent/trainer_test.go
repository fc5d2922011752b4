package agent

import (
	"context"
	"sync"
	"testing"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func duelFactory() EngineFactory {
	return func(ctx context.Context, gameID string) (*game.Engine, error) {
		return game.NewEngine(ctx, game.GameConfig{GameID: gameID, Level: duel, Logger: testutil.NopLogger()})
	}
}

func TestEpisodeSeed(t *testing.T) {
	assert.Equal(t, EpisodeSeed(42, modeTrain, 3), EpisodeSeed(42, modeTrain, 3))
	assert.NotEqual(t, EpisodeSeed(42, modeTrain, 3), EpisodeSeed(42, modeTrain, 4))
	assert.NotEqual(t, EpisodeSeed(42, modeTrain, 3), EpisodeSeed(42, modeEval, 3))
	assert.NotEqual(t, EpisodeSeed(42, modeTrain, 3), EpisodeSeed(43, modeTrain, 3))
}

func TestPlayEpisode_FrontierWinsDuel(t *testing.T) {
	e := newEngine(t, game.GameConfig{Level: duel})
	explorer := New(Config{LearningRate: 0.25, Discount: 0.9, Epsilon: 1}, testutil.NopLogger())
	vt := mapTable{}

	res, err := explorer.PlayEpisode(context.Background(), e, vt, testutil.NewTestRNG(1), EpisodeOptions{Explore: true, Learn: true})
	require.NoError(t, err)

	assert.True(t, res.HasWinner)
	assert.Equal(t, core.TeamBlue, res.Winner)
	assert.False(t, res.Truncated)
	assert.Equal(t, 4, res.Steps, "capture, repel, reinforce, capture")
	assert.Equal(t, res.Steps, res.Updates)
	assert.InDelta(t, 1.0, res.TotalReward, 1e-9)
	assert.Equal(t, 1, res.Rounds)
	assert.NotEmpty(t, vt)
}

func TestPlayEpisode_StepCap(t *testing.T) {
	e := newEngine(t, game.GameConfig{Level: duel})
	res, err := greedyAgent().PlayEpisode(context.Background(), e, mapTable{}, testutil.NewTestRNG(1), EpisodeOptions{MaxSteps: 1})
	require.NoError(t, err)

	assert.True(t, res.Truncated)
	assert.False(t, res.HasWinner)
	assert.False(t, res.Eliminated)
	assert.Equal(t, 1, res.Steps)
	assert.Zero(t, res.Updates)
}

func TestPlayEpisode_Cancelled(t *testing.T) {
	e := newEngine(t, game.GameConfig{Level: duel})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := greedyAgent().PlayEpisode(ctx, e, mapTable{}, testutil.NewTestRNG(1), EpisodeOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrainer_Train(t *testing.T) {
	ctx := context.Background()
	tbl := newMemoryTable(t)

	tr, err := NewTrainer(TrainerConfig{Episodes: 6, Workers: 3, MaxSteps: 200, Seed: 9},
		New(DefaultConfig(), testutil.NopLogger()), tbl, duelFactory(), testutil.NopLogger())
	require.NoError(t, err)

	summary, err := tr.Train(ctx)
	require.NoError(t, err)

	assert.Equal(t, modeTrain, summary.Mode)
	assert.Equal(t, 6, summary.Episodes)
	assert.Equal(t, 6, summary.Wins[core.TeamBlue]+summary.Draws)
	assert.Zero(t, summary.Wins[core.TeamRed])
	assert.Positive(t, summary.Updates)
	assert.Positive(t, summary.Elapsed)

	n, err := tbl.Len(ctx)
	require.NoError(t, err)
	assert.Positive(t, n, "episodes commit their batches")
}

func TestTrainer_Evaluate(t *testing.T) {
	ctx := context.Background()
	tbl := newMemoryTable(t)

	tr, err := NewTrainer(TrainerConfig{EvalEpisodes: 5, Workers: 2, MaxSteps: 200, Seed: 1},
		greedyAgent(), tbl, duelFactory(), testutil.NopLogger())
	require.NoError(t, err)

	first, err := tr.Evaluate(ctx)
	require.NoError(t, err)
	second, err := tr.Evaluate(ctx)
	require.NoError(t, err)

	assert.Equal(t, 5, first.Episodes)
	assert.Zero(t, first.Updates)
	assert.Equal(t, first.Wins, second.Wins, "seeded per episode, not per worker")
	assert.Equal(t, first.Steps, second.Steps)
	assert.InDelta(t, float64(first.Wins[core.TeamBlue])/5, first.WinRate(core.TeamBlue), 1e-9)
	assert.InDelta(t, 1.0, first.WinRate(core.TeamBlue)+first.DrawRate(), 1e-9)

	n, err := tbl.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "evaluation never writes")
}

type countingObserver struct {
	mu    sync.Mutex
	modes map[string]int
}

func (o *countingObserver) EpisodeDone(mode string, _ int, _ bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.modes[mode]++
}

func TestTrainer_Observer(t *testing.T) {
	ctx := context.Background()
	tr, err := NewTrainer(TrainerConfig{Episodes: 3, EvalEpisodes: 2, Workers: 2, MaxSteps: 100},
		New(DefaultConfig(), testutil.NopLogger()), newMemoryTable(t), duelFactory(), testutil.NopLogger())
	require.NoError(t, err)

	obs := &countingObserver{modes: map[string]int{}}
	tr.SetObserver(obs)

	_, err = tr.Train(ctx)
	require.NoError(t, err)
	_, err = tr.Evaluate(ctx)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{modeTrain: 3, modeEval: 2}, obs.modes)
}

func TestTrainer_Errors(t *testing.T) {
	tbl := newMemoryTable(t)

	_, err := NewTrainer(TrainerConfig{Episodes: 1}, nil, tbl, duelFactory(), testutil.NopLogger())
	assert.ErrorIs(t, err, ErrInvalidTrainerConfig)

	_, err = NewTrainer(TrainerConfig{Episodes: -1}, greedyAgent(), tbl, duelFactory(), testutil.NopLogger())
	assert.ErrorIs(t, err, ErrInvalidTrainerConfig)

	tr, err := NewTrainer(TrainerConfig{Episodes: 3}, greedyAgent(), tbl, duelFactory(), testutil.NopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tr.Train(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummary_EmptyRates(t *testing.T) {
	s := *newSummary(modeEval)
	assert.Zero(t, s.WinRate(core.TeamBlue))
	assert.Zero(t, s.DrawRate())
}
