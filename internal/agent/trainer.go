package agent

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/qtable"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidTrainerConfig = errors.New("invalid trainer config")

const (
	modeTrain = "train"
	modeEval  = "eval"
)

// TrainerConfig controls a training or evaluation run
type TrainerConfig struct {
	Episodes     int   `mapstructure:"episodes"`
	Workers      int   `mapstructure:"workers"`
	MaxSteps     int   `mapstructure:"max_steps"`
	Seed         int64 `mapstructure:"seed"`
	EvalEpisodes int   `mapstructure:"eval_episodes"`
}

// EngineFactory builds a fresh engine for one worker
type EngineFactory func(ctx context.Context, gameID string) (*game.Engine, error)

// Summary aggregates the results of a run
type Summary struct {
	Mode        string
	Episodes    int
	Wins        map[core.Team]int
	Draws       int // no winner: step cap, stalled board or trained team wiped out
	Eliminated  int
	Steps       int
	Updates     int
	TotalReward float64
	Elapsed     time.Duration
}

func newSummary(mode string) *Summary {
	return &Summary{Mode: mode, Wins: make(map[core.Team]int)}
}

func (s *Summary) add(r EpisodeResult) {
	s.Episodes++
	s.Steps += r.Steps
	s.Updates += r.Updates
	s.TotalReward += r.TotalReward
	switch {
	case r.HasWinner:
		s.Wins[r.Winner]++
	default:
		s.Draws++
		if r.Eliminated {
			s.Eliminated++
		}
	}
}

// WinRate returns the share of episodes team won
func (s Summary) WinRate(team core.Team) float64 {
	if s.Episodes == 0 {
		return 0
	}
	return float64(s.Wins[team]) / float64(s.Episodes)
}

// DrawRate returns the share of episodes without a winner
func (s Summary) DrawRate() float64 {
	if s.Episodes == 0 {
		return 0
	}
	return float64(s.Draws) / float64(s.Episodes)
}

// MarshalZerologObject logs the summary with per-team win rates
func (s Summary) MarshalZerologObject(e *zerolog.Event) {
	e.Str("mode", s.Mode).
		Int("episodes", s.Episodes).
		Int("steps", s.Steps).
		Int("updates", s.Updates).
		Float64("total_reward", s.TotalReward).
		Dur("elapsed", s.Elapsed)
	for _, team := range core.Teams {
		e.Float64("win_rate_"+team.String(), s.WinRate(team))
	}
	e.Float64("draw_rate", s.DrawRate())
}

// Observer is told about every finished episode. It must be safe for
// concurrent use.
type Observer interface {
	EpisodeDone(mode string, steps int, hasWinner bool)
}

// Trainer runs episodes in parallel, one engine per worker, against a
// shared value table
type Trainer struct {
	cfg       TrainerConfig
	agent     *Agent
	table     *qtable.Table
	newEngine EngineFactory
	observer  Observer
	logger    zerolog.Logger
}

// NewTrainer creates a trainer. Workers defaults to 1.
func NewTrainer(cfg TrainerConfig, agent *Agent, table *qtable.Table, newEngine EngineFactory, logger zerolog.Logger) (*Trainer, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Episodes < 0 || cfg.EvalEpisodes < 0 || cfg.MaxSteps < 0 {
		return nil, fmt.Errorf("%w: negative episode or step count", ErrInvalidTrainerConfig)
	}
	if agent == nil || table == nil || newEngine == nil {
		return nil, fmt.Errorf("%w: agent, table and engine factory are required", ErrInvalidTrainerConfig)
	}
	return &Trainer{
		cfg:       cfg,
		agent:     agent,
		table:     table,
		newEngine: newEngine,
		logger:    logger.With().Str("component", "Trainer").Logger(),
	}, nil
}

// SetObserver registers o for episode notifications
func (t *Trainer) SetObserver(o Observer) {
	t.observer = o
}

// Train plays the configured number of exploring, learning episodes. Each
// episode's updates are committed to the table in one batch when it ends.
func (t *Trainer) Train(ctx context.Context) (Summary, error) {
	opts := EpisodeOptions{MaxSteps: t.cfg.MaxSteps, Explore: true, Learn: true}
	return t.run(ctx, modeTrain, t.cfg.Episodes, opts)
}

// Evaluate plays greedy games without learning and reports win rates
func (t *Trainer) Evaluate(ctx context.Context) (Summary, error) {
	opts := EpisodeOptions{MaxSteps: t.cfg.MaxSteps}
	return t.run(ctx, modeEval, t.cfg.EvalEpisodes, opts)
}

func (t *Trainer) run(ctx context.Context, mode string, episodes int, opts EpisodeOptions) (Summary, error) {
	start := time.Now()
	summary := newSummary(mode)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < episodes; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	workers := min(t.cfg.Workers, max(episodes, 1))
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			e, err := t.newEngine(gctx, uuid.NewString())
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			logger := t.logger.With().Int("worker", w).Str("game_id", e.GameID()).Logger()
			logger.Debug().Str("mode", mode).Msg("Worker started")

			for i := range jobs {
				res, err := t.episode(gctx, e, mode, i, opts)
				if err != nil {
					return fmt.Errorf("%s episode %d: %w", mode, i, err)
				}

				mu.Lock()
				summary.add(res)
				mu.Unlock()
				if t.observer != nil {
					t.observer.EpisodeDone(mode, res.Steps, res.HasWinner)
				}

				logger.Debug().
					Str("episode_id", res.ID).
					Int("episode", i).
					Str("winner", res.Winner.String()).
					Bool("has_winner", res.HasWinner).
					Bool("truncated", res.Truncated).
					Int("steps", res.Steps).
					Float64("reward", res.TotalReward).
					Msg("Episode finished")
			}
			return nil
		})
	}

	err := g.Wait()
	summary.Elapsed = time.Since(start)
	if err != nil {
		t.logger.Error().Err(err).Str("mode", mode).Int("completed", summary.Episodes).Msg("Run stopped")
		return *summary, err
	}
	t.logger.Info().EmbedObject(*summary).Msg("Run finished")
	return *summary, nil
}

func (t *Trainer) episode(ctx context.Context, e *game.Engine, mode string, index int, opts EpisodeOptions) (EpisodeResult, error) {
	e.Reset()
	rng := rand.New(rand.NewSource(EpisodeSeed(t.cfg.Seed, mode, index)))

	if !opts.Learn {
		res, err := t.agent.PlayEpisode(ctx, e, t.table, rng, opts)
		res.ID, res.Index = uuid.NewString(), index
		return res, err
	}

	batch := t.table.BeginBatch()
	res, err := t.agent.PlayEpisode(ctx, e, batch, rng, opts)
	res.ID, res.Index = uuid.NewString(), index
	if err != nil {
		batch.Discard()
		return res, err
	}
	if err := batch.Commit(ctx); err != nil {
		return res, fmt.Errorf("commit episode %s: %w", res.ID, err)
	}
	return res, nil
}
