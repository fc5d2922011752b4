package agent

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/qtable"
	"github.com/rs/zerolog"
)

var ErrNoActions = errors.New("no legal actions")

// Agent plays every team of an engine and learns values for the trained one
type Agent struct {
	learner  *Learner
	selector FrontierSelector
	epsilon  float64
	logger   zerolog.Logger
}

// New creates an agent from cfg
func New(cfg Config, logger zerolog.Logger) *Agent {
	return &Agent{
		learner: NewLearner(cfg.LearningRate, cfg.Discount),
		epsilon: cfg.Epsilon,
		logger:  logger.With().Str("component", "Agent").Logger(),
	}
}

// Step is the record of one applied move
type Step struct {
	Team      core.Team
	Action    core.Action
	State     string
	Winner    core.Team
	HasWinner bool
	Reward    float64
	Value     float64 // updated value of State, when Learned
	Learned   bool
}

// Choose picks a move for the engine's active team. With explore set the
// trained team uses the frontier heuristic with probability epsilon and
// other teams move at random; otherwise the move
// with the best afterstate value is taken, ties broken at random. The
// trained team maximizes value and everyone else minimizes it.
func (a *Agent) Choose(ctx context.Context, e *game.Engine, vt qtable.ValueTable, rng *rand.Rand, explore bool) (core.Action, error) {
	_, actions := e.EnumerateActions()
	if len(actions) == 0 {
		return core.Action{}, ErrNoActions
	}
	team := e.ActiveTeam()

	if explore && rng.Float64() < a.epsilon {
		if team != e.TrainedTeam() {
			return actions[rng.Intn(len(actions))], nil
		}
		return a.selector.Select(e.Board(), team, actions, rng), nil
	}

	sign := 1.0
	if team != e.TrainedTeam() {
		sign = -1
	}

	var best []core.Action
	bestScore := 0.0
	for _, action := range actions {
		key, err := e.Afterstate(action)
		if err != nil {
			return core.Action{}, err
		}
		v, err := Value(ctx, vt, key)
		if err != nil {
			return core.Action{}, err
		}
		score := sign * v
		switch {
		case len(best) == 0 || score > bestScore:
			best = append(best[:0], action)
			bestScore = score
		case score == bestScore:
			best = append(best, action)
		}
	}
	return best[rng.Intn(len(best))], nil
}

// Play chooses and applies one move. With learn set, a move by the trained
// team updates the value of the board it was made from.
func (a *Agent) Play(ctx context.Context, e *game.Engine, vt qtable.ValueTable, rng *rand.Rand, explore, learn bool) (Step, error) {
	step := Step{Team: e.ActiveTeam(), State: e.StateKey()}

	action, err := a.Choose(ctx, e, vt, rng, explore)
	if err != nil {
		return step, err
	}
	step.Action = action

	step.Winner, step.HasWinner, err = e.ApplyAction(action)
	if err != nil {
		return step, fmt.Errorf("apply %s: %w", action, err)
	}
	step.Reward = e.Reward(step.Winner, step.HasWinner)

	if !learn || step.Team != e.TrainedTeam() {
		return step, nil
	}

	var next []string
	if !e.Done() {
		next, _ = e.EnumerateActions()
		if len(next) == 0 {
			next = []string{e.StateKey()}
		}
	}
	step.Value, err = a.learner.Update(ctx, vt, step.State, step.Reward, next)
	if err != nil {
		return step, err
	}
	step.Learned = true

	a.logger.Trace().
		Str("team", step.Team.String()).
		Str("action", action.String()).
		Float64("reward", step.Reward).
		Float64("value", step.Value).
		Msg("Updated value")
	return step, nil
}
