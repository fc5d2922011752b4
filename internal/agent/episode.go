package agent

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/cespare/xxhash"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/qtable"
)

// EpisodeOptions controls how one episode is played
type EpisodeOptions struct {
	MaxSteps int // 0 means no cap
	Explore  bool
	Learn    bool
}

// EpisodeResult summarizes one finished episode
type EpisodeResult struct {
	ID          string
	Index       int
	Winner      core.Team
	HasWinner   bool
	Eliminated  bool // trained team lost everything without a winner
	Truncated   bool // stopped by the step cap or a stalled board
	Steps       int
	Rounds      int
	Updates     int
	TotalReward float64
}

// EpisodeSeed derives the random seed of one episode from the run seed,
// so results do not depend on which worker played it.
func EpisodeSeed(seed int64, mode string, episode int) int64 {
	return int64(xxhash.Sum64String(fmt.Sprintf("%d:%s:%d", seed, mode, episode)))
}

// PlayEpisode plays e from its current position until it is done, the
// step cap is reached, or the active team has no move.
func (a *Agent) PlayEpisode(ctx context.Context, e *game.Engine, vt qtable.ValueTable, rng *rand.Rand, opts EpisodeOptions) (EpisodeResult, error) {
	res := EpisodeResult{ID: e.GameID()}
	var lastState string // board the trained team last moved from

	for !e.Done() {
		if opts.MaxSteps > 0 && res.Steps >= opts.MaxSteps {
			res.Truncated = true
			break
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		step, err := a.Play(ctx, e, vt, rng, opts.Explore, opts.Learn)
		if errors.Is(err, ErrNoActions) {
			res.Truncated = true
			break
		}
		if err != nil {
			return res, err
		}
		res.Steps++
		if step.Team == e.TrainedTeam() {
			lastState = step.State
			res.TotalReward += step.Reward
			if step.Learned {
				res.Updates++
			}
			continue
		}

		// Another team ended the game: the trained team's last move led here.
		if e.Done() {
			res.TotalReward += step.Reward
			if opts.Learn && lastState != "" {
				if _, err := a.learner.Update(ctx, vt, lastState, step.Reward, nil); err != nil {
					return res, err
				}
				res.Updates++
			}
		}
	}

	res.Winner, res.HasWinner = e.Winner()
	res.Eliminated = !res.HasWinner && e.Done()
	res.Rounds = e.Round()
	return res, nil
}
