package game

import (
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/levels"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/rules"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/statekey"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/states"
	"github.com/rs/zerolog"
)

// Engine runs one game of Hexus. It is not safe for concurrent use; run
// parallel games on separate engines.
type Engine struct {
	gameID  string
	level   levels.Level
	initial *core.Board
	board   *core.Board
	trained core.Team

	roundStartingUnits int
	round              int // completed rounds
	budget             int // units the active team held when its round began
	moves              int
	winner             core.Team
	hasWinner          bool

	rewards      experience.RewardConfig
	legalMoves   *rules.LegalMoveCalculator
	winChecker   *rules.WinConditionChecker
	replenisher  *ReplenishmentManager
	stateMachine *states.StateMachine
	eventBus     *events.EventBus
	logger       zerolog.Logger
}

// Public accessors
func (e *Engine) GameID() string             { return e.gameID }
func (e *Engine) Level() levels.Level        { return e.level }
func (e *Engine) Board() *core.Board         { return e.board }
func (e *Engine) TrainedTeam() core.Team     { return e.trained }
func (e *Engine) ActiveTeam() core.Team      { return e.stateMachine.ActiveTeam() }
func (e *Engine) Round() int                 { return e.round }
func (e *Engine) Budget() int                { return e.budget }
func (e *Engine) Moves() int                 { return e.moves }
func (e *Engine) EventBus() *events.EventBus { return e.eventBus }
func (e *Engine) IsGameOver() bool           { return e.stateMachine.Phase().IsTerminal() }

// Winner returns the winning team once the game is over
func (e *Engine) Winner() (core.Team, bool) { return e.winner, e.hasWinner }

// Done reports whether the episode has reached a terminal state: a team
// has won or the trained team holds nothing.
func (e *Engine) Done() bool {
	return e.hasWinner || experience.IsEliminated(e.board, e.trained)
}

// StateKey encodes the current board
func (e *Engine) StateKey() string {
	return statekey.Encode(e.board)
}

// EnumerateActions returns the active team's legal actions in board order,
// each paired with the key of the board as it is now, before any move.
func (e *Engine) EnumerateActions() ([]string, []core.Action) {
	actions := e.legalMoves.LegalMoves(e.board, e.stateMachine.ActiveTeam())
	if len(actions) == 0 {
		return nil, nil
	}
	key := statekey.Encode(e.board)
	keys := make([]string, len(actions))
	for i := range keys {
		keys[i] = key
	}
	return keys, actions
}

// Afterstate returns the key the board would have after action, without
// applying it. The action must be legal for the active team.
func (e *Engine) Afterstate(action core.Action) (string, error) {
	if err := action.Validate(e.board, e.stateMachine.ActiveTeam()); err != nil {
		return "", err
	}
	preview := e.board.Clone()
	core.Resolve(preview.Tile(action.From), preview.Tile(action.To))
	return statekey.Encode(preview), nil
}

// ApplyAction moves the active team's units from action.From onto
// action.To. When the team has no units left the round advances. It
// returns the winner, if the move decided the game.
func (e *Engine) ApplyAction(action core.Action) (core.Team, bool, error) {
	if !e.stateMachine.Phase().CanReceiveActions() {
		return e.winner, e.hasWinner, core.ErrGameOver
	}

	team := e.stateMachine.ActiveTeam()
	if err := action.Validate(e.board, team); err != nil {
		e.logger.Debug().Err(err).Str("team", team.String()).Msg("Rejected action")
		return core.TeamNone, false, err
	}

	target := e.board.Tile(action.To)
	res := core.Resolve(e.board.Tile(action.From), target)
	e.moves++
	e.eventBus.Publish(events.NewMoveAppliedEvent(e.gameID, team, action, res, target))

	e.logger.Debug().
		Str("team", team.String()).
		Str("action", action.String()).
		Str("outcome", res.Outcome.String()).
		Float64("budget_spent", e.BudgetSpent()).
		Msg("Applied action")

	if winner, ok := e.winChecker.Winner(e.board); ok {
		e.finish(winner)
		return winner, true, nil
	}

	if e.board.TeamUnits(team) == 0 {
		e.advanceRound(team)
	}
	return core.TeamNone, false, nil
}

// Reward returns the learning signal for the trained team
func (e *Engine) Reward(winner core.Team, hasWinner bool) float64 {
	return experience.CalculateReward(e.board, winner, hasWinner, e.trained, e.rewards)
}

// BudgetSpent returns the share of the round budget the active team has
// committed, 0 when there is no budget.
func (e *Engine) BudgetSpent() float64 {
	if e.budget == 0 {
		return 0
	}
	left := e.board.TeamUnits(e.stateMachine.ActiveTeam())
	return 1 - float64(left)/float64(e.budget)
}

// Reset restores the level's starting board and counters
func (e *Engine) Reset() {
	e.board = e.initial.Clone()
	e.round = 0
	e.budget = e.roundStartingUnits
	e.moves = 0
	e.winner = core.TeamNone
	e.hasWinner = false
	e.stateMachine.Reset()

	e.eventBus.Publish(events.NewGameResetEvent(e.gameID, e.level.Name, e.board.Len()))
	e.logger.Debug().Str("board_level", e.level.Name).Msg("Game reset")
}

// advanceRound replenishes the exhausted team and lets the rotation policy
// pick who moves next. A team whose units were all taken while it waited
// is replenished as its turn begins.
func (e *Engine) advanceRound(exhausted core.Team) {
	e.round++
	e.budget = e.replenisher.Replenish(e.board, exhausted, e.round)

	next := e.stateMachine.Rotate(e.isAlive, e.round, "units exhausted")
	if next == exhausted {
		return
	}
	if e.board.TeamUnits(next) == 0 {
		e.budget = e.replenisher.Replenish(e.board, next, e.round)
		return
	}
	e.budget = e.board.TeamUnits(next)
}

func (e *Engine) isAlive(team core.Team) bool {
	return len(e.board.TeamTiles(team)) > 0
}

func (e *Engine) finish(winner core.Team) {
	e.winner = winner
	e.hasWinner = true
	if err := e.stateMachine.End(winner.String() + " holds every team tile"); err != nil {
		e.logger.Error().Err(err).Msg("Failed to end game")
	}
	e.eventBus.Publish(events.NewGameWonEvent(e.gameID, winner, e.round, e.moves))
	e.logger.Info().
		Str("winner", winner.String()).
		Int("rounds", e.round).
		Int("moves", e.moves).
		Msg("Game over")
}
