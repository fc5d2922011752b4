package events

import (
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
)

// Event type constants
const (
	TypeMoveApplied   = "move.applied"
	TypeRoundAdvanced = "round.advanced"
	TypeTurnRotated   = "turn.rotated"
	TypeGameWon       = "game.won"
	TypeGameReset     = "game.reset"
)

// MoveAppliedEvent is published after a move has been resolved on the board
type MoveAppliedEvent struct {
	BaseEvent
	Team        core.Team       `json:"team"`
	From        core.Coordinate `json:"from"`
	To          core.Coordinate `json:"to"`
	Outcome     core.Outcome    `json:"outcome"`
	MovedUnits  int             `json:"moved_units"`
	TargetTeam  core.Team       `json:"target_team"`
	TargetUnits int             `json:"target_units"`
}

func NewMoveAppliedEvent(gameID string, team core.Team, action core.Action, res core.MoveResult, target *core.Tile) *MoveAppliedEvent {
	return &MoveAppliedEvent{
		BaseEvent:   newBase(TypeMoveApplied, gameID),
		Team:        team,
		From:        action.From,
		To:          action.To,
		Outcome:     res.Outcome,
		MovedUnits:  res.MovedUnits,
		TargetTeam:  target.Team,
		TargetUnits: target.Units,
	}
}

// RoundAdvancedEvent is published when a team has spent its units and the
// round is replenished
type RoundAdvancedEvent struct {
	BaseEvent
	Team   core.Team `json:"team"`
	Round  int       `json:"round"`
	Budget int       `json:"budget"`
	Tiles  int       `json:"tiles"`
}

func NewRoundAdvancedEvent(gameID string, team core.Team, round, budget, tiles int) *RoundAdvancedEvent {
	return &RoundAdvancedEvent{
		BaseEvent: newBase(TypeRoundAdvanced, gameID),
		Team:      team,
		Round:     round,
		Budget:    budget,
		Tiles:     tiles,
	}
}

// TurnRotatedEvent is published when the active team changes
type TurnRotatedEvent struct {
	BaseEvent
	From   core.Team `json:"from"`
	To     core.Team `json:"to"`
	Round  int       `json:"round"`
	Reason string    `json:"reason"`
}

func NewTurnRotatedEvent(gameID string, from, to core.Team, round int, reason string) *TurnRotatedEvent {
	return &TurnRotatedEvent{
		BaseEvent: newBase(TypeTurnRotated, gameID),
		From:      from,
		To:        to,
		Round:     round,
		Reason:    reason,
	}
}

// GameWonEvent is published once, when a single team holds every non-neutral tile
type GameWonEvent struct {
	BaseEvent
	Winner core.Team `json:"winner"`
	Rounds int       `json:"rounds"`
	Moves  int       `json:"moves"`
}

func NewGameWonEvent(gameID string, winner core.Team, rounds, moves int) *GameWonEvent {
	return &GameWonEvent{
		BaseEvent: newBase(TypeGameWon, gameID),
		Winner:    winner,
		Rounds:    rounds,
		Moves:     moves,
	}
}

// GameResetEvent is published when the board is rebuilt from its level
type GameResetEvent struct {
	BaseEvent
	Level string `json:"level"`
	Tiles int    `json:"tiles"`
}

func NewGameResetEvent(gameID, level string, tiles int) *GameResetEvent {
	return &GameResetEvent{
		BaseEvent: newBase(TypeGameReset, gameID),
		Level:     level,
		Tiles:     tiles,
	}
}
