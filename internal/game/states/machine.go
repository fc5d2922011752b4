package states

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/events"
)

var (
	ErrNoTeams           = errors.New("turn order has no teams")
	ErrInvalidTransition = errors.New("invalid phase transition")
)

// Transition records one change of active team
type Transition struct {
	From      core.Team
	To        core.Team
	Round     int
	Timestamp time.Time
	Reason    string
}

// StateMachine tracks the game phase and which team is active. The active
// team only changes through Rotate, which defers to the rotation policy.
type StateMachine struct {
	mu             sync.RWMutex
	phase          GamePhase
	active         core.Team
	order          []core.Team
	policy         RotationPolicy
	context        *GameContext
	history        []Transition
	maxHistorySize int
	eventBus       events.Publisher
}

// NewStateMachine creates a machine with order[0] active. eventBus may be nil.
func NewStateMachine(ctx *GameContext, order []core.Team, policy RotationPolicy, eventBus events.Publisher) (*StateMachine, error) {
	if len(order) == 0 {
		return nil, ErrNoTeams
	}
	if policy == nil {
		policy = SinglePolicy{}
	}
	return &StateMachine{
		phase:          PhaseRunning,
		active:         order[0],
		order:          append([]core.Team(nil), order...),
		policy:         policy,
		context:        ctx,
		history:        make([]Transition, 0, 16),
		maxHistorySize: 1000,
		eventBus:       eventBus,
	}, nil
}

func (sm *StateMachine) Phase() GamePhase {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.phase
}

func (sm *StateMachine) ActiveTeam() core.Team {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.active
}

// Policy returns the rotation policy in use
func (sm *StateMachine) Policy() RotationPolicy {
	return sm.policy
}

// Rotate asks the policy for the next team and makes it active. It returns
// the team that is active afterwards.
func (sm *StateMachine) Rotate(alive func(core.Team) bool, round int, reason string) core.Team {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	next := sm.policy.Next(sm.active, sm.order, alive)
	if next == sm.active {
		return next
	}

	transition := Transition{
		From:      sm.active,
		To:        next,
		Round:     round,
		Timestamp: time.Now(),
		Reason:    reason,
	}
	sm.addToHistory(transition)
	sm.active = next

	if sm.eventBus != nil {
		sm.eventBus.Publish(events.NewTurnRotatedEvent(sm.context.GameID, transition.From, next, round, reason))
	}
	sm.context.Logger.Debug().
		Str("from", transition.From.String()).
		Str("to", next.String()).
		Int("round", round).
		Str("reason", reason).
		Msg("Turn rotated")

	return next
}

// End moves a running game to PhaseEnded
func (sm *StateMachine) End(reason string) error {
	return sm.transitionTo(PhaseEnded, reason)
}

func (sm *StateMachine) transitionTo(target GamePhase, reason string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.phase.CanTransitionTo(target) {
		return fmt.Errorf("%w: from %s to %s", ErrInvalidTransition, sm.phase, target)
	}
	previous := sm.phase
	sm.phase = target

	sm.context.Logger.Debug().
		Str("from_phase", previous.String()).
		Str("to_phase", target.String()).
		Str("reason", reason).
		Msg("State transition completed")
	return nil
}

// addToHistory adds a transition to the history, maintaining max size
func (sm *StateMachine) addToHistory(transition Transition) {
	sm.history = append(sm.history, transition)
	if len(sm.history) > sm.maxHistorySize {
		sm.history = sm.history[len(sm.history)-sm.maxHistorySize:]
	}
}

// History returns a copy of the rotation history
func (sm *StateMachine) History() []Transition {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	history := make([]Transition, len(sm.history))
	copy(history, sm.history)
	return history
}

// Reset makes the first team active again, clears history and resumes play
func (sm *StateMachine) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.history = sm.history[:0]
	sm.active = sm.order[0]
	sm.phase = PhaseRunning
}
