package states

import "fmt"

// GamePhase represents the current phase of a game
type GamePhase int

const (
	// PhaseRunning - moves are accepted
	PhaseRunning GamePhase = iota

	// PhaseEnded - a team has won; only a reset leaves this phase
	PhaseEnded
)

func (p GamePhase) String() string {
	switch p {
	case PhaseRunning:
		return "Running"
	case PhaseEnded:
		return "Ended"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if the phase represents a terminal state
func (p GamePhase) IsTerminal() bool {
	return p == PhaseEnded
}

// CanReceiveActions returns true if the game can process moves in this phase
func (p GamePhase) CanReceiveActions() bool {
	return p == PhaseRunning
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p GamePhase) AllowedTransitions() []GamePhase {
	switch p {
	case PhaseRunning:
		return []GamePhase{PhaseEnded}
	case PhaseEnded:
		return []GamePhase{PhaseRunning}
	default:
		return nil
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}
