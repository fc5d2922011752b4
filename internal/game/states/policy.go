package states

import (
	"errors"
	"fmt"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
)

var ErrUnknownPolicy = errors.New("unknown rotation policy")

// Policy names accepted by ParsePolicy
const (
	PolicySingle     = "single"
	PolicyRoundRobin = "round_robin"
)

// RotationPolicy chooses the team that acts after current has spent its
// units. alive reports whether a team still holds any tile.
type RotationPolicy interface {
	Name() string
	Next(current core.Team, order []core.Team, alive func(core.Team) bool) core.Team
}

// SinglePolicy keeps the same team active for the whole game
type SinglePolicy struct{}

func (SinglePolicy) Name() string { return PolicySingle }

func (SinglePolicy) Next(current core.Team, _ []core.Team, _ func(core.Team) bool) core.Team {
	return current
}

// RoundRobinPolicy hands the turn to the next team in order that still
// holds tiles. If no other team does, current keeps the turn.
type RoundRobinPolicy struct{}

func (RoundRobinPolicy) Name() string { return PolicyRoundRobin }

func (RoundRobinPolicy) Next(current core.Team, order []core.Team, alive func(core.Team) bool) core.Team {
	start := 0
	for i, t := range order {
		if t == current {
			start = i + 1
			break
		}
	}
	for i := 0; i < len(order); i++ {
		t := order[(start+i)%len(order)]
		if t != current && alive(t) {
			return t
		}
	}
	return current
}

// ParsePolicy returns the policy registered under name
func ParsePolicy(name string) (RotationPolicy, error) {
	switch name {
	case PolicySingle, "":
		return SinglePolicy{}, nil
	case PolicyRoundRobin:
		return RoundRobinPolicy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}
