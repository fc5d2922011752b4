package states

import (
	"testing"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allAlive(core.Team) bool { return true }

func TestGamePhase(t *testing.T) {
	assert.Equal(t, "Running", PhaseRunning.String())
	assert.Equal(t, "Ended", PhaseEnded.String())
	assert.Equal(t, "Unknown(7)", GamePhase(7).String())

	assert.True(t, PhaseRunning.CanReceiveActions())
	assert.False(t, PhaseEnded.CanReceiveActions())
	assert.True(t, PhaseEnded.IsTerminal())

	assert.True(t, PhaseRunning.CanTransitionTo(PhaseEnded))
	assert.False(t, PhaseRunning.CanTransitionTo(PhaseRunning))
	assert.True(t, PhaseEnded.CanTransitionTo(PhaseRunning))
	assert.False(t, GamePhase(7).CanTransitionTo(PhaseRunning))
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"single", PolicySingle, false},
		{"", PolicySingle, false},
		{"round_robin", PolicyRoundRobin, false},
		{"free_for_all", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePolicy(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownPolicy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
		})
	}
}

func TestRoundRobinPolicy(t *testing.T) {
	order := []core.Team{core.TeamBlue, core.TeamRed, core.TeamOrange, core.TeamPurple}
	p := RoundRobinPolicy{}

	assert.Equal(t, core.TeamRed, p.Next(core.TeamBlue, order, allAlive))
	assert.Equal(t, core.TeamBlue, p.Next(core.TeamPurple, order, allAlive), "wraps around")

	redOut := func(t core.Team) bool { return t != core.TeamRed }
	assert.Equal(t, core.TeamOrange, p.Next(core.TeamBlue, order, redOut), "skips eliminated teams")

	onlyBlue := func(t core.Team) bool { return t == core.TeamBlue }
	assert.Equal(t, core.TeamBlue, p.Next(core.TeamBlue, order, onlyBlue))
}

func TestStateMachine_SingleNeverRotates(t *testing.T) {
	sm, err := NewStateMachine(NewGameContext("g", zerolog.Nop()), core.Teams, SinglePolicy{}, nil)
	require.NoError(t, err)

	for round := 1; round < 5; round++ {
		assert.Equal(t, core.TeamBlue, sm.Rotate(allAlive, round, "units exhausted"))
	}
	assert.Empty(t, sm.History())
}

func TestStateMachine_RoundRobin(t *testing.T) {
	bus := events.NewEventBus(zerolog.Nop())
	var rotated []*events.TurnRotatedEvent
	bus.SubscribeFunc(events.TypeTurnRotated, func(e events.Event) {
		rotated = append(rotated, e.(*events.TurnRotatedEvent))
	})

	order := []core.Team{core.TeamBlue, core.TeamRed}
	sm, err := NewStateMachine(NewGameContext("g", zerolog.Nop()), order, RoundRobinPolicy{}, bus)
	require.NoError(t, err)
	assert.Equal(t, core.TeamBlue, sm.ActiveTeam())

	assert.Equal(t, core.TeamRed, sm.Rotate(allAlive, 1, "units exhausted"))
	assert.Equal(t, core.TeamBlue, sm.Rotate(allAlive, 2, "units exhausted"))

	history := sm.History()
	require.Len(t, history, 2)
	assert.Equal(t, core.TeamBlue, history[0].From)
	assert.Equal(t, core.TeamRed, history[0].To)
	assert.Equal(t, 2, history[1].Round)

	require.Len(t, rotated, 2)
	assert.Equal(t, "g", rotated[0].GameID())
	assert.Equal(t, core.TeamRed, rotated[0].To)

	// history is a copy
	history[0].Reason = "changed"
	assert.Equal(t, "units exhausted", sm.History()[0].Reason)

	sm.Rotate(allAlive, 3, "units exhausted")
	sm.Reset()
	assert.Equal(t, core.TeamBlue, sm.ActiveTeam())
	assert.Empty(t, sm.History())
}

func TestStateMachine_Phases(t *testing.T) {
	sm, err := NewStateMachine(NewGameContext("g", zerolog.Nop()), core.Teams, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, PolicySingle, sm.Policy().Name())

	assert.Equal(t, PhaseRunning, sm.Phase())
	require.NoError(t, sm.End("B won"))
	assert.Equal(t, PhaseEnded, sm.Phase())
	assert.ErrorIs(t, sm.End("again"), ErrInvalidTransition)

	sm.Reset()
	assert.Equal(t, PhaseRunning, sm.Phase())
}

func TestNewStateMachine_NoTeams(t *testing.T) {
	_, err := NewStateMachine(NewGameContext("g", zerolog.Nop()), nil, SinglePolicy{}, nil)
	assert.ErrorIs(t, err, ErrNoTeams)
}
