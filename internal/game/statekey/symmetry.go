package statekey

import (
	"fmt"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
)

// Transform maps a key seen by Blue onto the equivalent key seen by another
// team. Each transform is its own inverse.
type Transform int

const (
	Identity Transform = iota
	ReflectX
	ReflectY
	ReflectBoth
)

// transforms is indexed by the team whose perspective is being derived
var transforms = map[core.Team]Transform{
	core.TeamBlue:   Identity,
	core.TeamOrange: ReflectX,
	core.TeamRed:    ReflectY,
	core.TeamPurple: ReflectBoth,
}

var relabel = map[Transform]map[core.Team]core.Team{
	Identity: {},
	ReflectX: {
		core.TeamBlue: core.TeamOrange, core.TeamOrange: core.TeamBlue,
		core.TeamRed: core.TeamPurple, core.TeamPurple: core.TeamRed,
	},
	ReflectY: {
		core.TeamBlue: core.TeamRed, core.TeamRed: core.TeamBlue,
		core.TeamOrange: core.TeamPurple, core.TeamPurple: core.TeamOrange,
	},
	ReflectBoth: {
		core.TeamBlue: core.TeamPurple, core.TeamPurple: core.TeamBlue,
		core.TeamRed: core.TeamOrange, core.TeamOrange: core.TeamRed,
	},
}

func (t Transform) String() string {
	switch t {
	case Identity:
		return "identity"
	case ReflectX:
		return "reflect-x"
	case ReflectY:
		return "reflect-y"
	case ReflectBoth:
		return "reflect-both"
	default:
		return fmt.Sprintf("Transform(%d)", int(t))
	}
}

// TransformFor returns the transform that derives team's perspective.
// Non-playing teams get Identity.
func TransformFor(team core.Team) Transform {
	return transforms[team]
}

// Team relabels a team letter. Neutral and unknown letters are unchanged.
func (t Transform) Team(team core.Team) core.Team {
	if mapped, ok := relabel[t][team]; ok {
		return mapped
	}
	return team
}

// Coordinate reflects c
func (t Transform) Coordinate(c core.Coordinate) core.Coordinate {
	switch t {
	case ReflectX:
		return c.ReflectX()
	case ReflectY:
		return c.ReflectY()
	case ReflectBoth:
		return c.ReflectX().ReflectY()
	default:
		return c
	}
}

// Apply transforms one descriptor. Blank segments stay blank.
func (t Transform) Apply(d Descriptor) Descriptor {
	if d.IsBlank() {
		return d
	}
	return Descriptor{Team: t.Team(d.Team), Pos: t.Coordinate(d.Pos), Lean: d.Lean}
}

// Perspective returns key as seen by team. Segment order is preserved.
// Applying the same team's perspective twice returns the original key.
func Perspective(key string, team core.Team) (string, error) {
	descriptors, err := Parse(key)
	if err != nil {
		return "", err
	}
	return Format(applyAll(TransformFor(team), descriptors)), nil
}

// Variant is one team's view of a key
type Variant struct {
	Team      core.Team
	Transform Transform
	Key       string
}

// Perspectives returns key under every playing team, Blue first.
// The key is parsed once.
func Perspectives(key string) ([]Variant, error) {
	descriptors, err := Parse(key)
	if err != nil {
		return nil, err
	}
	out := make([]Variant, 0, len(core.Teams))
	for _, team := range core.Teams {
		t := TransformFor(team)
		out = append(out, Variant{
			Team:      team,
			Transform: t,
			Key:       Format(applyAll(t, descriptors)),
		})
	}
	return out, nil
}

func applyAll(t Transform, descriptors []Descriptor) []Descriptor {
	out := make([]Descriptor, len(descriptors))
	for i, d := range descriptors {
		out[i] = t.Apply(d)
	}
	return out
}
