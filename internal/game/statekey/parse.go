package statekey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
)

var ErrMalformedKey = errors.New("malformed state key")

// Descriptor is one segment of a state key, T(x,y):L.
// The zero Descriptor is the empty segment of a tile without neighbors.
type Descriptor struct {
	Team core.Team
	Pos  core.Coordinate
	Lean int
}

// IsBlank reports whether d is an empty segment
func (d Descriptor) IsBlank() bool { return d.Team == core.TeamNone }

func (d Descriptor) String() string {
	if d.IsBlank() {
		return ""
	}
	var sb strings.Builder
	sb.WriteByte(byte(d.Team))
	sb.WriteByte('(')
	sb.WriteString(d.Pos.Key())
	sb.WriteString("):")
	sb.WriteString(strconv.Itoa(d.Lean))
	return sb.String()
}

// Parse splits key into descriptors. Format(Parse(key)) == key for every
// key Parse accepts.
func Parse(key string) ([]Descriptor, error) {
	segments := strings.Split(key, Separator)
	out := make([]Descriptor, len(segments))
	for i, seg := range segments {
		d, err := parseSegment(seg)
		if err != nil {
			return nil, fmt.Errorf("segment %d %q: %w", i, seg, err)
		}
		out[i] = d
	}
	return out, nil
}

// Format joins descriptors back into a key
func Format(descriptors []Descriptor) string {
	segments := make([]string, len(descriptors))
	for i, d := range descriptors {
		segments[i] = d.String()
	}
	return strings.Join(segments, Separator)
}

func parseSegment(seg string) (Descriptor, error) {
	if seg == "" {
		return Descriptor{}, nil
	}
	team, err := core.ParseTeam(seg[0])
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %w", ErrMalformedKey, err)
	}

	rest, ok := strings.CutPrefix(seg[1:], "(")
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: missing '('", ErrMalformedKey)
	}
	coords, lean, ok := strings.Cut(rest, "):")
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: missing ')' or ':'", ErrMalformedKey)
	}
	pos, err := core.ParseCoordinateKey(coords)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %w", ErrMalformedKey, err)
	}

	l, err := strconv.Atoi(lean)
	if err != nil || l < -1 || l > 1 {
		return Descriptor{}, fmt.Errorf("%w: lean %q", ErrMalformedKey, lean)
	}

	d := Descriptor{Team: team, Pos: pos, Lean: l}
	// Reject spellings like "+1" or "007" that would not format back identically.
	if d.String() != seg {
		return Descriptor{}, fmt.Errorf("%w: non-canonical segment", ErrMalformedKey)
	}
	return d, nil
}
