package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Doubled-offset hex geometry. Same-row neighbors are 12 apart; a row is
// 9 units tall and shifted 6 units sideways from the row above.
const (
	ColumnStep = 12
	HalfColumn = 6
	RowStep    = 9
)

// Coordinate represents a tile position on the doubled-offset hex grid
type Coordinate struct {
	X, Y int
}

// NewCoordinate creates a new coordinate with the given x and y values
func NewCoordinate(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// Key returns the "x,y" lookup key used by boards and state keys
func (c Coordinate) Key() string {
	return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y)
}

// ParseCoordinateKey parses an "x,y" key back into a coordinate
func ParseCoordinateKey(key string) (Coordinate, error) {
	xs, ys, ok := strings.Cut(key, ",")
	if !ok {
		return Coordinate{}, fmt.Errorf("coordinate key %q: %w", key, ErrMalformedCoordinate)
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate key %q: %w", key, ErrMalformedCoordinate)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return Coordinate{}, fmt.Errorf("coordinate key %q: %w", key, ErrMalformedCoordinate)
	}
	return Coordinate{X: x, Y: y}, nil
}

// Add returns a new coordinate that is the sum of this coordinate and another
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{X: c.X + other.X, Y: c.Y + other.Y}
}

// Sub returns a new coordinate that is the difference between this coordinate and another
func (c Coordinate) Sub(other Coordinate) Coordinate {
	return Coordinate{X: c.X - other.X, Y: c.Y - other.Y}
}

// ReflectX mirrors the coordinate across the vertical axis
func (c Coordinate) ReflectX() Coordinate { return Coordinate{X: -c.X, Y: c.Y} }

// ReflectY mirrors the coordinate across the horizontal axis
func (c Coordinate) ReflectY() Coordinate { return Coordinate{X: c.X, Y: -c.Y} }

// IsAdjacentTo checks if this coordinate is one hex step away from another
func (c Coordinate) IsAdjacentTo(other Coordinate) bool {
	_, ok := c.DirectionTo(other)
	return ok
}

// Neighbors returns the six candidate neighbor coordinates in direction order.
// Whether a neighbor exists is a board question, see Board.Neighbors.
func (c Coordinate) Neighbors() []Coordinate {
	out := make([]Coordinate, 0, len(Directions))
	for _, d := range Directions {
		out = append(out, c.Move(d))
	}
	return out
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Direction is one of the six hex directions
type Direction int

const (
	NorthEast Direction = iota
	NorthWest
	SouthEast
	SouthWest
	East
	West
)

// Directions lists every direction in neighbor enumeration order
var Directions = []Direction{NorthEast, NorthWest, SouthEast, SouthWest, East, West}

// DirectionVectors provides coordinate offsets for each direction
var DirectionVectors = map[Direction]Coordinate{
	NorthEast: {X: HalfColumn, Y: RowStep},
	NorthWest: {X: -HalfColumn, Y: RowStep},
	SouthEast: {X: HalfColumn, Y: -RowStep},
	SouthWest: {X: -HalfColumn, Y: -RowStep},
	East:      {X: ColumnStep, Y: 0},
	West:      {X: -ColumnStep, Y: 0},
}

func (d Direction) String() string {
	switch d {
	case NorthEast:
		return "NE"
	case NorthWest:
		return "NW"
	case SouthEast:
		return "SE"
	case SouthWest:
		return "SW"
	case East:
		return "E"
	case West:
		return "W"
	default:
		return "?"
	}
}

// Move returns a new coordinate moved one step in the given direction
func (c Coordinate) Move(direction Direction) Coordinate {
	if offset, ok := DirectionVectors[direction]; ok {
		return c.Add(offset)
	}
	return c
}

// DirectionTo returns the direction from this coordinate to an adjacent one.
// ok is false if the coordinates are not adjacent.
func (c Coordinate) DirectionTo(other Coordinate) (Direction, bool) {
	delta := other.Sub(c)
	for _, d := range Directions {
		if DirectionVectors[d] == delta {
			return d, true
		}
	}
	return -1, false
}
