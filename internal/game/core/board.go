package core

// Team identifies a board occupant by its single-letter marker.
type Team byte

const (
	TeamNone    Team = 0
	TeamBlue    Team = 'B'
	TeamRed     Team = 'R'
	TeamOrange  Team = 'O'
	TeamPurple  Team = 'P'
	TeamNeutral Team = 'U'

	// MarkerBlocked marks a non-playable cell in a level layout. It never becomes a tile.
	MarkerBlocked byte = 'X'
)

// Teams lists the four playing teams in their canonical order
var Teams = []Team{TeamBlue, TeamRed, TeamOrange, TeamPurple}

func (t Team) String() string {
	if t == TeamNone {
		return ""
	}
	return string(rune(t))
}

// MarshalText encodes the team as its marker letter
func (t Team) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// IsPlayer reports whether t is one of the four playing teams
func (t Team) IsPlayer() bool {
	switch t {
	case TeamBlue, TeamRed, TeamOrange, TeamPurple:
		return true
	}
	return false
}

// ParseTeam converts a marker letter to a Team. Neutral is accepted.
func ParseTeam(marker byte) (Team, error) {
	t := Team(marker)
	if t.IsPlayer() || t == TeamNeutral {
		return t, nil
	}
	return TeamNone, ErrUnknownTeam
}

// Tile represents a single playable cell.
// Units never go negative; a tile emptied of units keeps its team.
type Tile struct {
	Team  Team
	Pos   Coordinate
	Units int
}

func (t *Tile) IsNeutral() bool { return t.Team == TeamNeutral }

// Clone returns an independent copy of the tile
func (t *Tile) Clone() *Tile {
	c := *t
	return &c
}

// Board maps coordinates to playable tiles. Cells that are not playable are
// absent. order keeps construction order, which is the enumeration order for
// every board walk (state keys, legal moves).
type Board struct {
	tiles map[Coordinate]*Tile
	order []Coordinate
}

func NewBoard() *Board {
	return &Board{tiles: make(map[Coordinate]*Tile)}
}

// Add places a tile on the board. A second tile on the same coordinate is a
// corrupt layout and is rejected.
func (b *Board) Add(t *Tile) error {
	if _, exists := b.tiles[t.Pos]; exists {
		return WrapCoordinateError(t.Pos, ErrCoordinateCollision)
	}
	b.tiles[t.Pos] = t
	b.order = append(b.order, t.Pos)
	return nil
}

// Tile returns the tile at c, or nil if the cell is not on the board
func (b *Board) Tile(c Coordinate) *Tile {
	return b.tiles[c]
}

// TileByKey looks a tile up by its "x,y" key
func (b *Board) TileByKey(key string) *Tile {
	c, err := ParseCoordinateKey(key)
	if err != nil {
		return nil
	}
	return b.tiles[c]
}

// Len returns the number of playable tiles
func (b *Board) Len() int { return len(b.order) }

// Tiles returns every tile in enumeration order
func (b *Board) Tiles() []*Tile {
	out := make([]*Tile, 0, len(b.order))
	for _, c := range b.order {
		out = append(out, b.tiles[c])
	}
	return out
}

// TeamTiles returns the tiles owned by team in enumeration order
func (b *Board) TeamTiles(team Team) []*Tile {
	var out []*Tile
	for _, c := range b.order {
		if t := b.tiles[c]; t.Team == team {
			out = append(out, t)
		}
	}
	return out
}

// TeamUnits sums the units on every tile owned by team
func (b *Board) TeamUnits(team Team) int {
	total := 0
	for _, t := range b.tiles {
		if t.Team == team {
			total += t.Units
		}
	}
	return total
}

// Neighbors returns the occupied cells adjacent to c, in direction order
// NE, NW, SE, SW, E, W. It is computed from coordinates on every call.
func (b *Board) Neighbors(c Coordinate) []*Tile {
	var out []*Tile
	for _, d := range Directions {
		if t := b.tiles[c.Move(d)]; t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Clone deep copies the board
func (b *Board) Clone() *Board {
	nb := &Board{
		tiles: make(map[Coordinate]*Tile, len(b.tiles)),
		order: make([]Coordinate, len(b.order)),
	}
	copy(nb.order, b.order)
	for c, t := range b.tiles {
		nb.tiles[c] = t.Clone()
	}
	return nb
}
