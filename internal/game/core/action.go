package core

// Action moves every unit on From onto the adjacent tile To.
type Action struct {
	From Coordinate
	To   Coordinate
}

// NewAction builds an action from two tiles
func NewAction(from, to *Tile) Action {
	return Action{From: from.Pos, To: to.Pos}
}

func (a Action) String() string {
	return a.From.String() + "->" + a.To.String()
}

// Validate checks that the action can be applied on b by team. Pass
// TeamNone to skip the ownership and unit checks.
func (a Action) Validate(b *Board, team Team) error {
	src := b.Tile(a.From)
	if src == nil {
		return WrapActionError(a, WrapCoordinateError(a.From, ErrTileNotFound))
	}
	if b.Tile(a.To) == nil {
		return WrapActionError(a, WrapCoordinateError(a.To, ErrTileNotFound))
	}
	if !a.From.IsAdjacentTo(a.To) {
		return WrapActionError(a, ErrNotAdjacent)
	}
	if team == TeamNone {
		return nil
	}
	if src.Team != team {
		return WrapActionError(a, ErrNotOwned)
	}
	if src.Units <= 0 {
		return WrapActionError(a, ErrNoUnits)
	}
	return nil
}
