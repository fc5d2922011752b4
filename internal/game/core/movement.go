package core

// Outcome classifies what a move did to its target
type Outcome int

const (
	OutcomeMerged   Outcome = iota // same team, units added
	OutcomeRepelled                // defender survived, possibly with 0 units
	OutcomeCaptured                // defender eliminated, target changes team
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMerged:
		return "merged"
	case OutcomeRepelled:
		return "repelled"
	case OutcomeCaptured:
		return "captured"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// MoveResult describes an applied move
type MoveResult struct {
	Outcome       Outcome
	MovedUnits    int
	PreviousTeam  Team
	PreviousUnits int
}

// Resolve moves all of source's units onto target using the subtractive
// single-exchange rule. The source is always left with 0 units; the target
// only changes team when the attacker outnumbers it.
func Resolve(source, target *Tile) MoveResult {
	res := MoveResult{
		MovedUnits:    source.Units,
		PreviousTeam:  target.Team,
		PreviousUnits: target.Units,
	}

	if target.Team == source.Team {
		target.Units += source.Units
		source.Units = 0
		res.Outcome = OutcomeMerged
		return res
	}

	leftover := target.Units - source.Units
	source.Units = 0
	if leftover >= 0 {
		target.Units = leftover
		res.Outcome = OutcomeRepelled
		return res
	}

	target.Team = source.Team
	target.Units = -leftover
	res.Outcome = OutcomeCaptured
	return res
}

// ApplyMove validates the action's geometry and resolves it on the board.
// Ownership is not checked here; see Action.Validate.
func ApplyMove(b *Board, action Action) (MoveResult, error) {
	if err := action.Validate(b, TeamNone); err != nil {
		return MoveResult{}, err
	}
	return Resolve(b.Tile(action.From), b.Tile(action.To)), nil
}

// Simulate resolves a move between clones of source and target and returns
// the resulting target. Neither input is modified.
func Simulate(source, target *Tile) *Tile {
	t := target.Clone()
	Resolve(source.Clone(), t)
	return t
}
