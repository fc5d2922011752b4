package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAction       = errors.New("invalid action")
	ErrTileNotFound        = errors.New("tile not on board")
	ErrNotAdjacent         = errors.New("tiles are not adjacent")
	ErrNotOwned            = errors.New("tile not owned by team")
	ErrNoUnits             = errors.New("source tile has no units")
	ErrCoordinateCollision = errors.New("coordinate already occupied")
	ErrMalformedCoordinate = errors.New("malformed coordinate key")
	ErrUnknownTeam         = errors.New("unknown team marker")
	ErrGameOver            = errors.New("game is over")
)

// WrapActionError attaches the move to err. The result matches both
// ErrInvalidAction and err with errors.Is.
func WrapActionError(action Action, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("move from %s to %s: %w: %w", action.From, action.To, ErrInvalidAction, err)
}

// WrapCoordinateError attaches a coordinate to err
func WrapCoordinateError(c Coordinate, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("tile %s: %w", c, err)
}
