package mapgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
	"github.com/rs/zerolog"
)

// ErrInvalidLayout is returned when a layout cannot be turned into a board
var ErrInvalidLayout = errors.New("invalid board layout")

// DefaultHeight is the row count of every shipped level
const DefaultHeight = 9

// MapConfig holds the layout and starting units for board construction
type MapConfig struct {
	// Width is the number of cells in an odd (long) row. Zero falls back to
	// the legacy rule: one past the index of the first orange marker.
	Width        int
	Height       int
	Cells        string // one marker per cell, row by row, blocked cells included
	TeamUnits    int
	NeutralUnits int
}

// DefaultMapConfig returns the stock unit counts for the given layout
func DefaultMapConfig(cells string, width int) MapConfig {
	return MapConfig{
		Width:        width,
		Height:       DefaultHeight,
		Cells:        cells,
		TeamUnits:    2,
		NeutralUnits: 1,
	}
}

// LegacyWidth derives the width from the first orange marker
func LegacyWidth(cells string) int {
	return strings.IndexByte(cells, byte(core.TeamOrange)) + 1
}

// Generator builds boards on the doubled-offset hex grid. Long rows hold
// Width cells and short rows Width-1; short rows are shifted half a column.
type Generator struct {
	config MapConfig
	logger zerolog.Logger
}

// NewGenerator creates a new board generator
func NewGenerator(config MapConfig, logger zerolog.Logger) *Generator {
	return &Generator{
		config: config,
		logger: logger.With().Str("component", "MapGenerator").Logger(),
	}
}

// Width returns the effective width, resolving the legacy fallback
func (g *Generator) Width() int {
	if g.config.Width > 0 {
		return g.config.Width
	}
	return LegacyWidth(g.config.Cells)
}

// GenerateMap lays the cells out row by row, top row first
func (g *Generator) GenerateMap() (*core.Board, error) {
	w := g.Width()
	h := g.config.Height
	if h <= 0 {
		h = DefaultHeight
	}
	if w <= 0 {
		return nil, fmt.Errorf("%w: width could not be determined", ErrInvalidLayout)
	}
	if len(g.config.Cells) == 0 {
		return nil, fmt.Errorf("%w: no cells", ErrInvalidLayout)
	}
	if want := expectedCells(w, h); want != len(g.config.Cells) {
		g.logger.Warn().
			Int("width", w).
			Int("height", h).
			Int("expected_cells", want).
			Int("actual_cells", len(g.config.Cells)).
			Msg("Layout cell count does not match its dimensions")
	}

	oddStart := -(w / 2) * core.ColumnStep
	evenStart := oddStart + core.HalfColumn
	rowSet := 2*w - 1

	board := core.NewBoard()
	x, y := oddStart, (h/2)*core.RowStep

	for i := 0; i < len(g.config.Cells); i++ {
		marker := g.config.Cells[i]
		if marker != core.MarkerBlocked {
			if err := g.place(board, marker, x, y); err != nil {
				return nil, err
			}
		}

		pos := (i + 1) % rowSet
		longRow := pos != 0 && pos <= w
		if (longRow && pos != w) || (!longRow && pos != 0) {
			x += core.ColumnStep
			continue
		}
		y -= core.RowStep
		if longRow {
			x = evenStart
		} else {
			x = oddStart
		}
	}

	g.logger.Debug().
		Int("width", w).
		Int("height", h).
		Int("tiles", board.Len()).
		Msg("Board generated")
	return board, nil
}

func (g *Generator) place(board *core.Board, marker byte, x, y int) error {
	team, err := core.ParseTeam(marker)
	if err != nil {
		return fmt.Errorf("%w: marker %q at (%d,%d): %w", ErrInvalidLayout, marker, x, y, err)
	}
	units := g.config.TeamUnits
	if team == core.TeamNeutral {
		units = g.config.NeutralUnits
	}
	return board.Add(&core.Tile{Team: team, Pos: core.NewCoordinate(x, y), Units: units})
}

func expectedCells(w, h int) int {
	long := (h + 1) / 2
	return long*w + (h-long)*(w-1)
}
