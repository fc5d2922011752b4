package game

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/HexusReinforcementLearning/internal/game/core"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorBlue   = "\033[34m"
	ColorYellow = "\033[33m"
	ColorPurple = "\033[35m"
	ColorGray   = "\033[90m"
)

var teamColors = map[core.Team]string{
	core.TeamBlue:    ColorBlue,
	core.TeamRed:     ColorRed,
	core.TeamOrange:  ColorYellow,
	core.TeamPurple:  ColorPurple,
	core.TeamNeutral: ColorGray,
}

// cellChars is the printed width of one column step (12 board units)
const cellChars = 4

// RenderBoard draws the board one row per line, top row first. Each tile
// prints as its team letter and unit count; counts above 99 print as "+".
func RenderBoard(board *core.Board, color bool) string {
	rows := make(map[int][]*core.Tile)
	minX := 0
	first := true
	for _, tile := range board.Tiles() {
		rows[tile.Pos.Y] = append(rows[tile.Pos.Y], tile)
		if first || tile.Pos.X < minX {
			minX = tile.Pos.X
			first = false
		}
	}

	ys := make([]int, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	var sb strings.Builder
	for _, y := range ys {
		row := rows[y]
		sort.Slice(row, func(i, j int) bool { return row[i].Pos.X < row[j].Pos.X })

		col := 0
		for _, tile := range row {
			pos := (tile.Pos.X - minX) * cellChars / core.ColumnStep
			sb.WriteString(strings.Repeat(" ", pos-col))
			cell := tileSymbol(tile)
			if color {
				sb.WriteString(teamColors[tile.Team] + cell + ColorReset)
			} else {
				sb.WriteString(cell)
			}
			col = pos + len(cell)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func tileSymbol(t *core.Tile) string {
	units := strconv.Itoa(t.Units)
	if t.Units > 99 {
		units = "+"
	}
	return t.Team.String() + units
}

// Render draws the engine's current board without color
func (e *Engine) Render() string {
	return RenderBoard(e.board, false)
}
