package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/gridball/game/engine"
)

// Board geometry on the terminal. Each grid cell is cellWidth columns wide
// so the board looks roughly square.
const (
	boardX    = 2
	boardY    = 2
	cellWidth = 2
)

var (
	styleDefault  = tcell.StyleDefault
	styleEndzone  = tcell.StyleDefault.Background(tcell.ColorDarkGreen)
	styleRange    = tcell.StyleDefault.Background(tcell.ColorNavy)
	stylePath     = tcell.StyleDefault.Background(tcell.ColorOlive)
	styleTarget   = tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack)
	styleTitle    = tcell.StyleDefault.Bold(true)
	styleVictory  = tcell.StyleDefault.Foreground(tcell.ColorGold).Bold(true)
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSelected = tcell.StyleDefault.Reverse(true)
)

// cellAt maps a terminal position to a grid cell
func cellAt(state *engine.GameState, x, y int) (int, int, bool) {
	if x < boardX || y < boardY {
		return 0, 0, false
	}
	column := (x - boardX) / cellWidth
	row := y - boardY
	if column >= state.Columns || row >= state.Rows {
		return 0, 0, false
	}
	return column, row, true
}

// marks collects range, path and target membership for drawing
type marks struct {
	inRange map[engine.Space]bool
	onPath  map[engine.Space]bool
	target  engine.Space
}

func newMarks(state *engine.GameState) marks {
	m := marks{
		inRange: make(map[engine.Space]bool, len(state.SelectedRange)),
		onPath:  make(map[engine.Space]bool, len(state.SelectedPath)),
		target:  engine.NoSpace,
	}
	for _, s := range state.SelectedRange {
		m.inRange[s] = true
	}
	for _, s := range state.SelectedPath {
		m.onPath[s] = true
	}
	if state.TargetNode != nil {
		m.target = *state.TargetNode
	}
	return m
}

// cellGlyph returns the rune and style for one cell
func cellGlyph(state *engine.GameState, m marks, cell engine.CellView) (rune, tcell.Style) {
	space := engine.Space{Column: cell.Column, Row: cell.Row}

	style := styleDefault
	switch {
	case space == m.target:
		style = styleTarget
	case m.onPath[space]:
		style = stylePath
	case m.inRange[space]:
		style = styleRange
	case cell.Terrain == engine.Endzone:
		style = styleEndzone
	}

	occupant := state.Occupant(cell.Column, cell.Row)
	if occupant == nil {
		if cell.Terrain == engine.Endzone {
			return 'E', style.Foreground(tcell.ColorLightGreen)
		}
		return '.', style.Foreground(tcell.ColorGray)
	}

	if occupant.Color != "" {
		style = style.Foreground(tcell.GetColor(occupant.Color))
	}
	if occupant.ID == state.SelectedID {
		style = style.Reverse(true)
	}
	return actorRune(occupant), style
}

func actorRune(a *engine.ActorView) rune {
	if a.CarryingID != "" {
		return '@'
	}
	if a.Glyph != "" {
		return []rune(a.Glyph)[0]
	}
	return '?'
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) int {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// drawState renders the title, the board, the HUD column and the status line
func drawState(screen tcell.Screen, state *engine.GameState) {
	screen.Clear()

	drawText(screen, boardX, 0, styleTitle, fmt.Sprintf("%s  turn %d  %s", state.ConfigName, state.Turn, state.Mode))

	m := newMarks(state)
	for _, cell := range state.Cells {
		r, style := cellGlyph(state, m, cell)
		x := boardX + cell.Column*cellWidth
		y := boardY + cell.Row
		screen.SetContent(x, y, r, nil, style)
		screen.SetContent(x+1, y, ' ', nil, style)
	}

	hudX := boardX + state.Columns*cellWidth + 3
	y := boardY
	if state.SelectedID != "" {
		drawText(screen, hudX, y, styleSelected, "selected")
		y++
		for _, field := range state.HUD {
			drawText(screen, hudX, y, styleDefault, fmt.Sprintf("%-15s %s", field.Key, field.Value))
			y++
		}
	}

	status := boardY + state.Rows + 1
	switch {
	case state.Victory:
		drawText(screen, boardX, status, styleVictory, "VICTORY! "+state.Message)
	case state.Message != "":
		drawText(screen, boardX, status, styleDefault, state.Message)
	}
	if !state.CanClick && !state.GameOver {
		drawText(screen, boardX, status+1, styleDim, "moving...")
	}
	drawText(screen, boardX, status+2, styleDim, "left: select  right: plan/confirm  e: end turn  r: reset  q: quit")

	screen.Show()
}
