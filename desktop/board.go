package main

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	colorBlank   = color.RGBA{40, 110, 40, 255}
	colorEndzone = color.RGBA{20, 170, 90, 255}
	colorRange   = color.RGBA{60, 90, 200, 140}
	colorPath    = color.RGBA{230, 200, 40, 160}
	colorTarget  = color.RGBA{255, 255, 255, 255}
	colorBall    = color.RGBA{150, 80, 20, 255}
	colorWall    = color.RGBA{90, 90, 90, 255}
	colorHome    = color.RGBA{100, 220, 100, 255}
	colorAway    = color.RGBA{220, 70, 70, 255}
	colorOther   = color.RGBA{200, 200, 200, 255}
)

// cellAtPixel maps a window position to a grid cell
func cellAtPixel(state *GameState, x, y int) (int, int, bool) {
	y -= headerHeight
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	column, row := x/cellSize, y/cellSize
	if column >= state.Columns || row >= state.Rows {
		return 0, 0, false
	}
	return column, row, true
}

// animation slides actors from their previous cells to their current ones
type animation struct {
	from     map[string][2]float64 // actor id -> column,row
	start    time.Time
	duration time.Duration
}

func actorCell(state *GameState, a ActorView) (float64, float64) {
	size := state.CellSize
	if size <= 0 {
		size = 1
	}
	return float64(a.X) / float64(size), float64(a.Y) / float64(size)
}

// newAnimation records where every actor was in prev. The duration grows
// with the longest distance travelled.
func newAnimation(prev, next *GameState, now time.Time) *animation {
	anim := &animation{from: make(map[string][2]float64), start: now}

	before := make(map[string]ActorView, len(prev.Actors))
	for _, a := range prev.Actors {
		before[a.ID] = a
	}

	longest := 0.0
	for _, a := range next.Actors {
		old, ok := before[a.ID]
		if !ok {
			continue
		}
		fc, fr := actorCell(prev, old)
		tc, tr := actorCell(next, a)
		if fc == tc && fr == tr {
			continue
		}
		anim.from[a.ID] = [2]float64{fc, fr}
		if d := abs(tc-fc) + abs(tr-fr); d > longest {
			longest = d
		}
	}

	anim.duration = time.Duration(longest * float64(animationDuration))
	return anim
}

// position returns the drawn cell position of an actor at time now
func (anim *animation) position(state *GameState, a ActorView, now time.Time) (float64, float64) {
	tc, tr := actorCell(state, a)
	if anim == nil || anim.duration <= 0 {
		return tc, tr
	}
	from, ok := anim.from[a.ID]
	if !ok {
		return tc, tr
	}

	t := float64(now.Sub(anim.start)) / float64(anim.duration)
	if t >= 1 {
		return tc, tr
	}
	return from[0]*(1-t) + tc*t, from[1]*(1-t) + tr*t
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func actorColor(a ActorView) color.Color {
	switch {
	case a.Ball:
		return colorBall
	case a.Kind == "wall":
		return colorWall
	case a.Team == "home":
		return colorHome
	case a.Team == "away":
		return colorAway
	}
	return colorOther
}

func fillCell(screen *ebiten.Image, column, row int, c color.Color) {
	vector.DrawFilledRect(screen,
		float32(column*cellSize), float32(row*cellSize+headerHeight),
		cellSize-1, cellSize-1, c, false)
}

// drawBoard draws terrain, range and path overlays, then the actors
func drawBoard(screen *ebiten.Image, state *GameState, anim *animation, now time.Time) {
	for _, cell := range state.Cells {
		c := colorBlank
		if cell.Terrain == "endzone" {
			c = colorEndzone
		}
		fillCell(screen, cell.Column, cell.Row, c)
	}
	for _, s := range state.SelectedRange {
		fillCell(screen, s.Column, s.Row, colorRange)
	}
	for _, s := range state.SelectedPath {
		fillCell(screen, s.Column, s.Row, colorPath)
	}
	if t := state.TargetNode; t != nil {
		vector.StrokeRect(screen,
			float32(t.Column*cellSize)+1, float32(t.Row*cellSize+headerHeight)+1,
			cellSize-3, cellSize-3, 2, colorTarget, false)
	}

	carried := make(map[string]bool)
	for _, a := range state.Actors {
		if a.CarryingID != "" {
			carried[a.CarryingID] = true
		}
	}

	for _, a := range state.Actors {
		if carried[a.ID] {
			continue
		}
		col, row := anim.position(state, a, now)
		cx := float32(col*cellSize) + cellSize/2
		cy := float32(row*cellSize) + headerHeight + cellSize/2

		switch a.Shape {
		case "dot":
			vector.DrawFilledCircle(screen, cx, cy, cellSize/6, actorColor(a), true)
		case "square":
			vector.DrawFilledRect(screen, cx-cellSize/2+4, cy-cellSize/2+4, cellSize-8, cellSize-8, actorColor(a), false)
		default:
			vector.DrawFilledCircle(screen, cx, cy, cellSize/2-4, actorColor(a), true)
		}

		if a.CarryingID != "" {
			vector.DrawFilledCircle(screen, cx+cellSize/4, cy-cellSize/4, cellSize/6, colorBall, true)
		}
		if a.ID == state.SelectedID {
			vector.StrokeCircle(screen, cx, cy, cellSize/2-1, 2, colorTarget, true)
		}
		if a.Glyph != "" && !a.Ball {
			ebitenutil.DebugPrintAt(screen, a.Glyph, int(cx)-3, int(cy)-8)
		}
	}
}

// drawHUD prints the selected actor's attributes and the status line
func drawHUD(screen *ebiten.Image, state *GameState, lastEvent string) {
	x := state.Columns*cellSize + 20
	y := headerHeight

	for _, field := range state.HUD {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%-15s %s", field.Key, field.Value), x, y)
		y += 15
	}

	statusY := headerHeight + state.Rows*cellSize + 10
	msg := state.Message
	if state.Victory {
		msg = "VICTORY! " + msg
	}
	ebitenutil.DebugPrintAt(screen, msg, 10, statusY)
	if lastEvent != "" {
		ebitenutil.DebugPrintAt(screen, lastEvent, 10, statusY+15)
	}
}
