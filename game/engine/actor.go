package engine

import "strconv"

// Actor kinds understood by the level loader
const (
	KindCarrier = "carrier"
	KindBlocker = "blocker"
	KindBall    = "ball"
	KindWall    = "wall"
)

// MoveState is present on actors that can be moved
type MoveState struct {
	Speed         int // max pixels per axis per frame
	MovementRange int // max path cost for reachable-set queries

	dx, dy int // delta queued for the next Update
}

// RenderState is present on actors a presentation layer should draw
type RenderState struct {
	Shape string // "circle", "dot", "square"
	Color string
	Glyph string
}

// Actor is a unit on the board. Capabilities are expressed as flags and
// optional sub-states rather than a type hierarchy.
type Actor struct {
	ID   string
	Name string
	Kind string
	HP   int
	Team Team

	// Board-relative pixel position and bounding box
	X, Y int
	W, H int

	Solid      bool
	Selectable bool
	CanCarry   bool
	Ball       bool

	// Carrying is a non-owning reference to a ball-capable actor
	Carrying *Actor

	Move   *MoveState
	Render *RenderState
}

// Space returns the grid space containing the actor's origin
func (a *Actor) Space(cellSize int) Space {
	return Space{Column: a.X / cellSize, Row: a.Y / cellSize}
}

// Movable reports whether the actor has a movement capability
func (a *Actor) Movable() bool {
	return a.Move != nil
}

// MovementRange returns the actor's range, zero for immobile actors
func (a *Actor) MovementRange() int {
	if a.Move == nil {
		return 0
	}
	return a.Move.MovementRange
}

// CarryingBall reports whether the actor holds a ball-capable actor
func (a *Actor) CarryingBall() bool {
	return a.Carrying != nil && a.Carrying.Ball
}

// Queue adds a pixel delta to be applied on the next Update.
// It can be called multiple times in one frame.
func (a *Actor) Queue(dx, dy int) {
	if a.Move == nil {
		return
	}
	a.Move.dx += dx
	a.Move.dy += dy
}

// PartialMove queues at most Speed pixels per axis toward (x, y) without overshooting
func (a *Actor) PartialMove(x, y int) {
	if a.Move == nil {
		return
	}
	a.Queue(step(a.X, x, a.Move.Speed), step(a.Y, y, a.Move.Speed))
}

// step returns the clamped signed delta from -> to
func step(from, to, speed int) int {
	d := to - from
	if d > speed {
		return speed
	}
	if d < -speed {
		return -speed
	}
	return d
}

// Update applies the queued delta. A carried actor moves by the same delta.
func (a *Actor) Update() {
	if a.Move == nil || (a.Move.dx == 0 && a.Move.dy == 0) {
		return
	}
	a.X += a.Move.dx
	a.Y += a.Move.dy
	if a.Carrying != nil {
		a.Carrying.X += a.Move.dx
		a.Carrying.Y += a.Move.dy
	}
	a.Move.dx, a.Move.dy = 0, 0
}

// MoveTo places the actor (and anything it carries) at a pixel position immediately
func (a *Actor) MoveTo(x, y int) {
	dx, dy := x-a.X, y-a.Y
	a.X, a.Y = x, y
	if a.Carrying != nil {
		a.Carrying.X += dx
		a.Carrying.Y += dy
	}
}

// Info returns the ordered attribute list shown in the HUD
func (a *Actor) Info() []HUDField {
	fields := []HUDField{
		{Key: "name", Value: a.Name},
		{Key: "hp", Value: strconv.Itoa(a.HP)},
		{Key: "team", Value: string(a.Team)},
	}
	if a.Move != nil {
		fields = append(fields,
			HUDField{Key: "speed", Value: strconv.Itoa(a.Move.Speed)},
			HUDField{Key: "movement_range", Value: strconv.Itoa(a.Move.MovementRange)},
		)
	}
	if a.CanCarry {
		carrying := "nothing"
		if a.Carrying != nil {
			carrying = a.Carrying.Name
		}
		fields = append(fields, HUDField{Key: "carrying", Value: carrying})
	}
	return fields
}

// View returns the serializable form of the actor
func (a *Actor) View() ActorView {
	v := ActorView{
		ID:         a.ID,
		Name:       a.Name,
		Kind:       a.Kind,
		Team:       a.Team,
		HP:         a.HP,
		X:          a.X,
		Y:          a.Y,
		W:          a.W,
		H:          a.H,
		Solid:      a.Solid,
		Selectable: a.Selectable,
		CanCarry:   a.CanCarry,
		Ball:       a.Ball,
	}
	if a.Carrying != nil {
		v.CarryingID = a.Carrying.ID
	}
	if a.Move != nil {
		v.Speed = a.Move.Speed
		v.MovementRange = a.Move.MovementRange
	}
	if a.Render != nil {
		v.Shape = a.Render.Shape
		v.Color = a.Render.Color
		v.Glyph = a.Render.Glyph
	}
	return v
}

// NewActor builds an actor of a known kind placed at a grid space
func NewActor(id, kind, name string, team Team, space Space, cellSize int) *Actor {
	a := &Actor{
		ID:   id,
		Name: name,
		Kind: kind,
		HP:   1,
		Team: team,
		X:    space.Column * cellSize,
		Y:    space.Row * cellSize,
		W:    cellSize,
		H:    cellSize,
	}
	if a.Name == "" {
		a.Name = kind
	}

	switch kind {
	case KindCarrier:
		a.Solid, a.Selectable, a.CanCarry = true, true, true
		a.Move = &MoveState{Speed: DefaultSpeed, MovementRange: DefaultMoveRange}
		a.Render = &RenderState{Shape: "circle", Glyph: "C"}
	case KindBlocker:
		a.Solid, a.Selectable = true, true
		a.Move = &MoveState{Speed: DefaultSpeed, MovementRange: DefaultMoveRange}
		a.Render = &RenderState{Shape: "square", Glyph: "B"}
	case KindBall:
		a.Ball = true
		a.Team = TeamNeutral
		a.Render = &RenderState{Shape: "dot", Glyph: "o"}
	case KindWall:
		a.Solid = true
		a.Team = TeamNeutral
		a.Render = &RenderState{Shape: "square", Glyph: "#"}
	}

	if a.Render != nil {
		switch a.Team {
		case TeamHome:
			a.Render.Color = "green"
		case TeamAway:
			a.Render.Color = "red"
		default:
			a.Render.Color = "white"
		}
	}
	return a
}
