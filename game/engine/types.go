package engine

import "fmt"

// Terrain represents the ground type of a grid cell
type Terrain string

const (
	Blank   Terrain = "blank"
	Endzone Terrain = "endzone"
)

// Team identifies which roster an actor belongs to
type Team string

const (
	TeamHome    Team = "home"
	TeamAway    Team = "away"
	TeamNeutral Team = "neutral"
)

const (
	// Validation constants
	MinGridSize = 1
	MaxGridSize = 64

	DefaultCellSize      = 26
	DefaultSpeed         = 10
	DefaultMoveRange     = 3
	DefaultPolicyTimeout = 250 // milliseconds

	// MaxSettleFrames bounds how many frames a caller may run to finish a move
	MaxSettleFrames = 600
)

// Space is an integer (column, row) grid coordinate
type Space struct {
	Column int `json:"column" yaml:"column"`
	Row    int `json:"row" yaml:"row"`
}

// NoSpace is the predecessor recorded for a search start
var NoSpace = Space{Column: -1, Row: -1}

// String renders the space as (column,row)
func (s Space) String() string {
	return fmt.Sprintf("(%d,%d)", s.Column, s.Row)
}

// Add returns the component-wise sum of two spaces
func (s Space) Add(o Space) Space {
	return Space{Column: s.Column + o.Column, Row: s.Row + o.Row}
}

// Cell is the occupant and terrain pair stored per Space
type Cell struct {
	Occupant *Actor
	Terrain  Terrain
}

// Empty reports whether no actor occupies the cell
func (c Cell) Empty() bool {
	return c.Occupant == nil
}

// Button identifies a pointer button in an input event
type Button int

const (
	ButtonLeft Button = iota + 1
	ButtonRight
)

// String returns the button name
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseButton maps "left"/"right" to a Button
func ParseButton(s string) (Button, error) {
	switch s {
	case "left", "l":
		return ButtonLeft, nil
	case "right", "r":
		return ButtonRight, nil
	}
	return 0, fmt.Errorf("unknown button %q", s)
}

// InputKind distinguishes click events from end-turn requests
type InputKind int

const (
	InputClick InputKind = iota
	InputEndTurn
)

// InputEvent is a click already translated into grid coordinates, or an end-turn request
type InputEvent struct {
	Kind   InputKind
	Button Button
	Column int
	Row    int
}

// Click builds a click input event
func Click(button Button, column, row int) InputEvent {
	return InputEvent{Kind: InputClick, Button: button, Column: column, Row: row}
}

// EndTurnInput builds an end-turn input event
func EndTurnInput() InputEvent {
	return InputEvent{Kind: InputEndTurn}
}

// EventType names something that happened during an update
type EventType string

const (
	EventSelected      EventType = "selected"
	EventDeselected    EventType = "deselected"
	EventPathPlanned   EventType = "path_planned"
	EventMoveStarted   EventType = "move_started"
	EventMoveFinished  EventType = "move_finished"
	EventBallPickup    EventType = "ball_pickup"
	EventBallBounce    EventType = "ball_bounce"
	EventBounceBlocked EventType = "bounce_blocked"
	EventVictory       EventType = "victory"
	EventTurnEnded     EventType = "turn_ended"
	EventTurnStarted   EventType = "turn_started"
)

// Event is emitted by the engine for presentation and transport layers
type Event struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
	ActorID string    `json:"actor_id,omitempty"`
	Space   Space     `json:"space"`
	Frame   int       `json:"frame"`
}

// HUDField is one displayed attribute of the selected actor
type HUDField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CellView is the serializable form of a grid cell
type CellView struct {
	Column     int     `json:"column"`
	Row        int     `json:"row"`
	Terrain    Terrain `json:"terrain"`
	OccupantID string  `json:"occupant_id,omitempty"`
}

// ActorView is the serializable form of an actor
type ActorView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	Team          Team   `json:"team"`
	HP            int    `json:"hp"`
	X             int    `json:"x"`
	Y             int    `json:"y"`
	W             int    `json:"w"`
	H             int    `json:"h"`
	Solid         bool   `json:"solid"`
	Selectable    bool   `json:"selectable"`
	CanCarry      bool   `json:"can_carry"`
	Ball          bool   `json:"ball"`
	CarryingID    string `json:"carrying_id,omitempty"`
	Speed         int    `json:"speed,omitempty"`
	MovementRange int    `json:"movement_range,omitempty"`
	Shape         string `json:"shape,omitempty"`
	Color         string `json:"color,omitempty"`
	Glyph         string `json:"glyph,omitempty"`
}

// GameState is a read-only snapshot of a game for presentation layers
type GameState struct {
	ConfigName    string      `json:"config_name"`
	Mode          string      `json:"mode"`
	Frame         int         `json:"frame"`
	Turn          int         `json:"turn"`
	Columns       int         `json:"columns"`
	Rows          int         `json:"rows"`
	CellSize      int         `json:"cell_size"`
	Cells         []CellView  `json:"cells"`
	Actors        []ActorView `json:"actors"`
	SelectedID    string      `json:"selected_id,omitempty"`
	SelectedPath  []Space     `json:"selected_path,omitempty"`
	SelectedRange []Space     `json:"selected_range,omitempty"`
	TargetNode    *Space      `json:"target_node,omitempty"`
	HUD           []HUDField  `json:"hud,omitempty"`
	CanClick      bool        `json:"can_click"`
	GameOver      bool        `json:"game_over"`
	Victory       bool        `json:"victory"`
	Message       string      `json:"message"`
}

// Occupant returns the actor view occupying the given space, if any
func (gs *GameState) Occupant(column, row int) *ActorView {
	var id string
	for _, c := range gs.Cells {
		if c.Column == column && c.Row == row {
			id = c.OccupantID
			break
		}
	}
	if id == "" {
		return nil
	}
	for i := range gs.Actors {
		if gs.Actors[i].ID == id {
			return &gs.Actors[i]
		}
	}
	return nil
}

// TerrainAt returns the terrain at the given space, or "" when out of bounds
func (gs *GameState) TerrainAt(column, row int) Terrain {
	for _, c := range gs.Cells {
		if c.Column == column && c.Row == row {
			return c.Terrain
		}
	}
	return ""
}
