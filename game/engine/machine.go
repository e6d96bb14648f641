package engine

import "fmt"

// State is the active interaction mode
type State int

const (
	Idle State = iota
	Selected
	Pathing
	Moving
	EnemyTurn
)

// String returns the state name used in snapshots and logs
func (s State) String() string {
	switch s {
	case Idle:
		return "player_idle"
	case Selected:
		return "player_selected"
	case Pathing:
		return "player_pathing"
	case Moving:
		return "player_moving"
	case EnemyTurn:
		return "enemy_turn"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Trigger drives the state machine
type Trigger int

const (
	LeftClick Trigger = iota
	RightClick
	EndMoving
	EndTurn
)

// String returns the trigger name
func (t Trigger) String() string {
	switch t {
	case LeftClick:
		return "left_click"
	case RightClick:
		return "right_click"
	case EndMoving:
		return "end_moving"
	case EndTurn:
		return "end_turn"
	default:
		return fmt.Sprintf("trigger(%d)", int(t))
	}
}

// Condition is a read-only guard evaluated against the model
type Condition int

const (
	Always Condition = iota
	SelectableOwnClicked
	ValidGoalSelected
	PathSelectedTwice
)

// Effect is a state-mutating callback run by the model
type Effect int

const (
	SelectionChange Effect = iota
	SelectObject
	DeselectObject
	SelectPath
	BeginMoving
	FinalizeMove
	MenuClear
	MenuReload
	BeginPolicyEvaluation
)

// Transition is one row of the transition table
type Transition struct {
	Trigger   Trigger
	Sources   []State
	Dest      State
	Condition Condition
	Before    []Effect
	After     []Effect
}

// Callbacks are the effects run when a state is entered or left
type Callbacks struct {
	OnEnter []Effect
	OnExit  []Effect
}

// Transitions is evaluated top to bottom; the first row whose trigger,
// source and condition match wins. Right-click confirmation is listed ahead
// of replanning so clicking the same goal twice starts the move.
var Transitions = []Transition{
	{Trigger: LeftClick, Sources: []State{Idle}, Dest: Selected, Condition: SelectableOwnClicked},
	{Trigger: LeftClick, Sources: []State{Selected}, Dest: Selected, Condition: SelectableOwnClicked},
	{Trigger: LeftClick, Sources: []State{Pathing}, Dest: Selected, Condition: SelectableOwnClicked},
	{Trigger: LeftClick, Sources: []State{Selected}, Dest: Idle},
	{Trigger: LeftClick, Sources: []State{Pathing}, Dest: Idle},

	{Trigger: RightClick, Sources: []State{Pathing}, Dest: Moving, Condition: PathSelectedTwice, After: []Effect{BeginMoving}},
	{Trigger: RightClick, Sources: []State{Selected}, Dest: Pathing, Condition: ValidGoalSelected},
	{Trigger: RightClick, Sources: []State{Pathing}, Dest: Pathing, Condition: ValidGoalSelected},

	// Arrival must resolve before entering Idle clears the selection
	{Trigger: EndMoving, Sources: []State{Moving}, Dest: Idle, Before: []Effect{FinalizeMove}},

	{Trigger: EndTurn, Sources: []State{Idle, Selected, Pathing}, Dest: EnemyTurn, After: []Effect{BeginPolicyEvaluation}},
	{Trigger: EndTurn, Sources: []State{EnemyTurn}, Dest: Idle},
}

// StateCallbacks run on every entry, including re-entry of the same state
var StateCallbacks = map[State]Callbacks{
	Idle:      {OnEnter: []Effect{SelectionChange, DeselectObject}},
	Selected:  {OnEnter: []Effect{SelectionChange, SelectObject}},
	Pathing:   {OnEnter: []Effect{SelectPath}},
	EnemyTurn: {OnEnter: []Effect{MenuClear}, OnExit: []Effect{MenuReload}},
}

// Args carries the trigger's arguments to conditions and effects
type Args struct {
	Space Space
}

// Model evaluates conditions and runs effects for a Machine
type Model interface {
	Check(c Condition, args Args) bool
	Run(e Effect, args Args) error
}

// Dispatch returns the first transition matching the state and trigger whose
// condition passes. It performs no mutation.
func Dispatch(table []Transition, state State, trigger Trigger, check func(Condition) bool) (Transition, bool) {
	for _, t := range table {
		if t.Trigger != trigger || !hasState(t.Sources, state) {
			continue
		}
		if t.Condition == Always || check(t.Condition) {
			return t, true
		}
	}
	return Transition{}, false
}

func hasState(states []State, s State) bool {
	for _, candidate := range states {
		if candidate == s {
			return true
		}
	}
	return false
}

// Machine holds the current interaction state
type Machine struct {
	state     State
	table     []Transition
	callbacks map[State]Callbacks
	model     Model
}

// NewMachine creates a machine in Idle over the default tables
func NewMachine(model Model) *Machine {
	return &Machine{
		state:     Idle,
		table:     Transitions,
		callbacks: StateCallbacks,
		model:     model,
	}
}

// State returns the active state
func (m *Machine) State() State {
	return m.state
}

// Fire runs a trigger. It returns false with a nil error when no transition
// matches; unmatched triggers are ignored.
func (m *Machine) Fire(trigger Trigger, args Args) (bool, error) {
	t, ok := Dispatch(m.table, m.state, trigger, func(c Condition) bool {
		return m.model.Check(c, args)
	})
	if !ok {
		return false, nil
	}

	if err := m.run(t.Before, args); err != nil {
		return true, fmt.Errorf("%s before: %w", trigger, err)
	}
	if err := m.run(m.callbacks[m.state].OnExit, args); err != nil {
		return true, fmt.Errorf("%s exit %s: %w", trigger, m.state, err)
	}

	m.state = t.Dest

	if err := m.run(m.callbacks[t.Dest].OnEnter, args); err != nil {
		return true, fmt.Errorf("%s enter %s: %w", trigger, t.Dest, err)
	}
	if err := m.run(t.After, args); err != nil {
		return true, fmt.Errorf("%s after: %w", trigger, err)
	}
	return true, nil
}

func (m *Machine) run(effects []Effect, args Args) error {
	for _, e := range effects {
		if err := m.model.Run(e, args); err != nil {
			return err
		}
	}
	return nil
}
