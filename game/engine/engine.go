package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/zyedidia/generic/mapset"
)

var ErrGameOver = errors.New("game is over")

// Engine provides the main interface for game operations
type Engine interface {
	// Board access
	Grid() *Grid
	Actors() []*Actor
	Actor(id string) *Actor
	CellSize() int

	// Interaction
	Mode() State
	HandleInput(ev InputEvent) (bool, error)
	Queue(ev InputEvent)
	Update() error
	CanClick() bool

	// Selection overlays
	SelectedObject() *Actor
	SelectedPath() []Space
	SelectedRange() []Space
	HUD() []HUDField

	// Lifecycle
	Snapshot() *GameState
	DrainEvents() []Event
	Reset() error
	IsGameOver() bool
	IsVictory() bool
	Frame() int
	Turn() int
	GetConfig() *GameConfig
}

// GameEngine owns the grid, the actors and the selection state of one game.
// It is not safe for concurrent use; callers serialize access.
type GameEngine struct {
	config   *GameConfig
	grid     *Grid
	cellSize int
	actors   []*Actor
	machine  *Machine

	policy        Policy
	policyTimeout time.Duration
	logger        *log.Logger
	seed          int64

	selectedObject *Actor
	selectedPath   []Space
	selectedRange  *mapset.Set[Space]
	targetNode     *Space

	canClick  bool
	gameOver  bool
	victory   bool
	hudChange bool
	hud       []HUDField
	message   string

	frame  int
	turn   int
	inputs []InputEvent
	events []Event
}

// Option customizes a GameEngine
type Option func(*GameEngine)

// WithLogger sets the logger used for game tracing
func WithLogger(logger *log.Logger) Option {
	return func(e *GameEngine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithPolicy overrides the enemy policy selected by the level
func WithPolicy(policy Policy) Option {
	return func(e *GameEngine) {
		if policy != nil {
			e.policy = policy
		}
	}
}

// WithPolicyTimeout bounds how long one enemy turn may run
func WithPolicyTimeout(d time.Duration) Option {
	return func(e *GameEngine) {
		if d > 0 {
			e.policyTimeout = d
		}
	}
}

// WithSeed overrides the level seed used for bounces and enemy moves
func WithSeed(seed int64) Option {
	return func(e *GameEngine) {
		e.seed = seed
	}
}

// NewEngine creates a new game engine from a validated level configuration
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config:        config,
		policy:        PassPolicy{},
		policyTimeout: time.Duration(DefaultPolicyTimeout) * time.Millisecond,
		logger:        log.Default(),
		seed:          config.Seed,
	}
	if config.PolicyTimeoutMS > 0 {
		e.policyTimeout = time.Duration(config.PolicyTimeoutMS) * time.Millisecond
	}
	if config.EnemyPolicy != "" {
		policy, err := PolicyByName(config.EnemyPolicy)
		if err != nil {
			return nil, err
		}
		e.policy = policy
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.build(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a new game engine on the default 15x15 board
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	e, err := NewEngine(DefaultGameConfig(), opts...)
	if err != nil {
		// the built-in level always validates
		panic(fmt.Sprintf("default level: %v", err))
	}
	return e
}

// build lays out the grid and actors from config and resets per-game state.
// Every build starts a fresh random source from the seed.
func (e *GameEngine) build() error {
	rng := rand.New(rand.NewSource(e.seed))
	grid, actors, err := BuildBoard(e.config, WithRand(rng))
	if err != nil {
		return err
	}

	e.grid = grid
	e.actors = actors
	e.cellSize = e.config.CellSize
	e.machine = NewMachine(e)
	e.selectedObject = nil
	e.selectedPath = nil
	e.selectedRange = nil
	e.targetNode = nil
	e.canClick = true
	e.gameOver = false
	e.victory = false
	e.hudChange = true
	e.hud = nil
	e.message = e.config.Messages.Welcome
	e.frame = 0
	e.turn = 1
	e.inputs = nil
	e.events = nil
	return nil
}

// Reset rebuilds the board from the level configuration
func (e *GameEngine) Reset() error {
	if err := e.build(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	e.logger.Printf("[RESET] level %q", e.config.Name)
	return nil
}

// Grid returns the board
func (e *GameEngine) Grid() *Grid {
	return e.grid
}

// Actors returns every actor in level order
func (e *GameEngine) Actors() []*Actor {
	return e.actors
}

// Actor returns an actor by id, nil when unknown
func (e *GameEngine) Actor(id string) *Actor {
	for _, a := range e.actors {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// CellSize returns the pixel size of one cell
func (e *GameEngine) CellSize() int {
	return e.cellSize
}

// Mode returns the active interaction state
func (e *GameEngine) Mode() State {
	return e.machine.State()
}

// CanClick reports whether input is currently accepted
func (e *GameEngine) CanClick() bool {
	return e.canClick && !e.gameOver
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.gameOver
}

// IsVictory returns whether the player has won
func (e *GameEngine) IsVictory() bool {
	return e.victory
}

// Frame returns the number of updates run so far
func (e *GameEngine) Frame() int {
	return e.frame
}

// Turn returns the current player turn, starting at 1
func (e *GameEngine) Turn() int {
	return e.turn
}

// GetConfig returns the level configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SelectedObject returns the selected actor, nil when nothing is selected
func (e *GameEngine) SelectedObject() *Actor {
	return e.selectedObject
}

// SelectedPath returns a copy of the planned path in goal -> start order
func (e *GameEngine) SelectedPath() []Space {
	if e.selectedPath == nil {
		return nil
	}
	path := make([]Space, len(e.selectedPath))
	copy(path, e.selectedPath)
	return path
}

// SelectedRange returns the reachable spaces of the selection in row-major order
func (e *GameEngine) SelectedRange() []Space {
	if e.selectedRange == nil {
		return nil
	}
	spaces := make([]Space, 0, e.selectedRange.Size())
	e.selectedRange.Each(func(s Space) {
		spaces = append(spaces, s)
	})
	sort.Slice(spaces, func(i, j int) bool {
		if spaces[i].Row != spaces[j].Row {
			return spaces[i].Row < spaces[j].Row
		}
		return spaces[i].Column < spaces[j].Column
	})
	return spaces
}

// InRange reports whether a space belongs to the current reachable set
func (e *GameEngine) InRange(space Space) bool {
	return e.selectedRange != nil && e.selectedRange.Has(space)
}

// TargetNode returns the next space the moving actor is heading to
func (e *GameEngine) TargetNode() (Space, bool) {
	if e.targetNode == nil {
		return NoSpace, false
	}
	return *e.targetNode, true
}

// HUD returns the selected actor's attributes, recomputed after a selection change
func (e *GameEngine) HUD() []HUDField {
	if e.hudChange {
		e.hud = nil
		if e.selectedObject != nil {
			e.hud = e.selectedObject.Info()
		}
		e.hudChange = false
	}
	return e.hud
}

// Message returns the latest status line
func (e *GameEngine) Message() string {
	return e.message
}

// DrainEvents returns and clears the events emitted since the last drain
func (e *GameEngine) DrainEvents() []Event {
	events := e.events
	e.events = nil
	return events
}

func (e *GameEngine) emit(t EventType, actor *Actor, space Space, format string, args ...interface{}) {
	ev := Event{
		Type:    t,
		Message: fmt.Sprintf(format, args...),
		Space:   space,
		Frame:   e.frame,
	}
	if actor != nil {
		ev.ActorID = actor.ID
	}
	e.events = append(e.events, ev)
}

// Queue buffers an input event to be handled on the next Update
func (e *GameEngine) Queue(ev InputEvent) {
	e.inputs = append(e.inputs, ev)
}

// HandleInput routes one input event to the state machine. It reports whether
// a transition fired; ignored input, including anything after the game ended,
// returns false with a nil error.
func (e *GameEngine) HandleInput(ev InputEvent) (bool, error) {
	if !e.CanClick() {
		return false, nil
	}

	switch ev.Kind {
	case InputEndTurn:
		return e.EndTurn()
	case InputClick:
		switch ev.Button {
		case ButtonLeft:
			return e.LeftClick(ev.Column, ev.Row)
		case ButtonRight:
			return e.RightClick(ev.Column, ev.Row)
		}
		return false, fmt.Errorf("click: unknown button %d", ev.Button)
	}
	return false, fmt.Errorf("unknown input kind %d", ev.Kind)
}

// LeftClick fires the left_click trigger at a grid space
func (e *GameEngine) LeftClick(column, row int) (bool, error) {
	space := Space{Column: column, Row: row}
	fired, err := e.machine.Fire(LeftClick, Args{Space: space})
	e.logger.Printf("[CLICK] left %s -> %s (fired=%t)", space, e.Mode(), fired)
	return fired, err
}

// RightClick fires the right_click trigger at a grid space
func (e *GameEngine) RightClick(column, row int) (bool, error) {
	space := Space{Column: column, Row: row}
	fired, err := e.machine.Fire(RightClick, Args{Space: space})
	e.logger.Printf("[CLICK] right %s -> %s (fired=%t)", space, e.Mode(), fired)
	return fired, err
}

// EndTurn hands control to the enemy policy and back to the player
func (e *GameEngine) EndTurn() (bool, error) {
	return e.machine.Fire(EndTurn, Args{})
}

// Update runs one frame: queued input is drained while input is unlocked,
// the moving actor advances, then every actor applies its queued delta.
func (e *GameEngine) Update() error {
	inputs := e.inputs
	e.inputs = nil
	for _, ev := range inputs {
		if !e.CanClick() {
			break
		}
		if _, err := e.HandleInput(ev); err != nil {
			return err
		}
	}

	e.frame++

	if e.machine.State() == Moving {
		if err := e.advance(); err != nil {
			return err
		}
	}
	for _, a := range e.actors {
		a.Update()
	}
	return nil
}

// Check evaluates a transition guard. Guards never mutate state.
func (e *GameEngine) Check(c Condition, args Args) bool {
	switch c {
	case Always:
		return true
	case SelectableOwnClicked:
		occ := e.grid.Occupant(args.Space)
		return occ != nil && occ.Selectable && occ.Team == TeamHome
	case ValidGoalSelected:
		if e.selectedObject == nil || !e.InRange(args.Space) {
			return false
		}
		occ := e.grid.Occupant(args.Space)
		return occ == nil || !occ.Solid
	case PathSelectedTwice:
		return len(e.selectedPath) > 0 && e.selectedPath[0] == args.Space
	}
	return false
}

// Run executes a transition or state callback effect
func (e *GameEngine) Run(effect Effect, args Args) error {
	switch effect {
	case SelectionChange:
		e.hudChange = true
		return nil
	case SelectObject:
		return e.selectObject(args.Space)
	case DeselectObject:
		e.deselect()
		return nil
	case SelectPath:
		return e.selectPath(args.Space)
	case BeginMoving:
		return e.beginMoving()
	case FinalizeMove:
		return e.finalizeMove()
	case MenuClear:
		e.emit(EventTurnEnded, nil, NoSpace, "turn %d ended", e.turn)
		e.logger.Printf("[TURN] turn %d ended, enemy to move", e.turn)
		return nil
	case MenuReload:
		e.turn++
		e.emit(EventTurnStarted, nil, NoSpace, "turn %d started", e.turn)
		e.logger.Printf("[TURN] turn %d started", e.turn)
		return nil
	case BeginPolicyEvaluation:
		return e.runPolicy()
	}
	return fmt.Errorf("unknown effect %d", effect)
}

func (e *GameEngine) selectObject(space Space) error {
	occ := e.grid.Occupant(space)
	if occ == nil {
		return fmt.Errorf("select %s: no occupant", space)
	}

	e.selectedObject = occ
	e.selectedPath = nil
	e.targetNode = nil
	e.hudChange = true

	reachable := mapset.New[Space]()
	if occ.Movable() {
		start := occ.Space(e.cellSize)
		reachable = Reachable(RangeFind(start, occ.MovementRange(), e.grid), start)
	}
	e.selectedRange = &reachable

	e.emit(EventSelected, occ, space, "%s selected, %d spaces in range", occ.Name, reachable.Size())
	return nil
}

func (e *GameEngine) deselect() {
	had := e.selectedObject
	e.selectedObject = nil
	e.selectedPath = nil
	e.selectedRange = nil
	e.targetNode = nil
	if had != nil {
		e.hudChange = true
		e.emit(EventDeselected, had, had.Space(e.cellSize), "%s deselected", had.Name)
	}
}

func (e *GameEngine) selectPath(goal Space) error {
	if e.selectedObject == nil {
		return fmt.Errorf("plan path to %s: nothing selected", goal)
	}
	start := e.selectedObject.Space(e.cellSize)
	result := PathFind(start, goal, e.grid)
	path, err := PathReconstruct(start, goal, result.CameFrom)
	if err != nil {
		return fmt.Errorf("plan path: %w", err)
	}
	e.selectedPath = path
	e.emit(EventPathPlanned, e.selectedObject, goal, "path to %s costs %d", goal, result.CostSoFar[goal])
	return nil
}

func (e *GameEngine) runPolicy() error {
	ctx, cancel := context.WithTimeout(context.Background(), e.policyTimeout)
	err := e.policy.Evaluate(ctx, e)
	cancel()
	if err != nil {
		e.logger.Printf("[TURN] enemy policy: %v", err)
	}

	_, err = e.machine.Fire(EndTurn, Args{})
	return err
}

// Snapshot returns a serializable copy of the game for presentation layers
func (e *GameEngine) Snapshot() *GameState {
	state := &GameState{
		ConfigName:    e.config.Name,
		Mode:          e.Mode().String(),
		Frame:         e.frame,
		Turn:          e.turn,
		Columns:       e.grid.Columns(),
		Rows:          e.grid.Rows(),
		CellSize:      e.cellSize,
		SelectedPath:  e.SelectedPath(),
		SelectedRange: e.SelectedRange(),
		HUD:           e.HUD(),
		CanClick:      e.CanClick(),
		GameOver:      e.gameOver,
		Victory:       e.victory,
		Message:       e.message,
	}

	for _, space := range e.grid.Spaces() {
		cell, _ := e.grid.Get(space)
		view := CellView{Column: space.Column, Row: space.Row, Terrain: cell.Terrain}
		if cell.Occupant != nil {
			view.OccupantID = cell.Occupant.ID
		}
		state.Cells = append(state.Cells, view)
	}
	for _, a := range e.actors {
		state.Actors = append(state.Actors, a.View())
	}
	if e.selectedObject != nil {
		state.SelectedID = e.selectedObject.ID
	}
	if e.targetNode != nil {
		target := *e.targetNode
		state.TargetNode = &target
	}
	return state
}
