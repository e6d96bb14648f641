package engine

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrOutOfBounds = errors.New("space out of bounds")
	ErrNoNeighbor  = errors.New("no traversable neighbor")
)

// Cardinal directions, in the fixed order neighbors are yielded
var (
	North = Space{Column: 0, Row: -1}
	South = Space{Column: 0, Row: 1}
	West  = Space{Column: -1, Row: 0}
	East  = Space{Column: 1, Row: 0}

	directions = [...]Space{North, South, West, East}
)

// CostFunc returns the cost of stepping from a to an adjacent b
type CostFunc func(a, b Space) int

// UnitCost charges 1 per edge
func UnitCost(a, b Space) int {
	return 1
}

// Graph is what the path searches need from a board
type Graph interface {
	Neighbors(space Space) []Space
	Cost(a, b Space) int
}

// Grid maps every in-bounds Space to a Cell. Keys are inserted at
// construction and never added or removed afterwards.
type Grid struct {
	columns int
	rows    int
	cells   map[Space]Cell
	cost    CostFunc
	rng     *rand.Rand
}

// GridOption customizes a Grid
type GridOption func(*Grid)

// WithCost overrides the per-edge cost function
func WithCost(fn CostFunc) GridOption {
	return func(g *Grid) {
		if fn != nil {
			g.cost = fn
		}
	}
}

// WithRand sets the random source used by RandomNeighbor and RandomEmptyNeighbor
func WithRand(rng *rand.Rand) GridOption {
	return func(g *Grid) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// NewGrid creates a grid with every cell Blank and empty
func NewGrid(columns, rows int, opts ...GridOption) *Grid {
	g := &Grid{
		columns: columns,
		rows:    rows,
		cells:   make(map[Space]Cell, columns*rows),
		cost:    UnitCost,
		rng:     rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(g)
	}

	for x := 0; x < columns; x++ {
		for y := 0; y < rows; y++ {
			g.cells[Space{Column: x, Row: y}] = Cell{Terrain: Blank}
		}
	}
	return g
}

// Columns returns the grid width in cells
func (g *Grid) Columns() int {
	return g.columns
}

// Rows returns the grid height in cells
func (g *Grid) Rows() int {
	return g.rows
}

// In reports whether the space was registered at construction
func (g *Grid) In(space Space) bool {
	_, ok := g.cells[space]
	return ok
}

// Get returns the cell at a space; ok is false when out of bounds
func (g *Grid) Get(space Space) (Cell, bool) {
	cell, ok := g.cells[space]
	return cell, ok
}

// Occupant returns the actor at a space, nil when empty or out of bounds
func (g *Grid) Occupant(space Space) *Actor {
	return g.cells[space].Occupant
}

// Place replaces the occupant of a space, preserving its terrain
func (g *Grid) Place(space Space, occupant *Actor) error {
	cell, ok := g.cells[space]
	if !ok {
		return fmt.Errorf("place %s: %w", space, ErrOutOfBounds)
	}
	cell.Occupant = occupant
	g.cells[space] = cell
	return nil
}

// SetCell writes both occupant and terrain
func (g *Grid) SetCell(space Space, cell Cell) error {
	if !g.In(space) {
		return fmt.Errorf("set cell %s: %w", space, ErrOutOfBounds)
	}
	g.cells[space] = cell
	return nil
}

// SetTerrain changes the terrain of a space, keeping its occupant
func (g *Grid) SetTerrain(space Space, terrain Terrain) error {
	cell, ok := g.cells[space]
	if !ok {
		return fmt.Errorf("set terrain %s: %w", space, ErrOutOfBounds)
	}
	cell.Terrain = terrain
	g.cells[space] = cell
	return nil
}

// Clear removes the occupant of a space
func (g *Grid) Clear(space Space) error {
	return g.Place(space, nil)
}

// Find returns the space an actor occupies
func (g *Grid) Find(actor *Actor) (Space, bool) {
	if actor == nil {
		return NoSpace, false
	}
	for _, space := range g.Spaces() {
		if g.cells[space].Occupant == actor {
			return space, true
		}
	}
	return NoSpace, false
}

// Spaces returns every space in row-major order
func (g *Grid) Spaces() []Space {
	spaces := make([]Space, 0, len(g.cells))
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.columns; x++ {
			spaces = append(spaces, Space{Column: x, Row: y})
		}
	}
	return spaces
}

// Traversable reports whether a space is in bounds and not blocked by a solid occupant
func (g *Grid) Traversable(space Space) bool {
	cell, ok := g.cells[space]
	if !ok {
		return false
	}
	return cell.Occupant == nil || !cell.Occupant.Solid
}

// Neighbors returns the traversable cardinal neighbors in North, South, West, East order
func (g *Grid) Neighbors(space Space) []Space {
	result := make([]Space, 0, len(directions))
	for _, d := range directions {
		n := space.Add(d)
		if g.Traversable(n) {
			result = append(result, n)
		}
	}
	return result
}

// RandomNeighbor picks one traversable neighbor uniformly.
// It returns ErrNoNeighbor when the space is fully enclosed.
func (g *Grid) RandomNeighbor(space Space) (Space, error) {
	neighbors := g.Neighbors(space)
	if len(neighbors) == 0 {
		return NoSpace, fmt.Errorf("random neighbor of %s: %w", space, ErrNoNeighbor)
	}
	return neighbors[g.rng.Intn(len(neighbors))], nil
}

// RandomEmptyNeighbor picks one traversable neighbor with no occupant.
// It returns ErrNoNeighbor when every traversable neighbor is taken.
func (g *Grid) RandomEmptyNeighbor(space Space) (Space, error) {
	var empty []Space
	for _, n := range g.Neighbors(space) {
		if g.cells[n].Empty() {
			empty = append(empty, n)
		}
	}
	if len(empty) == 0 {
		return NoSpace, fmt.Errorf("random empty neighbor of %s: %w", space, ErrNoNeighbor)
	}
	return empty[g.rng.Intn(len(empty))], nil
}

// Cost returns the cost of the edge a -> b
func (g *Grid) Cost(a, b Space) int {
	return g.cost(a, b)
}
