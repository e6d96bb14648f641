package main

import (
	"errors"
	"fmt"

	"github.com/wricardo/gridball/game/engine"
)

var errNoMove = errors.New("no useful move")

// Plan is one move: select Actor, then right-click Target twice
type Plan struct {
	Actor  string
	From   engine.Space
	Goal   engine.Space // the ball, or an endzone cell when carrying
	Target engine.Space // furthest path step inside the actor's range
	Steps  int          // path length to Goal
}

// boardFromState rebuilds a searchable grid from a snapshot
func boardFromState(state *engine.GameState) (*engine.Grid, error) {
	size := state.CellSize
	if size <= 0 {
		size = engine.DefaultCellSize
	}
	grid := engine.NewGrid(state.Columns, state.Rows)

	actors := make(map[string]engine.ActorView, len(state.Actors))
	for _, a := range state.Actors {
		actors[a.ID] = a
	}

	for _, cell := range state.Cells {
		space := engine.Space{Column: cell.Column, Row: cell.Row}
		if err := grid.SetTerrain(space, cell.Terrain); err != nil {
			return nil, err
		}
		if cell.OccupantID == "" {
			continue
		}
		view, ok := actors[cell.OccupantID]
		if !ok {
			return nil, fmt.Errorf("cell %s holds unknown actor %q", space, cell.OccupantID)
		}
		occupant := engine.NewActor(view.ID, view.Kind, view.Name, view.Team, space, size)
		if err := grid.Place(space, occupant); err != nil {
			return nil, err
		}
	}
	return grid, nil
}

// locate returns the cell an actor occupies
func locate(state *engine.GameState, id string) (engine.Space, bool) {
	for _, cell := range state.Cells {
		if cell.OccupantID == id {
			return engine.Space{Column: cell.Column, Row: cell.Row}, true
		}
	}
	return engine.NoSpace, false
}

// nearestEndzone returns the free endzone cell with the lowest path cost
func nearestEndzone(grid *engine.Grid, from engine.Space) (engine.Space, bool) {
	search := engine.RangeFind(from, grid.Columns()*grid.Rows(), grid)

	best, bestCost := engine.NoSpace, -1
	for _, space := range grid.Spaces() {
		cost, ok := search.CostSoFar[space]
		if !ok || space == from {
			continue
		}
		if cell, _ := grid.Get(space); cell.Terrain != engine.Endzone {
			continue
		}
		if bestCost == -1 || cost < bestCost {
			best, bestCost = space, cost
		}
	}
	return best, bestCost >= 0
}

// planFor finds the goal and the path for one carrier
func planFor(grid *engine.Grid, state *engine.GameState, carrier engine.ActorView, balls []engine.Space) (*Plan, error) {
	from, ok := locate(state, carrier.ID)
	if !ok {
		return nil, fmt.Errorf("%s is not on the board", carrier.ID)
	}

	var best *Plan
	consider := func(goal engine.Space) {
		search := engine.PathFind(from, goal, grid)
		path, err := engine.PathReconstruct(from, goal, search.CameFrom)
		if err != nil {
			return
		}
		steps := len(path) - 1
		if best == nil || steps < best.Steps {
			best = &Plan{Actor: carrier.ID, From: from, Goal: goal, Steps: steps}
		}
	}

	if carrier.CarryingID != "" {
		if goal, ok := nearestEndzone(grid, from); ok {
			consider(goal)
		}
	} else {
		for _, ball := range balls {
			consider(ball)
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%s: %w", carrier.ID, errNoMove)
	}
	return best, nil
}

// ChoosePlan picks the home carrier closest to its goal. A carrier holding
// the ball always heads for the endzone.
func ChoosePlan(state *engine.GameState) (*Plan, error) {
	grid, err := boardFromState(state)
	if err != nil {
		return nil, err
	}

	var balls []engine.Space
	var carriers []engine.ActorView
	for _, a := range state.Actors {
		switch {
		case a.Ball:
			if space, ok := locate(state, a.ID); ok {
				balls = append(balls, space)
			}
		case a.Kind == engine.KindCarrier && a.Team == engine.TeamHome:
			carriers = append(carriers, a)
		}
	}

	var best *Plan
	for _, c := range carriers {
		plan, err := planFor(grid, state, c, balls)
		if err != nil {
			continue
		}
		if c.CarryingID != "" {
			return plan, nil
		}
		if best == nil || plan.Steps < best.Steps {
			best = plan
		}
	}
	if best == nil {
		return nil, errNoMove
	}
	return best, nil
}

// FurthestInRange walks the path from the start and returns the last step
// that lies inside the selection range
func FurthestInRange(grid *engine.Grid, plan *Plan, inRange []engine.Space) (engine.Space, bool) {
	reachable := make(map[engine.Space]bool, len(inRange))
	for _, s := range inRange {
		reachable[s] = true
	}

	search := engine.PathFind(plan.From, plan.Goal, grid)
	path, err := engine.PathReconstruct(plan.From, plan.Goal, search.CameFrom)
	if err != nil {
		return engine.NoSpace, false
	}

	target, found := engine.NoSpace, false
	for i := len(path) - 2; i >= 0; i-- {
		if !reachable[path[i]] {
			break
		}
		target, found = path[i], true
	}
	return target, found
}
