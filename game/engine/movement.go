package engine

import (
	"errors"
	"fmt"
)

// pixel returns the board-relative pixel origin of a space
func (e *GameEngine) pixel(space Space) (int, int) {
	return space.Column * e.cellSize, space.Row * e.cellSize
}

// beginMoving locks input, pops the start node off the path and vacates it
func (e *GameEngine) beginMoving() error {
	if e.selectedObject == nil {
		return fmt.Errorf("begin moving: nothing selected")
	}
	if len(e.selectedPath) < 2 {
		return fmt.Errorf("begin moving: path %v has no step", e.selectedPath)
	}

	last := len(e.selectedPath) - 1
	start := e.selectedPath[last]
	e.selectedPath = e.selectedPath[:last]
	target := e.selectedPath[last-1]
	e.targetNode = &target
	e.canClick = false

	if err := e.grid.Clear(start); err != nil {
		return fmt.Errorf("begin moving: %w", err)
	}
	e.emit(EventMoveStarted, e.selectedObject, start, "%s moving to %s", e.selectedObject.Name, e.selectedPath[0])
	return nil
}

// advance runs one frame of the Moving state
func (e *GameEngine) advance() error {
	actor := e.selectedObject
	if actor == nil || e.targetNode == nil {
		return fmt.Errorf("advance: no moving actor")
	}

	tx, ty := e.pixel(*e.targetNode)
	if actor.X == tx && actor.Y == ty {
		if len(e.selectedPath) == 1 {
			_, err := e.machine.Fire(EndMoving, Args{Space: e.selectedPath[0]})
			return err
		}
		last := len(e.selectedPath) - 1
		e.selectedPath = e.selectedPath[:last]
		next := e.selectedPath[last-1]
		e.targetNode = &next
		return nil
	}

	actor.PartialMove(tx, ty)
	return nil
}

// finalizeMove resolves arrival at the path's goal and unlocks input.
// Selection is cleared by the Idle enter callback that follows.
func (e *GameEngine) finalizeMove() error {
	actor := e.selectedObject
	if actor == nil || len(e.selectedPath) == 0 {
		return fmt.Errorf("finalize move: no moving actor")
	}
	goal := e.selectedPath[0]

	if err := e.resolveArrival(actor, goal); err != nil {
		return err
	}

	e.targetNode = nil
	e.canClick = true
	e.emit(EventMoveFinished, actor, goal, "%s arrived at %s", actor.Name, goal)
	return nil
}

// resolveArrival applies the destination's effects in priority order:
// scoring in an endzone, then ball pickup or bounce, then placement.
func (e *GameEngine) resolveArrival(actor *Actor, dest Space) error {
	cell, ok := e.grid.Get(dest)
	if !ok {
		return fmt.Errorf("arrival at %s: %w", dest, ErrOutOfBounds)
	}

	switch {
	case cell.Terrain == Endzone && actor.CarryingBall():
		// a loose ball lying in the scoring cell leaves the grid with the game over
		e.score(actor, dest)

	case cell.Occupant != nil && cell.Occupant != actor && cell.Occupant.Ball:
		ball := cell.Occupant
		if actor.CanCarry && actor.Carrying == nil {
			actor.Carrying = ball
			ball.MoveTo(actor.X, actor.Y)
			e.hudChange = true
			e.emit(EventBallPickup, actor, dest, "%s picked up %s", actor.Name, ball.Name)
			e.logger.Printf("[ARRIVAL] %s picked up %s at %s", actor.Name, ball.Name, dest)
			break
		}
		e.bounce(ball, dest)
	}

	return e.grid.Place(dest, actor)
}

func (e *GameEngine) score(actor *Actor, dest Space) {
	if e.victory {
		return
	}
	e.victory = true
	e.gameOver = true
	e.message = e.config.Messages.Victory
	if e.message == "" {
		e.message = fmt.Sprintf("%s scored!", actor.Name)
	}
	e.emit(EventVictory, actor, dest, "%s", e.message)
	e.logger.Printf("[ARRIVAL] %s scored at %s", actor.Name, dest)
}

// bounce moves a ball to a random empty traversable neighbor of from. A ball
// with no empty neighbor stays where it is.
func (e *GameEngine) bounce(ball *Actor, from Space) {
	to, err := e.grid.RandomEmptyNeighbor(from)
	if errors.Is(err, ErrNoNeighbor) {
		e.emit(EventBounceBlocked, ball, from, "%s has nowhere to bounce", ball.Name)
		e.logger.Printf("[ARRIVAL] %s cannot bounce from %s", ball.Name, from)
		return
	}

	// Place keeps the neighbor's terrain
	if err := e.grid.Place(to, ball); err != nil {
		e.logger.Printf("[ARRIVAL] bounce %s: %v", ball.Name, err)
		return
	}
	ball.MoveTo(e.pixel(to))
	e.emit(EventBallBounce, ball, to, "%s bounced to %s", ball.Name, to)
	e.logger.Printf("[ARRIVAL] %s bounced %s -> %s", ball.Name, from, to)
}
