package engine

import (
	"context"
	"errors"
	"fmt"
)

// Policy decides the enemy's moves during EnemyTurn. Evaluate must return
// promptly once ctx is done.
type Policy interface {
	Evaluate(ctx context.Context, game *GameEngine) error
}

// PassPolicy ends the enemy turn without moving anything
type PassPolicy struct{}

// Evaluate does nothing
func (PassPolicy) Evaluate(ctx context.Context, game *GameEngine) error {
	return nil
}

// WanderPolicy steps each mobile away actor to a random empty neighbor
type WanderPolicy struct{}

// Evaluate moves away-team actors one cell each
func (WanderPolicy) Evaluate(ctx context.Context, game *GameEngine) error {
	grid := game.Grid()
	for _, a := range game.Actors() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("wander: %w", err)
		}
		if a.Team != TeamAway || !a.Movable() {
			continue
		}

		from, ok := grid.Find(a)
		if !ok {
			continue
		}
		to, err := grid.RandomEmptyNeighbor(from)
		if errors.Is(err, ErrNoNeighbor) {
			continue
		}

		if err := grid.Clear(from); err != nil {
			return err
		}
		if err := grid.Place(to, a); err != nil {
			return err
		}
		a.MoveTo(game.pixel(to))
		game.logger.Printf("[TURN] %s wandered %s -> %s", a.Name, from, to)
	}
	return nil
}

// Policy names accepted in level files
const (
	PolicyPass   = "pass"
	PolicyWander = "wander"
)

// PolicyByName returns the policy registered under name
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", PolicyPass:
		return PassPolicy{}, nil
	case PolicyWander:
		return WanderPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown enemy policy %q", name)
}
