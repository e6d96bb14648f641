// Package engine provides the core game logic for Gridball, a turn-based
// tactical board game.
//
// The engine package implements the game mechanics including:
//   - A sparse Grid of Spaces holding an occupant and terrain per cell
//   - A* path search and bounded range search over the Grid
//   - The interaction state machine driving selection, pathing and movement
//   - Per-frame movement and arrival resolution (ball pickup, bounce, victory)
//   - Level configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameEngine owns the Grid, the actor registry and
// the selection state. Machine holds the current interaction State and
// evaluates the declarative Transitions table.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("levels/classic.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Select the unit at (0,0), plan a path to (1,0) and confirm it
//	gameEngine.HandleInput(engine.Click(engine.ButtonLeft, 0, 0))
//	gameEngine.HandleInput(engine.Click(engine.ButtonRight, 1, 0))
//	gameEngine.HandleInput(engine.Click(engine.ButtonRight, 1, 0))
//
//	// Advance frames until the move completes
//	for gameEngine.Mode() == engine.Moving {
//		gameEngine.Update()
//	}
//
// Game Rules:
//
// Players select one of their own units and move it up to its movement range.
// A carrier that reaches a ball picks it up; anyone else knocks the ball to a
// random open neighbor. Carrying the ball into an endzone wins the match.
// Ending the turn hands control to the enemy policy, which returns control
// immediately after it runs.
package engine
