// Package validate checks level files beyond schema validation. On top of
// engine.ValidateGameConfig it verifies that a level is playable:
//   - at least one home carrier, one ball and one endzone cell
//   - a home carrier can reach a ball, ignoring movement range
//   - a carrier standing on that ball can reach an endzone
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/gridball/game/engine"
)

// Result captures the outcome of validating a single level.
// Info holds the ✓ summary lines of a valid level.
type Result struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) info(format string, args ...interface{}) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// Dir validates every level file in a directory, sorted by file name
func Dir(dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read level directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := engine.FormatForPath(entry.Name()); ok {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	results := make([]Result, 0, len(files))
	for _, file := range files {
		results = append(results, File(file))
	}
	return results, nil
}

// File loads and validates a single level file
func File(path string) Result {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		result := Result{File: filepath.Base(path)}
		result.fail("%v", err)
		return result
	}

	result := Level(config)
	result.File = filepath.Base(path)
	return result
}

// Level validates an already decoded level
func Level(config *engine.GameConfig) Result {
	result := Result{Valid: true, Errors: []string{}}

	config.ApplyDefaults()
	if err := engine.ValidateGameConfig(config); err != nil {
		result.fail("%v", err)
		return result
	}

	grid, actors, err := engine.BuildBoard(config)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	var carriers, balls []*engine.Actor
	for _, a := range actors {
		switch {
		case a.Kind == engine.KindCarrier && a.Team == engine.TeamHome:
			carriers = append(carriers, a)
		case a.Ball:
			balls = append(balls, a)
		}
	}
	endzones := engine.CountTerrain(grid, engine.Endzone)

	if len(carriers) == 0 {
		result.fail("Must have at least 1 home carrier")
	}
	if len(balls) == 0 {
		result.fail("Must have at least 1 ball")
	}
	if endzones == 0 {
		result.fail("Must have at least 1 endzone (%c) cell", engine.LayoutEndzone)
	}
	if config.Messages.Victory == "" {
		result.fail("Missing required message: victory")
	}

	if result.Valid {
		connectivity(&result, grid, carriers, balls, config.CellSize)
	}

	if result.Valid {
		result.info("✓ Name: %s", config.Name)
		result.info("✓ Grid: %dx%d", config.Columns, config.Rows)
		result.info("✓ Home carriers: %d", len(carriers))
		result.info("✓ Balls: %d", len(balls))
		result.info("✓ Endzone cells: %d", endzones)
		result.info("✓ Enemy policy: %s", config.EnemyPolicy)
	}

	return result
}

// connectivity looks for a carrier that can reach a ball and then carry it
// into an endzone, with no limit on the number of steps
func connectivity(result *Result, grid *engine.Grid, carriers, balls []*engine.Actor, cellSize int) {
	unlimited := grid.Columns() * grid.Rows()

	for _, ball := range balls {
		ballSpace := ball.Space(cellSize)
		for _, carrier := range carriers {
			start := carrier.Space(cellSize)
			if !engine.RangeFind(start, unlimited, grid).Visited(ballSpace) {
				continue
			}

			// the carrier leaves its own cell when it walks to the ball
			grid.Clear(start)
			scores := reachesEndzone(grid, ballSpace, unlimited)
			grid.Place(start, carrier)

			if scores {
				result.info("✓ Connectivity: %s can carry %s from %s to an endzone", carrier.Name, ball.Name, ballSpace)
				return
			}
		}
	}

	result.fail("Connectivity failure: no home carrier can carry a ball into an endzone")
}

func reachesEndzone(grid *engine.Grid, from engine.Space, maxRange int) bool {
	for space := range engine.RangeFind(from, maxRange, grid).CameFrom {
		if cell, ok := grid.Get(space); ok && cell.Terrain == engine.Endzone {
			return true
		}
	}
	return false
}
