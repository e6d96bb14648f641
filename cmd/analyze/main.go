// Command analyze prints quick, human-readable heuristics about the level
// files in a directory (default "levels"). It summarizes dimensions, actor
// counts and endzone cells, reports how far each home unit can move in one
// turn, and highlights open cells no home unit can ever reach.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wricardo/gridball/game/engine"
	"github.com/wricardo/gridball/validate"
)

// maxListed caps the unreachable cells printed per level
const maxListed = 5

// UnitReport describes what one home unit can do from its starting cell
type UnitReport struct {
	Name          string
	Start         engine.Space
	MovementRange int
	Reachable     int  // cells reachable in one turn
	BallInRange   bool // a ball is reachable in one turn
	EndzoneSteps  int  // path cost to the closest endzone, -1 if none reachable
	NearestByAir  int  // Manhattan distance to the closest endzone, -1 if none
}

// LevelReport is the analysis of a single level
type LevelReport struct {
	Name        string
	Columns     int
	Rows        int
	Endzones    int
	Balls       int
	AwayUnits   int
	Walls       int
	Units       []UnitReport
	Unreachable []engine.Space // open cells no home unit can reach
}

func main() {
	dir := "levels"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	results, err := validate.Dir(dir)
	if err != nil {
		fmt.Printf("Error reading levels: %v\n", err)
		os.Exit(1)
	}

	for _, result := range results {
		fmt.Printf("\n=== Analyzing %s ===\n", result.File)
		config, err := engine.LoadGameConfig(filepath.Join(dir, result.File))
		if err != nil {
			fmt.Printf("Error loading level: %v\n", err)
			continue
		}
		report, err := analyzeLevel(config)
		if err != nil {
			fmt.Printf("Error building board: %v\n", err)
			continue
		}
		printReport(os.Stdout, report)
		if !result.Valid {
			for _, e := range result.Errors {
				fmt.Printf("⚠️  %s\n", e)
			}
		}
	}
}

// analyzeLevel builds the board and runs range searches for every home unit
func analyzeLevel(config *engine.GameConfig) (*LevelReport, error) {
	config.ApplyDefaults()
	grid, actors, err := engine.BuildBoard(config)
	if err != nil {
		return nil, err
	}

	report := &LevelReport{
		Name:     config.Name,
		Columns:  config.Columns,
		Rows:     config.Rows,
		Endzones: engine.CountTerrain(grid, engine.Endzone),
	}

	unlimited := grid.Columns() * grid.Rows()
	seen := map[engine.Space]bool{}

	var balls []engine.Space
	for _, a := range actors {
		switch {
		case a.Ball:
			report.Balls++
			balls = append(balls, a.Space(config.CellSize))
		case a.Kind == engine.KindWall:
			report.Walls++
		case a.Team == engine.TeamAway:
			report.AwayUnits++
		}
	}

	for _, a := range actors {
		if a.Team != engine.TeamHome || !a.Movable() {
			continue
		}
		start := a.Space(config.CellSize)

		turn := engine.Reachable(engine.RangeFind(start, a.MovementRange(), grid), start)
		unit := UnitReport{
			Name:          a.Name,
			Start:         start,
			MovementRange: a.MovementRange(),
			Reachable:     turn.Size(),
			EndzoneSteps:  -1,
		}
		for _, ball := range balls {
			if turn.Has(ball) {
				unit.BallInRange = true
			}
		}
		_, unit.NearestByAir, _ = engine.NearestEndzone(grid, start)

		all := engine.RangeFind(start, unlimited, grid)
		for space, cost := range all.CostSoFar {
			seen[space] = true
			if cell, _ := grid.Get(space); cell.Terrain != engine.Endzone {
				continue
			}
			if unit.EndzoneSteps == -1 || cost < unit.EndzoneSteps {
				unit.EndzoneSteps = cost
			}
		}
		report.Units = append(report.Units, unit)
	}

	for _, space := range grid.Spaces() {
		if cell, _ := grid.Get(space); cell.Occupant != nil {
			continue
		}
		if !seen[space] {
			report.Unreachable = append(report.Unreachable, space)
		}
	}

	return report, nil
}

func printReport(w io.Writer, r *LevelReport) {
	fmt.Fprintf(w, "Name: %s\n", r.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", r.Columns, r.Rows)
	fmt.Fprintf(w, "Endzone Cells: %d\n", r.Endzones)
	fmt.Fprintf(w, "Balls: %d | Away Units: %d | Walls: %d\n", r.Balls, r.AwayUnits, r.Walls)

	for _, u := range r.Units {
		fmt.Fprintf(w, "Unit %s at %s: range %d, %d cells per turn", u.Name, u.Start, u.MovementRange, u.Reachable)
		if u.BallInRange {
			fmt.Fprint(w, ", ball in range")
		}
		fmt.Fprintln(w)
		if u.EndzoneSteps >= 0 && u.MovementRange > 0 {
			turns := (u.EndzoneSteps + u.MovementRange - 1) / u.MovementRange
			fmt.Fprintf(w, "   Endzone: %d steps (%d by air), about %d turns\n", u.EndzoneSteps, u.NearestByAir, turns)
		} else {
			fmt.Fprintln(w, "   ⚠️  No endzone reachable")
		}
	}

	if len(r.Unreachable) == 0 {
		fmt.Fprintln(w, "✅ Every open cell is reachable by a home unit")
		return
	}

	fmt.Fprintf(w, "⚠️  WARNING: %d open cells are unreachable by every home unit!\n", len(r.Unreachable))
	for i, space := range r.Unreachable {
		if i == maxListed {
			fmt.Fprintf(w, "   ... and %d more\n", len(r.Unreachable)-maxListed)
			break
		}
		fmt.Fprintf(w, "   Unreachable: %s\n", space)
	}
}
