// Package config provides level management for Gridball.
//
// The config package handles:
//   - Loading levels from JSON and YAML files
//   - Caching parsed levels
//   - Default level selection
//   - Level discovery and listing
//
// Level Format:
//
// Levels live in a directory as .json, .yaml or .yml files. A level's id is
// its file name without the extension, so "classic.yaml" is requested as
// "classic". Each level defines:
//   - Board size in columns and rows, plus the pixel size of a cell
//   - An optional layout where '.' is blank ground and 'E' is an endzone
//   - The starting actors: carriers, blockers, balls and walls
//   - The enemy policy run during the enemy turn
//   - Welcome and victory messages
//
// Usage:
//
//	manager, err := config.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	level, err := manager.LoadConfig("classic")
//	defaultLevel := manager.GetDefault()
//	levels, err := manager.ListConfigs()
//
// Default Level:
//
// The default is "classic" when present, otherwise the first valid level in
// id order, otherwise the built-in board from engine.DefaultGameConfig.
// Invalid files are skipped when listing and logged with a [CONFIG] tag.
package config
